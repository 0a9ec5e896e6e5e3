package page

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/eduos-dev/kernel/abi"
)

func writeTempFile(t *testing.T, content []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "mapped.bin")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestMmapWriteBackWritesExactlyTheWrittenBytes(t *testing.T) {
	const length = 4500 // spans two pages: 4096 + 404
	orig := bytes.Repeat([]byte{0xCC}, length)
	path := writeTempFile(t, orig)

	handle, err := openOSFileHandle(path)
	if err != nil {
		t.Fatalf("openOSFileHandle: %v", err)
	}
	defer handle.Close()

	mmu := newFakeMMU()
	spt := NewSPT(mmu, nil)
	ft := NewFrameTable(4)
	st, err := NewSwapTable(memDeviceForTest(t, 4))
	if err != nil {
		t.Fatalf("NewSwapTable: %v", err)
	}

	const base = 0x10000
	const mappingID = 1
	if err := Mmap(spt, base, handle, 0, length, true, mappingID); err != nil {
		t.Fatalf("Mmap: %v", err)
	}

	written := bytes.Repeat([]byte{0xAB}, abi.PageSize)
	for _, vaddr := range []uintptr{base, base + abi.PageSize} {
		e := spt.Find(vaddr)
		if e == nil {
			t.Fatalf("no SPTE for %#x after Mmap", vaddr)
		}
		if err := spt.Claim(e, ft, st); err != nil {
			t.Fatalf("Claim %#x: %v", vaddr, err)
		}
		copy(e.frame.Data, written)
		mmu.SetDirty(nil, vaddr, true)
	}

	if err := Munmap(spt, mappingID, st); err != nil {
		t.Fatalf("Munmap: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != length {
		t.Fatalf("file length = %d, want %d (munmap must not grow the file)", len(got), length)
	}
	want := append(append([]byte{}, written...), written[:length-abi.PageSize]...)
	if !bytes.Equal(got, want) {
		t.Error("file content after munmap does not match exactly what was written to the mapped pages")
	}
}

func TestMmapRejectsMisalignedAddr(t *testing.T) {
	path := writeTempFile(t, make([]byte, abi.PageSize))
	handle, err := openOSFileHandle(path)
	if err != nil {
		t.Fatalf("openOSFileHandle: %v", err)
	}
	defer handle.Close()

	spt := NewSPT(newFakeMMU(), nil)
	if err := Mmap(spt, 1, handle, 0, abi.PageSize, true, 1); err == nil {
		t.Fatal("expected error for misaligned mmap address")
	}
}

func TestMunmapTwiceFailsWithNotMapped(t *testing.T) {
	path := writeTempFile(t, make([]byte, abi.PageSize))
	handle, err := openOSFileHandle(path)
	if err != nil {
		t.Fatalf("openOSFileHandle: %v", err)
	}
	defer handle.Close()

	spt := NewSPT(newFakeMMU(), nil)
	const mappingID = 7
	if err := Mmap(spt, 0x20000, handle, 0, abi.PageSize, true, mappingID); err != nil {
		t.Fatalf("Mmap: %v", err)
	}
	if err := Munmap(spt, mappingID, nil); err != nil {
		t.Fatalf("first Munmap: %v", err)
	}
	err = Munmap(spt, mappingID, nil)
	if err == nil {
		t.Fatal("expected the second Munmap of the same mapping to fail")
	}
	if !IsNotMapped(err) {
		t.Errorf("second Munmap error = %v, want IsNotMapped", err)
	}
}

// TestMmapEvictedFilePageRefaultsFromFileNotZero forces a FILE-type SPTE
// out of its frame via eviction (a single-frame FrameTable, claimed by a
// second page), then re-faults it and checks the restored content came
// from the backing file rather than a zero-filled frame.
func TestMmapEvictedFilePageRefaultsFromFileNotZero(t *testing.T) {
	page0 := bytes.Repeat([]byte{0x11}, abi.PageSize)
	page1 := bytes.Repeat([]byte{0x22}, abi.PageSize)
	path := writeTempFile(t, append(append([]byte{}, page0...), page1...))

	handle, err := openOSFileHandle(path)
	if err != nil {
		t.Fatalf("openOSFileHandle: %v", err)
	}
	defer handle.Close()

	spt := NewSPT(newFakeMMU(), nil)
	ft := NewFrameTable(1) // forces eviction on the second Claim
	st, err := NewSwapTable(memDeviceForTest(t, 1))
	if err != nil {
		t.Fatalf("NewSwapTable: %v", err)
	}

	const base = 0x40000
	if err := Mmap(spt, base, handle, 0, 2*abi.PageSize, false, 3); err != nil {
		t.Fatalf("Mmap: %v", err)
	}

	e0 := spt.Find(base)
	if e0 == nil {
		t.Fatal("no SPTE for page 0 after Mmap")
	}
	if err := spt.Claim(e0, ft, st); err != nil {
		t.Fatalf("Claim page 0: %v", err)
	}
	if !bytes.Equal(e0.frame.Data, page0) {
		t.Fatal("page 0 not faulted in correctly before eviction")
	}

	e1 := spt.Find(base + abi.PageSize)
	if e1 == nil {
		t.Fatal("no SPTE for page 1 after Mmap")
	}
	if err := spt.Claim(e1, ft, st); err != nil {
		t.Fatalf("Claim page 1 (evicts page 0): %v", err)
	}
	if e0.Resident() {
		t.Fatal("claiming page 1 with a single-frame table should have evicted page 0")
	}
	if e0.Typ != File {
		t.Fatalf("evicted page 0 Type = %v, want File (evictFrame must not change a FILE entry's type)", e0.Typ)
	}

	if err := spt.Claim(e0, ft, st); err != nil {
		t.Fatalf("re-Claim page 0 after eviction: %v", err)
	}
	if !bytes.Equal(e0.frame.Data, page0) {
		t.Error("re-faulted FILE page returned zeroed content instead of re-reading the backing file")
	}
}

func TestMmapShortLastPageZeroFillsRemainder(t *testing.T) {
	const length = 100
	orig := bytes.Repeat([]byte{0x55}, length)
	path := writeTempFile(t, orig)
	handle, err := openOSFileHandle(path)
	if err != nil {
		t.Fatalf("openOSFileHandle: %v", err)
	}
	defer handle.Close()

	spt := NewSPT(newFakeMMU(), nil)
	ft := NewFrameTable(1)
	const base = 0x30000
	if err := Mmap(spt, base, handle, 0, length, false, 2); err != nil {
		t.Fatalf("Mmap: %v", err)
	}
	e := spt.Find(base)
	if err := spt.Claim(e, ft, nil); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if !bytes.Equal(e.frame.Data[:length], orig) {
		t.Error("file content not faulted in correctly")
	}
	for i := length; i < abi.PageSize; i++ {
		if e.frame.Data[i] != 0 {
			t.Fatalf("byte %d beyond valid_bytes = %#x, want 0", i, e.frame.Data[i])
		}
	}
}
