package page

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/eduos-dev/kernel/abi"
	"github.com/eduos-dev/kernel/blockdev"
)

// memDeviceForTest returns an in-memory block device sized to hold n swap
// slots.
func memDeviceForTest(t *testing.T, slots int) *blockdev.MemDevice {
	t.Helper()
	return blockdev.NewMemDevice(uint64(slots) * abi.SectorsPerPage)
}

// fakeMMU is a minimal in-memory abi.MMU double: enough to exercise
// Map/Unmap/dirty/accessed bookkeeping without real page-table hardware.
// It ignores the pml4 argument, matching the single-address-space scope of
// these tests.
type fakeMMU struct {
	mu       sync.Mutex
	mapped   map[uintptr]uintptr
	writable map[uintptr]bool
	dirty    map[uintptr]bool
	accessed map[uintptr]bool
}

var _ abi.MMU = (*fakeMMU)(nil)

func newFakeMMU() *fakeMMU {
	return &fakeMMU{
		mapped:   make(map[uintptr]uintptr),
		writable: make(map[uintptr]bool),
		dirty:    make(map[uintptr]bool),
		accessed: make(map[uintptr]bool),
	}
}

func (m *fakeMMU) Map(_ abi.PML4, vaddr, paddr uintptr, writable bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mapped[vaddr] = paddr
	m.writable[vaddr] = writable
	return nil
}

func (m *fakeMMU) Unmap(_ abi.PML4, vaddr uintptr) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.mapped, vaddr)
	delete(m.writable, vaddr)
	delete(m.dirty, vaddr)
	delete(m.accessed, vaddr)
}

func (m *fakeMMU) IsDirty(_ abi.PML4, vaddr uintptr) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirty[vaddr]
}

func (m *fakeMMU) SetDirty(_ abi.PML4, vaddr uintptr, dirty bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirty[vaddr] = dirty
}

func (m *fakeMMU) IsAccessed(_ abi.PML4, vaddr uintptr) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accessed[vaddr]
}

func (m *fakeMMU) SetAccessed(_ abi.PML4, vaddr uintptr, accessed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accessed[vaddr] = accessed
}

func (m *fakeMMU) Activate(_ abi.PML4) {}

func (m *fakeMMU) isMapped(vaddr uintptr) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.mapped[vaddr]
	return ok
}

// osFileHandle adapts a path on disk to abi.FileHandle, reopening a fresh
// *os.File each time so independent mapped pages never share a seek
// position.
type osFileHandle struct {
	path string
	f    *os.File
}

var _ abi.FileHandle = (*osFileHandle)(nil)

func openOSFileHandle(path string) (*osFileHandle, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	return &osFileHandle{path: path, f: f}, nil
}

func (h *osFileHandle) Reopen(_ context.Context) (abi.FileHandle, error) {
	return openOSFileHandle(h.path)
}

func (h *osFileHandle) Seek(offset int64, whence int) (int64, error) { return h.f.Seek(offset, whence) }
func (h *osFileHandle) Read(p []byte) (int, error)                   { return h.f.Read(p) }
func (h *osFileHandle) Write(p []byte) (int, error)                  { return h.f.Write(p) }
func (h *osFileHandle) Close() error                                 { return h.f.Close() }
