package kernel

import (
	"context"
	"os"
	"sync"

	"github.com/eduos-dev/kernel/abi"
)

// fakeMMU is a minimal in-memory abi.MMU double, mirroring the one used by
// package page's own tests: enough to drive Map/Unmap bookkeeping without
// real page-table hardware. It ignores the pml4 argument.
type fakeMMU struct {
	mu     sync.Mutex
	mapped map[uintptr]uintptr
}

var _ abi.MMU = (*fakeMMU)(nil)

func newFakeMMU() *fakeMMU {
	return &fakeMMU{mapped: make(map[uintptr]uintptr)}
}

func (m *fakeMMU) Map(_ abi.PML4, vaddr, paddr uintptr, _ bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mapped[vaddr] = paddr
	return nil
}

func (m *fakeMMU) Unmap(_ abi.PML4, vaddr uintptr) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.mapped, vaddr)
}

func (m *fakeMMU) IsDirty(_ abi.PML4, _ uintptr) bool        { return false }
func (m *fakeMMU) SetDirty(_ abi.PML4, _ uintptr, _ bool)    {}
func (m *fakeMMU) IsAccessed(_ abi.PML4, _ uintptr) bool     { return false }
func (m *fakeMMU) SetAccessed(_ abi.PML4, _ uintptr, _ bool) {}
func (m *fakeMMU) Activate(_ abi.PML4)                       {}

func (m *fakeMMU) isMapped(vaddr uintptr) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.mapped[vaddr]
	return ok
}

// osFileHandle adapts a path on disk to abi.FileHandle for mmap tests,
// reopening a fresh *os.File each time so independently mapped pages never
// share a seek position.
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
