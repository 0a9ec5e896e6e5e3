package page

import (
	"fmt"
	"sync"

	"github.com/eduos-dev/kernel/abi"
)

// SPT is one address space's supplemental page table: the authoritative
// record of every page that has been allocated into the space, whether or
// not it's currently backed by a physical frame.
type SPT struct {
	mu       sync.Mutex
	mmu      abi.MMU
	pml4     abi.PML4
	entries  map[uintptr]*SPTE
	mappings map[int]struct{} // active mmap mapping IDs, so Munmap can detect a repeat call
}

// NewSPT creates an empty supplemental page table bound to the given
// hardware page-table handle.
func NewSPT(mmu abi.MMU, pml4 abi.PML4) *SPT {
	return &SPT{mmu: mmu, pml4: pml4, entries: make(map[uintptr]*SPTE), mappings: make(map[int]struct{})}
}

func pageAlign(addr uintptr) uintptr {
	return addr &^ uintptr(abi.PageSize-1)
}

// AllocWithInitializer registers a lazily-loaded UNINIT page at vaddr, which
// must be page-aligned. The page becomes ANON the first time it's faulted
// in, at which point init fills its content (FILE pages are registered via
// AllocFileBacked instead).
func (t *SPT) AllocWithInitializer(vaddr uintptr, writable bool, init Initializer, aux any) error {
	if vaddr%abi.PageSize != 0 {
		return fmt.Errorf("page: vaddr %#x not page-aligned", vaddr)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.entries[vaddr]; exists {
		return fmt.Errorf("page: already mapped at %#x", vaddr)
	}
	e := newEntry(vaddr, Uninit, writable)
	e.init = init
	e.initAux = aux
	t.entries[vaddr] = e
	return nil
}

// AllocFileBacked registers a lazily-loaded FILE page, used by mmap.
func (t *SPT) AllocFileBacked(vaddr uintptr, writable bool, backing FileBacking, init Initializer) error {
	vaddr = pageAlign(vaddr)
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.entries[vaddr]; exists {
		return fmt.Errorf("page: already mapped at %#x", vaddr)
	}
	e := newEntry(vaddr, Uninit, writable)
	e.init = init
	b := backing
	e.file = &b
	t.entries[vaddr] = e
	return nil
}

// AllocAnon registers an immediately-resident zero-filled ANON page, used
// for eager allocations like the initial user stack.
func (t *SPT) AllocAnon(vaddr uintptr, writable bool, frame *Frame) error {
	vaddr = pageAlign(vaddr)
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.entries[vaddr]; exists {
		return fmt.Errorf("page: already mapped at %#x", vaddr)
	}
	e := newEntry(vaddr, Anon, writable)
	e.frame = frame
	frame.owner = t
	frame.ownerVAddr = vaddr
	t.entries[vaddr] = e
	return nil
}

// Find returns the entry covering vaddr, or nil if no page is allocated
// there.
func (t *SPT) Find(vaddr uintptr) *SPTE {
	vaddr = pageAlign(vaddr)
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entries[vaddr]
}

// Remove drops the entry at vaddr, unmapping it from hardware and freeing
// its frame or swap slot. Used by munmap and process teardown.
func (t *SPT) Remove(vaddr uintptr, st *SwapTable) {
	vaddr = pageAlign(vaddr)
	t.mu.Lock()
	e, ok := t.entries[vaddr]
	if !ok {
		t.mu.Unlock()
		return
	}
	delete(t.entries, vaddr)
	t.mu.Unlock()

	t.mmu.Unmap(t.pml4, vaddr)
	if e.frame != nil {
		GlobalFrameTable().Free(e.frame)
	}
	if e.Swapped() && st != nil {
		st.Free(e.swapSlot)
	}
}

// Destroy tears down every entry in the table, used when a process exits
//.
func (t *SPT) Destroy(st *SwapTable) {
	t.mu.Lock()
	vaddrs := make([]uintptr, 0, len(t.entries))
	for v := range t.entries {
		vaddrs = append(vaddrs, v)
	}
	t.mu.Unlock()
	for _, v := range vaddrs {
		t.Remove(v, st)
	}
}

// entriesWithMapping returns every entry tagged with the given mmap mapping
// ID, used by Munmap to find all pages belonging to one mapping.
func (t *SPT) entriesWithMapping(id int) []*SPTE {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []*SPTE
	for _, e := range t.entries {
		if e.file != nil && e.file.MappingID == id {
			out = append(out, e)
		}
	}
	return out
}

// registerMapping records mappingID as active, called once per successful
// Mmap.
func (t *SPT) registerMapping(mappingID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mappings[mappingID] = struct{}{}
}

// takeMapping reports whether mappingID is currently active and, if so,
// removes it; a second Munmap of the same ID observes false.
func (t *SPT) takeMapping(mappingID int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.mappings[mappingID]; !ok {
		return false
	}
	delete(t.mappings, mappingID)
	return true
}

// PML4 returns the hardware page-table handle this SPT is bound to, so
// fault handling can call abi.MMU operations directly.
func (t *SPT) PML4() abi.PML4 { return t.pml4 }

// MMU returns the hardware page-table interface this SPT is bound to.
func (t *SPT) MMU() abi.MMU { return t.mmu }
