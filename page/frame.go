package page

import (
	"fmt"
	"sync"

	"github.com/eduos-dev/kernel/abi"
)

// Frame is one physical page frame in the global frame table. PAddr is the physical address the page-table maps a
// resident SPTE's vaddr to; owner/ownerVAddr identify which SPT and
// virtual address currently claim it, for eviction and write-back.
type Frame struct {
	PAddr      uintptr
	Data       []byte // PageSize bytes, the frame's in-memory content
	owner      *SPT
	ownerVAddr uintptr
}

// FrameTable is the global pool of physical frames shared by every address
// space, evicted via a second-chance (clock) algorithm.
type FrameTable struct {
	mu     sync.Mutex
	frames []*Frame
	used   []bool // parallel to frames; true while claimed by some SPT
	accBit []bool // second chance "accessed recently" bit, independent of MMU accessed bit so eviction works even without a live MMU handle
	clock  int
}

var globalFrameTable *FrameTable
var globalFrameTableOnce sync.Once

// GlobalFrameTable returns the process-wide frame table, initializing it to
// zero frames if NewFrameTable hasn't been called yet. Production callers
// should call NewFrameTable explicitly at startup; this lazy accessor
// exists so SPT.Remove/Destroy can reach the table without threading it
// through every call.
func GlobalFrameTable() *FrameTable {
	globalFrameTableOnce.Do(func() {
		if globalFrameTable == nil {
			globalFrameTable = NewFrameTable(0)
		}
	})
	return globalFrameTable
}

// NewFrameTable allocates n physical frames and installs the result as the
// global frame table.
func NewFrameTable(n int) *FrameTable {
	ft := &FrameTable{
		frames: make([]*Frame, n),
		used:   make([]bool, n),
		accBit: make([]bool, n),
	}
	for i := range ft.frames {
		ft.frames[i] = &Frame{PAddr: uintptr(i) * abi.PageSize, Data: make([]byte, abi.PageSize)}
	}
	globalFrameTable = ft
	return ft
}

// Count returns the total number of physical frames managed.
func (ft *FrameTable) Count() int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return len(ft.frames)
}

// Alloc claims a free frame, or evicts one via second-chance if none is
// free. evict is called with the victim so the caller can swap
// out or write back its content before the frame is repurposed; evict must
// clear the victim SPTE's residency (as evictFrame in fault.go does). A
// frame obtained by eviction is zeroed before it is returned.
func (ft *FrameTable) Alloc(evict func(victim *Frame) error) (*Frame, error) {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	for i, u := range ft.used {
		if !u {
			ft.used[i] = true
			ft.accBit[i] = true
			return ft.frames[i], nil
		}
	}
	if len(ft.frames) == 0 {
		return nil, fmt.Errorf("page: no physical frames configured")
	}

	// Second-chance clock sweep: a frame with its bit set gets one pass
	// (bit cleared, skipped); the first frame found with its bit already
	// clear is the eviction victim.
	n := len(ft.frames)
	for pass := 0; pass < 2*n; pass++ {
		i := ft.clock
		ft.clock = (ft.clock + 1) % n
		if ft.accBit[i] {
			ft.accBit[i] = false
			continue
		}
		victim := ft.frames[i]
		if evict != nil {
			if err := evict(victim); err != nil {
				return nil, err
			}
		}
		victim.owner = nil
		for j := range victim.Data {
			victim.Data[j] = 0
		}
		ft.accBit[i] = true
		return victim, nil
	}
	return nil, fmt.Errorf("page: eviction sweep found no victim")
}

// Free releases f back to the pool.
func (ft *FrameTable) Free(f *Frame) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	for i, fr := range ft.frames {
		if fr == f {
			ft.used[i] = false
			f.owner = nil
			for j := range f.Data {
				f.Data[j] = 0
			}
			return
		}
	}
}

// MarkAccessed sets f's second-chance bit, called whenever a fault resolves
// by bringing f back in, so it isn't immediately re-evicted.
func (ft *FrameTable) MarkAccessed(f *Frame) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	for i, fr := range ft.frames {
		if fr == f {
			ft.accBit[i] = true
			return
		}
	}
}
