package page

import (
	"context"
	"fmt"

	"github.com/eduos-dev/kernel/abi"
)

// Claim brings e into physical memory: allocating a frame (evicting if
// necessary), filling it from its initializer (UNINIT), swap (ANON, once
// evicted), the backing file (FILE, once evicted), or leaving it zeroed
// (ANON, never touched), then installing the hardware mapping.
func (t *SPT) Claim(e *SPTE, ft *FrameTable, st *SwapTable) error {
	if e.Resident() {
		return nil
	}

	f, err := ft.Alloc(func(victim *Frame) error {
		return evictFrame(victim, st)
	})
	if err != nil {
		return fmt.Errorf("page: claim %#x: %w", e.VAddr, err)
	}

	switch {
	case e.Typ == Uninit:
		aux := e.initAux
		if e.file != nil {
			aux = e.file
		}
		if err := e.init(f.Data, aux); err != nil {
			ft.Free(f)
			return fmt.Errorf("page: claim %#x: initializer: %w", e.VAddr, err)
		}
		if e.file != nil {
			e.Typ = File
		} else {
			e.Typ = Anon
		}
	case e.Swapped():
		if err := st.SwapIn(e.swapSlot, f.Data); err != nil {
			ft.Free(f)
			return fmt.Errorf("page: claim %#x: %w", e.VAddr, err)
		}
		e.swapSlot = -1
	case e.Typ == File:
		// Evicted FILE page: evictFrame never wrote a swap slot for it (only
		// ANON pages go to swap), so re-read its content from the backing
		// file instead of falling through to a zero-filled frame.
		if err := fileInitializer(f.Data, e.file); err != nil {
			ft.Free(f)
			return fmt.Errorf("page: claim %#x: %w", e.VAddr, err)
		}
	default:
		// ANON page never written to swap or touched before: zero-filled frame.
	}

	e.frame = f
	f.owner = t
	f.ownerVAddr = e.VAddr

	if err := t.mmu.Map(t.pml4, e.VAddr, f.PAddr, e.Writable); err != nil {
		ft.Free(f)
		e.frame = nil
		return fmt.Errorf("page: claim %#x: map: %w", e.VAddr, err)
	}
	ft.MarkAccessed(f)
	return nil
}

// evictFrame makes victim available for reuse: ANON pages go to swap,
// dirty FILE pages are written back, clean FILE pages are simply dropped
//.
func evictFrame(victim *Frame, st *SwapTable) error {
	owner := victim.owner
	if owner == nil {
		return nil // frame was never claimed; nothing to preserve
	}
	e := owner.entries[victim.ownerVAddr]
	if e == nil {
		return nil
	}

	owner.mmu.Unmap(owner.pml4, e.VAddr)

	switch e.Typ {
	case Anon:
		slot, err := st.SwapOut(victim.Data)
		if err != nil {
			return fmt.Errorf("page: evict %#x: %w", e.VAddr, err)
		}
		e.swapSlot = slot
	case File:
		if e.Writable && owner.mmu.IsDirty(owner.pml4, e.VAddr) {
			if err := writeBackFilePage(e, victim); err != nil {
				return err
			}
		}
	}
	e.frame = nil
	return nil
}

func writeBackFilePage(e *SPTE, f *Frame) error {
	h, err := e.file.Handle.Reopen(context.Background())
	if err != nil {
		return fmt.Errorf("%w: reopen for writeback: %v", errIoFailure, err)
	}
	defer h.Close()
	if _, err := h.Seek(e.file.Offset, 0); err != nil {
		return fmt.Errorf("%w: seek for writeback: %v", errIoFailure, err)
	}
	if _, err := h.Write(f.Data[:e.file.ReadBytes]); err != nil {
		return fmt.Errorf("%w: write back: %v", errIoFailure, err)
	}
	return nil
}

// defaultStackGrowthWindow bounds how far below the current stack pointer a fault
// is still considered legitimate stack growth rather than a bad access
//.
const defaultStackGrowthWindow = 32 * abi.PageSize

// HandleFault is the single entry point for a hardware page fault. It classifies faultAddr against the supplemental page
// table and either claims an existing (possibly lazy) entry, grows the
// stack, or reports the fault as unrecoverable.
func HandleFault(t *SPT, ft *FrameTable, st *SwapTable, faultAddr, userRSP uintptr, code abi.FaultCode, stackLimit int, growthWindow int) error {
	if code.Present() {
		return fmt.Errorf("page: fault at %#x: protection violation (present page, code=%v)", faultAddr, code)
	}
	if growthWindow <= 0 {
		growthWindow = defaultStackGrowthWindow
	}

	aligned := pageAlign(faultAddr)
	if e := t.Find(aligned); e != nil {
		return t.Claim(e, ft, st)
	}

	if isStackGrowth(faultAddr, userRSP, stackLimit, growthWindow) {
		f, err := ft.Alloc(func(victim *Frame) error { return evictFrame(victim, st) })
		if err != nil {
			return fmt.Errorf("page: stack growth at %#x: %w", faultAddr, err)
		}
		if err := t.AllocAnon(aligned, true, f); err != nil {
			ft.Free(f)
			return fmt.Errorf("page: stack growth at %#x: %w", faultAddr, err)
		}
		if err := t.mmu.Map(t.pml4, aligned, f.PAddr, true); err != nil {
			return fmt.Errorf("page: stack growth at %#x: map: %w", faultAddr, err)
		}
		ft.MarkAccessed(f)
		return nil
	}

	return fmt.Errorf("page: fault at %#x: no mapping and not valid stack growth", faultAddr)
}

// isStackGrowth applies the heuristic Pintos-style kernels use: the fault
// is below the current stack pointer and within growthWindow bytes of it.
// stackLimit is compared against that same distance from the stack
// pointer; the total size of the stack is not measured, so successive
// growth faults are not capped by stackLimit.
func isStackGrowth(faultAddr, userRSP uintptr, stackLimit int, growthWindow int) bool {
	if faultAddr >= userRSP {
		return false
	}
	if userRSP-faultAddr > uintptr(growthWindow) {
		return false
	}
	return int(userRSP-faultAddr) <= stackLimit
}
