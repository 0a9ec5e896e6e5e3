package kernel

import (
	"fmt"

	"github.com/eduos-dev/kernel/abi"
	"github.com/eduos-dev/kernel/page"
)

// AddressSpace binds one thread's supplemental page table to its hardware
// page-table handle, plus the kernel-wide frame and swap tables it shares
// with every other address space. It is the thin glue the
// scheduler owns so page fault handling never needs to import the
// scheduler back (avoiding an import cycle between kernel and page).
type AddressSpace struct {
	spt          *page.SPT
	mmu          abi.MMU
	pml4         abi.PML4
	frames       *page.FrameTable
	swap         *page.SwapTable
	stackLimit   int
	growthWindow int
	log          Logger
}

// NewAddressSpace creates an address space bound to pml4/mmu, sharing k's
// frame and swap tables.
func (k *Kernel) NewAddressSpace(mmu abi.MMU, pml4 abi.PML4, frames *page.FrameTable, swap *page.SwapTable) *AddressSpace {
	return &AddressSpace{
		spt:          page.NewSPT(mmu, pml4),
		mmu:          mmu,
		pml4:         pml4,
		frames:       frames,
		swap:         swap,
		stackLimit:   k.cfg.userStackLimit,
		growthWindow: k.cfg.stackGrowthWindow,
		log:          k.log,
	}
}

// Activate installs this address space's hardware page table as current,
// called by the scheduler immediately before launching a thread that owns
// it.
func (a *AddressSpace) Activate() {
	a.mmu.Activate(a.pml4)
}

// HandleFault routes a hardware page fault through the supplemental page
// table: lazy load, swap-in, or stack growth.
func (a *AddressSpace) HandleFault(faultAddr, userRSP uintptr, code abi.FaultCode) error {
	err := page.HandleFault(a.spt, a.frames, a.swap, faultAddr, userRSP, code, a.stackLimit, a.growthWindow)
	if err != nil {
		logError(a.log, "vm", "page fault unresolved", err, map[string]any{"vaddr": faultAddr, "rsp": userRSP})
	} else {
		logDebug(a.log, "vm", "page fault resolved", map[string]any{"vaddr": faultAddr})
	}
	return err
}

// AllocLazy registers an UNINIT page that becomes ANON on first touch.
func (a *AddressSpace) AllocLazy(vaddr uintptr, writable bool, init page.Initializer, aux any) error {
	return a.spt.AllocWithInitializer(vaddr, writable, init, aux)
}

// AllocStack eagerly allocates and maps a single zero-filled page, used for
// the initial user stack page at process start.
func (a *AddressSpace) AllocStack(vaddr uintptr) error {
	f, err := a.frames.Alloc(nil)
	if err != nil {
		return err
	}
	if err := a.spt.AllocAnon(vaddr, true, f); err != nil {
		a.frames.Free(f)
		return err
	}
	return a.mmu.Map(a.pml4, vaddr, f.PAddr, true)
}

// Mmap registers a file-backed lazy mapping.
func (a *AddressSpace) Mmap(vaddr uintptr, handle abi.FileHandle, offset int64, length int, writable bool, mappingID int) error {
	return page.Mmap(a.spt, vaddr, handle, offset, length, writable, mappingID)
}

// Munmap writes back dirty pages and tears down mappingID's entries.
// Calling Munmap twice for the same mappingID returns ErrNotMapped.
func (a *AddressSpace) Munmap(mappingID int) error {
	err := page.Munmap(a.spt, mappingID, a.swap)
	if page.IsNotMapped(err) {
		return wrapErr(NotMapped, fmt.Sprintf("mapping %d", mappingID), err)
	}
	if err != nil {
		logError(a.log, "mmap", "munmap write-back failed", err, map[string]any{"mapping_id": mappingID})
		return wrapErr(IoFailure, fmt.Sprintf("mapping %d write-back", mappingID), err)
	}
	logDebug(a.log, "mmap", "munmap complete", map[string]any{"mapping_id": mappingID})
	return nil
}

// Destroy tears down every page this address space owns, called when its
// thread exits.
func (a *AddressSpace) Destroy() {
	a.spt.Destroy(a.swap)
}
