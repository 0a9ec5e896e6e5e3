// Package page implements the supplemental page table, frame table, and
// swap subsystem for a single address space: lazy loading of not-yet-
// resident pages, second-chance frame eviction, anonymous swap, and
// file-backed mmap. It depends only on abi, never on the
// scheduler package, so the scheduler can embed an AddressSpace without an
// import cycle.
package page

import "github.com/eduos-dev/kernel/abi"

// Type classifies what backs a supplemental page table entry.
type Type uint8

const (
	// Uninit pages have never been loaded; Initializer produces their
	// content the first time they're faulted in.
	Uninit Type = iota
	// Anon pages are backed by swap once evicted, and by the zero page
	// (or nothing, pre-fault) otherwise.
	Anon
	// File pages are backed by a file region; eviction writes back only if
	// the page was modified.
	File
)

func (t Type) String() string {
	switch t {
	case Uninit:
		return "UNINIT"
	case Anon:
		return "ANON"
	case File:
		return "FILE"
	default:
		return "UNKNOWN"
	}
}

// Initializer lazily produces a page's initial content the first time it's
// faulted in, writing PageSize bytes into dst. It is how UNINIT entries
// become ANON or FILE entries on first touch.
type Initializer func(dst []byte, aux any) error

// FileBacking describes the file region a FILE-type entry maps.
type FileBacking struct {
	Handle     abi.FileHandle
	Offset     int64
	ReadBytes  int  // bytes to read from Handle; the rest of the page is zero-filled
	Writable   bool
	MappingID  int // groups pages created by one Mmap call, for Munmap
}

// SPTE is one supplemental page table entry: everything known about a
// single page of virtual memory that isn't encoded in the hardware page
// table itself.
type SPTE struct {
	VAddr    uintptr
	Typ      Type
	Writable bool

	// frame is non-nil while the page is resident in physical memory.
	frame *Frame

	// swapSlot is >=0 while an ANON page's content lives on the swap
	// device instead of in a frame or the zero page.
	swapSlot int

	init    Initializer
	initAux any

	file *FileBacking
}

// Resident reports whether the entry currently occupies a physical frame.
func (e *SPTE) Resident() bool { return e.frame != nil }

// Swapped reports whether an ANON entry's content currently lives on swap.
func (e *SPTE) Swapped() bool { return e.swapSlot >= 0 }

func newEntry(vaddr uintptr, typ Type, writable bool) *SPTE {
	return &SPTE{VAddr: vaddr, Typ: typ, Writable: writable, swapSlot: -1}
}
