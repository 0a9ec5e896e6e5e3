package kernel

import "github.com/eduos-dev/kernel/abi"

// PageSize, SectorSize, and SectorsPerPage live in package abi since the
// page subsystem needs them independently of any Kernel instance; they are
// re-exported here for convenience.
const (
	// PageSize is the size in bytes of one virtual/physical page.
	PageSize = abi.PageSize
	// TimeSlice is the default number of ticks a thread runs before a
	// forced yield is requested.
	TimeSlice = 4
	// DonateMaxDepth bounds the nested priority-donation walk.
	DonateMaxDepth = 8
	// PriMin is the lowest legal thread priority.
	PriMin = 0
	// PriMax is the highest legal thread priority.
	PriMax = 63
	// PriDefault is the priority assigned when none is specified.
	PriDefault = 31
	// UserStackLimit is the default stack-growth bound (see WithUserStackLimit).
	UserStackLimit = 1 << 20 // 1 MiB
)

// TID is a monotonically-allocated positive thread identifier. 0 is never valid.
type TID int64

// TidError is returned by Create on allocation failure.
const TidError TID = -1

// threadMagic is the stack-overflow sentinel written at thread creation and
// checked on every CurrentThread call.
const threadMagic uint64 = 0xCD6ABF4B36C41E5D
