package kernel

import (
	"container/list"
	"sync/atomic"
)

// ThreadStatus is one of the four states a Thread may occupy.
type ThreadStatus int

const (
	// Running is the single thread currently executing.
	Running ThreadStatus = iota
	// Ready is waiting in the ready list for its turn to run.
	Ready
	// Blocked is off the ready list entirely, waiting on a lock, semaphore,
	// condition variable, or sleep deadline.
	Blocked
	// Dying has called exit and is waiting to be reaped by the next schedule.
	Dying
)

func (s ThreadStatus) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Ready:
		return "READY"
	case Blocked:
		return "BLOCKED"
	case Dying:
		return "DYING"
	default:
		return "UNKNOWN"
	}
}

// EntryFunc is a thread's entry point, matching the opaque user-program
// loader's calling convention.
type EntryFunc func(arg any)

// fileDescriptorTable is the dense array of open-file handles a thread owns.
// Entries 0 and 1 are reserved stdin/stdout sentinels.
type fileDescriptorTable struct {
	entries []any
	nextFD  int
	maxFD   int
}

func newFDT() *fileDescriptorTable {
	return &fileDescriptorTable{
		entries: make([]any, 2, 8), // 0, 1 reserved
		nextFD:  2,
		maxFD:   2,
	}
}

// Thread is one schedulable unit of execution.
type Thread struct {
	magic uint64 // stack-overflow sentinel, validated in CurrentThread

	tid  TID
	name string

	status ThreadStatus

	basePriority      int
	effectivePriority int

	// waitingOnLock is the Lock this thread is blocked acquiring, or nil.
	waitingOnLock *Lock
	// donors are threads currently donating their effective priority to this
	// thread because they're blocked on a lock it holds.
	donors map[TID]*Thread

	// wakeupTick is only meaningful while this thread is in the sleep list.
	wakeupTick int64
	sleepIndex int // index into the sleep heap, maintained by container/heap

	parent   *Thread
	children []*Thread

	forkDone *Semaphore
	waitDone *Semaphore
	freeDone *Semaphore

	addrSpace *AddressSpace

	fdt *fileDescriptorTable

	// listElem links this thread into the ready list (container/list), or
	// is nil when the thread isn't currently in it.
	listElem *list.Element

	entry EntryFunc
	arg   any

	// resumeCh is the baton channel used by launch (see launch.go) to hand
	// control to this thread's goroutine. Exactly one goroutine may hold the
	// baton at a time across the whole Kernel.
	resumeCh chan struct{}
	// exited is closed once the thread's goroutine has returned from entry
	// and called exit(), letting the reaper know it's safe to drop all
	// references.
	exited chan struct{}
}

var tidCounter atomic.Int64

func allocTID() TID {
	return TID(tidCounter.Add(1))
}

func newThread(name string, priority int, entry EntryFunc, arg any) *Thread {
	t := &Thread{
		magic:             threadMagic,
		tid:               allocTID(),
		name:              name,
		status:            Blocked, // caller (Create) unblocks it onto the ready list
		basePriority:      priority,
		effectivePriority: priority,
		donors:            make(map[TID]*Thread),
		fdt:               newFDT(),
		forkDone:          NewSemaphore(0),
		waitDone:          NewSemaphore(0),
		freeDone:          NewSemaphore(0),
		entry:             entry,
		arg:               arg,
		resumeCh:          make(chan struct{}),
		exited:            make(chan struct{}),
	}
	return t
}

// TID returns the thread's identity.
func (t *Thread) TID() TID { return t.tid }

// Name returns the thread's name, as given at creation.
func (t *Thread) Name() string { return t.name }

// Status returns the thread's current scheduling status.
func (t *Thread) Status() ThreadStatus { return t.status }

// BasePriority returns the thread's priority before donation.
func (t *Thread) BasePriority() int { return t.basePriority }

// EffectivePriority returns the thread's current scheduled priority,
// accounting for inherited donations.
func (t *Thread) EffectivePriority() int { return t.effectivePriority }

// checkMagic validates the stack-overflow sentinel. A
// corrupted magic word is fatal.
func (t *Thread) checkMagic() {
	if t.magic != threadMagic {
		invariantViolation("thread %d (%s): stack overflow sentinel corrupted", t.tid, t.name)
	}
}

// AddressSpace returns the thread's address space, or nil for kernel threads.
func (t *Thread) AddressSpace() *AddressSpace { return t.addrSpace }
