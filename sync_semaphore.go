package kernel

import "container/list"

// Semaphore is a counting semaphore whose waiters block on the owning
// Kernel's scheduler rather than a Go channel, so that a blocked waiter is
// descheduled and later made Ready like any other blocked thread.
// up wakes the highest effective-priority waiter, not purely the
// longest-waiting one; no priority donation is performed for plain
// semaphores (only Lock donates).
type Semaphore struct {
	value   int
	waiters *list.List // of *Thread, registration order; searched by priority on up
}

// NewSemaphore creates a semaphore with the given initial value.
func NewSemaphore(value int) *Semaphore {
	return &Semaphore{value: value, waiters: list.New()}
}

// Value returns the current counter value (for diagnostics/tests only).
func (s *Semaphore) Value() int { return s.value }

// down blocks the calling thread t until the semaphore's value is positive,
// then decrements it. Must be called with the kernel's scheduler lock held
// (interrupts-disabled emulation); see Kernel.Down.
func (s *Semaphore) down(k *Kernel, t *Thread) {
	for s.value == 0 {
		t.status = Blocked
		s.waiters.PushBack(t)
		k.reschedule() // releases k.mu while parked
		k.mu.Lock()    // reacquired once scheduled back in, before rechecking
	}
	s.value--
}

// up wakes the waiter with the highest current effective priority (ties
// break FIFO, i.e. earliest registration), if any, then increments the
// value. Matches Pintos's "sema_up always increments" semantics: the waiter
// becomes Ready, it does not directly consume the unit from a handoff.
func (s *Semaphore) up(k *Kernel) {
	var woken *Thread
	if best := s.highestPriorityWaiter(); best != nil {
		s.waiters.Remove(best)
		woken = best.Value.(*Thread)
	}
	s.value++
	if woken != nil {
		k.unblockLocked(woken)
		k.preemptIfOutrankedLocked()
	}
}

// highestPriorityWaiter scans waiters for the element holding the thread
// with the highest effective priority, re-sorting on every call since
// donation can change a waiter's priority while it sleeps. Ties favor the
// earliest-registered (FIFO) waiter.
func (s *Semaphore) highestPriorityWaiter() *list.Element {
	var best *list.Element
	for e := s.waiters.Front(); e != nil; e = e.Next() {
		t := e.Value.(*Thread)
		if best == nil || t.effectivePriority > best.Value.(*Thread).effectivePriority {
			best = e
		}
	}
	return best
}
