package kernel

// Lock is a binary semaphore with a notion of ownership, supporting nested
// priority donation. At most one thread holds a Lock at a time; a thread
// that blocks acquiring a held Lock donates its effective priority to the
// holder, and that donation chains through any lock the holder is itself
// blocked on, up to the kernel's configured donation depth.
type Lock struct {
	sema   *Semaphore
	holder *Thread
}

// NewLock creates an unheld lock.
func NewLock() *Lock {
	return &Lock{sema: NewSemaphore(1)}
}

// Holder returns the thread currently holding the lock, or nil.
func (l *Lock) Holder() *Thread { return l.holder }

// acquire blocks t until the lock is free, donating priority to the current
// holder (and transitively, its own blocker) while waiting.
func (l *Lock) acquire(k *Kernel, t *Thread) {
	if l.holder != nil && l.holder != t {
		t.waitingOnLock = l
		addDonor(k.ready, l.holder, t, k.cfg.donateMaxDepth)
	}
	l.sema.down(k, t)
	t.waitingOnLock = nil
	l.holder = t
}

// release gives up ownership, waking the next waiter (if any) and unwinding
// any donation t received on account of this lock.
func (l *Lock) release(k *Kernel, t *Thread) {
	l.holder = nil
	// Drop every donor whose wait was specifically for this lock; a thread
	// may hold multiple locks and receive donations for each independently,
	// so only donors blocked on *this* lock unwind here.
	for tid, d := range t.donors {
		if d.waitingOnLock == l {
			delete(t.donors, tid)
		}
	}
	recomputeAfterRelease(k.ready, t)
	l.sema.up(k)
}

// heldBy reports whether t currently holds the lock (for assertions, mirrors
// Pintos's lock_held_by_current_thread).
func (l *Lock) heldBy(t *Thread) bool {
	return l.holder == t
}
