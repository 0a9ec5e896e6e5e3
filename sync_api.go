package kernel

// Down blocks the calling thread t on sem until a unit is available. This is
// the only entry point callers should use; it handles the interrupts-disabled
// emulation that Semaphore.down assumes.
func (k *Kernel) Down(sem *Semaphore, t *Thread) {
	k.mu.Lock()
	sem.down(k, t)
	k.mu.Unlock()
}

// Up releases one unit of sem, waking the highest effective-priority blocked
// thread (earliest registration on ties) if any.
func (k *Kernel) Up(sem *Semaphore) {
	k.mu.Lock()
	sem.up(k)
	k.mu.Unlock()
}

// Acquire blocks t until lock is free, donating priority to the holder (and
// transitively beyond) while waiting.
func (k *Kernel) Acquire(lock *Lock, t *Thread) {
	k.mu.Lock()
	donatingTo := lock.holder
	lock.acquire(k, t)
	k.mu.Unlock()
	if donatingTo != nil && donatingTo != t {
		logDebug(k.log, "donation", "priority donated", map[string]any{
			"donor_tid": int64(t.tid), "holder_tid": int64(donatingTo.tid), "priority": t.effectivePriority,
		})
	}
}

// Release gives up lock, unwinding any donation it caused.
func (k *Kernel) Release(lock *Lock, t *Thread) {
	k.mu.Lock()
	lock.release(k, t)
	k.mu.Unlock()
}

// Wait atomically releases lock and blocks t on cond, reacquiring lock
// before returning. The caller must already hold lock.
func (k *Kernel) Wait(cond *CondVar, lock *Lock, t *Thread) {
	k.mu.Lock()
	cond.wait(k, lock, t)
	k.mu.Unlock()
}

// Signal wakes the single highest effective-priority waiter on cond, if any.
func (k *Kernel) Signal(cond *CondVar) {
	k.mu.Lock()
	cond.signal(k)
	k.mu.Unlock()
}

// Broadcast wakes every waiter on cond, highest priority first.
func (k *Kernel) Broadcast(cond *CondVar) {
	k.mu.Lock()
	cond.broadcast(k)
	k.mu.Unlock()
}
