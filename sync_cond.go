package kernel

// CondVar is a Mesa-style condition variable used together with a Lock:
// Wait atomically releases the lock and blocks, then re-acquires it before
// returning. Signal wakes the single highest effective-priority waiter, not
// necessarily the longest-waiting one, so waiter wakeup respects priority
// rather than plain FIFO.
type CondVar struct {
	waiters []*condWaiter
}

type condWaiter struct {
	t    *Thread
	sema *Semaphore
}

// NewCondVar creates an empty condition variable.
func NewCondVar() *CondVar { return &CondVar{} }

// wait releases lock, blocks t until signaled, then reacquires lock.
func (c *CondVar) wait(k *Kernel, lock *Lock, t *Thread) {
	w := &condWaiter{t: t, sema: NewSemaphore(0)}
	c.waiters = append(c.waiters, w)
	lock.release(k, t)
	w.sema.down(k, t)
	lock.acquire(k, t)
}

// signal wakes the single waiter with the highest effective priority. Ties
// break in FIFO (registration) order.
func (c *CondVar) signal(k *Kernel) {
	if len(c.waiters) == 0 {
		return
	}
	best := 0
	for i, w := range c.waiters[1:] {
		if w.t.effectivePriority > c.waiters[best].t.effectivePriority {
			best = i + 1
		}
	}
	w := c.waiters[best]
	c.waiters = append(c.waiters[:best], c.waiters[best+1:]...)
	w.sema.up(k)
}

// broadcast wakes every current waiter, highest priority first.
func (c *CondVar) broadcast(k *Kernel) {
	for len(c.waiters) > 0 {
		c.signal(k)
	}
}
