package kernel

// Tick advances the kernel's notion of time by one tick: it accounts the
// tick to the appropriate per-class counter, wakes any threads whose sleep
// deadline has arrived, and, once TimeSlice ticks have elapsed, requests a
// yield on the next safe point rather than yielding directly. Per spec
// §4.1/§5, interrupt context never calls preempt_if_outranked or blocks; it
// only unblocks sleepers and sets the yield-on-return flag that a running
// thread's own CheckPreempt call later acts on.
//
// Tick is driven by an external timer source; callers invoke it from
// whatever periodic source they have (a time.Ticker in production, a
// manual loop in tests).
func (k *Kernel) Tick() {
	k.mu.Lock()
	k.ticks++
	now := k.ticks

	switch k.current {
	case k.idle:
		k.idleTicks++
	default:
		k.kernelTicks++
		k.ticksSinceYield++
		if k.ticksSinceYield >= k.cfg.timeSlice {
			k.yieldRequested = true
		}
	}

	woken := k.sleeping.wakeSweep(now)
	for _, t := range woken {
		k.unblockLocked(t)
	}
	k.mu.Unlock()

	for _, t := range woken {
		logDebug(k.log, "sleep", "thread woken", map[string]any{"tid": int64(t.tid), "tick": now})
	}
}

// Ticks returns the total number of ticks observed so far.
func (k *Kernel) Ticks() int64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.ticks
}

// SleepUntil blocks t until absolute tick wakeupTick arrives.
// A wakeupTick already in the past returns immediately without blocking.
func (k *Kernel) SleepUntil(t *Thread, wakeupTick int64) {
	k.mu.Lock()
	if wakeupTick <= k.ticks {
		k.mu.Unlock()
		return
	}
	k.sleeping.add(t, wakeupTick)
	logDebug(k.log, "sleep", "thread sleeping", map[string]any{"tid": int64(t.tid), "wakeup_tick": wakeupTick})
	k.block(t)
}
