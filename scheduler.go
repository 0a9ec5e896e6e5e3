package kernel

import (
	"context"
	"sync"
)

// Kernel is the process-wide scheduling executive: one ready list, one
// sleep list, a single "current" thread, and the interrupts-disabled
// discipline emulated here by holding mu across any mutation
// of scheduler state. Call sites that would run "with interrupts disabled"
// in the original design instead hold mu for the same critical section.
type Kernel struct {
	mu sync.Mutex

	cfg   *kernelConfig
	state *fastState

	ready    *readyList
	sleeping *sleepList

	current *Thread
	idle    *Thread
	all     map[TID]*Thread

	destructionQueue []*Thread

	ticks       int64
	idleTicks   int64
	kernelTicks int64
	userTicks   int64

	// ticksSinceYield counts ticks the current thread has run since it was
	// last scheduled in, reset on every switch in reschedule. Tick compares
	// this against cfg.timeSlice, mirroring Pintos's per-run thread_ticks
	// rather than a cumulative counter that would truncate a thread's first
	// slice if it started running partway through a period.
	ticksSinceYield int

	// yieldRequested is Tick's "yield on return" flag (spec §4.1/§4.2): the
	// interrupt handler never yields directly, it only requests that the
	// currently running thread yield at its next safe point. Cleared and
	// acted on by CheckPreempt, called cooperatively by running threads.
	yieldRequested bool

	log Logger

	shutdownCh chan struct{}
}

// NewKernel constructs a Kernel in the Uninit state; call Start to begin
// running threads.
func NewKernel(opts ...KernelOption) (*Kernel, error) {
	cfg, err := resolveKernelOptions(opts)
	if err != nil {
		return nil, err
	}
	k := &Kernel{
		cfg:        cfg,
		state:      newFastState(),
		ready:      newReadyList(),
		sleeping:   newSleepList(),
		all:        make(map[TID]*Thread),
		log:        cfg.logger,
		shutdownCh: make(chan struct{}),
	}
	return k, nil
}

// Start transitions the kernel to Running, spawns the idle thread, and
// begins executing. It returns once the kernel has been asked to shut down
// or ctx is cancelled.
func (k *Kernel) Start(ctx context.Context) error {
	if !k.state.TryTransition(StateUninit, StateRunning) {
		return wrapErr(InvalidArgument, "kernel: Start called more than once", nil)
	}

	k.mu.Lock()
	idle := newThread("idle", PriMin, func(any) {
		for k.state.IsRunning() {
			k.mu.Lock()
			k.reschedule()
		}
	}, nil)
	k.idle = idle
	k.all[idle.tid] = idle
	k.spawn(idle)
	idle.status = Running
	k.current = idle
	close(idle.resumeCh)
	idle.resumeCh = make(chan struct{})
	k.mu.Unlock()

	select {
	case <-ctx.Done():
	case <-k.shutdownCh:
	}
	k.state.TryTransition(StateRunning, StateTerminating)
	return nil
}

// Shutdown requests the kernel stop scheduling new work. It does not force
// currently-running goroutines to exit.
func (k *Kernel) Shutdown(ctx context.Context) error {
	if k.state.TryTransition(StateRunning, StateTerminating) {
		close(k.shutdownCh)
	}
	k.state.Store(StateTerminated)
	return nil
}

// Create allocates a new thread, places it on the ready list, and returns
// its TID. The thread does not run until scheduled.
func (k *Kernel) Create(name string, priority int, entry EntryFunc, arg any) (TID, error) {
	if priority < k.cfg.priMin || priority > k.cfg.priMax {
		return TidError, wrapErr(InvalidArgument, "kernel: priority out of range", nil)
	}
	t := newThread(name, priority, entry, arg)

	k.mu.Lock()
	k.all[t.tid] = t
	k.spawn(t)
	k.unblockLocked(t)
	k.preemptIfOutrankedLocked()
	k.mu.Unlock()

	logDebug(k.log, "scheduler", "thread created", map[string]any{"name": name, "priority": priority})
	return t.tid, nil
}

// CurrentThread returns the thread occupying Running, validating its stack
// sentinel.
func (k *Kernel) CurrentThread() *Thread {
	k.mu.Lock()
	t := k.current
	k.mu.Unlock()
	if t != nil {
		t.checkMagic()
	}
	return t
}

// Yield voluntarily gives up the processor; t returns to the ready list at
// its current effective priority and control passes to the next runnable
// thread.
func (k *Kernel) Yield(t *Thread) {
	k.mu.Lock()
	t.status = Ready
	k.ready.insert(t)
	k.reschedule()
}

// block marks t Blocked and schedules away from it. Callers (semaphore/lock/
// condvar/sleep) must already hold k.mu.
func (k *Kernel) block(t *Thread) {
	t.status = Blocked
	k.reschedule()
}

// unblock moves t from Blocked to Ready, preempting the current thread if
// t now outranks it. Must be called without mu held; callers that already
// hold mu use unblockLocked instead.
func (k *Kernel) unblock(t *Thread) {
	k.mu.Lock()
	k.unblockLocked(t)
	k.preemptIfOutrankedLocked()
	k.mu.Unlock()
}

func (k *Kernel) unblockLocked(t *Thread) {
	t.status = Ready
	k.ready.insert(t)
}

// preemptIfOutrankedLocked yields the current thread immediately if the
// ready list's head now has strictly higher effective priority. Must be
// called with k.mu held; it releases mu via reschedule if a switch happens.
func (k *Kernel) preemptIfOutrankedLocked() {
	cur := k.current
	head := k.ready.front()
	if cur == nil || head == nil || head == cur {
		return
	}
	if head.effectivePriority > cur.effectivePriority {
		cur.status = Ready
		k.ready.insert(cur)
		k.reschedule()
		k.mu.Lock()
	}
}

// CheckPreempt is the cooperative counterpart to the tick handler's
// "yield on return" request: a running thread calls this at its own safe
// points (e.g. between iterations of CPU-bound work) to actually yield if
// either its time slice has expired or a higher-priority thread is now
// ready. Unlike preemptIfOutrankedLocked, this is always invoked by t's
// own goroutine, so the resulting Yield is safe to block on.
func (k *Kernel) CheckPreempt(t *Thread) {
	k.mu.Lock()
	yield := k.yieldRequested
	k.yieldRequested = false
	if !yield {
		if head := k.ready.front(); head != nil && head.effectivePriority > t.effectivePriority {
			yield = true
		}
	}
	k.mu.Unlock()
	if yield {
		k.Yield(t)
	}
}

// SetPriority changes t's base priority. If t is not currently
// the beneficiary of any donation exceeding the new base, its effective
// priority follows immediately; otherwise the donation continues to apply
// until released.
func (k *Kernel) SetPriority(t *Thread, priority int) {
	k.mu.Lock()
	t.basePriority = priority
	refresh(k.ready, t)
	k.preemptIfOutrankedLocked()
	k.mu.Unlock()
}

// exit transitions t to Dying, queues it for reaping by the next schedule,
// and switches away permanently.
func (k *Kernel) exit(t *Thread) {
	logDebug(k.log, "scheduler", "thread exiting", map[string]any{"tid": int64(t.tid), "name": t.name})
	k.mu.Lock()
	t.status = Dying
	k.destructionQueue = append(k.destructionQueue, t)
	close(t.exited)
	t.freeDone.up(k)
	k.reschedule()
}

// reschedule picks the next thread to run and switches to it, first reaping
// every Dying thread in the destruction queue (including one that queued
// itself in exit just before this call). Must be called with k.mu held; it
// is released as part of launch and is not held when reschedule returns.
func (k *Kernel) reschedule() {
	k.reapDestructionQueue()

	prev := k.current
	next := k.ready.popFront()
	if next == nil {
		next = k.idle
	}
	if next == prev {
		k.mu.Unlock()
		return
	}
	next.status = Running
	k.ticksSinceYield = 0
	launch(k, prev, next)
}

func (k *Kernel) reapDestructionQueue() {
	for _, t := range k.destructionQueue {
		delete(k.all, t.tid)
	}
	k.destructionQueue = k.destructionQueue[:0]
}

// threadCount reports how many threads the kernel still tracks (running,
// ready, blocked, or dying-but-not-yet-reaped), for diagnostics and tests.
func (k *Kernel) threadCount() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.all)
}
