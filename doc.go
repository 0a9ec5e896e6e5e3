// Package kernel provides the scheduling and virtual-memory core of a small
// teaching operating system: a single-CPU, preemptive, priority-scheduled
// thread executive, a tick-driven timed-sleep facility, lock/semaphore/condvar
// primitives with nested priority donation, and a supplemental page-table
// subsystem (lazy anonymous pages, file-backed mmap, second-chance eviction).
//
// # Architecture
//
// [Kernel] is the process-wide executive: it owns the ready list, the sleep
// list, and the destruction queue; the frame and swap tables are passed to
// each [AddressSpace] by the embedder. Everything that mutates
// those structures does so only while k.mu is held, standing in for
// "interrupts disabled" — the mutex is never held across a suspension point,
// mirroring real kernel discipline even though this implementation runs each
// [Thread] on its own goroutine, handed off one at a time via launch (a
// cooperative, channel-based stand-in for the out-of-scope trap-frame/iretq
// context switch — see launch.go). [Kernel.Tick] runs as interrupt context:
// it only wakes sleepers and requests a yield on return, never yielding or
// preempting directly; [Kernel.CheckPreempt] is the cooperative checkpoint a
// running thread calls to act on that request.
//
// [Thread] carries identity, scheduling state, donation state
// (Thread.donors, Thread.waitingOnLock), and an optional address space
// ([AddressSpace]) backed by the page subsystem in package page.
//
// # Synchronization
//
// [Semaphore] is the base primitive; [Lock] layers nested priority donation
// on top of it; [CondVar] is the Mesa-style condition
// variable used to wait on a Lock.
//
// # Page subsystem
//
// Package page implements the supplemental page table (SPTE), the frame
// table with second-chance (clock) eviction, the swap slot bitmap, and
// file-backed mmap/munmap, dispatched through the opaque hardware interfaces
// declared in package abi.
//
// # Logging
//
// The kernel core reports interesting events (donation changes, evictions,
// swap I/O, mmap write-back failures) through the pluggable [Logger]
// interface; [SetStructuredLogger] installs a sink, and logiface_adapter.go
// shows how to back it with a real structured-logging library.
//
// # Configuration
//
// [NewKernel] accepts [KernelOption] values (time slice, donation depth,
// priority range, swap device, stack limit) so tests can exercise different
// constants without patching global state.
//
// # Usage
//
//	k, err := kernel.NewKernel(kernel.WithSwapDevice(dev))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	go k.Start(ctx) // returns once ctx is cancelled or Shutdown is called
//	tid, err := k.Create("worker", kernel.PriDefault, worker, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	k.Tick() // drive the timer IRQ from a real timer goroutine, or a test
package kernel
