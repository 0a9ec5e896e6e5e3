package kernel

import "sync/atomic"

// KernelState is the lifecycle of the executive itself (distinct from any
// individual Thread's status — see ThreadStatus in thread.go).
//
// State Machine:
//
//	StateUninit (0) → StateRunning (1)        [Start()]
//	StateRunning (1) → StateTerminating (2)   [Shutdown(), or Start() returning]
//	StateTerminating (2) → StateTerminated (3) [end of Shutdown()]
//
// Moves out of Uninit and Running use TryTransition (CAS), so the lifecycle
// never goes backwards and stays safe to poll from the tick handler without
// a lock.
type KernelState uint32

const (
	// StateUninit indicates the kernel has been constructed but Start has not run.
	StateUninit KernelState = 0
	// StateRunning indicates the scheduler is active.
	StateRunning KernelState = 1
	// StateTerminating indicates Shutdown has been requested but threads remain.
	StateTerminating KernelState = 2
	// StateTerminated indicates Shutdown has completed. Threads still running are
	// not forced to exit.
	StateTerminated KernelState = 3
)

func (s KernelState) String() string {
	switch s {
	case StateUninit:
		return "Uninit"
	case StateRunning:
		return "Running"
	case StateTerminating:
		return "Terminating"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// fastState is a lock-free lifecycle state machine: pure CAS transitions, no
// mutex, safe to read from the tick handler (interrupt context) without
// blocking.
type fastState struct {
	v atomic.Uint32
}

func newFastState() *fastState {
	s := &fastState{}
	s.v.Store(uint32(StateUninit))
	return s
}

func (s *fastState) Load() KernelState { return KernelState(s.v.Load()) }

func (s *fastState) Store(state KernelState) { s.v.Store(uint32(state)) }

// TryTransition attempts an atomic from->to move, returning whether it
// succeeded. Moves that do not go forward in the lifecycle always fail.
func (s *fastState) TryTransition(from, to KernelState) bool {
	if to <= from {
		return false
	}
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}

// IsRunning reports whether the kernel is actively scheduling threads.
func (s *fastState) IsRunning() bool { return s.Load() == StateRunning }
