package kernel

import "github.com/eduos-dev/kernel/abi"

// kernelConfig holds configuration resolved from KernelOption values.
type kernelConfig struct {
	timeSlice         int
	donateMaxDepth    int
	priMin            int
	priMax            int
	priDefault        int
	userStackLimit    int
	stackGrowthWindow int
	swapDevice        abi.BlockDevice
	logger            Logger
}

func defaultKernelConfig() *kernelConfig {
	return &kernelConfig{
		timeSlice:         TimeSlice,
		donateMaxDepth:    DonateMaxDepth,
		priMin:            PriMin,
		priMax:            PriMax,
		priDefault:        PriDefault,
		userStackLimit:    UserStackLimit,
		stackGrowthWindow: 32 * PageSize,
		logger:            getGlobalLogger(),
	}
}

// KernelOption configures a Kernel instance at construction time.
type KernelOption interface {
	applyKernel(*kernelConfig) error
}

type kernelOptionFunc func(*kernelConfig) error

func (f kernelOptionFunc) applyKernel(cfg *kernelConfig) error { return f(cfg) }

// WithTimeSlice overrides the number of ticks a thread runs before being
// forced to yield.
func WithTimeSlice(ticks int) KernelOption {
	return kernelOptionFunc(func(cfg *kernelConfig) error {
		if ticks <= 0 {
			return wrapErr(InvalidArgument, "time slice must be positive", nil)
		}
		cfg.timeSlice = ticks
		return nil
	})
}

// WithDonateMaxDepth overrides the bound on the nested-donation walk
//.
func WithDonateMaxDepth(depth int) KernelOption {
	return kernelOptionFunc(func(cfg *kernelConfig) error {
		if depth <= 0 {
			return wrapErr(InvalidArgument, "donate max depth must be positive", nil)
		}
		cfg.donateMaxDepth = depth
		return nil
	})
}

// WithPriorityRange overrides the inclusive [min, max] priority band and the
// default assigned to threads that don't specify one.
func WithPriorityRange(min, max, def int) KernelOption {
	return kernelOptionFunc(func(cfg *kernelConfig) error {
		if min > max || def < min || def > max {
			return wrapErr(InvalidArgument, "invalid priority range", nil)
		}
		cfg.priMin = min
		cfg.priMax = max
		cfg.priDefault = def
		return nil
	})
}

// WithUserStackLimit overrides the stack-growth bound (in bytes) used by the
// fault path: a fault is treated as stack growth only if it lies at most this
// far below the stack pointer. The total size of a stack is not tracked, so
// this does not cap how far a stack grows over successive faults.
func WithUserStackLimit(bytes int) KernelOption {
	return kernelOptionFunc(func(cfg *kernelConfig) error {
		if bytes <= 0 {
			return wrapErr(InvalidArgument, "user stack limit must be positive", nil)
		}
		cfg.userStackLimit = bytes
		return nil
	})
}

// WithStackGrowthWindow overrides how far below the faulting stack pointer a
// fault is still considered a legitimate stack-growth request.
func WithStackGrowthWindow(bytes int) KernelOption {
	return kernelOptionFunc(func(cfg *kernelConfig) error {
		if bytes < 0 {
			return wrapErr(InvalidArgument, "stack growth window must be non-negative", nil)
		}
		cfg.stackGrowthWindow = bytes
		return nil
	})
}

// WithSwapDevice records dev as the kernel's swap device. The Kernel does
// not build a swap table from it: each AddressSpace swaps ANON pages to the
// SwapTable passed to NewAddressSpace.
func WithSwapDevice(dev abi.BlockDevice) KernelOption {
	return kernelOptionFunc(func(cfg *kernelConfig) error {
		if dev == nil {
			return wrapErr(InvalidArgument, "swap device must not be nil", nil)
		}
		cfg.swapDevice = dev
		return nil
	})
}

// WithLogger installs a structured logger used by this Kernel instance
// (independent of the package-level SetStructuredLogger). Without it, a
// Kernel uses the package-level logger in place when NewKernel is called.
func WithLogger(l Logger) KernelOption {
	return kernelOptionFunc(func(cfg *kernelConfig) error {
		if l == nil {
			l = NewNoOpLogger()
		}
		cfg.logger = l
		return nil
	})
}

// resolveKernelOptions applies KernelOption values over the defaults.
func resolveKernelOptions(opts []KernelOption) (*kernelConfig, error) {
	cfg := defaultKernelConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyKernel(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
