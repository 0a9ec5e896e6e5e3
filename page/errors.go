package page

import "errors"

// Sentinel errors for the page subsystem, following the same sentinel-var
// idiom as the kernel package's KernelError (this package stays leaf-level
// and does not import kernel, so it can't reuse that type directly).
var (
	errSwapExhausted = errors.New("page: swap exhausted")
	errIoFailure     = errors.New("page: block device i/o failure")
	errNotMapped     = errors.New("page: not mapped")
)

// IsSwapExhausted reports whether err indicates the swap device had no
// free slots left.
func IsSwapExhausted(err error) bool { return errors.Is(err, errSwapExhausted) }

// IsIOFailure reports whether err indicates the backing block device
// returned an error.
func IsIOFailure(err error) bool { return errors.Is(err, errIoFailure) }

// IsNotMapped reports whether err indicates an operation (e.g. Munmap)
// referenced a mapping ID or vaddr with no corresponding entry.
func IsNotMapped(err error) bool { return errors.Is(err, errNotMapped) }
