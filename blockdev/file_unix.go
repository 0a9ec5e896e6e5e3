//go:build linux || darwin

// Package blockdev provides concrete abi.BlockDevice backends. FileDevice
// (this file, for linux/darwin) backs the swap device with a real file,
// reading and writing sectors via golang.org/x/sys/unix Pread/Pwrite.
package blockdev

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/eduos-dev/kernel/abi"
)

// FileDevice is an abi.BlockDevice backed by a real file, addressed in
// fixed-size sectors via direct unix.Pread/unix.Pwrite calls (no buffering).
type FileDevice struct {
	mu   sync.Mutex
	fd   int
	size uint64 // total sectors
}

var _ abi.BlockDevice = (*FileDevice)(nil)

// Open opens (creating if necessary) path as a FileDevice with room for
// sectorCount sectors of abi.SectorSize bytes each.
func Open(path string, sectorCount uint64) (*FileDevice, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT, 0o600)
	if err != nil {
		return nil, fmt.Errorf("blockdev: open %s: %w", path, err)
	}
	want := int64(sectorCount) * abi.SectorSize
	if err := unix.Ftruncate(fd, want); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("blockdev: truncate %s: %w", path, err)
	}
	return &FileDevice{fd: fd, size: sectorCount}, nil
}

// SizeSectors returns the total number of addressable sectors.
func (d *FileDevice) SizeSectors() (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.size, nil
}

// ReadSector reads exactly abi.SectorSize bytes from the given sector into buf.
func (d *FileDevice) ReadSector(sector uint64, buf []byte) error {
	if len(buf) != abi.SectorSize {
		return fmt.Errorf("blockdev: buf must be %d bytes, got %d", abi.SectorSize, len(buf))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if sector >= d.size {
		return fmt.Errorf("blockdev: sector %d out of range (%d total)", sector, d.size)
	}
	off := int64(sector) * abi.SectorSize
	n, err := unix.Pread(d.fd, buf, off)
	if err != nil {
		return fmt.Errorf("blockdev: pread sector %d: %w", sector, err)
	}
	if n != abi.SectorSize {
		return fmt.Errorf("blockdev: short read on sector %d: got %d bytes", sector, n)
	}
	return nil
}

// WriteSector writes exactly abi.SectorSize bytes from buf to the given sector.
func (d *FileDevice) WriteSector(sector uint64, buf []byte) error {
	if len(buf) != abi.SectorSize {
		return fmt.Errorf("blockdev: buf must be %d bytes, got %d", abi.SectorSize, len(buf))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if sector >= d.size {
		return fmt.Errorf("blockdev: sector %d out of range (%d total)", sector, d.size)
	}
	off := int64(sector) * abi.SectorSize
	n, err := unix.Pwrite(d.fd, buf, off)
	if err != nil {
		return fmt.Errorf("blockdev: pwrite sector %d: %w", sector, err)
	}
	if n != abi.SectorSize {
		return fmt.Errorf("blockdev: short write on sector %d: wrote %d bytes", sector, n)
	}
	return nil
}

// Sync flushes the device to stable storage.
func (d *FileDevice) Sync() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return unix.Fsync(d.fd)
}

// Close releases the underlying file descriptor.
func (d *FileDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return unix.Close(d.fd)
}
