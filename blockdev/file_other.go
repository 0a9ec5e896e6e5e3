//go:build !linux && !darwin

package blockdev

import (
	"fmt"
	"os"
	"sync"

	"github.com/eduos-dev/kernel/abi"
)

// FileDevice is an abi.BlockDevice backed by a real file, addressed in
// fixed-size sectors via os.File.ReadAt/WriteAt. This is the portable
// fallback for platforms without golang.org/x/sys/unix Pread/Pwrite.
type FileDevice struct {
	mu   sync.Mutex
	f    *os.File
	size uint64
}

var _ abi.BlockDevice = (*FileDevice)(nil)

// Open opens (creating if necessary) path as a FileDevice with room for
// sectorCount sectors of abi.SectorSize bytes each.
func Open(path string, sectorCount uint64) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("blockdev: open %s: %w", path, err)
	}
	if err := f.Truncate(int64(sectorCount) * abi.SectorSize); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("blockdev: truncate %s: %w", path, err)
	}
	return &FileDevice{f: f, size: sectorCount}, nil
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
	n, err := d.f.ReadAt(buf, int64(sector)*abi.SectorSize)
	if err != nil {
		return fmt.Errorf("blockdev: read sector %d: %w", sector, err)
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
	n, err := d.f.WriteAt(buf, int64(sector)*abi.SectorSize)
	if err != nil {
		return fmt.Errorf("blockdev: write sector %d: %w", sector, err)
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
	return d.f.Sync()
}

// Close releases the underlying file.
func (d *FileDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.f.Close()
}
