package blockdev

import (
	"fmt"
	"sync"

	"github.com/eduos-dev/kernel/abi"
)

// MemDevice is an in-memory abi.BlockDevice, useful for tests that exercise
// swap round-tripping without touching the filesystem.
type MemDevice struct {
	mu   sync.Mutex
	data []byte
}

var _ abi.BlockDevice = (*MemDevice)(nil)

// NewMemDevice allocates an in-memory device of sectorCount sectors.
func NewMemDevice(sectorCount uint64) *MemDevice {
	return &MemDevice{data: make([]byte, sectorCount*abi.SectorSize)}
}

func (d *MemDevice) SizeSectors() (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return uint64(len(d.data)) / abi.SectorSize, nil
}

func (d *MemDevice) ReadSector(sector uint64, buf []byte) error {
	if len(buf) != abi.SectorSize {
		return fmt.Errorf("blockdev: buf must be %d bytes, got %d", abi.SectorSize, len(buf))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	off := sector * abi.SectorSize
	if off+abi.SectorSize > uint64(len(d.data)) {
		return fmt.Errorf("blockdev: sector %d out of range", sector)
	}
	copy(buf, d.data[off:off+abi.SectorSize])
	return nil
}

func (d *MemDevice) WriteSector(sector uint64, buf []byte) error {
	if len(buf) != abi.SectorSize {
		return fmt.Errorf("blockdev: buf must be %d bytes, got %d", abi.SectorSize, len(buf))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	off := sector * abi.SectorSize
	if off+abi.SectorSize > uint64(len(d.data)) {
		return fmt.Errorf("blockdev: sector %d out of range", sector)
	}
	copy(d.data[off:off+abi.SectorSize], buf)
	return nil
}
