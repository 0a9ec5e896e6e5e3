package page

import (
	"fmt"
	"math/bits"
	"sync"

	"github.com/eduos-dev/kernel/abi"
)

// SwapTable tracks free/used slots on a swap block device, one slot per
// page. Occupancy is a bitmap of uint64 words so
// finding a free slot is a TrailingZeros64 scan rather than a linear
// bit-by-bit walk.
type SwapTable struct {
	mu     sync.Mutex
	dev    abi.BlockDevice
	bitmap []uint64 // 1 = free, 0 = used
	slots  int
}

// NewSwapTable sizes a swap table to the capacity of dev, one slot per
// abi.SectorsPerPage sectors.
func NewSwapTable(dev abi.BlockDevice) (*SwapTable, error) {
	sectors, err := dev.SizeSectors()
	if err != nil {
		return nil, fmt.Errorf("page: swap device size: %w", err)
	}
	slots := int(sectors / abi.SectorsPerPage)
	words := (slots + 63) / 64
	bm := make([]uint64, words)
	for i := range bm {
		bm[i] = ^uint64(0)
	}
	if rem := slots % 64; rem != 0 && words > 0 {
		bm[words-1] = (uint64(1) << rem) - 1
	}
	return &SwapTable{dev: dev, bitmap: bm, slots: slots}, nil
}

// Capacity returns the total number of swap slots.
func (st *SwapTable) Capacity() int { return st.slots }

// alloc finds and claims the lowest-numbered free slot.
func (st *SwapTable) alloc() (int, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for w, word := range st.bitmap {
		if word == 0 {
			continue
		}
		bit := bits.TrailingZeros64(word)
		slot := w*64 + bit
		if slot >= st.slots {
			continue
		}
		st.bitmap[w] &^= 1 << bit
		return slot, nil
	}
	return -1, fmt.Errorf("%w: no free swap slots", errSwapExhausted)
}

// Free releases slot back to the pool.
func (st *SwapTable) Free(slot int) {
	if slot < 0 {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.bitmap[slot/64] |= 1 << uint(slot%64)
}

// used returns the number of currently-occupied slots: the slot count minus
// the free slots counted by OnesCount64 over each free-bitmap word.
func (st *SwapTable) used() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	free := 0
	for _, word := range st.bitmap {
		free += bits.OnesCount64(word)
	}
	return st.slots - free
}

// SwapOut writes data (one page) to a freshly allocated slot and returns
// its slot number.
func (st *SwapTable) SwapOut(data []byte) (int, error) {
	if len(data) != abi.PageSize {
		return -1, fmt.Errorf("page: swap out: need %d bytes, got %d", abi.PageSize, len(data))
	}
	slot, err := st.alloc()
	if err != nil {
		return -1, err
	}
	base := uint64(slot) * abi.SectorsPerPage
	buf := make([]byte, abi.SectorSize)
	for i := 0; i < abi.SectorsPerPage; i++ {
		copy(buf, data[i*abi.SectorSize:(i+1)*abi.SectorSize])
		if err := st.dev.WriteSector(base+uint64(i), buf); err != nil {
			st.Free(slot)
			return -1, fmt.Errorf("%w: %v", errIoFailure, err)
		}
	}
	return slot, nil
}

// SwapIn reads slot's page back into dst and frees the slot.
func (st *SwapTable) SwapIn(slot int, dst []byte) error {
	if len(dst) != abi.PageSize {
		return fmt.Errorf("page: swap in: need %d bytes, got %d", abi.PageSize, len(dst))
	}
	base := uint64(slot) * abi.SectorsPerPage
	buf := make([]byte, abi.SectorSize)
	for i := 0; i < abi.SectorsPerPage; i++ {
		if err := st.dev.ReadSector(base+uint64(i), buf); err != nil {
			return fmt.Errorf("%w: %v", errIoFailure, err)
		}
		copy(dst[i*abi.SectorSize:(i+1)*abi.SectorSize], buf)
	}
	st.Free(slot)
	return nil
}
