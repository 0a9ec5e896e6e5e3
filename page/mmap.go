package page

import (
	"context"
	"fmt"

	"github.com/eduos-dev/kernel/abi"
)

// fileInitializer reads a FILE-backed page's content from its backing file
// at fault time, per the FileBacking's Offset/ReadBytes.
func fileInitializer(dst []byte, aux any) error {
	fb := aux.(*FileBacking)
	f, err := fb.Handle.Reopen(context.Background())
	if err != nil {
		return fmt.Errorf("%w: reopen: %v", errIoFailure, err)
	}
	defer f.Close()
	if _, err := f.Seek(fb.Offset, 0); err != nil {
		return fmt.Errorf("%w: seek: %v", errIoFailure, err)
	}
	n, err := f.Read(dst[:fb.ReadBytes])
	if err != nil && n < fb.ReadBytes {
		return fmt.Errorf("%w: read: %v", errIoFailure, err)
	}
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
	return nil
}

// Mmap registers a file-backed mapping covering length bytes starting at
// vaddr, split into page-sized lazily-loaded entries.
// mappingID groups the pages for a later Munmap call.
func Mmap(spt *SPT, vaddr uintptr, handle abi.FileHandle, offset int64, length int, writable bool, mappingID int) error {
	if vaddr%abi.PageSize != 0 {
		return fmt.Errorf("page: mmap: vaddr %#x not page-aligned", vaddr)
	}
	pages := (length + abi.PageSize - 1) / abi.PageSize
	for i := 0; i < pages; i++ {
		pageVAddr := vaddr + uintptr(i*abi.PageSize)
		remaining := length - i*abi.PageSize
		readBytes := abi.PageSize
		if remaining < abi.PageSize {
			readBytes = remaining
		}
		fb := FileBacking{
			Handle:    handle,
			Offset:    offset + int64(i*abi.PageSize),
			ReadBytes: readBytes,
			Writable:  writable,
			MappingID: mappingID,
		}
		if err := spt.AllocFileBacked(pageVAddr, writable, fb, fileInitializer); err != nil {
			return fmt.Errorf("page: mmap: page %d: %w", i, err)
		}
	}
	spt.registerMapping(mappingID)
	return nil
}

// Munmap writes back every dirty page of mappingID to its backing file
//, then removes the mapping's entries
// from spt. Calling Munmap a second time with the same mappingID fails
// with errNotMapped.
func Munmap(spt *SPT, mappingID int, st *SwapTable) error {
	if !spt.takeMapping(mappingID) {
		return fmt.Errorf("page: munmap: mapping %d: %w", mappingID, errNotMapped)
	}
	entries := spt.entriesWithMapping(mappingID)
	for _, e := range entries {
		if e.Resident() && e.Writable && spt.mmu.IsDirty(spt.pml4, e.VAddr) {
			f, err := e.file.Handle.Reopen(context.Background())
			if err != nil {
				return fmt.Errorf("%w: reopen for writeback: %v", errIoFailure, err)
			}
			if _, err := f.Seek(e.file.Offset, 0); err != nil {
				_ = f.Close()
				return fmt.Errorf("%w: seek for writeback: %v", errIoFailure, err)
			}
			if _, err := f.Write(e.frame.Data[:e.file.ReadBytes]); err != nil {
				_ = f.Close()
				return fmt.Errorf("%w: write back: %v", errIoFailure, err)
			}
			_ = f.Close()
		}
		spt.Remove(e.VAddr, st)
	}
	return nil
}
