package blockdevice

import (
	"io"
	"syscall"

	"github.com/bits-and-blooms/bitset"
)

// MemoryBlockDevice is a BlockDevice that is backed by a byte slice. It
// keeps track of which sectors have been written since the last call to
// Sync(), making it possible to observe exactly which parts of the
// device were modified by a consumer.
type MemoryBlockDevice struct {
	data            []byte
	sectorSizeBytes int
	unsynced        bitset.BitSet
}

var _ BlockDevice = (*MemoryBlockDevice)(nil)

// NewMemoryBlockDevice creates a zero initialized BlockDevice of a
// given size that is stored in memory.
func NewMemoryBlockDevice(sizeBytes, sectorSizeBytes int) *MemoryBlockDevice {
	if sectorSizeBytes <= 0 || sizeBytes%sectorSizeBytes != 0 {
		panic("Size must be a multiple of a positive sector size")
	}
	return &MemoryBlockDevice{
		data:            make([]byte, sizeBytes),
		sectorSizeBytes: sectorSizeBytes,
	}
}

// GetSectorCount returns the number of sectors of the device.
func (bd *MemoryBlockDevice) GetSectorCount() int64 {
	return int64(len(bd.data) / bd.sectorSizeBytes)
}

// ReadAt copies data out of the device.
func (bd *MemoryBlockDevice) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, syscall.EINVAL
	}
	if off >= int64(len(bd.data)) {
		return 0, io.EOF
	}
	n := copy(p, bd.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt copies data into the device. Writes that extend past the end
// of the device are truncated and fail with io.EOF.
func (bd *MemoryBlockDevice) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, syscall.EINVAL
	}
	if off >= int64(len(bd.data)) {
		return 0, io.EOF
	}
	n := copy(bd.data[off:], p)
	if n > 0 {
		first := off / int64(bd.sectorSizeBytes)
		last := (off + int64(n) - 1) / int64(bd.sectorSizeBytes)
		for sector := first; sector <= last; sector++ {
			bd.unsynced.Set(uint(sector))
		}
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Sync marks all sectors as persisted.
func (bd *MemoryBlockDevice) Sync() error {
	bd.unsynced.ClearAll()
	return nil
}

// GetUnsyncedSectors returns the indices of the sectors that have been
// written since the last call to Sync(), in increasing order.
func (bd *MemoryBlockDevice) GetUnsyncedSectors() []int64 {
	sectors := []int64{}
	for i, ok := bd.unsynced.NextSet(0); ok; i, ok = bd.unsynced.NextSet(i + 1) {
		sectors = append(sectors, int64(i))
	}
	return sectors
}

// GetContents returns the raw contents of the device. The slice must
// not be modified.
func (bd *MemoryBlockDevice) GetContents() []byte {
	return bd.data
}
