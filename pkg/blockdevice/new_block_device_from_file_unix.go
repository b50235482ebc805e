//go:build darwin || freebsd || linux

package blockdevice

import (
	"os"

	"github.com/buildbarn/bb-blockstream/pkg/util"

	"golang.org/x/sys/unix"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewBlockDeviceFromFile creates a BlockDevice that is backed by a
// regular file stored in a file system. The file is created if it does
// not exist, and is grown to the smallest number of sectors that is
// capable of holding minimumSizeBytes.
//
// The sector size and sector count are returned alongside the
// BlockDevice. The sector size is the preferred I/O size reported by
// fstat().
func NewBlockDeviceFromFile(path string, minimumSizeBytes int, zeroInitialize bool) (ClosableBlockDevice, int, int64, error) {
	flags := os.O_CREATE | os.O_RDWR
	if zeroInitialize {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o666)
	if err != nil {
		return nil, 0, 0, util.StatusWrapf(err, "Failed to open file %#v", path)
	}

	var stat unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &stat); err != nil {
		f.Close()
		return nil, 0, 0, util.StatusWrapf(err, "Failed to obtain size of file %#v", path)
	}
	sectorSizeBytes := int(stat.Blksize)
	sectorCount := int64((uint64(minimumSizeBytes) + uint64(sectorSizeBytes) - 1) / uint64(sectorSizeBytes))
	sizeBytes := int64(sectorSizeBytes) * sectorCount

	// Never shrink existing files, as they may contain data past
	// the requested size that belongs to another partition.
	if stat.Size < sizeBytes {
		if err := f.Truncate(sizeBytes); err != nil {
			f.Close()
			return nil, 0, 0, util.StatusWrapf(err, "Failed to truncate file %#v to %d bytes", path, sizeBytes)
		}
	} else {
		sectorCount = stat.Size / int64(sectorSizeBytes)
		sizeBytes = int64(sectorSizeBytes) * sectorCount
	}

	if sizeBytes == 0 {
		f.Close()
		return nil, 0, 0, status.Errorf(codes.InvalidArgument, "File %#v would be empty", path)
	}

	bd, err := newMemoryMappedBlockDevice(f, int(sizeBytes))
	if err != nil {
		f.Close()
		return nil, 0, 0, err
	}
	return bd, sectorSizeBytes, sectorCount, nil
}
