//go:build freebsd

package blockdevice

import (
	"os"
	"unsafe"

	"github.com/buildbarn/bb-blockstream/pkg/util"

	"golang.org/x/sys/unix"
)

// NewBlockDeviceFromDevice opens a GEOM provider, such as /dev/da0.
// Reads are performed through a memory map of the entire provider.
//
// The sector size and the number of sectors are obtained through the
// DIOCGSECTORSIZE and DIOCGMEDIASIZE ioctls.
func NewBlockDeviceFromDevice(path string) (ClosableBlockDevice, int, int64, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, 0, 0, util.StatusWrapf(err, "Failed to open device node %#v", path)
	}

	var sectorSizeBytes uint32
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), unix.DIOCGSECTORSIZE, uintptr(unsafe.Pointer(&sectorSizeBytes))); errno != 0 {
		f.Close()
		return nil, 0, 0, util.StatusWrapf(errno, "Failed to obtain sector size of device node %#v", path)
	}
	var mediaSizeBytes int64
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), unix.DIOCGMEDIASIZE, uintptr(unsafe.Pointer(&mediaSizeBytes))); errno != 0 {
		f.Close()
		return nil, 0, 0, util.StatusWrapf(errno, "Failed to obtain media size of device node %#v", path)
	}

	bd, err := newMemoryMappedBlockDevice(f, int(mediaSizeBytes))
	if err != nil {
		f.Close()
		return nil, 0, 0, err
	}
	return bd, int(sectorSizeBytes), mediaSizeBytes / int64(sectorSizeBytes), nil
}
