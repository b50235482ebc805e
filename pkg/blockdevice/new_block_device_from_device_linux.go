//go:build linux

package blockdevice

import (
	"os"
	"unsafe"

	"github.com/buildbarn/bb-blockstream/pkg/util"

	"golang.org/x/sys/unix"
)

// NewBlockDeviceFromDevice opens a block device node, such as a disk
// attached through USB. Reads are performed through a memory map of
// the entire device.
//
// The logical sector size of the block device and the total number of
// sectors are also returned. It may be assumed that these remain
// constant over the lifetime of the block device and process.
func NewBlockDeviceFromDevice(path string) (ClosableBlockDevice, int, int64, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, 0, 0, util.StatusWrapf(err, "Failed to open device node %#v", path)
	}

	var sectorSizeBytes int32
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), unix.BLKSSZGET, uintptr(unsafe.Pointer(&sectorSizeBytes))); errno != 0 {
		f.Close()
		return nil, 0, 0, util.StatusWrapf(errno, "Failed to obtain sector size of device node %#v", path)
	}
	var deviceSizeBytes int64
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), unix.BLKGETSIZE64, uintptr(unsafe.Pointer(&deviceSizeBytes))); errno != 0 {
		f.Close()
		return nil, 0, 0, util.StatusWrapf(errno, "Failed to obtain size of device node %#v", path)
	}

	bd, err := newMemoryMappedBlockDevice(f, int(deviceSizeBytes))
	if err != nil {
		f.Close()
		return nil, 0, 0, err
	}
	return bd, int(sectorSizeBytes), deviceSizeBytes / int64(sectorSizeBytes), nil
}
