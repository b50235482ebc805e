//go:build !freebsd && !linux

package blockdevice

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewBlockDeviceFromDevice opens a block device node. This
// implementation is a stub for operating systems that don't support
// querying the geometry of device nodes.
func NewBlockDeviceFromDevice(path string) (ClosableBlockDevice, int, int64, error) {
	return nil, 0, 0, status.Error(codes.Unimplemented, "Opening block device nodes is not supported on this platform")
}
