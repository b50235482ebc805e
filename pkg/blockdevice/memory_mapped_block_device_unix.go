//go:build darwin || freebsd || linux

package blockdevice

import (
	"io"
	"os"
	"runtime/debug"
	"syscall"

	"github.com/buildbarn/bb-blockstream/pkg/util"
	"github.com/edsrzf/mmap-go"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type memoryMappedBlockDevice struct {
	file *os.File
	data mmap.MMap
}

// newMemoryMappedBlockDevice creates a BlockDevice from a file referring
// either to a regular file or UNIX device node. To speed up reads, a
// read-only memory map is used. Writes go through the file descriptor.
func newMemoryMappedBlockDevice(file *os.File, sizeBytes int) (*memoryMappedBlockDevice, error) {
	data, err := mmap.MapRegion(file, sizeBytes, mmap.RDONLY, 0, 0)
	if err != nil {
		return nil, util.StatusWrap(err, "Failed to memory map block device")
	}
	return &memoryMappedBlockDevice{
		file: file,
		data: data,
	}, nil
}

func (bd *memoryMappedBlockDevice) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, syscall.EINVAL
	}
	if off >= int64(len(bd.data)) {
		return 0, io.EOF
	}

	// Disk failures surface as page faults against the memory map.
	// Convert these to errors instead of crashing.
	old := debug.SetPanicOnFault(true)
	defer func() {
		debug.SetPanicOnFault(old)
		if recover() != nil {
			err = status.Error(codes.Internal, "Page fault occurred while reading from memory map")
		}
	}()

	n = copy(p, bd.data[off:])
	if n < len(p) {
		err = io.EOF
	}
	return n, err
}

func (bd *memoryMappedBlockDevice) WriteAt(p []byte, off int64) (int, error) {
	// Writes through a memory map would trigger a page fault that
	// causes the original sector to be read. os.File.WriteAt()
	// calls pwrite() repeatedly until all data is written, or an
	// error occurs.
	return bd.file.WriteAt(p, off)
}

func (bd *memoryMappedBlockDevice) Sync() error {
	return bd.file.Sync()
}

func (bd *memoryMappedBlockDevice) Close() error {
	var errs []error
	if err := bd.data.Unmap(); err != nil {
		errs = append(errs, util.StatusWrap(err, "Failed to unmap memory region"))
	}
	if err := bd.file.Close(); err != nil {
		errs = append(errs, util.StatusWrap(err, "Failed to close file"))
	}
	return util.StatusFromMultiple(errs)
}
