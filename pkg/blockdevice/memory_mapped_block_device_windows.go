//go:build windows

package blockdevice

import (
	"io"
	"runtime/debug"
	"syscall"
	"unsafe"

	"github.com/buildbarn/bb-blockstream/pkg/util"

	"golang.org/x/sys/windows"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type memoryMappedBlockDevice struct {
	fileHandle windows.Handle
	data       []byte
}

// newMemoryMappedBlockDevice creates a BlockDevice from a Windows file
// handle referring to a regular file. Reads go through a read-only view
// of the file, while writes are issued against the file handle.
func newMemoryMappedBlockDevice(fileHandle windows.Handle, sizeBytes int) (*memoryMappedBlockDevice, error) {
	mapHandle, err := windows.CreateFileMapping(fileHandle, nil, windows.PAGE_READONLY, uint32(uint64(sizeBytes)>>32), uint32(sizeBytes), nil)
	if err != nil {
		return nil, util.StatusWrap(err, "Failed to create file mapping for block device")
	}
	defer windows.CloseHandle(mapHandle)

	addrUIntPtr, err := windows.MapViewOfFile(mapHandle, windows.FILE_MAP_READ, 0, 0, uintptr(sizeBytes))
	if err != nil {
		return nil, util.StatusWrap(err, "Failed to map view of file for block device")
	}

	// Views may be smaller than requested if the address space is
	// too small to hold the entire file.
	var memInfo windows.MemoryBasicInformation
	if err := windows.VirtualQuery(addrUIntPtr, &memInfo, unsafe.Sizeof(memInfo)); err != nil {
		windows.UnmapViewOfFile(addrUIntPtr)
		return nil, util.StatusWrap(err, "Failed to query mapped view size for block device")
	}
	if memInfo.RegionSize < uintptr(sizeBytes) {
		windows.UnmapViewOfFile(addrUIntPtr)
		return nil, status.Errorf(codes.InvalidArgument, "Mapped view is %d bytes in size, while at least %d bytes were requested", memInfo.RegionSize, sizeBytes)
	}

	// https://github.com/golang/go/issues/58625
	addr := *(*unsafe.Pointer)(unsafe.Pointer(&addrUIntPtr))
	return &memoryMappedBlockDevice{
		fileHandle: fileHandle,
		data:       unsafe.Slice((*byte)(addr), sizeBytes),
	}, nil
}

func (bd *memoryMappedBlockDevice) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, syscall.EINVAL
	}
	if off >= int64(len(bd.data)) {
		return 0, io.EOF
	}

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
	nTotal := 0
	for len(p) > 0 {
		var overlapped windows.Overlapped
		overlapped.Offset = uint32(off)
		overlapped.OffsetHigh = uint32(off >> 32)
		var bytesWritten uint32
		err := windows.WriteFile(bd.fileHandle, p, &bytesWritten, &overlapped)
		nTotal += int(bytesWritten)
		if err != nil {
			return nTotal, err
		}
		p = p[bytesWritten:]
		off += int64(bytesWritten)
	}
	return nTotal, nil
}

func (bd *memoryMappedBlockDevice) Sync() error {
	if err := windows.FlushFileBuffers(bd.fileHandle); err != nil {
		return util.StatusWrap(err, "Failed to flush file buffers")
	}
	return nil
}

func (bd *memoryMappedBlockDevice) Close() error {
	var errs []error
	if err := windows.UnmapViewOfFile(uintptr(unsafe.Pointer(&bd.data[0]))); err != nil {
		errs = append(errs, util.StatusWrap(err, "Failed to unmap view of file"))
	}
	if err := windows.CloseHandle(bd.fileHandle); err != nil {
		errs = append(errs, util.StatusWrap(err, "Failed to close file handle"))
	}
	return util.StatusFromMultiple(errs)
}
