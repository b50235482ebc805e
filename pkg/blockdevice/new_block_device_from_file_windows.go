//go:build windows

package blockdevice

import (
	"path/filepath"
	"syscall"
	"unsafe"

	"github.com/buildbarn/bb-blockstream/pkg/util"

	"golang.org/x/sys/windows"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	kernel32          = windows.NewLazySystemDLL("kernel32.dll")
	getDiskFreeSpaceW = kernel32.NewProc("GetDiskFreeSpaceW")
)

// NewBlockDeviceFromFile creates a BlockDevice that is backed by a
// regular file stored in a file system. The file is created if it does
// not exist, and is grown to the smallest number of sectors that is
// capable of holding minimumSizeBytes. Existing files are never
// shrunk.
//
// The sector size is the one of the volume on which the file is
// stored, as reported by GetDiskFreeSpaceW().
func NewBlockDeviceFromFile(path string, minimumSizeBytes int, zeroInitialize bool) (ClosableBlockDevice, int, int64, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, 0, 0, util.StatusWrapf(err, "Failed to get absolute path for %#v", path)
	}
	pathPtr, err := syscall.UTF16PtrFromString(absPath)
	if err != nil {
		return nil, 0, 0, util.StatusWrapf(err, "Failed to convert path %#v to UTF-16", absPath)
	}

	var createMode uint32 = windows.OPEN_ALWAYS
	if zeroInitialize {
		createMode = windows.CREATE_ALWAYS
	}
	handle, err := windows.CreateFile(
		pathPtr,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		createMode,
		windows.FILE_ATTRIBUTE_NORMAL,
		0)
	if err != nil {
		return nil, 0, 0, util.StatusWrapf(err, "Failed to open file %#v", absPath)
	}

	bd, sectorSizeBytes, sectorCount, err := newBlockDeviceFromHandle(absPath, minimumSizeBytes, handle)
	if err != nil {
		windows.CloseHandle(handle)
		return nil, 0, 0, err
	}
	return bd, sectorSizeBytes, sectorCount, nil
}

func newBlockDeviceFromHandle(path string, minimumSizeBytes int, handle windows.Handle) (ClosableBlockDevice, int, int64, error) {
	rootPath, err := getVolumeRootPath(path)
	if err != nil {
		return nil, 0, 0, err
	}
	rootPathPtr, err := syscall.UTF16PtrFromString(rootPath)
	if err != nil {
		return nil, 0, 0, util.StatusWrapf(err, "Failed to convert root path %#v to UTF-16", rootPath)
	}
	var bytesPerSector uint32
	if r, _, err := getDiskFreeSpaceW.Call(
		uintptr(unsafe.Pointer(rootPathPtr)),
		/* sectorsPerCluster = */ 0,
		uintptr(unsafe.Pointer(&bytesPerSector)),
		/* numberOfFreeClusters = */ 0,
		/* totalNumberOfClusters = */ 0); r == 0 {
		return nil, 0, 0, util.StatusWrapf(err, "Failed to get sector size of volume %#v", rootPath)
	}
	sectorSizeBytes := int(bytesPerSector)
	sectorCount := int64((uint64(minimumSizeBytes) + uint64(sectorSizeBytes) - 1) / uint64(sectorSizeBytes))
	sizeBytes := int64(sectorSizeBytes) * sectorCount

	var fileInfo windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(handle, &fileInfo); err != nil {
		return nil, 0, 0, util.StatusWrapf(err, "Failed to obtain size of file %#v", path)
	}
	existingSizeBytes := int64(fileInfo.FileSizeHigh)<<32 | int64(fileInfo.FileSizeLow)
	if existingSizeBytes < sizeBytes {
		// Without marking the file sparse, Windows writes out
		// the entire file upon termination, even if only a
		// single byte was written.
		// https://devblogs.microsoft.com/oldnewthing/20110922-00/?p=9573
		var bytesReturned uint32
		if err := windows.DeviceIoControl(handle, windows.FSCTL_SET_SPARSE, nil, 0, nil, 0, &bytesReturned, nil); err != nil {
			return nil, 0, 0, util.StatusWrapf(err, "Failed to mark file %#v as sparse", path)
		}
		fileSizeHigh := int32(sizeBytes >> 32)
		if _, err := windows.SetFilePointer(handle, int32(sizeBytes), &fileSizeHigh, windows.FILE_BEGIN); err != nil {
			return nil, 0, 0, util.StatusWrapf(err, "Failed to set file pointer of file %#v", path)
		}
		if err := windows.SetEndOfFile(handle); err != nil {
			return nil, 0, 0, util.StatusWrapf(err, "Failed to grow file %#v to %d bytes", path, sizeBytes)
		}
	} else {
		sectorCount = existingSizeBytes / int64(sectorSizeBytes)
		sizeBytes = int64(sectorSizeBytes) * sectorCount
	}

	if sizeBytes == 0 {
		return nil, 0, 0, status.Errorf(codes.InvalidArgument, "File %#v would be empty", path)
	}

	bd, err := newMemoryMappedBlockDevice(handle, int(sizeBytes))
	if err != nil {
		return nil, 0, 0, err
	}
	return bd, sectorSizeBytes, sectorCount, nil
}

// getVolumeRootPath returns the root directory of the volume containing
// a path, in the form expected by GetDiskFreeSpaceW(): either a drive
// letter ("C:\") or a UNC share ("\\server\share\").
func getVolumeRootPath(path string) (string, error) {
	volumeName := filepath.VolumeName(path)
	if volumeName == "" {
		return "", status.Errorf(codes.InvalidArgument, "Path %#v does not begin with a drive letter or a UNC share", path)
	}
	return volumeName + `\`, nil
}
