package blockdevice

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Configuration of a block device. Exactly one of the sources must be
// set.
type Configuration struct {
	// Path of a block device node, such as /dev/sdb.
	DevicePath string `json:"devicePath,omitempty"`

	// Regular file that is grown to the desired size.
	File *FileConfiguration `json:"file,omitempty"`

	// Zero initialized device stored in memory. Its contents are
	// discarded upon termination.
	Memory *MemoryConfiguration `json:"memory,omitempty"`
}

// FileConfiguration describes a BlockDevice that is backed by a
// regular file.
type FileConfiguration struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"sizeBytes"`
}

// MemoryConfiguration describes a BlockDevice that is stored in
// memory.
type MemoryConfiguration struct {
	SizeBytes       int64 `json:"sizeBytes"`
	SectorSizeBytes int   `json:"sectorSizeBytes"`
}

type nopCloserBlockDevice struct {
	BlockDevice
}

func (nopCloserBlockDevice) Close() error {
	return nil
}

// NewBlockDeviceFromConfiguration creates a BlockDevice based on
// parameters provided in a configuration file. The sector size and the
// number of sectors of the device are returned as well.
func NewBlockDeviceFromConfiguration(configuration *Configuration, mayZeroInitialize bool) (ClosableBlockDevice, int, int64, error) {
	if configuration == nil {
		return nil, 0, 0, status.Error(codes.InvalidArgument, "Block device configuration not specified")
	}

	sources := 0
	if configuration.DevicePath != "" {
		sources++
	}
	if configuration.File != nil {
		sources++
	}
	if configuration.Memory != nil {
		sources++
	}
	if sources != 1 {
		return nil, 0, 0, status.Errorf(codes.InvalidArgument, "Block device configuration must contain exactly one source, while %d were provided", sources)
	}

	switch {
	case configuration.DevicePath != "":
		return NewBlockDeviceFromDevice(configuration.DevicePath)
	case configuration.File != nil:
		return NewBlockDeviceFromFile(configuration.File.Path, int(configuration.File.SizeBytes), mayZeroInitialize)
	default:
		m := configuration.Memory
		if m.SectorSizeBytes <= 0 || m.SizeBytes <= 0 || m.SizeBytes%int64(m.SectorSizeBytes) != 0 {
			return nil, 0, 0, status.Errorf(codes.InvalidArgument, "Memory block device size %d is not a positive multiple of sector size %d", m.SizeBytes, m.SectorSizeBytes)
		}
		bd := NewMemoryBlockDevice(int(m.SizeBytes), m.SectorSizeBytes)
		return nopCloserBlockDevice{BlockDevice: bd}, m.SectorSizeBytes, bd.GetSectorCount(), nil
	}
}
