package main

import (
	"github.com/buildbarn/bb-blockstream/pkg/blockdevice"
)

// ApplicationConfiguration is the top-level message of the
// configuration file passed to bb_partition_copy.
type ApplicationConfiguration struct {
	// The device on which the partition is stored.
	BlockDevice *blockdevice.Configuration `json:"blockDevice"`

	// Size of the blocks in which the device is accessed. This must
	// be a multiple of the device's sector size. When omitted, the
	// sector size is used.
	BlockSizeBytes int `json:"blockSizeBytes,omitempty"`

	// Offset on the device at which the partition starts. This does
	// not need to be block aligned.
	PartitionStartBytes int64 `json:"partitionStartBytes"`

	// Copy operations to perform, in order.
	Actions []ActionConfiguration `json:"actions"`
}

// ActionConfiguration holds exactly one copy operation.
type ActionConfiguration struct {
	Import *ImportConfiguration `json:"import,omitempty"`
	Export *ExportConfiguration `json:"export,omitempty"`
}

// ImportConfiguration copies the full contents of a local file into the
// partition.
type ImportConfiguration struct {
	Path        string `json:"path"`
	OffsetBytes int64  `json:"offsetBytes"`
	Compression string `json:"compression,omitempty"`
}

// ExportConfiguration copies a range of the partition into a local
// file. The file is truncated if it already exists.
type ExportConfiguration struct {
	Path        string `json:"path"`
	OffsetBytes int64  `json:"offsetBytes"`
	SizeBytes   int64  `json:"sizeBytes"`
	Compression string `json:"compression,omitempty"`
}
