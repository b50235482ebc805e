package blockdevice

import (
	"io"

	"github.com/buildbarn/bb-blockstream/pkg/util"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type blockAddressableDevice struct {
	blockDevice    BlockDevice
	blockSizeBytes int
	blockCount     int64
}

// NewBlockAddressableDevice creates a BlockAddressableDevice on top of
// a byte addressed BlockDevice. The BlockDevice is divided into
// blockCount consecutive blocks of blockSizeBytes bytes each. All I/O
// issued against the BlockDevice is block aligned.
//
// The block size is typically equal to the sector size returned by
// NewBlockDeviceFromFile() or NewBlockDeviceFromDevice(), but may be
// any multiple of it.
func NewBlockAddressableDevice(blockDevice BlockDevice, blockSizeBytes int, blockCount int64) BlockAddressableDevice {
	if blockSizeBytes <= 0 {
		panic("Block size must be positive")
	}
	if blockCount < 0 {
		panic("Block count cannot be negative")
	}
	return &blockAddressableDevice{
		blockDevice:    blockDevice,
		blockSizeBytes: blockSizeBytes,
		blockCount:     blockCount,
	}
}

func (d *blockAddressableDevice) GetBlockSizeBytes() int {
	return d.blockSizeBytes
}

func (d *blockAddressableDevice) ReadBlock(blockNumber uint64, p []byte) (int, error) {
	if len(p) < d.blockSizeBytes {
		return 0, status.Errorf(codes.OutOfRange, "Buffer too small: wanted %d bytes, but only have %d", d.blockSizeBytes, len(p))
	}
	if blockNumber >= uint64(d.blockCount) {
		return 0, io.EOF
	}

	n, err := d.blockDevice.ReadAt(p[:d.blockSizeBytes], int64(blockNumber)*int64(d.blockSizeBytes))
	if n == d.blockSizeBytes {
		// io.ReaderAt may return io.EOF alongside a full read
		// of the final block.
		return n, nil
	}
	if err == nil || err == io.EOF {
		return n, status.Errorf(codes.Internal, "Short read of block %d: got %d bytes, while %d bytes were expected", blockNumber, n, d.blockSizeBytes)
	}
	return n, util.StatusWrapf(err, "Failed to read %d bytes at offset %d", d.blockSizeBytes, int64(blockNumber)*int64(d.blockSizeBytes))
}

func (d *blockAddressableDevice) WriteBlock(blockNumber uint64, p []byte) (int, error) {
	if len(p) != d.blockSizeBytes {
		return 0, status.Errorf(codes.InvalidArgument, "Attempted to write %d bytes, while blocks are %d bytes in size", len(p), d.blockSizeBytes)
	}
	if blockNumber >= uint64(d.blockCount) {
		return 0, status.Errorf(codes.OutOfRange, "Block %d lies beyond the end of the device, which has %d blocks", blockNumber, d.blockCount)
	}

	n, err := d.blockDevice.WriteAt(p, int64(blockNumber)*int64(d.blockSizeBytes))
	if err != nil {
		return n, util.StatusWrapf(err, "Failed to write %d bytes at offset %d", len(p), int64(blockNumber)*int64(d.blockSizeBytes))
	}
	return n, nil
}
