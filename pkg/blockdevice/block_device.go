package blockdevice

import (
	"io"
	"os"
)

// BlockDevice is an interface for interacting with a block device like
// storage medium. Block devices support random access reads and writes.
// They differ from plain files, in that their size is fixed.
//
// Storage media tend to store data in sectors. These sectors cannot be
// read from and written to partially. Though the ReadAt() and WriteAt()
// methods provided by this interface do not require I/O to be sector
// aligned, not doing so may impact performance, particularly when
// writing. Consumers that need byte granular access on top of strictly
// sector aligned I/O should wrap a BlockDevice using
// NewBlockAddressableDevice().
//
// Because of caching, writes may not be applied against the underlying
// storage medium immediately. The Sync() function can be used to block
// execution until all previous writes are persisted.
type BlockDevice interface {
	io.ReaderAt
	io.WriterAt

	Sync() error
}

var _ BlockDevice = (*os.File)(nil)

// ClosableBlockDevice is a BlockDevice that holds on to operating
// system resources, which are released by calling Close().
type ClosableBlockDevice interface {
	BlockDevice
	Close() error
}

// BlockAddressableDevice is a storage medium that only permits reading
// and writing whole blocks, addressed by their index. The block size is
// fixed for the lifetime of the device.
//
// ReadBlock() requires the provided buffer to be at least one block in
// size. If it is smaller, an error with code OUT_OF_RANGE is returned,
// which callers may distinguish from hard device failures. Reading a
// block beyond the end of the device returns io.EOF without any data.
//
// WriteBlock() writes exactly one block. The provided buffer must be
// exactly one block in size.
type BlockAddressableDevice interface {
	GetBlockSizeBytes() int
	ReadBlock(blockNumber uint64, p []byte) (int, error)
	WriteBlock(blockNumber uint64, p []byte) (int, error)
}
