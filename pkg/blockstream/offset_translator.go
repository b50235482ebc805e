package blockstream

// BlockPosition describes where a byte in a partition is stored on the
// underlying device.
type BlockPosition struct {
	// Index of the device block that contains the byte.
	BlockNumber uint64
	// Absolute byte offset of the start of that block.
	BlockStartBytes int64
	// Offset of the byte within the block. Always lies within
	// [0, block size).
	IntraBlockOffset int
}

// OffsetTranslator converts offsets relative to the start of a
// partition to device block numbers and offsets within those blocks.
type OffsetTranslator struct {
	partitionStartBytes int64
	blockSizeBytes      int64
}

// NewOffsetTranslator creates an OffsetTranslator for a partition that
// starts at a given absolute byte offset on a device with a given
// block size. The partition does not need to start at a block
// boundary.
func NewOffsetTranslator(partitionStartBytes int64, blockSizeBytes int) OffsetTranslator {
	if partitionStartBytes < 0 {
		panic("Partition start cannot be negative")
	}
	if blockSizeBytes <= 0 {
		panic("Block size must be positive")
	}
	return OffsetTranslator{
		partitionStartBytes: partitionStartBytes,
		blockSizeBytes:      int64(blockSizeBytes),
	}
}

// GetPartitionStartBytes returns the absolute byte offset at which the
// partition starts.
func (ot OffsetTranslator) GetPartitionStartBytes() int64 {
	return ot.partitionStartBytes
}

// Translate the position of a cursor, relative to the start of the
// partition. The cursor must be non-negative.
func (ot OffsetTranslator) Translate(cursor int64) BlockPosition {
	absolute := ot.partitionStartBytes + cursor
	blockNumber := absolute / ot.blockSizeBytes
	blockStartBytes := blockNumber * ot.blockSizeBytes
	return BlockPosition{
		BlockNumber:      uint64(blockNumber),
		BlockStartBytes:  blockStartBytes,
		IntraBlockOffset: int(absolute - blockStartBytes),
	}
}

// GetBlockStartBytes returns the absolute byte offset at which a block
// starts.
func (ot OffsetTranslator) GetBlockStartBytes(blockNumber uint64) int64 {
	return int64(blockNumber) * ot.blockSizeBytes
}
