package blockstream

import (
	"bytes"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// blockCache holds at most one device block in memory. Storage for the
// block is allocated once. The cache is either empty or holds exactly
// one full block; it is never partially loaded.
type blockCache struct {
	data              []byte
	valid             bool
	loadedBlockNumber uint64
	dirty             bool
}

func newBlockCache(blockSizeBytes int) blockCache {
	return blockCache{
		data: make([]byte, blockSizeBytes),
	}
}

// holds returns whether the cache contains a given block.
func (c *blockCache) holds(blockNumber uint64) bool {
	return c.valid && c.loadedBlockNumber == blockNumber
}

// clear marks the cache as empty without releasing its storage. A
// dirty block may not be discarded.
func (c *blockCache) clear() error {
	if c.dirty {
		return status.Errorf(codes.Internal, "Attempted to discard block %d, which has not been flushed", c.loadedBlockNumber)
	}
	c.valid = false
	return nil
}

// loaded is called after the contents of a block have been read into
// the cache's storage in their entirety.
func (c *blockCache) loaded(blockNumber uint64) {
	c.valid = true
	c.loadedBlockNumber = blockNumber
	c.dirty = false
}

// update overwrites the cached block, starting at a given offset, with
// as much of p as fits. The block only becomes dirty if its contents
// actually change. The number of bytes consumed from p is returned.
func (c *blockCache) update(offset int, p []byte) int {
	tail := c.data[offset:]
	if len(p) > len(tail) {
		p = p[:len(tail)]
	}
	if !bytes.Equal(tail[:len(p)], p) {
		copy(tail, p)
		c.dirty = true
	}
	return len(p)
}
