package blockstream

import (
	"io"
	"math"
	"runtime"
	"sync"

	"github.com/buildbarn/bb-blockstream/pkg/blockdevice"
	"github.com/buildbarn/bb-blockstream/pkg/util"
	"github.com/prometheus/client_golang/prometheus"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	blockBufferingStreamPrometheusMetrics sync.Once

	blockBufferingStreamBlocksLoaded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "blockstream",
			Name:      "blocks_loaded_total",
			Help:      "Number of blocks read from a device into the buffer of a partition stream",
		})
	blockBufferingStreamBlocksFlushed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "blockstream",
			Name:      "blocks_flushed_total",
			Help:      "Number of dirty blocks written back to a device by a partition stream",
		})
	blockBufferingStreamFlushFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "blockstream",
			Name:      "flush_failures_total",
			Help:      "Number of times writing back a dirty block to a device failed",
		})
	blockBufferingStreamFinalizerFlushes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "blockstream",
			Name:      "finalizer_flushes_total",
			Help:      "Number of times a partition stream was garbage collected without being closed while holding a dirty block",
		})
)

// Stream provides byte granular access to a partition stored on a
// BlockAddressableDevice. Offsets are relative to the start of the
// partition.
//
// Implementations are not safe for concurrent use.
type Stream interface {
	io.ReadWriteSeeker

	// Flush writes the buffered block back to the device if it has
	// been modified.
	Flush() error

	// Close flushes the buffered block and releases the stream.
	// Callers that need to know whether all writes reached the
	// device must call either Flush() or Close().
	Close() error

	// Buffered returns the contents of the buffered block, starting
	// at the current position, loading it if needed. An empty slice
	// is returned at the end of the medium. The slice is only valid
	// until the next call against the stream and must not be
	// modified.
	Buffered() ([]byte, error)

	// Discard advances the current position by n bytes without
	// performing any I/O.
	Discard(n int) (int, error)

	// Position returns the current position, relative to the start
	// of the partition.
	Position() int64
}

type blockBufferingStream struct {
	device      blockdevice.BlockAddressableDevice
	translator  OffsetTranslator
	errorLogger util.ErrorLogger

	cache  blockCache
	cursor int64
	closed bool
}

// NewBlockBufferingStream creates a Stream for a partition that starts
// at a given absolute byte offset on a device. Exactly one block of the
// device is kept in memory. Modifications to that block are written
// back when the stream moves to another block, or when Flush() or
// Close() is called.
//
// Streams that are garbage collected without being closed attempt to
// flush their buffered block. As there is no caller to return an error
// to, failures are reported through the provided ErrorLogger.
func NewBlockBufferingStream(device blockdevice.BlockAddressableDevice, partitionStartBytes int64, errorLogger util.ErrorLogger) Stream {
	blockBufferingStreamPrometheusMetrics.Do(func() {
		prometheus.MustRegister(blockBufferingStreamBlocksLoaded)
		prometheus.MustRegister(blockBufferingStreamBlocksFlushed)
		prometheus.MustRegister(blockBufferingStreamFlushFailures)
		prometheus.MustRegister(blockBufferingStreamFinalizerFlushes)
	})

	blockSizeBytes := device.GetBlockSizeBytes()
	s := &blockBufferingStream{
		device:      device,
		translator:  NewOffsetTranslator(partitionStartBytes, blockSizeBytes),
		errorLogger: errorLogger,
		cache:       newBlockCache(blockSizeBytes),
	}
	runtime.SetFinalizer(s, (*blockBufferingStream).finalize)
	return s
}

func (s *blockBufferingStream) checkOpen() error {
	if s.closed {
		return status.Error(codes.FailedPrecondition, "Stream has already been closed")
	}
	return nil
}

// fillBuffer ensures that the block containing the current position
// is buffered, and returns its contents starting at the current
// position. If another block is buffered, it is flushed first. An
// empty slice is returned if the device has no block at the current
// position.
func (s *blockBufferingStream) fillBuffer() ([]byte, error) {
	position := s.translator.Translate(s.cursor)
	if !s.cache.holds(position.BlockNumber) {
		if err := s.flush(); err != nil {
			return nil, err
		}
		if err := s.cache.clear(); err != nil {
			return nil, err
		}

		n, err := s.device.ReadBlock(position.BlockNumber, s.cache.data)
		if err == io.EOF && n == 0 {
			return nil, nil
		} else if err != nil && err != io.EOF {
			return nil, util.StatusWrapf(err, "Failed to load block %d", position.BlockNumber)
		} else if n != len(s.cache.data) {
			return nil, status.Errorf(codes.Internal, "Device returned %d bytes for block %d, while blocks are %d bytes in size", n, position.BlockNumber, len(s.cache.data))
		}
		s.cache.loaded(position.BlockNumber)
		blockBufferingStreamBlocksLoaded.Inc()
	}
	return s.cache.data[position.IntraBlockOffset:], nil
}

func (s *blockBufferingStream) flush() error {
	if !s.cache.dirty {
		return nil
	}
	blockNumber := s.cache.loadedBlockNumber
	n, err := s.device.WriteBlock(blockNumber, s.cache.data)
	if err == nil && n != len(s.cache.data) {
		err = status.Errorf(codes.Internal, "Device wrote %d bytes, while blocks are %d bytes in size", n, len(s.cache.data))
	}
	if err != nil {
		blockBufferingStreamFlushFailures.Inc()
		return util.StatusWrapf(err, "Failed to flush block %d at offset %d", blockNumber, s.translator.GetBlockStartBytes(blockNumber))
	}
	s.cache.dirty = false
	blockBufferingStreamBlocksFlushed.Inc()
	return nil
}

func (s *blockBufferingStream) Read(p []byte) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	n := 0
	for n < len(p) {
		// Copy one block at a time, so that crossing a block
		// boundary causes the next block to be loaded.
		b, err := s.fillBuffer()
		if err != nil {
			return n, err
		}
		if len(b) == 0 {
			break
		}
		copied := copy(p[n:], b)
		n += copied
		s.cursor += int64(copied)
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (s *blockBufferingStream) Write(p []byte) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	n := 0
	for n < len(p) {
		b, err := s.fillBuffer()
		if err != nil {
			return n, err
		}
		if len(b) == 0 {
			return n, io.EOF
		}
		copied := s.cache.update(len(s.cache.data)-len(b), p[n:])
		n += copied
		s.cursor += int64(copied)
	}
	return n, nil
}

func (s *blockBufferingStream) Flush() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.flush()
}

func (s *blockBufferingStream) Seek(offset int64, whence int) (int64, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = s.cursor
	case io.SeekEnd:
		return 0, status.Error(codes.Unimplemented, "Seeking relative to the end of a partition is not supported, as its size is not known")
	default:
		return 0, status.Errorf(codes.InvalidArgument, "Invalid whence %d", whence)
	}

	if offset < 0 && base+offset < 0 {
		return 0, status.Errorf(codes.InvalidArgument, "Cannot seek to negative offset %d", base+offset)
	}
	if offset > s.getMaximumCursor()-base {
		return 0, status.Errorf(codes.InvalidArgument, "Cannot seek %d bytes past offset %d, as the resulting offset would overflow", offset, base)
	}
	s.cursor = base + offset
	return s.cursor, nil
}

// getMaximumCursor returns the highest cursor position for which the
// absolute offset on the device can still be represented.
func (s *blockBufferingStream) getMaximumCursor() int64 {
	return math.MaxInt64 - s.translator.GetPartitionStartBytes()
}

func (s *blockBufferingStream) Buffered() ([]byte, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return s.fillBuffer()
}

func (s *blockBufferingStream) Discard(n int) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, status.Errorf(codes.InvalidArgument, "Cannot discard negative number of bytes %d", n)
	}
	if _, err := s.Seek(int64(n), io.SeekCurrent); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *blockBufferingStream) Position() int64 {
	return s.cursor
}

func (s *blockBufferingStream) Close() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.closed = true
	runtime.SetFinalizer(s, nil)
	return s.flush()
}

// finalize is invoked by the garbage collector for streams that were
// never closed. Any error that occurs while flushing cannot be
// returned, so it is logged instead.
func (s *blockBufferingStream) finalize() {
	if s.closed {
		return
	}
	s.closed = true
	if s.cache.dirty {
		blockBufferingStreamFinalizerFlushes.Inc()
	}
	if err := s.flush(); err != nil {
		s.errorLogger.Log(util.StatusWrap(err, "Failed to flush partition stream that was not closed"))
	}
}
