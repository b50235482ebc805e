package blockdevice_test

import (
	"io"
	"syscall"
	"testing"

	"github.com/buildbarn/bb-blockstream/internal/mock"
	"github.com/buildbarn/bb-blockstream/pkg/blockdevice"
	"github.com/buildbarn/bb-blockstream/pkg/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestBlockAddressableDeviceReadBlock(t *testing.T) {
	ctrl := gomock.NewController(t)

	blockDevice := mock.NewMockBlockDevice(ctrl)
	device := blockdevice.NewBlockAddressableDevice(blockDevice, 1024, 10)
	require.Equal(t, 1024, device.GetBlockSizeBytes())

	t.Run("Success", func(t *testing.T) {
		blockDevice.EXPECT().ReadAt(gomock.Len(1024), int64(3072)).DoAndReturn(
			func(p []byte, off int64) (int, error) {
				copy(p, "Hello")
				return len(p), nil
			})
		p := make([]byte, 1024)
		n, err := device.ReadBlock(3, p)
		require.NoError(t, err)
		require.Equal(t, 1024, n)
		require.Equal(t, []byte("Hello"), p[:5])
	})

	t.Run("FinalBlockWithEOF", func(t *testing.T) {
		// io.ReaderAt permits returning io.EOF alongside a full
		// read at the end of the input.
		blockDevice.EXPECT().ReadAt(gomock.Len(1024), int64(9216)).Return(1024, io.EOF)
		n, err := device.ReadBlock(9, make([]byte, 1024))
		require.NoError(t, err)
		require.Equal(t, 1024, n)
	})

	t.Run("LargerBuffer", func(t *testing.T) {
		// Only a single block should be read into the buffer.
		blockDevice.EXPECT().ReadAt(gomock.Len(1024), int64(0)).Return(1024, nil)
		n, err := device.ReadBlock(0, make([]byte, 4096))
		require.NoError(t, err)
		require.Equal(t, 1024, n)
	})

	t.Run("BufferTooSmall", func(t *testing.T) {
		n, err := device.ReadBlock(3, make([]byte, 512))
		require.Equal(t, 0, n)
		testutil.RequireEqualStatus(t, status.Error(codes.OutOfRange, "Buffer too small: wanted 1024 bytes, but only have 512"), err)
	})

	t.Run("EndOfDevice", func(t *testing.T) {
		n, err := device.ReadBlock(10, make([]byte, 1024))
		require.Equal(t, 0, n)
		require.Equal(t, io.EOF, err)
	})

	t.Run("ShortRead", func(t *testing.T) {
		blockDevice.EXPECT().ReadAt(gomock.Len(1024), int64(4096)).Return(100, io.EOF)
		_, err := device.ReadBlock(4, make([]byte, 1024))
		testutil.RequireEqualStatus(t, status.Error(codes.Internal, "Short read of block 4: got 100 bytes, while 1024 bytes were expected"), err)
	})

	t.Run("IOError", func(t *testing.T) {
		blockDevice.EXPECT().ReadAt(gomock.Len(1024), int64(5120)).Return(0, syscall.EIO)
		_, err := device.ReadBlock(5, make([]byte, 1024))
		testutil.RequireEqualStatus(t, status.Error(codes.Unknown, "Failed to read 1024 bytes at offset 5120: input/output error"), err)
	})
}

func TestBlockAddressableDeviceWriteBlock(t *testing.T) {
	ctrl := gomock.NewController(t)

	blockDevice := mock.NewMockBlockDevice(ctrl)
	device := blockdevice.NewBlockAddressableDevice(blockDevice, 4, 10)

	t.Run("Success", func(t *testing.T) {
		blockDevice.EXPECT().WriteAt([]byte("abcd"), int64(28)).Return(4, nil)
		n, err := device.WriteBlock(7, []byte("abcd"))
		require.NoError(t, err)
		require.Equal(t, 4, n)
	})

	t.Run("InvalidSize", func(t *testing.T) {
		_, err := device.WriteBlock(7, []byte("abc"))
		testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Attempted to write 3 bytes, while blocks are 4 bytes in size"), err)
	})

	t.Run("EndOfDevice", func(t *testing.T) {
		_, err := device.WriteBlock(10, []byte("abcd"))
		testutil.RequireEqualStatus(t, status.Error(codes.OutOfRange, "Block 10 lies beyond the end of the device, which has 10 blocks"), err)
	})

	t.Run("IOError", func(t *testing.T) {
		blockDevice.EXPECT().WriteAt([]byte("abcd"), int64(0)).Return(2, syscall.ENOSPC)
		n, err := device.WriteBlock(0, []byte("abcd"))
		require.Equal(t, 2, n)
		testutil.RequireEqualStatus(t, status.Error(codes.Unknown, "Failed to write 4 bytes at offset 0: no space left on device"), err)
	})
}
