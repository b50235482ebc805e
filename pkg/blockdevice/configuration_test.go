package blockdevice_test

import (
	"testing"

	"github.com/buildbarn/bb-blockstream/pkg/blockdevice"
	"github.com/buildbarn/bb-blockstream/pkg/testutil"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestNewBlockDeviceFromConfiguration(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		_, _, _, err := blockdevice.NewBlockDeviceFromConfiguration(nil, false)
		testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Block device configuration not specified"), err)
	})

	t.Run("NoSource", func(t *testing.T) {
		_, _, _, err := blockdevice.NewBlockDeviceFromConfiguration(&blockdevice.Configuration{}, false)
		testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Block device configuration must contain exactly one source, while 0 were provided"), err)
	})

	t.Run("MultipleSources", func(t *testing.T) {
		_, _, _, err := blockdevice.NewBlockDeviceFromConfiguration(&blockdevice.Configuration{
			DevicePath: "/dev/sdb",
			Memory:     &blockdevice.MemoryConfiguration{SizeBytes: 1024, SectorSizeBytes: 512},
		}, false)
		testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Block device configuration must contain exactly one source, while 2 were provided"), err)
	})

	t.Run("InvalidMemory", func(t *testing.T) {
		_, _, _, err := blockdevice.NewBlockDeviceFromConfiguration(&blockdevice.Configuration{
			Memory: &blockdevice.MemoryConfiguration{SizeBytes: 1000, SectorSizeBytes: 512},
		}, false)
		testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Memory block device size 1000 is not a positive multiple of sector size 512"), err)
	})

	t.Run("Memory", func(t *testing.T) {
		bd, sectorSizeBytes, sectorCount, err := blockdevice.NewBlockDeviceFromConfiguration(&blockdevice.Configuration{
			Memory: &blockdevice.MemoryConfiguration{SizeBytes: 8192, SectorSizeBytes: 4096},
		}, false)
		require.NoError(t, err)
		require.Equal(t, 4096, sectorSizeBytes)
		require.Equal(t, int64(2), sectorCount)

		n, err := bd.WriteAt([]byte("Hello"), 4096)
		require.NoError(t, err)
		require.Equal(t, 5, n)
		require.NoError(t, bd.Sync())
		require.NoError(t, bd.Close())
	})
}
