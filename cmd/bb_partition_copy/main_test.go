package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/buildbarn/bb-blockstream/pkg/blockdevice"
	"github.com/buildbarn/bb-blockstream/pkg/testutil"
	"github.com/buildbarn/bb-blockstream/pkg/util"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newMemoryConfiguration(actions ...ActionConfiguration) *ApplicationConfiguration {
	return &ApplicationConfiguration{
		BlockDevice: &blockdevice.Configuration{
			Memory: &blockdevice.MemoryConfiguration{
				SizeBytes:       4096,
				SectorSizeBytes: 512,
			},
		},
		PartitionStartBytes: 700,
		Actions:             actions,
	}
}

func TestConfiguration(t *testing.T) {
	var configuration ApplicationConfiguration
	require.NoError(t, util.UnmarshalConfigurationFromSnippet(
		"bb_partition_copy.jsonnet",
		`{
			blockDevice: { file: { path: std.extVar('DISK'), sizeBytes: 1048576 } },
			partitionStartBytes: 1024,
			actions: [
				{ import: { path: 'in.bin', offsetBytes: 0, compression: 'zstd' } },
				{ export: { path: 'out.bin', offsetBytes: 512, sizeBytes: 4096 } },
			],
		}`,
		[]string{"DISK=/tmp/disk.img"},
		&configuration))
	require.Equal(t, ApplicationConfiguration{
		BlockDevice: &blockdevice.Configuration{
			File: &blockdevice.FileConfiguration{
				Path:      "/tmp/disk.img",
				SizeBytes: 1048576,
			},
		},
		PartitionStartBytes: 1024,
		Actions: []ActionConfiguration{
			{Import: &ImportConfiguration{Path: "in.bin", Compression: "zstd"}},
			{Export: &ExportConfiguration{Path: "out.bin", OffsetBytes: 512, SizeBytes: 4096}},
		},
	}, configuration)
}

func TestCopyPartition(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "in.bin")
	outputPath := filepath.Join(dir, "out.bin")

	// Input that spans multiple blocks, starting at an offset that
	// is not block aligned.
	input := bytes.Repeat([]byte("Hello, world. "), 100)
	require.NoError(t, os.WriteFile(inputPath, input, 0o666))

	t.Run("RoundTrip", func(t *testing.T) {
		require.NoError(t, copyPartition(ctx, newMemoryConfiguration(
			ActionConfiguration{Import: &ImportConfiguration{Path: inputPath, OffsetBytes: 10}},
			ActionConfiguration{Export: &ExportConfiguration{Path: outputPath, OffsetBytes: 10, SizeBytes: int64(len(input))}},
		)))
		output, err := os.ReadFile(outputPath)
		require.NoError(t, err)
		require.Equal(t, input, output)
	})

	t.Run("Zstandard", func(t *testing.T) {
		compressedPath := filepath.Join(dir, "in.bin.zst")
		f, err := os.Create(compressedPath)
		require.NoError(t, err)
		w, err := util.NewZstdWriteCloser(f)
		require.NoError(t, err)
		_, err = w.Write(input)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		exportedPath := filepath.Join(dir, "out.bin.zst")
		require.NoError(t, copyPartition(ctx, newMemoryConfiguration(
			ActionConfiguration{Import: &ImportConfiguration{Path: compressedPath, Compression: "zstd"}},
			ActionConfiguration{Export: &ExportConfiguration{Path: exportedPath, SizeBytes: int64(len(input)), Compression: "zstd"}},
		)))

		f, err = os.Open(exportedPath)
		require.NoError(t, err)
		r, err := util.NewZstdReadCloser(f)
		require.NoError(t, err)
		output, err := io.ReadAll(r)
		require.NoError(t, err)
		require.NoError(t, r.Close())
		require.Equal(t, input, output)
	})

	t.Run("LargerBlockSize", func(t *testing.T) {
		configuration := newMemoryConfiguration(
			ActionConfiguration{Import: &ImportConfiguration{Path: inputPath, OffsetBytes: 1000}},
			ActionConfiguration{Export: &ExportConfiguration{Path: outputPath, OffsetBytes: 1000, SizeBytes: int64(len(input))}},
		)
		configuration.BlockSizeBytes = 2048
		require.NoError(t, copyPartition(ctx, configuration))
		output, err := os.ReadFile(outputPath)
		require.NoError(t, err)
		require.Equal(t, input, output)
	})

	t.Run("InvalidBlockSize", func(t *testing.T) {
		configuration := newMemoryConfiguration()
		configuration.BlockSizeBytes = 700
		testutil.RequireEqualStatus(
			t,
			status.Error(codes.InvalidArgument, "Block size 700 is not a positive multiple of the device's sector size 512"),
			copyPartition(ctx, configuration))
	})

	t.Run("ImportPastEnd", func(t *testing.T) {
		// The partition is 4096 - 700 = 3396 bytes in size.
		testutil.RequireEqualStatus(
			t,
			status.Error(codes.OutOfRange, "Action at index 0: Partition ended after writing 396 bytes"),
			copyPartition(ctx, newMemoryConfiguration(
				ActionConfiguration{Import: &ImportConfiguration{Path: inputPath, OffsetBytes: 3000}},
			)))
	})

	t.Run("ExportPastEnd", func(t *testing.T) {
		testutil.RequireEqualStatus(
			t,
			status.Error(codes.OutOfRange, "Action at index 0: Partition ended after reading 6 bytes"),
			copyPartition(ctx, newMemoryConfiguration(
				ActionConfiguration{Export: &ExportConfiguration{Path: outputPath, OffsetBytes: 3390, SizeBytes: 10}},
			)))
	})

	t.Run("InvalidAction", func(t *testing.T) {
		testutil.RequireEqualStatus(
			t,
			status.Error(codes.InvalidArgument, "Action at index 1: Action must contain exactly one of import or export"),
			copyPartition(ctx, newMemoryConfiguration(
				ActionConfiguration{Export: &ExportConfiguration{Path: outputPath, SizeBytes: 10}},
				ActionConfiguration{},
			)))
	})

	t.Run("UnknownCompression", func(t *testing.T) {
		testutil.RequireEqualStatus(
			t,
			status.Error(codes.InvalidArgument, "Action at index 0: Unknown compression \"gzip\""),
			copyPartition(ctx, newMemoryConfiguration(
				ActionConfiguration{Import: &ImportConfiguration{Path: inputPath, Compression: "gzip"}},
			)))
	})

	t.Run("Canceled", func(t *testing.T) {
		canceledCtx, cancel := context.WithCancel(ctx)
		cancel()
		testutil.RequireEqualStatus(
			t,
			status.Error(codes.Canceled, "Action at index 0: Failed to copy data after 0 bytes: context canceled"),
			copyPartition(canceledCtx, newMemoryConfiguration(
				ActionConfiguration{Import: &ImportConfiguration{Path: inputPath}},
			)))
	})
}
