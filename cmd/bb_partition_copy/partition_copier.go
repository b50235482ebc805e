package main

import (
	"context"
	"io"
	"os"

	"github.com/buildbarn/bb-blockstream/pkg/blockdevice"
	"github.com/buildbarn/bb-blockstream/pkg/blockstream"
	"github.com/buildbarn/bb-blockstream/pkg/util"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const compressionZstd = "zstd"

func newBlockAddressableDevice(blockDevice blockdevice.BlockDevice, sectorSizeBytes int, sectorCount int64, blockSizeBytes int) (blockdevice.BlockAddressableDevice, error) {
	if blockSizeBytes == 0 {
		blockSizeBytes = sectorSizeBytes
	}
	if blockSizeBytes < 0 || blockSizeBytes%sectorSizeBytes != 0 {
		return nil, status.Errorf(codes.InvalidArgument, "Block size %d is not a positive multiple of the device's sector size %d", blockSizeBytes, sectorSizeBytes)
	}
	blockCount := sectorCount * int64(sectorSizeBytes) / int64(blockSizeBytes)
	return blockdevice.NewBlockAddressableDevice(blockDevice, blockSizeBytes, blockCount), nil
}

// contextReader stops a copy operation once the context is canceled,
// so that the stream can still be closed before the program terminates.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (r contextReader) Read(p []byte) (int, error) {
	if err := util.StatusFromContext(r.ctx); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

func runImport(ctx context.Context, stream blockstream.Stream, configuration *ImportConfiguration) error {
	f, err := os.Open(configuration.Path)
	if err != nil {
		return util.StatusWrap(err, "Failed to open input file")
	}
	var r io.ReadCloser = f
	switch configuration.Compression {
	case "":
	case compressionZstd:
		if r, err = util.NewZstdReadCloser(f); err != nil {
			f.Close()
			return util.StatusWrap(err, "Failed to create Zstandard decoder")
		}
	default:
		f.Close()
		return status.Errorf(codes.InvalidArgument, "Unknown compression %#v", configuration.Compression)
	}
	defer r.Close()

	if _, err := stream.Seek(configuration.OffsetBytes, io.SeekStart); err != nil {
		return err
	}
	n, err := io.Copy(stream, contextReader{ctx: ctx, r: r})
	if err == io.EOF {
		return status.Errorf(codes.OutOfRange, "Partition ended after writing %d bytes", n)
	} else if err != nil {
		return util.StatusWrapf(err, "Failed to copy data after %d bytes", n)
	}
	return nil
}

func runExport(ctx context.Context, stream blockstream.Stream, configuration *ExportConfiguration) (err error) {
	if configuration.SizeBytes < 0 {
		return status.Errorf(codes.InvalidArgument, "Invalid size %d", configuration.SizeBytes)
	}
	f, err := os.OpenFile(configuration.Path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o666)
	if err != nil {
		return util.StatusWrap(err, "Failed to create output file")
	}
	var w io.WriteCloser = f
	switch configuration.Compression {
	case "":
	case compressionZstd:
		if w, err = util.NewZstdWriteCloser(f); err != nil {
			f.Close()
			return util.StatusWrap(err, "Failed to create Zstandard encoder")
		}
	default:
		f.Close()
		return status.Errorf(codes.InvalidArgument, "Unknown compression %#v", configuration.Compression)
	}
	defer func() {
		if closeErr := w.Close(); err == nil && closeErr != nil {
			err = util.StatusWrap(closeErr, "Failed to close output file")
		}
	}()

	if _, err := stream.Seek(configuration.OffsetBytes, io.SeekStart); err != nil {
		return err
	}
	n, err := io.CopyN(w, contextReader{ctx: ctx, r: stream}, configuration.SizeBytes)
	if err == io.EOF {
		return status.Errorf(codes.OutOfRange, "Partition ended after reading %d bytes", n)
	} else if err != nil {
		return util.StatusWrapf(err, "Failed to copy data after %d bytes", n)
	}
	return nil
}

// runActions performs all copy operations against the stream in order.
func runActions(ctx context.Context, stream blockstream.Stream, actions []ActionConfiguration) error {
	for i, action := range actions {
		var err error
		switch {
		case action.Import != nil && action.Export == nil:
			err = runImport(ctx, stream, action.Import)
		case action.Export != nil && action.Import == nil:
			err = runExport(ctx, stream, action.Export)
		default:
			err = status.Error(codes.InvalidArgument, "Action must contain exactly one of import or export")
		}
		if err != nil {
			return util.StatusWrapf(err, "Action at index %d", i)
		}
	}
	return nil
}
