package main

import (
	"context"
	"log"
	"os"

	"github.com/buildbarn/bb-blockstream/pkg/blockdevice"
	"github.com/buildbarn/bb-blockstream/pkg/blockstream"
	"github.com/buildbarn/bb-blockstream/pkg/program"
	"github.com/buildbarn/bb-blockstream/pkg/util"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// A utility for copying data between local files and a partition
// stored on a block device. The partition does not need to start at a
// block boundary. All access to the device is performed in units of
// whole blocks, with a single block being buffered in memory.
//
// Actions are executed in the order in which they are listed in the
// configuration file. Before terminating, the buffered block is written
// back and the device is synchronized, even if one of the actions
// failed.

func main() {
	program.RunMain(func(ctx context.Context, siblingsGroup, dependenciesGroup program.Group) error {
		if len(os.Args) != 2 {
			return status.Error(codes.InvalidArgument, "Usage: bb_partition_copy bb_partition_copy.jsonnet")
		}
		var configuration ApplicationConfiguration
		if err := util.UnmarshalConfigurationFromFile(os.Args[1], &configuration); err != nil {
			return util.StatusWrapf(err, "Failed to read configuration from %s", os.Args[1])
		}
		return copyPartition(ctx, &configuration)
	})
}

func copyPartition(ctx context.Context, configuration *ApplicationConfiguration) error {
	// Data outside the partition must be preserved, so existing
	// files may never be zero initialized.
	blockDevice, sectorSizeBytes, sectorCount, err := blockdevice.NewBlockDeviceFromConfiguration(configuration.BlockDevice, false)
	if err != nil {
		return util.StatusWrap(err, "Failed to open block device")
	}
	device, err := newBlockAddressableDevice(blockDevice, sectorSizeBytes, sectorCount, configuration.BlockSizeBytes)
	if err != nil {
		blockDevice.Close()
		return err
	}
	if configuration.PartitionStartBytes < 0 {
		blockDevice.Close()
		return status.Errorf(codes.InvalidArgument, "Invalid partition start %d", configuration.PartitionStartBytes)
	}
	log.Printf("Opened block device with %d blocks of %d bytes", sectorCount*int64(sectorSizeBytes)/int64(device.GetBlockSizeBytes()), device.GetBlockSizeBytes())

	stream := blockstream.NewBlockBufferingStream(device, configuration.PartitionStartBytes, util.DefaultErrorLogger)
	errs := make([]error, 0, 4)
	if err := runActions(ctx, stream, configuration.Actions); err != nil {
		errs = append(errs, err)
	}
	if err := stream.Close(); err != nil {
		errs = append(errs, util.StatusWrap(err, "Failed to close partition stream"))
	}
	if err := blockDevice.Sync(); err != nil {
		errs = append(errs, util.StatusWrap(err, "Failed to synchronize block device"))
	}
	if err := blockDevice.Close(); err != nil {
		errs = append(errs, util.StatusWrap(err, "Failed to close block device"))
	}
	return util.StatusFromMultiple(errs)
}
