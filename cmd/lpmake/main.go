// Command lpmake builds a super image from a partition layout described
// on the command line, following the same cobra root-command shape as
// go-apfs's cmd/root.go.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Uotan-Dev/FirmwareKit.Lp/internal/codec"
	"github.com/Uotan-Dev/FirmwareKit.Lp/internal/config"
	"github.com/Uotan-Dev/FirmwareKit.Lp/internal/editor"
	"github.com/Uotan-Dev/FirmwareKit.Lp/internal/logging"
	"github.com/Uotan-Dev/FirmwareKit.Lp/internal/types"
)

var (
	verbose           bool
	deviceSize        uint64
	metadataMaxSize   uint32
	metadataSlotCount uint32
	partitionSpecs    []string
	groupSpecs        []string
	outputPath        string
)

var rootCmd = &cobra.Command{
	Use:     "lpmake",
	Short:   "Build a super image from a partition layout",
	Version: "0.1.0-dev",
	Long: `lpmake builds a fresh super image: a geometry, one "super" block
device, and the partitions/groups given on the command line.

Examples:
  # One partition in the default group, 100MiB
  lpmake --device-size 536870912 --partition system:default:104857600 -o super.img

  # A bounded group with two partitions in it
  lpmake --device-size 536870912 \
    --group dynamic_partitions:209715200 \
    --partition system:dynamic_partitions:104857600 \
    --partition vendor:dynamic_partitions:52428800 \
    -o super.img`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMake()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.Flags().Uint64Var(&deviceSize, "device-size", 0, "total size of the backing block device, in bytes (required)")
	rootCmd.Flags().Uint32Var(&metadataMaxSize, "metadata-size", 0, "metadata_max_size in bytes; defaults to config")
	rootCmd.Flags().Uint32Var(&metadataSlotCount, "metadata-slots", 0, "metadata_slot_count; defaults to config")
	rootCmd.Flags().StringArrayVar(&groupSpecs, "group", nil, "group spec name:max_size_bytes (repeatable)")
	rootCmd.Flags().StringArrayVar(&partitionSpecs, "partition", nil, "partition spec name:group:size_bytes (repeatable)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output image path (required)")
	rootCmd.MarkFlagRequired("device-size")
	rootCmd.MarkFlagRequired("output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runMake() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if metadataMaxSize == 0 {
		metadataMaxSize = cfg.DefaultMetadataMaxSize
	}
	if metadataSlotCount == 0 {
		metadataSlotCount = cfg.DefaultSlotCount
	}

	logger := logrus.New()
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}
	log := logging.NewLogrusLogger(logger)

	b := editor.New(deviceSize, metadataMaxSize, metadataSlotCount)

	for _, spec := range groupSpecs {
		name, maxSize, err := parseGroupSpec(spec)
		if err != nil {
			return err
		}
		if err := b.AddGroup(name, maxSize); err != nil {
			return fmt.Errorf("failed to add group %q: %w", name, err)
		}
	}

	for _, spec := range partitionSpecs {
		name, group, size, err := parsePartitionSpec(spec)
		if err != nil {
			return err
		}
		if err := b.AddPartition(name, group, types.PartitionAttrNone); err != nil {
			return fmt.Errorf("failed to add partition %q: %w", name, err)
		}
		if err := b.ResizePartition(name, size); err != nil {
			return fmt.Errorf("failed to size partition %q: %w", name, err)
		}
	}

	m := b.Export()

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outputPath, err)
	}
	defer f.Close()

	if err := codec.WriteImage(f, m, log); err != nil {
		return err
	}

	fmt.Printf("wrote %s (%d bytes, %d partition(s))\n", outputPath, deviceSize, len(m.Partitions))
	return nil
}

func parseGroupSpec(spec string) (string, uint64, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("invalid --group spec %q, want name:max_size_bytes", spec)
	}
	maxSize, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid max_size in --group spec %q: %w", spec, err)
	}
	return parts[0], maxSize, nil
}

func parsePartitionSpec(spec string) (name, group string, size uint64, err error) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 {
		return "", "", 0, fmt.Errorf("invalid --partition spec %q, want name:group:size_bytes", spec)
	}
	size, err = strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid size in --partition spec %q: %w", spec, err)
	}
	return parts[0], parts[1], size, nil
}
