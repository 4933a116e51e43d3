// Command lpdump prints the partition layout stored in a super image, in
// the spirit of go-apfs's own cmd/list.go.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Uotan-Dev/FirmwareKit.Lp/internal/codec"
	"github.com/Uotan-Dev/FirmwareKit.Lp/internal/config"
	"github.com/Uotan-Dev/FirmwareKit.Lp/internal/logging"
	"github.com/Uotan-Dev/FirmwareKit.Lp/internal/types"
)

var (
	verbose      bool
	outputFormat string
	slotIndex    uint32
	backup       bool
)

var rootCmd = &cobra.Command{
	Use:     "lpdump <image>",
	Short:   "Dump the logical partition layout of a super image",
	Version: "0.1.0-dev",
	Long: `lpdump reads geometry and metadata from a super image and prints its
partitions, groups, and block devices.

Examples:
  # Dump the primary metadata slot as a table
  lpdump super.img

  # Dump slot 1 as JSON
  lpdump super.img --slot 1 -o json

  # Dump the backup copy of slot 0
  lpdump super.img --backup`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDump(args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", "", "output format (table, json); defaults to config")
	rootCmd.Flags().Uint32Var(&slotIndex, "slot", 0, "metadata slot to dump")
	rootCmd.Flags().BoolVar(&backup, "backup", false, "dump the backup copy of the slot instead of primary")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runDump(imagePath string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if outputFormat == "" {
		outputFormat = cfg.OutputFormat
	}

	logger := logrus.New()
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}
	log := logging.NewLogrusLogger(logger)

	f, err := os.Open(imagePath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", imagePath, err)
	}
	defer f.Close()

	var m *types.LpMetadata
	if backup {
		fi, err := f.Stat()
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", imagePath, err)
		}
		geom, _, err := codec.LocateGeometry(fileBlockReader{f}, log)
		if err != nil {
			return err
		}
		m, err = codec.ReadBackupImageSlot(f, fi.Size(), slotIndex, geom.MetadataMaxSize, geom.MetadataSlotCount)
		if err != nil {
			return err
		}
	} else {
		m, err = codec.ReadImageSlot(f, slotIndex, log)
		if err != nil {
			return err
		}
	}

	switch outputFormat {
	case "json":
		return printJSON(m)
	default:
		printTable(m)
		return nil
	}
}

// fileBlockReader adapts *os.File to codec's blockReader capability for
// the standalone LocateGeometry call the --backup path needs.
type fileBlockReader struct{ f *os.File }

func (b fileBlockReader) ReadBlockAt(offset int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := b.f.ReadAt(buf, offset); err != nil {
		return nil, err
	}
	return buf, nil
}

func printTable(m *types.LpMetadata) {
	bold := color.New(color.Bold)
	bold.Println("Geometry")
	fmt.Printf("  %s\n", m.Geometry.String())

	bold.Println("\nHeader")
	fmt.Printf("  %s\n", m.Header.String())
	fmt.Printf("  partitions:    %s\n", m.Header.Partitions.String())
	fmt.Printf("  extents:       %s\n", m.Header.Extents.String())
	fmt.Printf("  groups:        %s\n", m.Header.Groups.String())
	fmt.Printf("  block_devices: %s\n", m.Header.BlockDevices.String())

	bold.Println("\nBlock devices")
	for _, d := range m.BlockDevices {
		fmt.Printf("  %-16s size=%d alignment=%d first_logical_sector=%d\n",
			d.PartitionName.GetName(), d.Size, d.Alignment, d.FirstLogicalSector)
	}

	bold.Println("\nGroups")
	for _, g := range m.Groups {
		fmt.Printf("  %-16s maximum_size=%d\n", g.Name.GetName(), g.MaximumSize)
	}

	bold.Println("\nPartitions")
	for _, p := range m.Partitions {
		extents := m.PartitionExtents(&p)
		var sectors uint64
		for _, e := range extents {
			sectors += e.NumSectors
		}
		fmt.Printf("  %-24s attrs=0x%x extents=%d size=%s\n",
			p.Name.GetName(), p.Attributes, len(extents), color.CyanString("%d bytes", sectors*types.SectorSize))
	}
}

func printJSON(m *types.LpMetadata) error {
	type extentJSON struct {
		NumSectors   uint64 `json:"num_sectors"`
		TargetType   uint32 `json:"target_type"`
		TargetData   uint64 `json:"target_data"`
		TargetSource uint32 `json:"target_source"`
	}
	type partitionJSON struct {
		Name       string       `json:"name"`
		Attributes uint32       `json:"attributes"`
		GroupIndex uint32       `json:"group_index"`
		Extents    []extentJSON `json:"extents"`
	}

	out := struct {
		Geometry struct {
			MetadataMaxSize   uint32 `json:"metadata_max_size"`
			MetadataSlotCount uint32 `json:"metadata_slot_count"`
			LogicalBlockSize  uint32 `json:"logical_block_size"`
		} `json:"geometry"`
		Partitions []partitionJSON `json:"partitions"`
	}{}

	out.Geometry.MetadataMaxSize = m.Geometry.MetadataMaxSize
	out.Geometry.MetadataSlotCount = m.Geometry.MetadataSlotCount
	out.Geometry.LogicalBlockSize = m.Geometry.LogicalBlockSize

	for _, p := range m.Partitions {
		pj := partitionJSON{Name: p.Name.GetName(), Attributes: p.Attributes, GroupIndex: p.GroupIndex}
		for _, e := range m.PartitionExtents(&p) {
			pj.Extents = append(pj.Extents, extentJSON{e.NumSectors, e.TargetType, e.TargetData, e.TargetSource})
		}
		out.Partitions = append(out.Partitions, pj)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
