// Package codec implements the binary metadata codec (C4): geometry
// locate-and-parse, header/tables parse and serialize, and the full image
// read/write orchestration across primary and backup copies.
package codec

import (
	"fmt"

	"github.com/Uotan-Dev/FirmwareKit.Lp/internal/checksum"
	"github.com/Uotan-Dev/FirmwareKit.Lp/internal/logging"
	"github.com/Uotan-Dev/FirmwareKit.Lp/internal/types"
)

// geometryCandidateOffsets are tried in order by LocateGeometry: the
// primary location, the backup location, and a legacy/raw-variant
// fallback at offset 0. Preserved for compatibility with images laid out
// by older or non-standard tooling; use of the offset-0 fallback is
// logged as a warning since it signals a primary and backup that both
// failed to parse.
var geometryCandidateOffsets = [3]int64{
	types.PrimaryGeometryOffset,
	types.BackupGeometryOffset,
	0,
}

// ParseGeometry validates magic, struct_size, and the self-referential
// checksum of a GeometryPaddedSize-byte block, returning the decoded
// Geometry on success.
func ParseGeometry(block []byte) (types.Geometry, error) {
	if len(block) < types.GeometryStructSize {
		return types.Geometry{}, fmt.Errorf("%w: geometry block too short (%d bytes)", types.ErrInvalidData, len(block))
	}
	g := types.DecodeGeometry(block)
	if g.Magic != types.GeometryMagic {
		return types.Geometry{}, fmt.Errorf("%w: geometry magic mismatch (got 0x%x)", types.ErrInvalidData, g.Magic)
	}
	if int(g.StructSize) > len(block) || g.StructSize < types.GeometryStructSize {
		return types.Geometry{}, fmt.Errorf("%w: geometry struct_size %d does not fit buffer of %d bytes", types.ErrInvalidData, g.StructSize, len(block))
	}

	zeroStart, zeroEnd := types.GeometryChecksumWindow()
	computed := checksum.ZeroThenHash(block[:g.StructSize], zeroStart, zeroEnd)
	if computed != [checksum.Size]byte(g.Checksum) {
		return types.Geometry{}, fmt.Errorf("%w: geometry checksum mismatch", types.ErrChecksum)
	}
	return g, nil
}

// SerializeGeometry encodes g into a GeometryPaddedSize-byte block with a
// freshly computed self-referential checksum, zero-padded beyond
// StructSize.
func SerializeGeometry(g types.Geometry) []byte {
	block := make([]byte, types.GeometryPaddedSize)
	g.Encode(block[:g.StructSize])

	zeroStart, zeroEnd := types.GeometryChecksumWindow()
	digest := checksum.ZeroThenHash(block[:g.StructSize], zeroStart, zeroEnd)
	g.Checksum = digest
	g.Encode(block[:g.StructSize])
	return block
}

// blockReader is the minimal capability LocateGeometry needs: read exactly
// n bytes starting at an absolute offset.
type blockReader interface {
	ReadBlockAt(offset int64, n int) ([]byte, error)
}

// LocateGeometry tries the three candidate offsets in order, returning the
// first one that parses successfully along with the metadata base offset
// to compute slot addresses from. A failure at one offset is logged and
// treated as soft; only exhausting all three candidates is a terminal
// error.
func LocateGeometry(r blockReader, logger logging.Logger) (types.Geometry, int64, error) {
	if logger == nil {
		logger = logging.Nop{}
	}

	for _, offset := range geometryCandidateOffsets {
		block, err := r.ReadBlockAt(offset, types.GeometryPaddedSize)
		if err != nil {
			logger.Warn(fmt.Sprintf("lpmetadata: failed to read geometry candidate at offset %d: %v", offset, err))
			continue
		}

		g, err := ParseGeometry(block)
		if err != nil {
			logger.Warn(fmt.Sprintf("lpmetadata: geometry candidate at offset %d did not parse: %v", offset, err))
			continue
		}

		// The metadata base is always the primary geometry offset: the
		// primary storage region immediately follows the *pair* of
		// geometry blocks regardless of which candidate resolved them.
		if offset == types.BackupGeometryOffset {
			logger.Warn("lpmetadata: primary geometry unreadable, recovered from backup at offset 8192")
		}
		if offset == 0 {
			logger.Warn("lpmetadata: geometry recovered from legacy offset-0 fallback")
		}
		return g, types.PrimaryGeometryOffset, nil
	}

	return types.Geometry{}, 0, fmt.Errorf("%w: no geometry candidate offset parsed successfully", types.ErrInvalidData)
}

// SlotOffset computes the absolute offset of primary metadata slot index
// within the geometry's metadata region, given the metadata base offset
// LocateGeometry resolved.
func SlotOffset(metadataBase int64, metadataMaxSize uint32, slotIndex uint32) int64 {
	return metadataBase + 2*int64(types.GeometryPaddedSize) + int64(slotIndex)*int64(metadataMaxSize)
}

// BackupSlotOffset computes the absolute offset of backup metadata slot
// index, anchored to the tail of a device of the given size.
func BackupSlotOffset(deviceSize int64, metadataMaxSize uint32, slotCount uint32, slotIndex uint32) int64 {
	reserved := int64(metadataMaxSize) * int64(slotCount)
	return deviceSize - reserved + int64(slotIndex)*int64(metadataMaxSize)
}
