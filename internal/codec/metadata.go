package codec

import (
	"fmt"

	"github.com/Uotan-Dev/FirmwareKit.Lp/internal/checksum"
	"github.com/Uotan-Dev/FirmwareKit.Lp/internal/types"
)

// tables is the decoded form of the four entity tables, independent of
// header or geometry.
type tables struct {
	Partitions   []types.Partition
	Extents      []types.Extent
	Groups       []types.Group
	BlockDevices []types.BlockDevice
}

// BuildMetadataBlob lays out partitions, extents, groups, and block_devices
// contiguously in that order, stamps a fresh Header over them (magic,
// sizes, descriptors, checksums, version), and returns header‖tables.
func BuildMetadataBlob(m *types.LpMetadata) ([]byte, error) {
	partTable := make([]byte, len(m.Partitions)*types.PartitionRecordSize)
	for i := range m.Partitions {
		m.Partitions[i].Encode(partTable[i*types.PartitionRecordSize : (i+1)*types.PartitionRecordSize])
	}

	extTable := make([]byte, len(m.Extents)*types.ExtentRecordSize)
	for i := range m.Extents {
		m.Extents[i].Encode(extTable[i*types.ExtentRecordSize : (i+1)*types.ExtentRecordSize])
	}

	groupTable := make([]byte, len(m.Groups)*types.GroupRecordSize)
	for i := range m.Groups {
		m.Groups[i].Encode(groupTable[i*types.GroupRecordSize : (i+1)*types.GroupRecordSize])
	}

	blockDevTable := make([]byte, len(m.BlockDevices)*types.BlockDeviceRecordSize)
	for i := range m.BlockDevices {
		m.BlockDevices[i].Encode(blockDevTable[i*types.BlockDeviceRecordSize : (i+1)*types.BlockDeviceRecordSize])
	}

	tablesBuf := make([]byte, 0, len(partTable)+len(extTable)+len(groupTable)+len(blockDevTable))
	partOffset := len(tablesBuf)
	tablesBuf = append(tablesBuf, partTable...)
	extOffset := len(tablesBuf)
	tablesBuf = append(tablesBuf, extTable...)
	groupOffset := len(tablesBuf)
	tablesBuf = append(tablesBuf, groupTable...)
	blockDevOffset := len(tablesBuf)
	tablesBuf = append(tablesBuf, blockDevTable...)

	tablesChecksum := checksum.Sum256(tablesBuf)

	h := types.Header{
		Magic:        types.HeaderMagic,
		MajorVersion: types.HeaderMajorVersion,
		MinorVersion: m.Header.MinorVersion,
		HeaderSize:   types.HeaderSize,
		TablesSize:   uint32(len(tablesBuf)),
		TablesChecksum: tablesChecksum,
		Partitions:   types.TableDescriptor{Offset: uint32(partOffset), NumEntries: uint32(len(m.Partitions)), EntrySize: types.PartitionRecordSize},
		Extents:      types.TableDescriptor{Offset: uint32(extOffset), NumEntries: uint32(len(m.Extents)), EntrySize: types.ExtentRecordSize},
		Groups:       types.TableDescriptor{Offset: uint32(groupOffset), NumEntries: uint32(len(m.Groups)), EntrySize: types.GroupRecordSize},
		BlockDevices: types.TableDescriptor{Offset: uint32(blockDevOffset), NumEntries: uint32(len(m.BlockDevices)), EntrySize: types.BlockDeviceRecordSize},
		Flags:        m.Header.Flags,
	}

	headerBuf := make([]byte, h.HeaderSize)
	h.Encode(headerBuf)
	zeroStart, zeroEnd := types.HeaderChecksumWindow()
	h.HeaderChecksum = checksum.ZeroThenHash(headerBuf[:h.HeaderSize], zeroStart, zeroEnd)
	h.Encode(headerBuf)

	m.Header = h

	blob := make([]byte, 0, len(headerBuf)+len(tablesBuf))
	blob = append(blob, headerBuf...)
	blob = append(blob, tablesBuf...)
	return blob, nil
}

// ParseMetadataBlob decodes a header‖tables blob, verifying the header
// checksum and the whole-tables checksum before decoding each table. It
// reads exactly entry_size bytes per record and decodes only the known
// prefix, tolerating an entry_size that exceeds this codec's own record
// size so a newer writer's wider records still decode on an older reader.
func ParseMetadataBlob(blob []byte) (types.Header, tables, error) {
	if len(blob) < types.HeaderSize {
		return types.Header{}, tables{}, fmt.Errorf("%w: metadata blob shorter than header (%d bytes)", types.ErrInvalidData, len(blob))
	}

	h := types.DecodeHeader(blob[:types.HeaderSize])
	if h.Magic != types.HeaderMagic {
		return types.Header{}, tables{}, fmt.Errorf("%w: header magic mismatch (got 0x%x)", types.ErrInvalidData, h.Magic)
	}
	if h.HeaderSize < types.HeaderSize || int(h.HeaderSize) > len(blob) {
		return types.Header{}, tables{}, fmt.Errorf("%w: header_size %d does not fit blob of %d bytes", types.ErrInvalidData, h.HeaderSize, len(blob))
	}

	zeroStart, zeroEnd := types.HeaderChecksumWindow()
	computedHeaderChecksum := checksum.ZeroThenHash(blob[:h.HeaderSize], zeroStart, zeroEnd)
	if computedHeaderChecksum != [checksum.Size]byte(h.HeaderChecksum) {
		return types.Header{}, tables{}, fmt.Errorf("%w: header checksum mismatch", types.ErrChecksum)
	}

	tablesStart := int(h.HeaderSize)
	tablesEnd := tablesStart + int(h.TablesSize)
	if tablesEnd > len(blob) {
		return types.Header{}, tables{}, fmt.Errorf("%w: tables_size %d exceeds remaining blob", types.ErrInvalidData, h.TablesSize)
	}
	tablesBuf := blob[tablesStart:tablesEnd]

	computedTablesChecksum := checksum.Sum256(tablesBuf)
	if computedTablesChecksum != [checksum.Size]byte(h.TablesChecksum) {
		return types.Header{}, tables{}, fmt.Errorf("%w: tables checksum mismatch", types.ErrChecksum)
	}

	if err := validateDescriptorLayout(h, uint32(len(tablesBuf))); err != nil {
		return types.Header{}, tables{}, err
	}

	var t tables
	var err error
	t.Partitions, err = decodeTable(tablesBuf, h.Partitions, types.PartitionRecordSize, types.DecodePartition)
	if err != nil {
		return types.Header{}, tables{}, err
	}
	t.Extents, err = decodeTable(tablesBuf, h.Extents, types.ExtentRecordSize, types.DecodeExtent)
	if err != nil {
		return types.Header{}, tables{}, err
	}
	t.Groups, err = decodeTable(tablesBuf, h.Groups, types.GroupRecordSize, types.DecodeGroup)
	if err != nil {
		return types.Header{}, tables{}, err
	}
	t.BlockDevices, err = decodeTable(tablesBuf, h.BlockDevices, types.BlockDeviceRecordSize, types.DecodeBlockDevice)
	if err != nil {
		return types.Header{}, tables{}, err
	}
	return h, t, nil
}

// validateDescriptorLayout checks that table offsets are increasing and
// non-overlapping within tablesSize, and that partitions starts at 0.
func validateDescriptorLayout(h types.Header, tablesSize uint32) error {
	if h.Partitions.Offset != 0 {
		return fmt.Errorf("%w: partition table offset must be 0, got %d", types.ErrInvalidData, h.Partitions.Offset)
	}
	descs := []types.TableDescriptor{h.Partitions, h.Extents, h.Groups, h.BlockDevices}
	var prevEnd uint32
	for i, d := range descs {
		if d.Offset < prevEnd {
			return fmt.Errorf("%w: table %d overlaps the previous table", types.ErrInvalidData, i)
		}
		end := d.Offset + d.NumEntries*d.EntrySize
		if end > tablesSize {
			return fmt.Errorf("%w: table %d extends past tables_size", types.ErrInvalidData, i)
		}
		prevEnd = end
	}
	return nil
}

func decodeTable[T any](tablesBuf []byte, d types.TableDescriptor, knownSize uint32, decode func([]byte) T) ([]T, error) {
	out := make([]T, 0, d.NumEntries)
	for i := uint32(0); i < d.NumEntries; i++ {
		start := d.Offset + i*d.EntrySize
		end := start + d.EntrySize
		if end > uint32(len(tablesBuf)) {
			return nil, fmt.Errorf("%w: table entry %d reads past tables buffer", types.ErrInvalidData, i)
		}
		entry := tablesBuf[start:end]
		if uint32(len(entry)) < knownSize {
			return nil, fmt.Errorf("%w: table entry %d shorter than known record size", types.ErrInvalidData, i)
		}
		out = append(out, decode(entry[:knownSize]))
	}
	return out, nil
}
