package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionRoundTrip(t *testing.T) {
	var p Partition
	p.Name.SetName("vendor_a")
	p.Attributes = PartitionAttrReadonly | PartitionAttrSlotSuffixed
	p.FirstExtentIndex = 3
	p.NumExtents = 2
	p.GroupIndex = 1

	buf := make([]byte, PartitionRecordSize)
	p.Encode(buf)
	got := DecodePartition(buf)

	assert.Equal(t, p, got)
}

func TestPartitionForwardCompatibleEntrySize(t *testing.T) {
	var p Partition
	p.Name.SetName("system_b")
	p.NumExtents = 5

	// entry_size larger than our known record size: only the known
	// prefix should be decoded, trailing bytes ignored.
	buf := make([]byte, PartitionRecordSize+16)
	p.Encode(buf)
	got := DecodePartition(buf)
	assert.Equal(t, p.NumExtents, got.NumExtents)
	assert.Equal(t, "system_b", got.Name.GetName())
}

func TestExtentRoundTrip(t *testing.T) {
	e := Extent{NumSectors: 4096, TargetType: TargetTypeLinear, TargetData: 2048, TargetSource: 0}
	buf := make([]byte, ExtentRecordSize)
	e.Encode(buf)
	assert.Equal(t, e, DecodeExtent(buf))
	assert.Equal(t, uint64(2048+4096), e.EndSector())
}

func TestGroupRoundTrip(t *testing.T) {
	var g Group
	g.Name.SetName("main")
	g.Flags = GroupFlagSlotSuffixed
	g.MaximumSize = 8 << 30

	buf := make([]byte, GroupRecordSize)
	g.Encode(buf)
	assert.Equal(t, g, DecodeGroup(buf))
}

func TestBlockDeviceRoundTrip(t *testing.T) {
	var b BlockDevice
	b.FirstLogicalSector = 2048
	b.Alignment = 4096
	b.AlignmentOffset = 0
	b.Size = 16 << 30
	b.PartitionName.SetName(DefaultBlockDevicePartitionName)
	b.Flags = 0

	buf := make([]byte, BlockDeviceRecordSize)
	b.Encode(buf)
	assert.Equal(t, b, DecodeBlockDevice(buf))
}

func TestBlockDeviceUsableSectorLimit(t *testing.T) {
	b := BlockDevice{Size: 1 << 20}
	limit := b.UsableSectorLimit(65536, 2)
	assert.Equal(t, (uint64(1<<20)-65536*2)/SectorSize, limit)

	tooSmall := BlockDevice{Size: 1000}
	assert.Equal(t, uint64(0), tooSmall.UsableSectorLimit(65536, 2))
}

func TestGeometryRoundTrip(t *testing.T) {
	var g Geometry
	g.Magic = GeometryMagic
	g.StructSize = GeometryStructSize
	g.MetadataMaxSize = 65536
	g.MetadataSlotCount = 2
	g.LogicalBlockSize = LogicalBlockSize
	copy(g.Checksum[:], []byte("0123456789abcdef0123456789abcde"))

	buf := make([]byte, GeometryStructSize)
	g.Encode(buf)
	assert.Equal(t, g, DecodeGeometry(buf))
}

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{
		Magic:        HeaderMagic,
		MajorVersion: HeaderMajorVersion,
		MinorVersion: 0,
		HeaderSize:   HeaderSize,
		TablesSize:   1234,
		Partitions:   TableDescriptor{Offset: 0, NumEntries: 2, EntrySize: PartitionRecordSize},
		Extents:      TableDescriptor{Offset: 104, NumEntries: 2, EntrySize: ExtentRecordSize},
		Groups:       TableDescriptor{Offset: 152, NumEntries: 1, EntrySize: GroupRecordSize},
		BlockDevices: TableDescriptor{Offset: 200, NumEntries: 1, EntrySize: BlockDeviceRecordSize},
		Flags:        HeaderFlagVirtualABDevice,
	}

	buf := make([]byte, HeaderSize)
	h.Encode(buf)
	got := DecodeHeader(buf)
	assert.Equal(t, h, got)
}

func TestSlotSuffix(t *testing.T) {
	assert.Equal(t, "_a", SlotSuffix(0))
	assert.Equal(t, "_b", SlotSuffix(1))
	assert.Equal(t, "_b", SlotSuffix(7))
	assert.Equal(t, "system_a", SlotSuffixedName("system", 0))
}

func TestAlignUpAndSectors(t *testing.T) {
	assert.Equal(t, uint64(4096), AlignUp(1, 4096))
	assert.Equal(t, uint64(4096), AlignUp(4096, 4096))
	assert.Equal(t, uint64(8192), AlignUp(4097, 4096))
	assert.Equal(t, uint64(10), AlignUp(10, 0))

	assert.Equal(t, uint64(4), BytesToSectors(2048))
	assert.Equal(t, uint64(3), BytesToSectors(2000)) // truncates
	assert.Equal(t, uint64(2048), SectorsToBytes(4))
}
