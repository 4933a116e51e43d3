package types

import "encoding/binary"

// BlockDeviceFlag bits.
const (
	BlockDeviceFlagSlotSuffixed uint32 = 1
)

// DefaultBlockDevicePartitionName is the backing partition name the editor
// assigns to the block device it creates on construction.
const DefaultBlockDevicePartitionName = "super"

// BlockDeviceRecordSize is the packed size of a BlockDevice record:
// first_logical_sector(8) + alignment(4) + alignment_offset(4) + size(8) +
// partition_name(36) + flags(4).
const BlockDeviceRecordSize = 8 + 4 + 4 + 8 + nameBufferSize + 4

// BlockDevice is one entry of the block_devices table: the physical device
// (or super-image region) that extents are carved from.
type BlockDevice struct {
	FirstLogicalSector uint64
	Alignment          uint32
	AlignmentOffset    uint32
	Size               uint64
	PartitionName      NameBuffer36
	Flags              uint32
}

// Encode writes the block device's BlockDeviceRecordSize-byte payload into
// buf.
func (b *BlockDevice) Encode(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], b.FirstLogicalSector)
	binary.LittleEndian.PutUint32(buf[8:12], b.Alignment)
	binary.LittleEndian.PutUint32(buf[12:16], b.AlignmentOffset)
	binary.LittleEndian.PutUint64(buf[16:24], b.Size)
	copy(buf[24:24+nameBufferSize], b.PartitionName[:])
	off := 24 + nameBufferSize
	binary.LittleEndian.PutUint32(buf[off:off+4], b.Flags)
}

// DecodeBlockDevice reads a BlockDevice from the first
// BlockDeviceRecordSize bytes of buf.
func DecodeBlockDevice(buf []byte) BlockDevice {
	var b BlockDevice
	b.FirstLogicalSector = binary.LittleEndian.Uint64(buf[0:8])
	b.Alignment = binary.LittleEndian.Uint32(buf[8:12])
	b.AlignmentOffset = binary.LittleEndian.Uint32(buf[12:16])
	b.Size = binary.LittleEndian.Uint64(buf[16:24])
	copy(b.PartitionName[:], buf[24:24+nameBufferSize])
	off := 24 + nameBufferSize
	b.Flags = binary.LittleEndian.Uint32(buf[off : off+4])
	return b
}

// UsableSectorLimit returns the sector index past which no linear extent
// on this device may reach, once the backup metadata reservation at the
// device tail is accounted for.
func (b *BlockDevice) UsableSectorLimit(metadataMaxSize uint32, slotCount uint32) uint64 {
	reserved := uint64(metadataMaxSize) * uint64(slotCount)
	if reserved > b.Size {
		return 0
	}
	return (b.Size - reserved) / SectorSize
}
