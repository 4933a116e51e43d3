package types

import "encoding/binary"

// PartitionAttribute bits.
const (
	PartitionAttrNone         uint32 = 0
	PartitionAttrReadonly     uint32 = 1
	PartitionAttrSlotSuffixed uint32 = 2
	PartitionAttrUpdated      uint32 = 4
	PartitionAttrDisabled     uint32 = 8
)

// PartitionRecordSize is the packed size of a Partition record: name(36) +
// attributes(4) + first_extent_index(4) + num_extents(4) + group_index(4).
const PartitionRecordSize = nameBufferSize + 16

// Partition is one entry of the partitions table.
type Partition struct {
	Name             NameBuffer36
	Attributes       uint32
	FirstExtentIndex uint32
	NumExtents       uint32
	GroupIndex       uint32
}

// Encode writes the partition's PartitionRecordSize-byte payload into buf.
func (p *Partition) Encode(buf []byte) {
	copy(buf[0:nameBufferSize], p.Name[:])
	off := nameBufferSize
	binary.LittleEndian.PutUint32(buf[off:off+4], p.Attributes)
	binary.LittleEndian.PutUint32(buf[off+4:off+8], p.FirstExtentIndex)
	binary.LittleEndian.PutUint32(buf[off+8:off+12], p.NumExtents)
	binary.LittleEndian.PutUint32(buf[off+12:off+16], p.GroupIndex)
}

// DecodePartition reads a Partition from the first PartitionRecordSize
// bytes of buf. buf may be longer (forward-compatible entry_size); only
// the known prefix is decoded.
func DecodePartition(buf []byte) Partition {
	var p Partition
	copy(p.Name[:], buf[0:nameBufferSize])
	off := nameBufferSize
	p.Attributes = binary.LittleEndian.Uint32(buf[off : off+4])
	p.FirstExtentIndex = binary.LittleEndian.Uint32(buf[off+4 : off+8])
	p.NumExtents = binary.LittleEndian.Uint32(buf[off+8 : off+12])
	p.GroupIndex = binary.LittleEndian.Uint32(buf[off+12 : off+16])
	return p
}
