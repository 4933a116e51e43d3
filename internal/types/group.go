package types

import "encoding/binary"

// GroupFlag bits.
const (
	GroupFlagSlotSuffixed uint32 = 1
)

// DefaultGroupName is the group every metadata model carries and which
// cannot be removed.
const DefaultGroupName = "default"

// GroupRecordSize is the packed size of a Group record: name(36) +
// flags(4) + maximum_size(8).
const GroupRecordSize = nameBufferSize + 4 + 8

// Group is one entry of the groups table: a named quota bucket.
type Group struct {
	Name        NameBuffer36
	Flags       uint32
	MaximumSize uint64
}

// Encode writes the group's GroupRecordSize-byte payload into buf.
func (g *Group) Encode(buf []byte) {
	copy(buf[0:nameBufferSize], g.Name[:])
	off := nameBufferSize
	binary.LittleEndian.PutUint32(buf[off:off+4], g.Flags)
	binary.LittleEndian.PutUint64(buf[off+4:off+12], g.MaximumSize)
}

// DecodeGroup reads a Group from the first GroupRecordSize bytes of buf.
func DecodeGroup(buf []byte) Group {
	var g Group
	copy(g.Name[:], buf[0:nameBufferSize])
	off := nameBufferSize
	g.Flags = binary.LittleEndian.Uint32(buf[off : off+4])
	g.MaximumSize = binary.LittleEndian.Uint64(buf[off+4 : off+12])
	return g
}
