package types

import "encoding/binary"

// TargetType values.
const (
	TargetTypeLinear uint32 = 0
	TargetTypeZero   uint32 = 1
)

// ExtentRecordSize is the packed size of an Extent record: num_sectors(8) +
// target_type(4) + target_data(8) + target_source(4).
const ExtentRecordSize = 8 + 4 + 8 + 4

// Extent is one entry of the extents table: a contiguous sector run
// assigned to a partition.
type Extent struct {
	NumSectors   uint64
	TargetType   uint32
	TargetData   uint64
	TargetSource uint32
}

// EndSector returns the first sector past this extent's allocation. Only
// meaningful for linear extents, but computed unconditionally since the
// caller already knows the target type.
func (e *Extent) EndSector() uint64 {
	return e.TargetData + e.NumSectors
}

// Encode writes the extent's ExtentRecordSize-byte payload into buf.
func (e *Extent) Encode(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], e.NumSectors)
	binary.LittleEndian.PutUint32(buf[8:12], e.TargetType)
	binary.LittleEndian.PutUint64(buf[12:20], e.TargetData)
	binary.LittleEndian.PutUint32(buf[20:24], e.TargetSource)
}

// DecodeExtent reads an Extent from the first ExtentRecordSize bytes of buf.
func DecodeExtent(buf []byte) Extent {
	var e Extent
	e.NumSectors = binary.LittleEndian.Uint64(buf[0:8])
	e.TargetType = binary.LittleEndian.Uint32(buf[8:12])
	e.TargetData = binary.LittleEndian.Uint64(buf[12:20])
	e.TargetSource = binary.LittleEndian.Uint32(buf[20:24])
	return e
}
