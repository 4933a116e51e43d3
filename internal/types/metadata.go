package types

// Reserved byte regions on block device index 0 (see spec §3).
const (
	// PartitionReservedHeaderSize is the opaque region at the very start
	// of the device, owned by whatever partitioned the physical disk.
	PartitionReservedHeaderSize = 4096

	// PrimaryGeometryOffset and BackupGeometryOffset are the two fixed
	// locations geometry is written to and read from.
	PrimaryGeometryOffset = PartitionReservedHeaderSize
	BackupGeometryOffset  = PrimaryGeometryOffset + GeometryPaddedSize

	// MetadataBaseOffset is where the pair of geometry blocks ends and
	// the primary metadata slots begin.
	MetadataBaseOffset = BackupGeometryOffset + GeometryPaddedSize
)

// LpMetadata is the full logical model: geometry, header, and the four
// entity tables. It is produced by internal/codec (reading a stream) or by
// internal/editor (fresh construction / export), and consumed by the other.
type LpMetadata struct {
	Geometry     Geometry
	Header       Header
	Partitions   []Partition
	Extents      []Extent
	Groups       []Group
	BlockDevices []BlockDevice
}

// PartitionExtents returns the slice of extents belonging to partition p,
// as located by its FirstExtentIndex/NumExtents fields.
func (m *LpMetadata) PartitionExtents(p *Partition) []Extent {
	start := p.FirstExtentIndex
	end := start + p.NumExtents
	if int(end) > len(m.Extents) {
		end = uint32(len(m.Extents))
	}
	if int(start) > len(m.Extents) {
		start = uint32(len(m.Extents))
	}
	return m.Extents[start:end]
}
