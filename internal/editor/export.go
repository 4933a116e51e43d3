package editor

import "github.com/Uotan-Dev/FirmwareKit.Lp/internal/types"

// Export flattens the builder's partitions into the four entity tables
// and returns a logical model ready for the codec to serialize. Group
// names are resolved to indices in the order groups were added.
func (b *Builder) Export() *types.LpMetadata {
	m := &types.LpMetadata{
		Geometry:     b.geometry,
		BlockDevices: append([]types.BlockDevice(nil), b.blockDevices...),
	}

	groupIndex := make(map[string]uint32, len(b.groups))
	for i, g := range b.groups {
		groupIndex[g.Name] = uint32(i)
		var rec types.Group
		rec.Name.SetName(g.Name)
		rec.Flags = g.Flags
		rec.MaximumSize = g.MaxSize
		m.Groups = append(m.Groups, rec)
	}

	for _, p := range b.partitions {
		firstExtent := uint32(len(m.Extents))
		for _, e := range p.Extents {
			m.Extents = append(m.Extents, e)
		}

		var rec types.Partition
		rec.Name.SetName(p.Name)
		rec.Attributes = p.Attributes
		rec.FirstExtentIndex = firstExtent
		rec.NumExtents = uint32(len(p.Extents))
		rec.GroupIndex = groupIndex[p.GroupName]
		m.Partitions = append(m.Partitions, rec)
	}

	return m
}
