package editor

import (
	"fmt"

	"github.com/Uotan-Dev/FirmwareKit.Lp/internal/types"
)

// CompactPartitions rewrites every partition to a single contiguous
// linear extent, packed back-to-back starting at first_logical_sector in
// current partition order. Each partition keeps its existing total
// sector count; only the layout is defragmented.
//
// Validation runs before any mutation: if the packed layout would not
// fit in the usable sector range, CompactPartitions returns a wrapped
// types.ErrCapacity and leaves the model untouched rather than silently
// truncating any partition's extents.
func (b *Builder) CompactPartitions() error {
	_, limit := b.usableSectorRange()

	cur := b.firstLogicalSectorOrZero()
	for _, p := range b.partitions {
		sectors := totalSectors(p.Extents)
		if sectors == 0 {
			continue
		}
		cur = alignSectorUp(cur, b.deviceAlignment(), b.deviceAlignmentOffset())
		cur += sectors
	}
	if cur > limit {
		return fmt.Errorf("%w: compacted layout needs %d sectors, usable range ends at %d", types.ErrCapacity, cur, limit)
	}

	cur = b.firstLogicalSectorOrZero()
	for i := range b.partitions {
		sectors := totalSectors(b.partitions[i].Extents)
		if sectors == 0 {
			b.partitions[i].Extents = nil
			continue
		}
		cur = alignSectorUp(cur, b.deviceAlignment(), b.deviceAlignmentOffset())
		b.partitions[i].Extents = []types.Extent{{
			NumSectors:   sectors,
			TargetType:   types.TargetTypeLinear,
			TargetData:   cur,
			TargetSource: 0,
		}}
		cur += sectors
	}
	return nil
}

func (b *Builder) firstLogicalSectorOrZero() uint64 {
	if len(b.blockDevices) == 0 {
		return 0
	}
	return b.blockDevices[0].FirstLogicalSector
}

func (b *Builder) deviceAlignment() uint32 {
	if len(b.blockDevices) == 0 {
		return 0
	}
	return b.blockDevices[0].Alignment
}

func (b *Builder) deviceAlignmentOffset() uint32 {
	if len(b.blockDevices) == 0 {
		return 0
	}
	return b.blockDevices[0].AlignmentOffset
}
