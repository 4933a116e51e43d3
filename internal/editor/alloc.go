package editor

import (
	"sort"

	"github.com/Uotan-Dev/FirmwareKit.Lp/internal/types"
)

// region is a run of free sectors on block device 0.
type region struct {
	StartSector  uint64
	LengthSector uint64
}

// usableSectorRange returns [firstLogicalSector, usableLimit) for block
// device 0: usableLimit excludes the tail reserved for backup metadata
// slots.
func (b *Builder) usableSectorRange() (uint64, uint64) {
	if len(b.blockDevices) == 0 {
		return 0, 0
	}
	dev := b.blockDevices[0]
	limit := dev.UsableSectorLimit(b.geometry.MetadataMaxSize, b.geometry.MetadataSlotCount)
	return dev.FirstLogicalSector, limit
}

// freeRegions scans every partition's linear extents on device 0, sorts
// them by starting sector, and returns the gaps between them (plus the
// lead-in from first_logical_sector and the trail-out to the usable
// limit) as a list of free regions in ascending order.
func (b *Builder) freeRegions() []region {
	first, limit := b.usableSectorRange()
	if limit <= first {
		return nil
	}

	var used []types.Extent
	for _, p := range b.partitions {
		for _, e := range p.Extents {
			if e.TargetType == types.TargetTypeLinear && e.TargetSource == 0 {
				used = append(used, e)
			}
		}
	}
	sort.Slice(used, func(i, j int) bool { return used[i].TargetData < used[j].TargetData })

	var regions []region
	cur := first
	for _, e := range used {
		if e.TargetData > cur {
			regions = append(regions, region{StartSector: cur, LengthSector: e.TargetData - cur})
		}
		if end := e.EndSector(); end > cur {
			cur = end
		}
	}
	if cur < limit {
		regions = append(regions, region{StartSector: cur, LengthSector: limit - cur})
	}
	return regions
}

// alignSectorUp returns the smallest sector >= sector whose byte offset
// satisfies (offset - alignmentOffsetBytes) % alignmentBytes == 0.
func alignSectorUp(sector uint64, alignmentBytes, alignmentOffsetBytes uint32) uint64 {
	if alignmentBytes == 0 {
		return sector
	}
	byteStart := sector * types.SectorSize
	offset := uint64(alignmentOffsetBytes)
	if byteStart < offset {
		byteStart = offset
	}
	rem := (byteStart - offset) % uint64(alignmentBytes)
	if rem == 0 {
		return byteStart / types.SectorSize
	}
	advance := uint64(alignmentBytes) - rem
	return (byteStart + advance) / types.SectorSize
}

// growInto allocates sectorsNeeded sectors out of the current free
// regions, respecting block device 0's alignment, and returns the new
// linear extents to append. ok is false when the free space could not
// satisfy the whole request; the returned extents are then a partial,
// uncommitted attempt the caller must discard.
func (b *Builder) growInto(sectorsNeeded uint64) ([]types.Extent, bool) {
	if len(b.blockDevices) == 0 {
		return nil, false
	}
	dev := b.blockDevices[0]

	var out []types.Extent
	for _, r := range b.freeRegions() {
		if sectorsNeeded == 0 {
			break
		}
		start := alignSectorUp(r.StartSector, dev.Alignment, dev.AlignmentOffset)
		regionEnd := r.StartSector + r.LengthSector
		if start >= regionEnd {
			continue
		}
		avail := regionEnd - start
		take := avail
		if take > sectorsNeeded {
			take = sectorsNeeded
		}
		out = append(out, types.Extent{
			NumSectors:   take,
			TargetType:   types.TargetTypeLinear,
			TargetData:   start,
			TargetSource: 0,
		})
		sectorsNeeded -= take
	}
	return out, sectorsNeeded == 0
}
