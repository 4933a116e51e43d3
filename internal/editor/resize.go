package editor

import (
	"fmt"

	"github.com/Uotan-Dev/FirmwareKit.Lp/internal/types"
)

// ResizePartition grows or shrinks a partition to requestedSize bytes,
// truncated down to whole sectors. Requests are rejected, with the model left unchanged, when a
// grow would push the owning group over its size cap or could not be
// satisfied from free space; shrinking never fails.
func (b *Builder) ResizePartition(name string, requestedSize uint64) error {
	p := b.findPartition(name)
	if p == nil {
		return fmt.Errorf("%w: partition %q", types.ErrNotFound, name)
	}

	requestedSectors := types.BytesToSectors(requestedSize)
	currentSectors := totalSectors(p.Extents)

	switch {
	case requestedSectors == currentSectors:
		return nil
	case requestedSectors < currentSectors:
		p.Extents = shrinkExtents(p.Extents, requestedSectors)
		return nil
	}

	group := b.findGroup(p.GroupName)
	if group == nil {
		return fmt.Errorf("%w: group %q", types.ErrNotFound, p.GroupName)
	}
	if group.MaxSize > 0 {
		currentLinearBytes := linearSectors(p.Extents) * types.SectorSize
		usage := b.groupLinearUsageBytes(p.GroupName)
		newUsage := usage - currentLinearBytes + requestedSize
		if newUsage > group.MaxSize {
			return fmt.Errorf("%w: group %q usage would reach %d, cap is %d", types.ErrCapacity, p.GroupName, newUsage, group.MaxSize)
		}
	}

	delta := requestedSectors - currentSectors
	newExtents, ok := b.growInto(delta)
	if !ok {
		return fmt.Errorf("%w: not enough free space to grow %q by %d sectors", types.ErrCapacity, name, delta)
	}
	p.Extents = append(p.Extents, newExtents...)
	return nil
}
