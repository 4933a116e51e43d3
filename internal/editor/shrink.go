package editor

import "github.com/Uotan-Dev/FirmwareKit.Lp/internal/types"

// shrinkExtents walks extents in order, keeping whole extents until the
// running sector count would exceed newSectors, then truncates the
// extent that straddles the boundary to its leading portion and drops
// everything after it.
func shrinkExtents(extents []types.Extent, newSectors uint64) []types.Extent {
	kept := make([]types.Extent, 0, len(extents))
	var acc uint64
	for _, e := range extents {
		if acc+e.NumSectors <= newSectors {
			kept = append(kept, e)
			acc += e.NumSectors
			continue
		}
		if remaining := newSectors - acc; remaining > 0 {
			partial := e
			partial.NumSectors = remaining
			kept = append(kept, partial)
		}
		break
	}
	return kept
}
