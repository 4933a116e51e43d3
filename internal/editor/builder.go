// Package editor implements an in-memory builder over the logical
// metadata model that admits partition/group mutations while maintaining
// free-region accounting and enforcing group- and device-capacity
// invariants. A Builder is not safe for concurrent use; callers own
// exclusivity.
package editor

import (
	"fmt"

	"github.com/Uotan-Dev/FirmwareKit.Lp/internal/types"
)

// groupState is one group as tracked by the builder: name, flags, and
// quota, in insertion order.
type groupState struct {
	Name    string
	Flags   uint32
	MaxSize uint64
}

// partitionState is one partition as tracked by the builder: name,
// attributes, the group it belongs to (by name, so group removal never
// invalidates a dangling index), and its own extents in append order.
type partitionState struct {
	Name       string
	Attributes uint32
	GroupName  string
	Extents    []types.Extent
}

// Builder is the in-memory layout editor over a single logical model. It
// is not safe for concurrent use.
type Builder struct {
	geometry     types.Geometry
	blockDevices []types.BlockDevice
	groups       []groupState
	partitions   []partitionState
}

// New creates a fresh builder: a geometry sized for metadataMaxSize and
// slotCount slots, one block device named "super" spanning deviceSize
// bytes, and a single "default" group with no size cap.
func New(deviceSize uint64, metadataMaxSize uint32, slotCount uint32) *Builder {
	b := &Builder{
		geometry: types.Geometry{
			Magic:             types.GeometryMagic,
			StructSize:        types.GeometryStructSize,
			MetadataMaxSize:   metadataMaxSize,
			MetadataSlotCount: slotCount,
			LogicalBlockSize:  types.LogicalBlockSize,
		},
	}

	firstLogicalByte := types.AlignUp(4096+(4096+uint64(metadataMaxSize)*uint64(slotCount))*2, 4096)
	firstLogicalSector := firstLogicalByte / types.SectorSize

	var dev types.BlockDevice
	dev.FirstLogicalSector = firstLogicalSector
	dev.Alignment = 4096
	dev.AlignmentOffset = 0
	dev.Size = deviceSize
	dev.PartitionName.SetName(types.DefaultBlockDevicePartitionName)
	b.blockDevices = []types.BlockDevice{dev}

	b.groups = []groupState{{Name: types.DefaultGroupName, MaxSize: 0}}
	return b
}

// FromMetadata rebuilds a builder from a previously parsed model: geometry
// and block devices are copied as-is, groups are copied by name/flags/max
// size, and each partition's extents are sliced out of the flat extents
// table using its FirstExtentIndex/NumExtents pair.
func FromMetadata(m *types.LpMetadata) *Builder {
	b := &Builder{
		geometry:     m.Geometry,
		blockDevices: append([]types.BlockDevice(nil), m.BlockDevices...),
	}

	groupNames := make([]string, len(m.Groups))
	for i, g := range m.Groups {
		name := g.Name.GetName()
		groupNames[i] = name
		b.groups = append(b.groups, groupState{Name: name, Flags: g.Flags, MaxSize: g.MaximumSize})
	}

	for _, p := range m.Partitions {
		groupName := types.DefaultGroupName
		if int(p.GroupIndex) < len(groupNames) {
			groupName = groupNames[p.GroupIndex]
		}
		extents := m.PartitionExtents(&p)
		b.partitions = append(b.partitions, partitionState{
			Name:       p.Name.GetName(),
			Attributes: p.Attributes,
			GroupName:  groupName,
			Extents:    append([]types.Extent(nil), extents...),
		})
	}
	return b
}

func (b *Builder) findPartition(name string) *partitionState {
	for i := range b.partitions {
		if b.partitions[i].Name == name {
			return &b.partitions[i]
		}
	}
	return nil
}

func (b *Builder) findGroup(name string) *groupState {
	for i := range b.groups {
		if b.groups[i].Name == name {
			return &b.groups[i]
		}
	}
	return nil
}

// AddPartition adds a new partition under the given group.
func (b *Builder) AddPartition(name, groupName string, attributes uint32) error {
	if b.findPartition(name) != nil {
		return fmt.Errorf("%w: partition %q", types.ErrAlreadyExists, name)
	}
	if b.findGroup(groupName) == nil {
		return fmt.Errorf("%w: group %q", types.ErrNotFound, groupName)
	}
	b.partitions = append(b.partitions, partitionState{Name: name, Attributes: attributes, GroupName: groupName})
	return nil
}

// RemovePartition removes a partition by name. It is idempotent: removing
// an absent partition is a no-op, not an error.
func (b *Builder) RemovePartition(name string) {
	for i := range b.partitions {
		if b.partitions[i].Name == name {
			b.partitions = append(b.partitions[:i], b.partitions[i+1:]...)
			return
		}
	}
}

// ReorderPartitions reorders the partitions present in the model to match
// names. Names absent from the model are ignored. Partitions not named in
// names are dropped from the ordering entirely, rather than kept at the
// tail; see DESIGN.md for the reasoning behind that choice.
func (b *Builder) ReorderPartitions(names []string) {
	reordered := make([]partitionState, 0, len(names))
	for _, name := range names {
		if p := b.findPartition(name); p != nil {
			reordered = append(reordered, *p)
		}
	}
	b.partitions = reordered
}

// AddGroup adds a new group with the given size cap (0 means unbounded).
func (b *Builder) AddGroup(name string, maxSize uint64) error {
	if b.findGroup(name) != nil {
		return fmt.Errorf("%w: group %q", types.ErrAlreadyExists, name)
	}
	b.groups = append(b.groups, groupState{Name: name, MaxSize: maxSize})
	return nil
}

// RemoveGroup removes a group. The "default" group can never be removed,
// nor can a group with any partition still assigned to it.
func (b *Builder) RemoveGroup(name string) error {
	if name == types.DefaultGroupName {
		return fmt.Errorf("%w: cannot remove the default group", types.ErrInvariant)
	}
	for _, p := range b.partitions {
		if p.GroupName == name {
			return fmt.Errorf("%w: group %q is still in use by partition %q", types.ErrInvariant, name, p.Name)
		}
	}
	for i := range b.groups {
		if b.groups[i].Name == name {
			b.groups = append(b.groups[:i], b.groups[i+1:]...)
			return nil
		}
	}
	return nil
}

// ResizeGroup changes a group's size cap. maxSize == 0 means unbounded. A
// bounded cap below the group's current usage is rejected and the model
// is left unchanged.
func (b *Builder) ResizeGroup(name string, maxSize uint64) error {
	g := b.findGroup(name)
	if g == nil {
		return fmt.Errorf("%w: group %q", types.ErrNotFound, name)
	}
	if maxSize > 0 {
		usage := b.groupLinearUsageBytes(name)
		if usage > maxSize {
			return fmt.Errorf("%w: group %q usage %d exceeds requested cap %d", types.ErrCapacity, name, usage, maxSize)
		}
	}
	g.MaxSize = maxSize
	return nil
}

// ResizeBlockDevice changes the size of block device 0. The new size must
// be large enough to hold every linear extent currently allocated on it.
func (b *Builder) ResizeBlockDevice(newSize uint64) error {
	if len(b.blockDevices) == 0 {
		return fmt.Errorf("%w: no block device", types.ErrNotFound)
	}
	maxEndSector := b.maxLinearEndSector()
	if newSize < maxEndSector*types.SectorSize {
		return fmt.Errorf("%w: new size %d is smaller than the highest allocated sector (%d)", types.ErrCapacity, newSize, maxEndSector)
	}
	b.blockDevices[0].Size = newSize
	return nil
}

func (b *Builder) maxLinearEndSector() uint64 {
	var max uint64
	for _, p := range b.partitions {
		for _, e := range p.Extents {
			if e.TargetType != types.TargetTypeLinear {
				continue
			}
			if end := e.EndSector(); end > max {
				max = end
			}
		}
	}
	return max
}

// groupLinearUsageBytes sums the linear-extent sectors of every partition
// assigned to the named group, converted to bytes.
func (b *Builder) groupLinearUsageBytes(groupName string) uint64 {
	var sectors uint64
	for _, p := range b.partitions {
		if p.GroupName != groupName {
			continue
		}
		sectors += linearSectors(p.Extents)
	}
	return sectors * types.SectorSize
}

func linearSectors(extents []types.Extent) uint64 {
	var total uint64
	for _, e := range extents {
		if e.TargetType == types.TargetTypeLinear {
			total += e.NumSectors
		}
	}
	return total
}

func totalSectors(extents []types.Extent) uint64 {
	var total uint64
	for _, e := range extents {
		total += e.NumSectors
	}
	return total
}
