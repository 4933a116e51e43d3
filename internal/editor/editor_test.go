package editor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Uotan-Dev/FirmwareKit.Lp/internal/types"
)

const (
	testDeviceSize  = 64 * 1024 * 1024
	testMetaMaxSize = 4096
	testSlotCount   = 2
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	return New(testDeviceSize, testMetaMaxSize, testSlotCount)
}

func TestNewBuilderInstallsDefaultGroupAndSuperDevice(t *testing.T) {
	b := newTestBuilder(t)
	require.Len(t, b.groups, 1)
	assert.Equal(t, types.DefaultGroupName, b.groups[0].Name)
	assert.Zero(t, b.groups[0].MaxSize)

	require.Len(t, b.blockDevices, 1)
	assert.Equal(t, types.DefaultBlockDevicePartitionName, b.blockDevices[0].PartitionName.GetName())
	assert.Equal(t, uint64(testDeviceSize), b.blockDevices[0].Size)
}

func TestAddPartitionRejectsDuplicateNameAndUnknownGroup(t *testing.T) {
	b := newTestBuilder(t)
	require.NoError(t, b.AddPartition("system", types.DefaultGroupName, 0))

	err := b.AddPartition("system", types.DefaultGroupName, 0)
	assert.ErrorIs(t, err, types.ErrAlreadyExists)

	err = b.AddPartition("vendor", "nonexistent", 0)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestRemovePartitionIsIdempotent(t *testing.T) {
	b := newTestBuilder(t)
	require.NoError(t, b.AddPartition("system", types.DefaultGroupName, 0))
	b.RemovePartition("system")
	assert.Empty(t, b.partitions)
	b.RemovePartition("system") // no panic, no error return to check
}

func TestReorderPartitionsDropsUnnamed(t *testing.T) {
	b := newTestBuilder(t)
	require.NoError(t, b.AddPartition("system", types.DefaultGroupName, 0))
	require.NoError(t, b.AddPartition("vendor", types.DefaultGroupName, 0))
	require.NoError(t, b.AddPartition("product", types.DefaultGroupName, 0))

	b.ReorderPartitions([]string{"product", "system", "ghost"})

	require.Len(t, b.partitions, 2)
	assert.Equal(t, "product", b.partitions[0].Name)
	assert.Equal(t, "system", b.partitions[1].Name)
}

func TestRemoveGroupRejectsDefaultAndInUse(t *testing.T) {
	b := newTestBuilder(t)
	err := b.RemoveGroup(types.DefaultGroupName)
	assert.ErrorIs(t, err, types.ErrInvariant)

	require.NoError(t, b.AddGroup("group_a", 0))
	require.NoError(t, b.AddPartition("system", "group_a", 0))

	err = b.RemoveGroup("group_a")
	assert.ErrorIs(t, err, types.ErrInvariant)

	b.RemovePartition("system")
	assert.NoError(t, b.RemoveGroup("group_a"))
}

// TestGroupCapacityInvariant covers testable property 6: a grow that
// would push group usage over its cap is rejected and leaves the
// partition's extents untouched.
func TestGroupCapacityInvariant(t *testing.T) {
	b := newTestBuilder(t)
	require.NoError(t, b.AddGroup("bounded", 8*1024*1024))
	require.NoError(t, b.AddPartition("system", "bounded", 0))
	require.NoError(t, b.ResizePartition("system", 4*1024*1024))

	before := append([]types.Extent(nil), b.findPartition("system").Extents...)

	err := b.ResizePartition("system", 16*1024*1024)
	require.ErrorIs(t, err, types.ErrCapacity)
	assert.Equal(t, before, b.findPartition("system").Extents)
}

// TestDeviceCapacityInvariant covers testable property 7: shrinking the
// block device below the highest allocated sector is rejected.
func TestDeviceCapacityInvariant(t *testing.T) {
	b := newTestBuilder(t)
	require.NoError(t, b.AddPartition("system", types.DefaultGroupName, 0))
	require.NoError(t, b.ResizePartition("system", 4*1024*1024))

	err := b.ResizeBlockDevice(1024 * 1024)
	assert.ErrorIs(t, err, types.ErrCapacity)

	assert.NoError(t, b.ResizeBlockDevice(testDeviceSize*2))
}

// TestGrowRespectsAlignment covers testable property 8: every linear
// extent a grow allocates starts at a sector whose byte offset is a
// multiple of the device's alignment.
func TestGrowRespectsAlignment(t *testing.T) {
	b := newTestBuilder(t)
	b.blockDevices[0].Alignment = 8192
	b.blockDevices[0].AlignmentOffset = 0

	require.NoError(t, b.AddPartition("a", types.DefaultGroupName, 0))
	require.NoError(t, b.ResizePartition("a", 1*1024*1024+1337))

	for _, e := range b.findPartition("a").Extents {
		assert.Zero(t, (e.TargetData*types.SectorSize)%8192)
	}
}

// TestShrinkTruncatesLastExtent covers testable property 9: shrinking a
// multi-extent partition retains whole leading extents and truncates
// the one straddling the new boundary.
func TestShrinkTruncatesLastExtent(t *testing.T) {
	extents := []types.Extent{
		{NumSectors: 100, TargetType: types.TargetTypeLinear, TargetData: 1000},
		{NumSectors: 100, TargetType: types.TargetTypeLinear, TargetData: 2000},
	}
	got := shrinkExtents(extents, 150)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(100), got[0].NumSectors)
	assert.Equal(t, uint64(50), got[1].NumSectors)
	assert.Equal(t, uint64(2000), got[1].TargetData)
}

func TestShrinkToZeroDropsAllExtents(t *testing.T) {
	extents := []types.Extent{{NumSectors: 100, TargetType: types.TargetTypeLinear, TargetData: 1000}}
	got := shrinkExtents(extents, 0)
	assert.Empty(t, got)
}

// TestResizePartitionGrowShrinkRoundTrip exercises scenario S4: grow a
// partition, shrink it back down, and confirm the sector accounting
// matches at each step.
func TestResizePartitionGrowShrinkRoundTrip(t *testing.T) {
	b := newTestBuilder(t)
	require.NoError(t, b.AddPartition("system", types.DefaultGroupName, 0))

	require.NoError(t, b.ResizePartition("system", 10*1024*1024))
	assert.Equal(t, uint64(10*1024*1024), totalSectors(b.findPartition("system").Extents)*types.SectorSize)

	require.NoError(t, b.ResizePartition("system", 2*1024*1024))
	assert.Equal(t, uint64(2*1024*1024), totalSectors(b.findPartition("system").Extents)*types.SectorSize)

	require.NoError(t, b.ResizePartition("system", 2*1024*1024))
}

// TestCompactPartitionsDefragments covers scenario S6: after several
// grows and shrinks fragment free space, compaction packs every
// partition into one contiguous extent without changing its size.
func TestCompactPartitionsDefragments(t *testing.T) {
	b := newTestBuilder(t)
	require.NoError(t, b.AddPartition("a", types.DefaultGroupName, 0))
	require.NoError(t, b.AddPartition("b", types.DefaultGroupName, 0))

	require.NoError(t, b.ResizePartition("a", 4*1024*1024))
	require.NoError(t, b.ResizePartition("b", 4*1024*1024))
	require.NoError(t, b.ResizePartition("a", 1*1024*1024))
	require.NoError(t, b.ResizePartition("a", 3*1024*1024))

	sizeBefore := make(map[string]uint64)
	for _, p := range b.partitions {
		sizeBefore[p.Name] = totalSectors(p.Extents)
	}

	require.NoError(t, b.CompactPartitions())

	for _, p := range b.partitions {
		assert.Len(t, p.Extents, 1)
		assert.Equal(t, sizeBefore[p.Name], totalSectors(p.Extents))
	}

	assert.Len(t, b.findPartition("a").Extents, 1)
	assert.Equal(t, b.blockDevices[0].FirstLogicalSector, b.findPartition("a").Extents[0].TargetData)
}

func TestCompactPartitionsRejectsOverflowWithoutMutating(t *testing.T) {
	b := New(16*1024*1024, testMetaMaxSize, testSlotCount)
	require.NoError(t, b.AddPartition("huge", types.DefaultGroupName, 0))
	require.NoError(t, b.ResizePartition("huge", 12*1024*1024))

	before := append([]types.Extent(nil), b.findPartition("huge").Extents...)

	// Shrink the device's usable range directly so compaction would
	// overflow it without touching any partition's extents first.
	b.blockDevices[0].Size = 10 * 1024 * 1024

	err := b.CompactPartitions()
	require.ErrorIs(t, err, types.ErrCapacity)
	assert.Equal(t, before, b.findPartition("huge").Extents)
}

func TestResizeGroupRejectsCapBelowUsage(t *testing.T) {
	b := newTestBuilder(t)
	require.NoError(t, b.AddPartition("system", types.DefaultGroupName, 0))
	require.NoError(t, b.ResizePartition("system", 4*1024*1024))

	err := b.ResizeGroup(types.DefaultGroupName, 1*1024*1024)
	assert.ErrorIs(t, err, types.ErrCapacity)

	assert.NoError(t, b.ResizeGroup(types.DefaultGroupName, 8*1024*1024))
}

func TestExportRoundTripsThroughFromMetadata(t *testing.T) {
	b := newTestBuilder(t)
	require.NoError(t, b.AddGroup("g1", 0))
	require.NoError(t, b.AddPartition("system", "g1", types.PartitionAttrReadonly))
	require.NoError(t, b.ResizePartition("system", 2*1024*1024))

	m := b.Export()
	require.Len(t, m.Partitions, 1)
	require.Len(t, m.Groups, 2)

	reloaded := FromMetadata(m)
	require.Len(t, reloaded.partitions, 1)
	assert.Equal(t, "system", reloaded.partitions[0].Name)
	assert.Equal(t, "g1", reloaded.partitions[0].GroupName)
	assert.Equal(t, uint64(2*1024*1024), totalSectors(reloaded.partitions[0].Extents)*types.SectorSize)
}

func TestResizePartitionUnknownNameReturnsNotFound(t *testing.T) {
	b := newTestBuilder(t)
	err := b.ResizePartition("ghost", 1024)
	assert.True(t, errors.Is(err, types.ErrNotFound))
}
