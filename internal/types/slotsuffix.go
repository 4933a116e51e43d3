package types

import "strconv"

// SlotSuffix returns the per-slot partition name suffix for a given slot
// index: slot 0 is always "_a", every other slot is "_b". This is a naming
// convention consumers use to derive a slot-qualified partition name (e.g.
// "system" + SlotSuffix(1) == "system_b"); it is not applied by the codec
// or editor internally.
func SlotSuffix(slot uint32) string {
	if slot == 0 {
		return "_a"
	}
	return "_b"
}

// SlotSuffixedName appends the slot suffix for slot to base.
func SlotSuffixedName(base string, slot uint32) string {
	return base + SlotSuffix(slot)
}

// String renders a human-readable summary, used by cmd/lpdump.
func (d *TableDescriptor) String() string {
	return "offset=" + strconv.FormatUint(uint64(d.Offset), 10) +
		" num_entries=" + strconv.FormatUint(uint64(d.NumEntries), 10) +
		" entry_size=" + strconv.FormatUint(uint64(d.EntrySize), 10)
}
