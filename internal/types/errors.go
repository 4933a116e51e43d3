// Package types holds the fixed-layout records, buffers, and aggregate
// metadata model shared by the codec and the layout editor.
package types

import "errors"

// Sentinel error kinds. Concrete errors returned by this module wrap one of
// these with errors.Is/errors.As in mind, following the fmt.Errorf("...: %w")
// convention used throughout the codec and editor.
var (
	// ErrInvalidData covers magic mismatches, struct-size overflow against
	// the supplied buffer, and short reads.
	ErrInvalidData = errors.New("lpmetadata: invalid data")

	// ErrChecksum covers any SHA-256 comparison failure.
	ErrChecksum = errors.New("lpmetadata: checksum mismatch")

	// ErrCapacity covers a serialized blob exceeding metadata_max_size, a
	// device resize below used sectors, a group resize below current
	// usage, or a partition grow that cannot find enough aligned free
	// sectors.
	ErrCapacity = errors.New("lpmetadata: capacity exceeded")

	// ErrNotFound covers a partition add or partition resize referencing a
	// missing group, a resize of an unknown partition or group, and a
	// block-device resize on a builder with no block device.
	ErrNotFound = errors.New("lpmetadata: not found")

	// ErrAlreadyExists covers a duplicate name on partition/group add.
	ErrAlreadyExists = errors.New("lpmetadata: already exists")

	// ErrInvariant covers removing the "default" group or an in-use group.
	ErrInvariant = errors.New("lpmetadata: invariant violation")
)
