package types

// Fixed-field buffers (C1). Three semantic shapes recur in the on-disk
// records: a 32-byte checksum span, a 36-byte null-terminated UTF-8 name,
// and a 124-byte reserved span. All three are represented as plain byte
// arrays embedded inline in the enclosing record so decoding never
// allocates per field.

const (
	// checksumSize is the width of every SHA-256 digest field in the
	// on-disk format.
	checksumSize = 32

	// nameBufferSize is the width of every inline name field (partitions,
	// groups, block devices).
	nameBufferSize = 36

	// maxNameLen is the usable payload of a NameBuffer36: one byte is
	// always reserved for the NUL terminator.
	maxNameLen = nameBufferSize - 1

	// headerReservedSize is the width of the header's trailing padding.
	headerReservedSize = 124
)

// Checksum32 is a raw SHA-256 digest as stored inline in a record.
type Checksum32 [checksumSize]byte

// Bytes returns the digest as a byte slice view.
func (c *Checksum32) Bytes() []byte { return c[:] }

// NameBuffer36 is a fixed 36-byte inline buffer holding a UTF-8 name of at
// most 35 bytes, NUL-terminated and zero-padded.
type NameBuffer36 [nameBufferSize]byte

// SetName encodes s into the buffer, truncating silently at 35 bytes and
// zeroing the remainder (including the terminator). Callers that care about
// truncation must validate the name length upstream; this buffer will not
// complain.
func (n *NameBuffer36) SetName(s string) {
	for i := range n {
		n[i] = 0
	}
	b := []byte(s)
	if len(b) > maxNameLen {
		b = b[:maxNameLen]
	}
	copy(n[:], b)
}

// GetName scans for the first NUL byte and decodes the bytes before it as
// UTF-8. A buffer with no NUL byte (malformed input) decodes its full span.
func (n *NameBuffer36) GetName() string {
	end := len(n)
	for i, b := range n {
		if b == 0 {
			end = i
			break
		}
	}
	return string(n[:end])
}

// AsSpan returns the buffer's bytes as a slice view.
func (n *NameBuffer36) AsSpan() []byte { return n[:] }

// reserved124 is the header's trailing padding; it carries no fields and
// is zeroed on construction.
type reserved124 [headerReservedSize]byte
