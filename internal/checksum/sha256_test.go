package checksum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZeroThenHashLeavesOriginalUntouched(t *testing.T) {
	block := make([]byte, 64)
	for i := range block {
		block[i] = byte(i)
	}
	orig := append([]byte(nil), block...)

	digest := ZeroThenHash(block, 8, 40)
	assert.Equal(t, orig, block, "ZeroThenHash must not mutate its input")

	// hashing the zeroed clone ourselves should match
	clone := append([]byte(nil), orig...)
	for i := 8; i < 40; i++ {
		clone[i] = 0
	}
	want := Sum256(clone)
	assert.Equal(t, want, digest)
}

func TestVerify256(t *testing.T) {
	span := []byte("super metadata payload")
	digest := Sum256(span)
	assert.True(t, Verify256(span, digest))

	span[0] ^= 0xFF
	assert.False(t, Verify256(span, digest))
}
