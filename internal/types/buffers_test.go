package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameBuffer36RoundTrip(t *testing.T) {
	var n NameBuffer36
	n.SetName("system_a")
	assert.Equal(t, "system_a", n.GetName())

	// trailing bytes must be zeroed
	for i := len("system_a"); i < len(n); i++ {
		require.Equal(t, byte(0), n[i], "byte %d should be zero", i)
	}
}

func TestNameBuffer36TruncatesSilently(t *testing.T) {
	var n NameBuffer36
	long := strings.Repeat("x", 100)
	n.SetName(long)
	got := n.GetName()
	assert.Equal(t, maxNameLen, len(got))
	assert.Equal(t, byte(0), n[nameBufferSize-1], "terminator byte must be NUL")
}

func TestNameBuffer36Empty(t *testing.T) {
	var n NameBuffer36
	n.SetName("")
	assert.Equal(t, "", n.GetName())
}

func TestNameBuffer36Overwrite(t *testing.T) {
	var n NameBuffer36
	n.SetName("vendor_b_longer_name")
	n.SetName("a")
	assert.Equal(t, "a", n.GetName(), "second SetName must clear stale bytes")
}
