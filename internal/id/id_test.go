package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 500

	for range count {
		id, err := Generate("sub")
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	id, err := Generate("sub")
	require.NoError(t, err)

	prefix, rest, ok := strings.Cut(id, "-")
	require.True(t, ok)
	assert.Equal(t, "sub", prefix)
	assert.Len(t, rest, handleLength)
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.True(t, strings.HasPrefix(MustGenerate("sub"), "sub-"))
	})
}
