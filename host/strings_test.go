package host_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eel-lang/eel/host"
	"github.com/eel-lang/eel/values"
)

func TestNewIndexableCoversAllFourContainerKinds(t *testing.T) {
	h := host.Open(host.Options{})
	defer h.Close()

	for _, kind := range []string{"array", "table", "dstring", "vector"} {
		v, err := h.NewIndexable(kind, 3)
		require.NoError(t, err, "kind %q", kind)
		assert.True(t, v.IsObjRef(), "kind %q", kind)
		values.Destroy(v)
	}
}

func TestNewIndexableUnknownKind(t *testing.T) {
	h := host.Open(host.Options{})
	defer h.Close()

	_, err := h.NewIndexable("bogus", 1)
	require.Error(t, err)
}

func TestStatsTracksLiveObjects(t *testing.T) {
	h := host.Open(host.Options{})
	defer h.Close()

	before := h.Stats()

	v, err := h.NewIndexable("array", 1)
	require.NoError(t, err)

	during := h.Stats()
	assert.Equal(t, before.LiveObjects+1, during.LiveObjects)
	assert.Equal(t, before.TotalAllocated+1, during.TotalAllocated)

	values.Destroy(v)

	after := h.Stats()
	assert.Equal(t, before.LiveObjects, after.LiveObjects)
	assert.Equal(t, during.TotalAllocated, after.TotalAllocated, "TotalAllocated never decreases")
}
