package values_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eel-lang/eel/values"
)

func TestDStringGrowOnWritePastEnd(t *testing.T) {
	d := values.NewDString([]byte("ab"))
	defer values.Disown(d)

	ok := values.DSSetIndex(d, 4, 'x')
	require.True(t, ok)
	assert.Equal(t, 5, values.DSLength(d))

	b, ok := values.DSGetIndex(d, 4)
	require.True(t, ok)
	assert.Equal(t, byte('x'), b)
}

func TestDStringNegativeIndexFails(t *testing.T) {
	d := values.NewDString([]byte("a"))
	defer values.Disown(d)
	assert.False(t, values.DSSetIndex(d, -1, 'x'))

	_, ok := values.DSGetIndex(d, -1)
	assert.False(t, ok)
}

func TestDStringDeleteShiftsDown(t *testing.T) {
	d := values.NewDString([]byte("abc"))
	defer values.Disown(d)

	require.True(t, values.DSDelete(d, 0))
	assert.Equal(t, 2, values.DSLength(d))

	b, _ := values.DSGetIndex(d, 0)
	assert.Equal(t, byte('b'), b)
}

func TestDStringDeleteOutOfRangeFails(t *testing.T) {
	d := values.NewDString([]byte("a"))
	defer values.Disown(d)
	assert.False(t, values.DSDelete(d, 5))
}
