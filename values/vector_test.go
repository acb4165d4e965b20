package values_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eel-lang/eel/values"
)

func TestVectorSetGetRoundTrip(t *testing.T) {
	v := values.NewVector(values.ElemS32, 3)
	defer values.Disown(v)

	require.True(t, values.VectorSetIndex(v, 1, values.Int(42)))
	got, ok := values.VectorGetIndex(v, 1)
	require.True(t, ok)
	assert.Equal(t, int32(42), got.I)
}

func TestVectorGrowOnWritePastEnd(t *testing.T) {
	v := values.NewVector(values.ElemU8, 1)
	defer values.Disown(v)

	require.True(t, values.VectorSetIndex(v, 3, values.Int(7)))
	assert.Equal(t, 4, values.VectorLength(v))
}

func TestVectorDeleteShiftsDown(t *testing.T) {
	v := values.NewVector(values.ElemS32, 3)
	defer values.Disown(v)
	values.VectorSetIndex(v, 0, values.Int(10))
	values.VectorSetIndex(v, 1, values.Int(20))
	values.VectorSetIndex(v, 2, values.Int(30))

	require.True(t, values.VectorDelete(v, 0))
	assert.Equal(t, 2, values.VectorLength(v))

	got, _ := values.VectorGetIndex(v, 0)
	assert.Equal(t, int32(20), got.I)
}

func TestVectorDeleteOutOfRangeFails(t *testing.T) {
	v := values.NewVector(values.ElemU8, 1)
	defer values.Disown(v)
	assert.False(t, values.VectorDelete(v, 5))
}
