package values_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eel-lang/eel/values"
)

func TestArrayGrowOnWritePastEnd(t *testing.T) {
	arr := values.NewArray(2)
	defer values.Disown(arr)

	ok := values.ArraySetIndex(arr, 5, values.Int(42))
	require.True(t, ok)
	assert.Equal(t, 6, values.ArrayLength(arr))

	v, ok := values.ArrayGetIndex(arr, 5)
	require.True(t, ok)
	assert.Equal(t, int32(42), v.I)

	for _, i := range []int{0, 1, 2, 3, 4} {
		v, ok := values.ArrayGetIndex(arr, i)
		require.True(t, ok)
		assert.True(t, v.IsNil(), "gap slots must be Nil-filled")
	}
}

func TestArrayNegativeIndexFails(t *testing.T) {
	arr := values.NewArray(1)
	defer values.Disown(arr)
	assert.False(t, values.ArraySetIndex(arr, -1, values.Int(1)))

	_, ok := values.ArrayGetIndex(arr, -1)
	assert.False(t, ok)
}

func TestArrayDeleteShiftsDown(t *testing.T) {
	arr := values.NewArray(3)
	defer values.Disown(arr)
	values.ArraySetIndex(arr, 0, values.Int(10))
	values.ArraySetIndex(arr, 1, values.Int(20))
	values.ArraySetIndex(arr, 2, values.Int(30))

	require.True(t, values.ArrayDelete(arr, 0))
	assert.Equal(t, 2, values.ArrayLength(arr))

	v, _ := values.ArrayGetIndex(arr, 0)
	assert.Equal(t, int32(20), v.I)
}

func TestArrayCloneIsIndependent(t *testing.T) {
	arr := values.NewArray(1)
	values.ArraySetIndex(arr, 0, values.Int(1))

	clone := values.ArrayClone(arr)
	values.ArraySetIndex(arr, 0, values.Int(2))

	v, _ := values.ArrayGetIndex(clone, 0)
	assert.Equal(t, int32(1), v.I, "cloning must not alias the original's storage")

	values.Disown(arr)
	values.Disown(clone)
}
