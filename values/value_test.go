package values_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eel-lang/eel/values"
)

func TestStringPoolInterning(t *testing.T) {
	pool := values.NewStringPool()

	a := pool.NewString("hello")
	b := pool.NewString("hello")
	defer values.Disown(a)
	defer values.Disown(b)

	assert.Same(t, a, b, "equal byte content must resolve to the same pooled object")
	assert.EqualValues(t, 2, a.Refcount())
}

func TestStringPoolDistinctContent(t *testing.T) {
	pool := values.NewStringPool()

	a := pool.NewString("hello")
	b := pool.NewString("world")
	defer values.Disown(a)
	defer values.Disown(b)

	assert.NotSame(t, a, b)
}

func TestStringPoolFindMiss(t *testing.T) {
	pool := values.NewStringPool()
	require.Nil(t, pool.Find([]byte("nope")))
}

func TestRefcountStabilityUnderRepeatedOwnDisown(t *testing.T) {
	destroyed := 0
	obj := values.Alloc(values.CArray, nil, func(*values.Object) { destroyed++ })

	for i := 0; i < 1_000_000; i++ {
		values.Own(obj)
		values.Disown(obj)
	}

	assert.EqualValues(t, 1, obj.Refcount())
	assert.False(t, obj.Dead())
	assert.Equal(t, 0, destroyed)

	values.Disown(obj)
	assert.True(t, obj.Dead())
	assert.Equal(t, 1, destroyed)
}

func TestDisownBelowZeroPanics(t *testing.T) {
	obj := values.Alloc(values.CArray, nil, nil)
	values.Disown(obj)
	assert.Panics(t, func() { values.Disown(obj) })
}

func TestCopyDestroySymmetry(t *testing.T) {
	obj := values.Alloc(values.CArray, nil, nil)
	v := values.ObjRef(obj)

	cp := values.Copy(v)
	assert.EqualValues(t, 2, obj.Refcount())

	values.Destroy(cp)
	assert.EqualValues(t, 1, obj.Refcount())

	values.Destroy(v)
	assert.True(t, obj.Dead())
}
