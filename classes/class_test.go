package classes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eel-lang/eel/classes"
	"github.com/eel-lang/eel/values"
)

type fakeContext struct{}

func (fakeContext) Call(values.Value, []values.Value) (values.Value, error) { return values.Nil, nil }
func (fakeContext) VM() interface{}                                        { return nil }

func TestSeedBuiltinsPopulatesReservedClasses(t *testing.T) {
	r := classes.NewRegistry()
	c := r.Class(values.CString)
	require.NotNil(t, c)
	assert.Equal(t, "string", c.Name)

	byName, ok := r.ClassByName("STRING")
	require.True(t, ok, "class lookup by name must be case-insensitive")
	assert.Equal(t, values.CString, byName.ID)
}

func TestRegisterClassAssignsIncreasingIDs(t *testing.T) {
	r := classes.NewRegistry()
	id1, err := r.RegisterClass("widget", -1, nil, nil, nil)
	require.NoError(t, err)
	id2, err := r.RegisterClass("gadget", -1, nil, nil, nil)
	require.NoError(t, err)
	assert.Greater(t, id2, id1)
	assert.GreaterOrEqual(t, id1, values.FirstUserClass)
}

func TestMetamethodResolutionWalksParentChain(t *testing.T) {
	r := classes.NewRegistry()
	base, err := r.RegisterClass("base", -1, nil, nil, nil)
	require.NoError(t, err)
	derived, err := r.RegisterClass("derived", base, nil, nil, nil)
	require.NoError(t, err)

	called := false
	require.NoError(t, r.SetMetamethod(base, classes.MLength, func(classes.Context, []values.Value) (values.Value, error) {
		called = true
		return values.Int(7), nil
	}))

	fn := r.ResolveMetamethod(derived, classes.MLength)
	require.NotNil(t, fn, "a metamethod set on a parent must resolve for its child")

	v, err := fn(fakeContext{}, nil)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, int32(7), v.I)
}

func TestMetamethodResolutionMissReturnsNil(t *testing.T) {
	r := classes.NewRegistry()
	id, err := r.RegisterClass("lonely", -1, nil, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, r.ResolveMetamethod(id, classes.MAdd))
}

func TestRegisterClassOverflow(t *testing.T) {
	r := classes.NewRegistry()
	var lastErr error
	for i := 0; i < 70000; i++ {
		_, err := r.RegisterClass("c", -1, nil, nil, nil)
		if err != nil {
			lastErr = err
			break
		}
	}
	assert.ErrorIs(t, lastErr, classes.ErrTableOverflow)
}
