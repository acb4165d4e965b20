package values_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eel-lang/eel/values"
)

func TestTablePreservesInsertionOrder(t *testing.T) {
	tbl := values.NewTable()
	defer values.Disown(tbl)

	require.NoError(t, values.TableSetIndex(tbl, values.DefaultKeyOps, values.Int(3), values.Int(100)))
	require.NoError(t, values.TableSetIndex(tbl, values.DefaultKeyOps, values.Int(1), values.Int(200)))
	require.NoError(t, values.TableSetIndex(tbl, values.DefaultKeyOps, values.Int(2), values.Int(300)))

	var keys []int32
	for i := 0; ; i++ {
		k, _, ok := values.TableAt(tbl, i)
		if !ok {
			break
		}
		keys = append(keys, k.I)
	}
	assert.Equal(t, []int32{3, 1, 2}, keys)
}

func TestTableRewriteKeepsPosition(t *testing.T) {
	tbl := values.NewTable()
	defer values.Disown(tbl)

	values.TableSetIndex(tbl, values.DefaultKeyOps, values.Int(1), values.Int(1))
	values.TableSetIndex(tbl, values.DefaultKeyOps, values.Int(2), values.Int(2))
	require.NoError(t, values.TableSetIndex(tbl, values.DefaultKeyOps, values.Int(1), values.Int(99)))

	k, v, ok := values.TableAt(tbl, 0)
	require.True(t, ok)
	assert.Equal(t, int32(1), k.I)
	assert.Equal(t, int32(99), v.I, "updating an existing key must preserve its position")
	assert.Equal(t, 2, values.TableLength(tbl))
}

func TestTableSetNilValueDeletes(t *testing.T) {
	tbl := values.NewTable()
	defer values.Disown(tbl)

	values.TableSetIndex(tbl, values.DefaultKeyOps, values.Int(1), values.Int(1))
	require.NoError(t, values.TableSetIndex(tbl, values.DefaultKeyOps, values.Int(1), values.Nil))

	_, found, err := values.TableGetIndex(tbl, values.DefaultKeyOps, values.Int(1))
	require.NoError(t, err)
	assert.False(t, found, "writing nil as the value is the documented delete shorthand")
	assert.Equal(t, 0, values.TableLength(tbl))
}

func TestTableNilKeyIsRejected(t *testing.T) {
	tbl := values.NewTable()
	defer values.Disown(tbl)

	err := values.TableDelete(tbl, values.DefaultKeyOps, values.Nil)
	assert.Error(t, err, "nil keys are always rejected, distinct from a nil-value delete")
}

func TestTableStringKeysCompareByContent(t *testing.T) {
	pool := values.NewStringPool()
	tbl := values.NewTable()
	defer values.Disown(tbl)

	k1 := pool.NewString("x")
	require.NoError(t, values.TableSetIndex(tbl, values.DefaultKeyOps, values.ObjRef(k1), values.Int(1)))

	k2 := pool.NewString("x")
	defer values.Disown(k2)
	v, found, err := values.TableGetIndex(tbl, values.DefaultKeyOps, values.ObjRef(k2))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int32(1), v.I)
}
