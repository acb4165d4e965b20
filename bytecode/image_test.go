package bytecode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eel-lang/eel/bytecode"
	"github.com/eel-lang/eel/opcodes"
)

func buildSampleImage(t *testing.T) *bytecode.Image {
	t.Helper()
	b := bytecode.NewBuilder()
	ci := b.ConstInt(42)
	cr := b.ConstReal(3.5)
	cs := b.ConstString("hi")

	fb := b.Func("main", 0, 0, 0, 1, 3)
	fb.Emit(opcodes.OP_LOAD, 0, int32(ci))
	fb.Emit(opcodes.OP_LOAD, 1, int32(cr))
	fb.Emit(opcodes.OP_LOAD, 2, int32(cs))
	fb.Emit(opcodes.OP_RETURN, 0)
	idx := fb.Done()
	b.Export("main", idx)

	return b.Build()
}

func TestImageEncodeDecodeRoundTrip(t *testing.T) {
	img := buildSampleImage(t)
	buf := bytecode.Encode(img)

	decoded, err := bytecode.Decode(buf)
	require.NoError(t, err)

	assert.Equal(t, img.Version, decoded.Version)
	assert.Equal(t, img.Names, decoded.Names)
	require.Len(t, decoded.Constants, 3)
	assert.Equal(t, bytecode.TagInt, decoded.Constants[0].Tag)
	assert.Equal(t, int32(42), decoded.Constants[0].Int)
	assert.Equal(t, bytecode.TagReal, decoded.Constants[1].Tag)
	assert.Equal(t, 3.5, decoded.Constants[1].Real)
	assert.Equal(t, bytecode.TagStringRef, decoded.Constants[2].Tag)

	require.Len(t, decoded.Functions, 1)
	assert.Equal(t, img.Functions[0].Code, decoded.Functions[0].Code)
	require.Len(t, decoded.Exports, 1)
}

func TestVersionCompatibility(t *testing.T) {
	v := bytecode.Version{Major: 1, Minor: 0, Micro: 0}
	assert.True(t, v.CompatibleWith(bytecode.Version{Major: 1, Minor: 2, Micro: 0}))
	assert.False(t, v.CompatibleWith(bytecode.Version{Major: 2, Minor: 0, Micro: 0}))

	newer := bytecode.Version{Major: 1, Minor: 3, Micro: 0}
	assert.False(t, newer.CompatibleWith(bytecode.Version{Major: 1, Minor: 1, Micro: 0}))
}

func TestDecodeBadMagic(t *testing.T) {
	_, err := bytecode.Decode([]byte{0, 0, 0, 0})
	assert.Error(t, err)
}
