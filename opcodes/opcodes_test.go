package opcodes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eel-lang/eel/opcodes"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []*opcodes.Instruction{
		opcodes.New(opcodes.OP_NOP),
		opcodes.New(opcodes.OP_LOAD, 1, 2),
		opcodes.New(opcodes.OP_ADD, 0, 1, 2),
		opcodes.New(opcodes.OP_LOAD, 5, 300),       // forces 16-bit operand
		opcodes.New(opcodes.OP_LOAD, 5, 100000),    // forces 32-bit operand
		opcodes.New(opcodes.OP_NEG, 0, -1),
		opcodes.New(opcodes.OP_TRY, 10, 2),
	}

	var buf []byte
	for _, inst := range cases {
		buf = inst.Encode(buf)
	}

	decoded, err := opcodes.DecodeAll(buf)
	require.NoError(t, err)
	require.Len(t, decoded, len(cases))

	for i, want := range cases {
		got := decoded[i]
		assert.Equal(t, want.Opcode, got.Opcode)
		assert.Equal(t, want.NumOps, got.NumOps)
		for j := 0; j < want.NumOps; j++ {
			assert.Equal(t, want.Op(j), got.Op(j))
		}
	}
}

func TestDecodeTruncatedStream(t *testing.T) {
	inst := opcodes.New(opcodes.OP_ADD, 0, 1, 2)
	buf := inst.Encode(nil)
	_, err := opcodes.DecodeAll(buf[:len(buf)-1])
	assert.Error(t, err)
}

func TestDecodeUnknownOpcode(t *testing.T) {
	_, _, err := opcodes.Decode([]byte{0xFF}, 0)
	assert.Error(t, err)
}

func TestOpcodeStringAndValid(t *testing.T) {
	assert.Equal(t, "add", opcodes.OP_ADD.String())
	assert.True(t, opcodes.OP_ADD.IsValid())
	assert.False(t, opcodes.Opcode(250).IsValid())
}
