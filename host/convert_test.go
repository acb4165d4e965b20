package host_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eel-lang/eel/bytecode"
	"github.com/eel-lang/eel/host"
	"github.com/eel-lang/eel/opcodes"
)

func noopFunc(t *testing.T, h *host.Host) func() {
	t.Helper()
	b := bytecode.NewBuilder()
	fb := b.Func("noop", 0, 0, 0, 1, 1)
	fb.Emit(opcodes.OP_LOADNIL, 0)
	fb.Emit(opcodes.OP_RETURN, 0)
	idx := fb.Done()
	b.Export("noop", idx)

	m, err := h.LoadBuffer("convtest", bytecode.Encode(b.Build()))
	require.NoError(t, err)
	fn, ok := m.Lookup("noop")
	require.True(t, ok)
	return func() {
		_, err := h.Call(fn, nil)
		require.NoError(t, err)
	}
}

func TestBorrowToleratesFiveFurtherCalls(t *testing.T) {
	h := host.Open(host.Options{StrictLifetimes: true})
	defer h.Close()
	call := noopFunc(t, h)

	v := h.S2V("hello")
	b, err := h.V2S(v)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		call()
		require.NotPanics(t, func() { b.Bytes() })
	}
}

func TestBorrowPanicsPastTolerance(t *testing.T) {
	h := host.Open(host.Options{StrictLifetimes: true})
	defer h.Close()
	call := noopFunc(t, h)

	v := h.S2V("hello")
	b, err := h.V2S(v)
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		call()
	}
	require.Panics(t, func() { b.Bytes() })
}
