package vm_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eel-lang/eel/bytecode"
	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/host"
	"github.com/eel-lang/eel/opcodes"
	"github.com/eel-lang/eel/values"
	"github.com/eel-lang/eel/vm"
)

func loadSingleFunc(t *testing.T, name string, reqArgs, optArgs, tupArg, results, numRegisters int, build func(fb *bytecode.FuncBuilder)) (*host.Host, values.Value) {
	t.Helper()
	b := bytecode.NewBuilder()
	fb := b.Func(name, reqArgs, optArgs, tupArg, results, numRegisters)
	build(fb)
	idx := fb.Done()
	b.Export(name, idx)

	h := host.Open(host.Options{})
	m, err := h.LoadBuffer("test", bytecode.Encode(b.Build()))
	require.NoError(t, err)

	fn, ok := m.Lookup(name)
	require.True(t, ok)
	return h, fn
}

func TestArithmeticAndReturn(t *testing.T) {
	b := bytecode.NewBuilder()
	c2 := b.ConstInt(2)
	c3 := b.ConstInt(3)
	fb := b.Func("add", 0, 0, 0, 1, 3)
	fb.Emit(opcodes.OP_LOAD, 0, int32(c2))
	fb.Emit(opcodes.OP_LOAD, 1, int32(c3))
	fb.Emit(opcodes.OP_ADD, 2, 0, 1)
	fb.Emit(opcodes.OP_RETURN, 2)
	idx := fb.Done()
	b.Export("add", idx)

	h := host.Open(host.Options{})
	defer h.Close()
	m, err := h.LoadBuffer("arith", bytecode.Encode(b.Build()))
	require.NoError(t, err)

	fn, ok := m.Lookup("add")
	require.True(t, ok)

	result, err := h.Call(fn, nil)
	require.NoError(t, err)
	assert.True(t, result.IsInt())
	assert.Equal(t, int32(5), result.I)
}

func TestIntegerOverflowWrapsModulo32(t *testing.T) {
	b := bytecode.NewBuilder()
	cmax := b.ConstInt(math.MaxInt32)
	c1 := b.ConstInt(1)
	fb := b.Func("overflow", 0, 0, 0, 1, 3)
	fb.Emit(opcodes.OP_LOAD, 0, int32(cmax))
	fb.Emit(opcodes.OP_LOAD, 1, int32(c1))
	fb.Emit(opcodes.OP_ADD, 2, 0, 1)
	fb.Emit(opcodes.OP_RETURN, 2)
	idx := fb.Done()
	b.Export("overflow", idx)

	h := host.Open(host.Options{})
	defer h.Close()
	m, err := h.LoadBuffer("overflow", bytecode.Encode(b.Build()))
	require.NoError(t, err)
	fn, _ := m.Lookup("overflow")

	result, err := h.Call(fn, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(math.MinInt32), result.I)
}

func TestFewArgsRaisesException(t *testing.T) {
	h, fn := loadSingleFunc(t, "needone", 1, 0, 0, 1, 1, func(fb *bytecode.FuncBuilder) {
		fb.Emit(opcodes.OP_RETURN, 0)
	})
	defer h.Close()

	_, err := h.Call(fn, nil)
	require.Error(t, err)
	assert.Equal(t, exception.FewArgs, vm.AsCode(err))
}

func TestManyArgsRaisesException(t *testing.T) {
	h, fn := loadSingleFunc(t, "neednone", 0, 0, 0, 1, 1, func(fb *bytecode.FuncBuilder) {
		fb.Emit(opcodes.OP_RETURN, 0)
	})
	defer h.Close()

	_, err := h.Call(fn, []values.Value{values.Int(1)})
	require.Error(t, err)
	assert.Equal(t, exception.ManyArgs, vm.AsCode(err))
}

func TestDivisionByZeroRaisesException(t *testing.T) {
	b := bytecode.NewBuilder()
	c1 := b.ConstInt(1)
	c0 := b.ConstInt(0)
	fb := b.Func("divzero", 0, 0, 0, 1, 3)
	fb.Emit(opcodes.OP_LOAD, 0, int32(c1))
	fb.Emit(opcodes.OP_LOAD, 1, int32(c0))
	fb.Emit(opcodes.OP_DIV, 2, 0, 1)
	fb.Emit(opcodes.OP_RETURN, 2)
	idx := fb.Done()
	b.Export("divzero", idx)

	h := host.Open(host.Options{})
	defer h.Close()
	m, err := h.LoadBuffer("divzero", bytecode.Encode(b.Build()))
	require.NoError(t, err)
	fn, _ := m.Lookup("divzero")

	_, err = h.Call(fn, nil)
	require.Error(t, err)
	assert.Equal(t, exception.DivByZero, vm.AsCode(err))
}

// TestRealDivisionByZeroPropagatesInfNaN exercises the IEEE 754 carve-out
// for reals: unlike the integer path, dividing or modding a real by zero
// must not raise, it must silently propagate ±Inf/NaN.
func TestRealDivisionByZeroPropagatesInfNaN(t *testing.T) {
	b := bytecode.NewBuilder()
	c1 := b.ConstReal(1)
	c0 := b.ConstReal(0)
	fb := b.Func("realdivzero", 0, 0, 0, 1, 3)
	fb.Emit(opcodes.OP_LOAD, 0, int32(c1))
	fb.Emit(opcodes.OP_LOAD, 1, int32(c0))
	fb.Emit(opcodes.OP_DIV, 2, 0, 1)
	fb.Emit(opcodes.OP_RETURN, 2)
	idx := fb.Done()
	b.Export("realdivzero", idx)

	h := host.Open(host.Options{})
	defer h.Close()
	m, err := h.LoadBuffer("realdivzero", bytecode.Encode(b.Build()))
	require.NoError(t, err)
	fn, _ := m.Lookup("realdivzero")

	result, err := h.Call(fn, nil)
	require.NoError(t, err, "real division by zero must not raise")
	assert.True(t, math.IsInf(result.R, 1))

	b2 := bytecode.NewBuilder()
	cz1 := b2.ConstReal(0)
	cz2 := b2.ConstReal(0)
	fb2 := b2.Func("realmodzero", 0, 0, 0, 1, 3)
	fb2.Emit(opcodes.OP_LOAD, 0, int32(cz1))
	fb2.Emit(opcodes.OP_LOAD, 1, int32(cz2))
	fb2.Emit(opcodes.OP_MOD, 2, 0, 1)
	fb2.Emit(opcodes.OP_RETURN, 2)
	idx2 := fb2.Done()
	b2.Export("realmodzero", idx2)

	h2 := host.Open(host.Options{})
	defer h2.Close()
	m2, err := h2.LoadBuffer("realmodzero", bytecode.Encode(b2.Build()))
	require.NoError(t, err)
	fn2, _ := m2.Lookup("realmodzero")

	result2, err := h2.Call(fn2, nil)
	require.NoError(t, err, "real modulo by zero must not raise")
	assert.True(t, math.IsNaN(result2.R))
}

// TestTryThrowUnwind exercises the try/untry/throw protocol: THROW inside
// a guarded region must resume at the handler's target with the code
// written into its designated register, instead of propagating out of
// the function.
func TestTryThrowUnwind(t *testing.T) {
	b := bytecode.NewBuilder()
	codeConst := b.ConstInt(int32(exception.Arguments))
	valConst := b.ConstInt(0)

	fb := b.Func("guarded", 0, 0, 0, 1, 3)
	fb.Emit(opcodes.OP_TRY, 5 /* target: index of the RETURN below */, 1 /* codeReg */)
	fb.Emit(opcodes.OP_LOAD, 0, int32(codeConst))
	fb.Emit(opcodes.OP_LOAD, 2, int32(valConst))
	fb.Emit(opcodes.OP_THROW, 0, 2)
	fb.Emit(opcodes.OP_LOADNIL, 0) // unreachable, skipped by the throw
	// target lands here (index 5):
	fb.Emit(opcodes.OP_RETURN, 1)
	idx := fb.Done()
	b.Export("guarded", idx)

	h := host.Open(host.Options{})
	defer h.Close()
	m, err := h.LoadBuffer("guarded", bytecode.Encode(b.Build()))
	require.NoError(t, err)
	fn, _ := m.Lookup("guarded")

	result, err := h.Call(fn, nil)
	require.NoError(t, err, "a caught throw must not propagate as a Go error")
	assert.Equal(t, int32(exception.Arguments), result.I)
}

func TestCallBetweenFunctions(t *testing.T) {
	b := bytecode.NewBuilder()
	c10 := b.ConstInt(10)

	calleeFb := b.Func("callee", 0, 0, 0, 1, 2)
	calleeFb.Emit(opcodes.OP_LOAD, 0, int32(c10))
	calleeFb.Emit(opcodes.OP_RETURN, 0)
	calleeIdx := calleeFb.Done()
	b.Export("callee", calleeIdx)

	callerFb := b.Func("caller", 0, 0, 0, 1, 2)
	callerFb.Emit(opcodes.OP_LOAD, 0, int32(b.ConstFuncRef(calleeIdx)))
	callerFb.Emit(opcodes.OP_CALL, 0, 0, 0, 1)
	callerFb.Emit(opcodes.OP_RETURN, 0)
	callerIdx := callerFb.Done()
	b.Export("caller", callerIdx)

	h := host.Open(host.Options{})
	defer h.Close()
	m, err := h.LoadBuffer("calls", bytecode.Encode(b.Build()))
	require.NoError(t, err)
	fn, _ := m.Lookup("caller")

	result, err := h.Call(fn, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(10), result.I)
}

func TestHostLevelIndexing(t *testing.T) {
	h := host.Open(host.Options{})
	defer h.Close()

	arr := values.ObjRef(values.NewArray(1))
	require.NoError(t, h.VM.SetIndex(arr, values.Int(0), values.Int(7)))
	v, err := h.VM.GetIndex(arr, values.Int(0))
	require.NoError(t, err)
	assert.Equal(t, int32(7), v.I)

	length, err := h.VM.Length(arr)
	require.NoError(t, err)
	assert.Equal(t, 1, length)

	values.Destroy(arr)
}

func TestHostLevelDelete(t *testing.T) {
	h := host.Open(host.Options{})
	defer h.Close()

	arr := values.ObjRef(values.NewArray(2))
	require.NoError(t, h.VM.SetIndex(arr, values.Int(0), values.Int(1)))
	require.NoError(t, h.VM.SetIndex(arr, values.Int(1), values.Int(2)))

	require.NoError(t, h.VM.Delete(arr, values.Int(0)))

	length, err := h.VM.Length(arr)
	require.NoError(t, err)
	assert.Equal(t, 1, length)

	v, err := h.VM.GetIndex(arr, values.Int(0))
	require.NoError(t, err)
	assert.Equal(t, int32(2), v.I, "deleting index 0 shifts the remaining element down")

	err = h.VM.Delete(arr, values.Int(5))
	require.Error(t, err)
	assert.Equal(t, exception.HighIndex, vm.AsCode(err))

	values.Destroy(arr)
}
