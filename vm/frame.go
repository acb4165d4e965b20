package vm

import (
	"github.com/eel-lang/eel/module"
	"github.com/eel-lang/eel/values"
)

// tryHandler is one entry of a frame's exception-handler stack
// (`try`/`untry`).
type tryHandler struct {
	target  int32 // instruction index to jump to on throw
	codeReg int32 // register that receives the exception code
}

// CallFrame is the register window one active call owns:
// Registers is the flat per-call register array; Argv/Resv/Argc are set on
// entry per the function's calling convention.
type CallFrame struct {
	Function *module.Function
	Registers []values.Value
	IP        int

	Argv int // base register index of the argument window
	Resv int // register index that will hold the return value
	Argc int // count of actual arguments supplied by the caller

	handlers []tryHandler
}

// newFrame allocates a fresh register window for fn, pre-filled with Nil.
func newFrame(fn *module.Function, argv, resv, argc int) *CallFrame {
	f := &CallFrame{
		Function: fn,
		Registers: make([]values.Value, fn.NumRegisters),
		Argv:      argv,
		Resv:      resv,
		Argc:      argc,
	}
	for i := range f.Registers {
		f.Registers[i] = values.Nil
	}
	return f
}

// get reads register r, treating an out-of-range index as Nil (defensive;
// a correctly-compiled module never does this).
func (f *CallFrame) get(r int32) values.Value {
	if int(r) < 0 || int(r) >= len(f.Registers) {
		return values.Nil
	}
	return f.Registers[r]
}

// set installs v into register r, destroying whatever owned value was
// there first.
func (f *CallFrame) set(r int32, v values.Value) {
	if int(r) < 0 || int(r) >= len(f.Registers) {
		return
	}
	values.Destroy(f.Registers[r])
	f.Registers[r] = v
}

// release destroys every owned value still held in the frame's register
// window, run when a frame is popped.
func (f *CallFrame) release() {
	for i, v := range f.Registers {
		values.Destroy(v)
		f.Registers[i] = values.Nil
	}
}

// pushHandler/popHandler/topHandler implement the try/untry handler stack
// local to one frame.
func (f *CallFrame) pushHandler(target, codeReg int32) {
	f.handlers = append(f.handlers, tryHandler{target: target, codeReg: codeReg})
}

func (f *CallFrame) popHandler() (tryHandler, bool) {
	if len(f.handlers) == 0 {
		return tryHandler{}, false
	}
	h := f.handlers[len(f.handlers)-1]
	f.handlers = f.handlers[:len(f.handlers)-1]
	return h, true
}
