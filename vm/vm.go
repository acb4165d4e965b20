// Package vm implements the EEL register-based bytecode interpreter: the
// per-VM state (class registry, string pool, exception table, loaded
// modules), the call-frame stack, and the instruction dispatch loop.
package vm

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/eel-lang/eel/classes"
	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/module"
	"github.com/eel-lang/eel/opcodes"
	"github.com/eel-lang/eel/values"
)

// DebugLevel selects how much diagnostic detail the VM records while
// running, mirroring the teacher's profiling verbosity knobs rather than
// routing through an external logging library.
type DebugLevel int

const (
	DebugOff DebugLevel = iota
	DebugErrors
	DebugTrace
)

// VirtualMachine owns everything one EEL runtime instance needs: the class
// registry, string interning pool, exception-code table, the stack of
// loaded modules (torn down in reverse registration order), and the
// active call-frame stack.
type VirtualMachine struct {
	ID uuid.UUID

	Classes    *classes.Registry
	Strings    *values.StringPool
	Exceptions *exception.Table

	modules       []*module.Module
	moduleByName  map[string]*module.Module

	frames []*CallFrame

	Debug   DebugLevel
	Profile ProfileStats

	diagnostics []string // ring of recent diagnostic lines, see profiling.go
}

// New creates a fresh VM with an empty class registry (pre-seeded with the
// built-in classids) and string pool.
func New() *VirtualMachine {
	return &VirtualMachine{
		ID:           uuid.New(),
		Classes:      classes.NewRegistry(),
		Strings:      values.NewStringPool(),
		Exceptions:   exception.NewTable(),
		moduleByName: make(map[string]*module.Module),
	}
}

// VM satisfies classes.Context, letting constructors/metamethods recover
// the owning machine without this package importing classes in the other
// direction.
func (vm *VirtualMachine) VM() interface{} { return vm }

// Call satisfies classes.Context: invoke a function Value (bytecode or
// host) with args, as a metamethod or the `call` class hook needs to.
func (vm *VirtualMachine) Call(fn values.Value, args []values.Value) (values.Value, error) {
	f := module.AsFunction(fn)
	if f == nil {
		return values.Nil, rtErr(exception.WrongType, "value is not callable")
	}
	return vm.Invoke(f, args)
}

// RegisterModule adds m to the VM's loaded-module list, in load order, so
// Close can unload them in reverse.
func (vm *VirtualMachine) RegisterModule(m *module.Module) {
	vm.modules = append(vm.modules, m)
	vm.moduleByName[m.Name] = m
}

// Module looks up a loaded module by name.
func (vm *VirtualMachine) Module(name string) (*module.Module, bool) {
	m, ok := vm.moduleByName[name]
	return m, ok
}

// Close tears down every loaded module in reverse registration order,
// stopping and reporting the first refusal a module raises.
func (vm *VirtualMachine) Close() error {
	for i := len(vm.modules) - 1; i >= 0; i-- {
		m := vm.modules[i]
		if err := m.Unload(true); err != nil {
			return fmt.Errorf("vm: closing module %q: %w", m.Name, err)
		}
	}
	vm.modules = nil
	vm.moduleByName = make(map[string]*module.Module)
	return nil
}

// Invoke runs fn (bytecode or host) to completion and returns its single
// result, implementing argv/resv/argc calling convention.
func (vm *VirtualMachine) Invoke(fn *module.Function, args []values.Value) (values.Value, error) {
	if fn.IsHost() {
		vm.note("call host %s", fn.Name)
		return fn.Host(vm, args)
	}

	ok, tooFew := fn.AcceptsArgCount(len(args))
	if !ok {
		if tooFew {
			return values.Nil, rtErr(exception.FewArgs, "%s: expected at least %d arguments, got %d", fn.Name, fn.RequiredArg, len(args))
		}
		return values.Nil, rtErr(exception.ManyArgs, "%s: too many arguments (%d)", fn.Name, len(args))
	}

	f := newFrame(fn, 0, 0, len(args))
	for i, a := range args {
		if i >= len(f.Registers) {
			break
		}
		f.Registers[i] = values.Copy(a)
	}

	vm.frames = append(vm.frames, f)
	defer func() {
		vm.frames = vm.frames[:len(vm.frames)-1]
		f.release()
	}()

	return vm.run(f)
}

// run drives the fetch-decode-execute loop for one frame until a RETURN
// instruction produces a value or an unrecovered error propagates out.
func (vm *VirtualMachine) run(f *CallFrame) (values.Value, error) {
	for {
		if f.IP < 0 || f.IP >= len(f.Function.Instructions) {
			return values.Nil, rtErr(exception.WrongIndex, "%s: instruction pointer %d out of range", f.Function.Name, f.IP)
		}
		inst := f.Function.Instructions[f.IP]
		vm.trace(f, inst)

		result, returned, err := vm.executeInstruction(f, inst)
		if err != nil {
			if handled, newIP := vm.dispatchThrow(f, err); handled {
				f.IP = newIP
				continue
			}
			return values.Nil, err
		}
		if returned {
			return result, nil
		}
	}
}

// executeInstruction dispatches a single decoded instruction, advancing
// f.IP unless the instruction itself redirected control flow (jumps,
// throw). Returns (value, true, nil) on RETURN.
func (vm *VirtualMachine) executeInstruction(f *CallFrame, inst *opcodes.Instruction) (values.Value, bool, error) {
	switch inst.Opcode {
	case opcodes.OP_NOP:
		f.IP++
		return values.Nil, false, nil

	case opcodes.OP_LOAD:
		dst, idx := inst.Op(0), inst.Op(1)
		if int(idx) < 0 || int(idx) >= len(f.Function.Module.Constants) {
			return values.Nil, false, rtErr(exception.WrongIndex, "load: constant index %d out of range", idx)
		}
		f.set(dst, values.Copy(f.Function.Module.Constants[idx]))
		f.IP++
		return values.Nil, false, nil

	case opcodes.OP_STORE:
		dst, src := inst.Op(0), inst.Op(1)
		f.set(dst, values.Copy(f.get(src)))
		f.IP++
		return values.Nil, false, nil

	case opcodes.OP_LOADNIL:
		f.set(inst.Op(0), values.Nil)
		f.IP++
		return values.Nil, false, nil

	case opcodes.OP_LOADBOOL:
		f.set(inst.Op(0), values.Bool(inst.Op(1) != 0))
		f.IP++
		return values.Nil, false, nil

	case opcodes.OP_ADD, opcodes.OP_SUB, opcodes.OP_MUL, opcodes.OP_DIV, opcodes.OP_MOD,
		opcodes.OP_BAND, opcodes.OP_BOR, opcodes.OP_BXOR, opcodes.OP_SHL, opcodes.OP_SHR:
		if err := vm.execBinaryArith(f, inst); err != nil {
			return values.Nil, false, err
		}
		f.IP++
		return values.Nil, false, nil

	case opcodes.OP_NEG, opcodes.OP_BNOT:
		if err := vm.execUnaryArith(f, inst); err != nil {
			return values.Nil, false, err
		}
		f.IP++
		return values.Nil, false, nil

	case opcodes.OP_CMP_EQ, opcodes.OP_CMP_NE, opcodes.OP_CMP_LT,
		opcodes.OP_CMP_LE, opcodes.OP_CMP_GT, opcodes.OP_CMP_GE:
		if err := vm.execCompare(f, inst); err != nil {
			return values.Nil, false, err
		}
		f.IP++
		return values.Nil, false, nil

	case opcodes.OP_GETINDEX:
		if err := vm.execGetIndex(f, inst); err != nil {
			return values.Nil, false, err
		}
		f.IP++
		return values.Nil, false, nil

	case opcodes.OP_SETINDEX:
		if err := vm.execSetIndex(f, inst); err != nil {
			return values.Nil, false, err
		}
		f.IP++
		return values.Nil, false, nil

	case opcodes.OP_LENGTH:
		if err := vm.execLength(f, inst); err != nil {
			return values.Nil, false, err
		}
		f.IP++
		return values.Nil, false, nil

	case opcodes.OP_IN:
		if err := vm.execIn(f, inst); err != nil {
			return values.Nil, false, err
		}
		f.IP++
		return values.Nil, false, nil

	case opcodes.OP_DELETE:
		if err := vm.execDelete(f, inst); err != nil {
			return values.Nil, false, err
		}
		f.IP++
		return values.Nil, false, nil

	case opcodes.OP_JMP:
		f.IP = int(inst.Op(0))
		return values.Nil, false, nil

	case opcodes.OP_JZ:
		if !f.get(inst.Op(0)).Bool() {
			f.IP = int(inst.Op(1))
		} else {
			f.IP++
		}
		return values.Nil, false, nil

	case opcodes.OP_JNZ:
		if f.get(inst.Op(0)).Bool() {
			f.IP = int(inst.Op(1))
		} else {
			f.IP++
		}
		return values.Nil, false, nil

	case opcodes.OP_LOOP:
		counter, limit, target := inst.Op(0), inst.Op(1), inst.Op(2)
		cv := f.get(counter)
		next := values.Int(cv.I - 1)
		f.set(counter, next)
		if next.I > f.get(limit).I {
			f.IP = int(target)
		} else {
			f.IP++
		}
		return values.Nil, false, nil

	case opcodes.OP_CALL:
		if err := vm.execCall(f, inst); err != nil {
			return values.Nil, false, err
		}
		f.IP++
		return values.Nil, false, nil

	case opcodes.OP_RETURN:
		src := inst.Op(0)
		v := f.get(src)
		f.Registers[src] = values.Nil // transfer ownership out of the frame
		return v, true, nil

	case opcodes.OP_TRY:
		target, codeReg := inst.Op(0), inst.Op(1)
		f.pushHandler(target, codeReg)
		f.IP++
		return values.Nil, false, nil

	case opcodes.OP_UNTRY:
		f.popHandler()
		f.IP++
		return values.Nil, false, nil

	case opcodes.OP_THROW:
		codeReg, valReg := inst.Op(0), inst.Op(1)
		code := exception.Code(f.get(codeReg).I)
		return values.Nil, false, rtErr(code, "%s", f.get(valReg).String())

	case opcodes.OP_UNPACK:
		if err := vm.execUnpack(f, inst); err != nil {
			return values.Nil, false, err
		}
		f.IP++
		return values.Nil, false, nil

	case opcodes.OP_NEWOBJ:
		if err := vm.execNewObj(f, inst); err != nil {
			return values.Nil, false, err
		}
		f.IP++
		return values.Nil, false, nil

	case opcodes.OP_CAST:
		if err := vm.execCast(f, inst); err != nil {
			return values.Nil, false, err
		}
		f.IP++
		return values.Nil, false, nil

	case opcodes.OP_CLONE:
		if err := vm.execClone(f, inst); err != nil {
			return values.Nil, false, err
		}
		f.IP++
		return values.Nil, false, nil

	default:
		return values.Nil, false, rtErr(exception.NotImplemented, "unhandled opcode %s", inst.Opcode)
	}
}

// dispatchThrow looks for a handler on f for err, per the try/untry/throw
// protocol: on a match, the exception's code is written
// into the handler's code register and control resumes at its target.
func (vm *VirtualMachine) dispatchThrow(f *CallFrame, err error) (handled bool, newIP int) {
	h, ok := f.popHandler()
	if !ok {
		return false, 0
	}
	f.set(h.codeReg, values.Int(int32(AsCode(err))))
	return true, int(h.target)
}
