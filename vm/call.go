package vm

import (
	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/module"
	"github.com/eel-lang/eel/opcodes"
	"github.com/eel-lang/eel/values"
)

// execCall implements CALL fn, base, nargs, nres: argv and
// resv both alias the same register window starting at base, so a
// successful call's single result simply overwrites the first argument
// register once the callee returns.
func (vm *VirtualMachine) execCall(f *CallFrame, inst *opcodes.Instruction) error {
	fnReg, base, nargs, nres := inst.Op(0), inst.Op(1), inst.Op(2), inst.Op(3)

	fnVal := f.get(fnReg)
	callee := module.AsFunction(fnVal)
	if callee == nil {
		return rtErr(exception.WrongType, "register %d does not hold a function", fnReg)
	}

	args := make([]values.Value, nargs)
	for i := int32(0); i < nargs; i++ {
		args[i] = values.Copy(f.get(base + i))
	}

	vm.Profile.Calls++
	result, err := vm.Invoke(callee, args)
	if err != nil {
		return err
	}
	if nres > 0 {
		f.set(base, result)
	} else {
		values.Destroy(result)
	}
	return nil
}

// execUnpack implements UNPACK dst_base, argv_index:
// spreads one trailing tuple group of the current frame's arguments,
// starting at argv_index, into consecutive registers from dst_base.
func (vm *VirtualMachine) execUnpack(f *CallFrame, inst *opcodes.Instruction) error {
	dstBase, argvIndex := inst.Op(0), inst.Op(1)
	group := f.Function.TupleArg
	if group <= 0 {
		return rtErr(exception.Arguments, "function %s declares no tuple argument group", f.Function.Name)
	}
	for i := 0; i < group; i++ {
		src := f.Argv + int(argvIndex) + i
		f.set(dstBase+int32(i), values.Copy(f.get(int32(src))))
	}
	return nil
}
