package vm

import (
	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/opcodes"
	"github.com/eel-lang/eel/values"
)

// execNewObj implements NEWOBJ dst, classid, base, nargs:
// construct a fresh instance of classid from the argument window starting
// at base.
func (vm *VirtualMachine) execNewObj(f *CallFrame, inst *opcodes.Instruction) error {
	dst, classidReg, base, nargs := inst.Op(0), inst.Op(1), inst.Op(2), inst.Op(3)
	classid := f.get(classidReg).I

	class := vm.Classes.Class(classid)
	if class == nil {
		return rtErr(exception.WrongType, "no such class %d", classid)
	}
	if class.Construct == nil {
		return rtErr(exception.Constructor, "class %q has no constructor", class.Name)
	}

	args := make([]values.Value, nargs)
	for i := int32(0); i < nargs; i++ {
		args[i] = values.Copy(f.get(base + i))
	}

	data, err := class.Construct(vm, args)
	if err != nil {
		return err
	}

	destruct := class.Destruct
	var d values.Destructor
	if destruct != nil {
		d = func(o *values.Object) { destruct(vm, o.Data) }
	}
	obj := values.Alloc(classid, data, d)
	f.set(dst, values.ObjRef(obj))
	return nil
}

// execCast implements CAST dst, src, classid, dispatching
// to the source class's registered cast-table entry for the target class.
func (vm *VirtualMachine) execCast(f *CallFrame, inst *opcodes.Instruction) error {
	dst, srcReg, classidReg := inst.Op(0), inst.Op(1), inst.Op(2)
	src := f.get(srcReg)
	target := f.get(classidReg).I

	if src.ClassOf() == target {
		f.set(dst, values.Copy(src))
		return nil
	}

	fn := vm.Classes.ResolveCast(src.ClassOf(), target)
	if fn == nil {
		return rtErr(exception.NotImplemented, "no cast from class %d to class %d", src.ClassOf(), target)
	}
	v, err := fn(vm, src)
	if err != nil {
		return err
	}
	f.set(dst, v)
	return nil
}

// execClone implements CLONE dst, src: arrays and tables clone
// structurally; any other class, including dstrings and vectors, defers to
// its registered Clone callback and fails with NotImplemented when it has
// none.
func (vm *VirtualMachine) execClone(f *CallFrame, inst *opcodes.Instruction) error {
	dst, srcReg := inst.Op(0), inst.Op(1)
	src := f.get(srcReg)

	if !src.IsObjRef() || src.Obj == nil {
		f.set(dst, values.Copy(src))
		return nil
	}
	obj := src.Obj
	switch obj.ClassID {
	case values.CArray:
		f.set(dst, values.ObjRef(values.ArrayClone(obj)))
		return nil
	case values.CTable:
		f.set(dst, values.ObjRef(values.TableClone(obj)))
		return nil
	}

	class := vm.Classes.Class(obj.ClassID)
	if class == nil || class.Clone == nil {
		return rtErr(exception.NotImplemented, "class %d has no clone support", obj.ClassID)
	}
	data, err := class.Clone(vm, obj.Data)
	if err != nil {
		return err
	}
	destruct := class.Destruct
	var d values.Destructor
	if destruct != nil {
		d = func(o *values.Object) { destruct(vm, o.Data) }
	}
	f.set(dst, values.ObjRef(values.Alloc(obj.ClassID, data, d)))
	return nil
}
