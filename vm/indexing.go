package vm

import (
	"github.com/eel-lang/eel/classes"
	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/opcodes"
	"github.com/eel-lang/eel/values"
)

// execGetIndex implements GETINDEX: dispatch by the
// container's class, built-ins first, then the `getindex` metamethod for
// anything else.
func (vm *VirtualMachine) execGetIndex(f *CallFrame, inst *opcodes.Instruction) error {
	dst, cr, kr := inst.Op(0), inst.Op(1), inst.Op(2)
	container, key := f.get(cr), f.get(kr)

	v, err := vm.getIndex(container, key)
	if err != nil {
		return err
	}
	f.set(dst, v)
	return nil
}

func (vm *VirtualMachine) getIndex(container, key values.Value) (values.Value, error) {
	if !container.IsObjRef() || container.Obj == nil {
		return values.Nil, rtErr(exception.CantIndex, "value of class %d is not indexable", container.ClassOf())
	}
	obj := container.Obj
	switch obj.ClassID {
	case values.CArray:
		k, err := indexAsInt(key)
		if err != nil {
			return values.Nil, err
		}
		v, ok := values.ArrayGetIndex(obj, k)
		if !ok {
			return values.Nil, lowOrHighIndex(k, values.ArrayLength(obj))
		}
		return values.Copy(v), nil

	case values.CTable:
		v, found, err := values.TableGetIndex(obj, values.DefaultKeyOps, key)
		if err != nil {
			return values.Nil, rtErr(exception.WrongIndex, "%v", err)
		}
		if !found {
			return values.Nil, rtErr(exception.WrongIndex, "key not present in table")
		}
		return values.Copy(v), nil

	case values.CDString:
		k, err := indexAsInt(key)
		if err != nil {
			return values.Nil, err
		}
		b, ok := values.DSGetIndex(obj, k)
		if !ok {
			return values.Nil, lowOrHighIndex(k, values.DSLength(obj))
		}
		return values.Int(int32(b)), nil

	case values.CVectorU8, values.CVectorS8, values.CVectorU16, values.CVectorS16,
		values.CVectorU32, values.CVectorS32, values.CVectorF, values.CVectorD:
		k, err := indexAsInt(key)
		if err != nil {
			return values.Nil, err
		}
		v, ok := values.VectorGetIndex(obj, k)
		if !ok {
			return values.Nil, lowOrHighIndex(k, values.VectorLength(obj))
		}
		return v, nil
	}

	if fn := vm.Classes.ResolveMetamethod(obj.ClassID, classes.MGetIndex); fn != nil {
		return fn(vm, []values.Value{container, key})
	}
	return values.Nil, rtErr(exception.CantIndex, "class %d has no getindex metamethod", obj.ClassID)
}

// execSetIndex implements SETINDEX.
func (vm *VirtualMachine) execSetIndex(f *CallFrame, inst *opcodes.Instruction) error {
	cr, kr, vr := inst.Op(0), inst.Op(1), inst.Op(2)
	container, key, val := f.get(cr), f.get(kr), f.get(vr)
	return vm.setIndex(container, key, values.Copy(val))
}

func (vm *VirtualMachine) setIndex(container, key, val values.Value) error {
	if !container.IsObjRef() || container.Obj == nil {
		return rtErr(exception.CantIndex, "value of class %d is not indexable", container.ClassOf())
	}
	obj := container.Obj
	switch obj.ClassID {
	case values.CArray:
		k, err := indexAsInt(key)
		if err != nil {
			return err
		}
		if !values.ArraySetIndex(obj, k, val) {
			return rtErr(exception.LowIndex, "negative array index %d", k)
		}
		return nil

	case values.CTable:
		if err := values.TableSetIndex(obj, values.DefaultKeyOps, values.Copy(key), val); err != nil {
			return rtErr(exception.WrongIndex, "%v", err)
		}
		return nil

	case values.CDString:
		k, err := indexAsInt(key)
		if err != nil {
			return err
		}
		b := val.I
		if b < 0 {
			b = 0
		} else if b > 255 {
			b = 255
		}
		if !values.DSSetIndex(obj, k, byte(b)) {
			return rtErr(exception.LowIndex, "negative dstring index %d", k)
		}
		return nil

	case values.CVectorU8, values.CVectorS8, values.CVectorU16, values.CVectorS16,
		values.CVectorU32, values.CVectorS32, values.CVectorF, values.CVectorD:
		k, err := indexAsInt(key)
		if err != nil {
			return err
		}
		if !values.VectorSetIndex(obj, k, val) {
			return rtErr(exception.LowIndex, "negative vector index %d", k)
		}
		return nil
	}

	if fn := vm.Classes.ResolveMetamethod(obj.ClassID, classes.MSetIndex); fn != nil {
		_, err := fn(vm, []values.Value{container, key, val})
		return err
	}
	return rtErr(exception.CantWrite, "class %d has no setindex metamethod", obj.ClassID)
}

// execLength implements LENGTH.
func (vm *VirtualMachine) execLength(f *CallFrame, inst *opcodes.Instruction) error {
	dst, cr := inst.Op(0), inst.Op(1)
	container := f.get(cr)

	if !container.IsObjRef() || container.Obj == nil {
		return rtErr(exception.CantIndex, "value of class %d has no length", container.ClassOf())
	}
	obj := container.Obj
	switch obj.ClassID {
	case values.CArray:
		f.set(dst, values.Int(int32(values.ArrayLength(obj))))
		return nil
	case values.CTable:
		f.set(dst, values.Int(int32(values.TableLength(obj))))
		return nil
	case values.CDString:
		f.set(dst, values.Int(int32(values.DSLength(obj))))
		return nil
	case values.CString:
		f.set(dst, values.Int(int32(len(values.StringBytes(obj)))))
		return nil
	case values.CVectorU8, values.CVectorS8, values.CVectorU16, values.CVectorS16,
		values.CVectorU32, values.CVectorS32, values.CVectorF, values.CVectorD:
		f.set(dst, values.Int(int32(values.VectorLength(obj))))
		return nil
	}

	if fn := vm.Classes.ResolveMetamethod(obj.ClassID, classes.MLength); fn != nil {
		v, err := fn(vm, []values.Value{container})
		if err != nil {
			return err
		}
		f.set(dst, v)
		return nil
	}
	return rtErr(exception.NotImplemented, "class %d has no length metamethod", obj.ClassID)
}

// execIn implements IN (membership test,'s `in` metamethod):
// built in for Table (key presence) and Array (linear value scan), class
// dispatch for everything else.
func (vm *VirtualMachine) execIn(f *CallFrame, inst *opcodes.Instruction) error {
	dst, cr, kr := inst.Op(0), inst.Op(1), inst.Op(2)
	container, key := f.get(cr), f.get(kr)

	if !container.IsObjRef() || container.Obj == nil {
		return rtErr(exception.CantIndex, "value of class %d does not support `in`", container.ClassOf())
	}
	obj := container.Obj
	switch obj.ClassID {
	case values.CTable:
		_, found, err := values.TableGetIndex(obj, values.DefaultKeyOps, key)
		if err != nil {
			f.set(dst, values.Bool(false))
			return nil
		}
		f.set(dst, values.Bool(found))
		return nil
	case values.CArray:
		n := values.ArrayLength(obj)
		for i := 0; i < n; i++ {
			v, _ := values.ArrayGetIndex(obj, i)
			if eq, _ := values.DefaultKeyOps.Equal(v, key); eq {
				f.set(dst, values.Bool(true))
				return nil
			}
		}
		f.set(dst, values.Bool(false))
		return nil
	}

	if fn := vm.Classes.ResolveMetamethod(obj.ClassID, classes.MIn); fn != nil {
		v, err := fn(vm, []values.Value{container, key})
		if err != nil {
			return err
		}
		f.set(dst, v)
		return nil
	}
	return rtErr(exception.NotImplemented, "class %d has no in metamethod", obj.ClassID)
}

// execDelete implements DELETE: remove a key/index from the container,
// built-ins first, then the `delete` metamethod for anything else.
func (vm *VirtualMachine) execDelete(f *CallFrame, inst *opcodes.Instruction) error {
	cr, kr := inst.Op(0), inst.Op(1)
	container, key := f.get(cr), f.get(kr)
	return vm.deleteIndex(container, key)
}

func (vm *VirtualMachine) deleteIndex(container, key values.Value) error {
	if !container.IsObjRef() || container.Obj == nil {
		return rtErr(exception.CantIndex, "value of class %d is not indexable", container.ClassOf())
	}
	obj := container.Obj
	switch obj.ClassID {
	case values.CArray:
		k, err := indexAsInt(key)
		if err != nil {
			return err
		}
		if !values.ArrayDelete(obj, k) {
			return lowOrHighIndex(k, values.ArrayLength(obj))
		}
		return nil

	case values.CTable:
		if err := values.TableDelete(obj, values.DefaultKeyOps, key); err != nil {
			return rtErr(exception.WrongIndex, "%v", err)
		}
		return nil

	case values.CDString:
		k, err := indexAsInt(key)
		if err != nil {
			return err
		}
		if !values.DSDelete(obj, k) {
			return lowOrHighIndex(k, values.DSLength(obj))
		}
		return nil

	case values.CVectorU8, values.CVectorS8, values.CVectorU16, values.CVectorS16,
		values.CVectorU32, values.CVectorS32, values.CVectorF, values.CVectorD:
		k, err := indexAsInt(key)
		if err != nil {
			return err
		}
		if !values.VectorDelete(obj, k) {
			return lowOrHighIndex(k, values.VectorLength(obj))
		}
		return nil
	}

	if fn := vm.Classes.ResolveMetamethod(obj.ClassID, classes.MDelete); fn != nil {
		_, err := fn(vm, []values.Value{container, key})
		return err
	}
	return rtErr(exception.NotImplemented, "class %d has no delete metamethod", obj.ClassID)
}

// GetIndex, SetIndex and Length expose the same dispatch execGetIndex,
// execSetIndex and execLength use from bytecode, for host-side callers
// (the host package's getsindex/setsindex/getlindex/setlindex/length
// wrappers) that have no call frame to address registers in.
func (vm *VirtualMachine) GetIndex(container, key values.Value) (values.Value, error) {
	return vm.getIndex(container, key)
}

func (vm *VirtualMachine) SetIndex(container, key, value values.Value) error {
	return vm.setIndex(container, key, value)
}

func (vm *VirtualMachine) Delete(container, key values.Value) error {
	return vm.deleteIndex(container, key)
}

func (vm *VirtualMachine) Length(container values.Value) (int, error) {
	if !container.IsObjRef() || container.Obj == nil {
		return 0, rtErr(exception.CantIndex, "value of class %d has no length", container.ClassOf())
	}
	obj := container.Obj
	switch obj.ClassID {
	case values.CArray:
		return values.ArrayLength(obj), nil
	case values.CTable:
		return values.TableLength(obj), nil
	case values.CDString:
		return values.DSLength(obj), nil
	case values.CString:
		return len(values.StringBytes(obj)), nil
	case values.CVectorU8, values.CVectorS8, values.CVectorU16, values.CVectorS16,
		values.CVectorU32, values.CVectorS32, values.CVectorF, values.CVectorD:
		return values.VectorLength(obj), nil
	}
	if fn := vm.Classes.ResolveMetamethod(obj.ClassID, classes.MLength); fn != nil {
		v, err := fn(vm, []values.Value{container})
		if err != nil {
			return 0, err
		}
		return int(v.I), nil
	}
	return 0, rtErr(exception.NotImplemented, "class %d has no length metamethod", obj.ClassID)
}

func indexAsInt(key values.Value) (int, error) {
	if !key.IsInt() {
		return 0, rtErr(exception.WrongType, "index must be an integer, got %s", key.Kind)
	}
	return int(key.I), nil
}

func lowOrHighIndex(k, length int) error {
	if k < 0 {
		return rtErr(exception.LowIndex, "index %d is negative", k)
	}
	return rtErr(exception.HighIndex, "index %d is out of range (length %d)", k, length)
}
