package vm

import (
	"github.com/eel-lang/eel/classes"
	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/opcodes"
	"github.com/eel-lang/eel/values"
)

// execCompare implements the six comparison opcodes. Equality
// between two nils, two booleans, two numerics (mixed int/real allowed),
// or two interned strings by content is built in; anything else falls
// back to the operand's `compare` metamethod, which must return an
// integer Value whose sign gives the ordering.
func (vm *VirtualMachine) execCompare(f *CallFrame, inst *opcodes.Instruction) error {
	dst, lr, rr := inst.Op(0), inst.Op(1), inst.Op(2)
	l, r := f.get(lr), f.get(rr)

	cmp, eqOnly, err := vm.compareValues(l, r)
	if err != nil {
		return err
	}

	var result bool
	switch inst.Opcode {
	case opcodes.OP_CMP_EQ:
		result = cmp == 0
	case opcodes.OP_CMP_NE:
		result = cmp != 0
	case opcodes.OP_CMP_LT:
		if eqOnly {
			return rtErr(exception.NotImplemented, "operands support equality only, not ordering")
		}
		result = cmp < 0
	case opcodes.OP_CMP_LE:
		if eqOnly {
			return rtErr(exception.NotImplemented, "operands support equality only, not ordering")
		}
		result = cmp <= 0
	case opcodes.OP_CMP_GT:
		if eqOnly {
			return rtErr(exception.NotImplemented, "operands support equality only, not ordering")
		}
		result = cmp > 0
	case opcodes.OP_CMP_GE:
		if eqOnly {
			return rtErr(exception.NotImplemented, "operands support equality only, not ordering")
		}
		result = cmp >= 0
	}
	f.set(dst, values.Bool(result))
	return nil
}

// compareValues returns cmp < 0, == 0, > 0's ordering
// contract. eqOnly is true when only a same/different verdict was
// available (two booleans, two classids, or operands with no built-in
// ordering and no `compare` metamethod): cmp is 0 or nonzero but carries
// no ordering meaning in that case.
func (vm *VirtualMachine) compareValues(l, r values.Value) (cmp int, eqOnly bool, err error) {
	if l.Kind == r.Kind {
		switch l.Kind {
		case values.KindNil:
			return 0, false, nil
		case values.KindBool, values.KindClassID:
			return int(l.I) - int(r.I), true, nil
		case values.KindInt:
			return cmpInt(l.I, r.I), false, nil
		case values.KindReal:
			return cmpReal(l.R, r.R), false, nil
		}
	}
	if l.IsNumeric() && r.IsNumeric() {
		return cmpReal(l.AsFloat(), r.AsFloat()), false, nil
	}
	if l.IsObjRef() && r.IsObjRef() && l.Obj != nil && r.Obj != nil &&
		l.Obj.ClassID == values.CString && r.Obj.ClassID == values.CString {
		return cmpBytes(values.StringBytes(l.Obj), values.StringBytes(r.Obj)), false, nil
	}

	if fn := vm.Classes.ResolveMetamethod(l.ClassOf(), classes.MCompare); fn != nil {
		v, err := fn(vm, []values.Value{l, r})
		if err != nil {
			return 0, false, err
		}
		return int(v.I), false, nil
	}
	if fn := vm.Classes.ResolveMetamethod(r.ClassOf(), classes.MCompare); fn != nil {
		v, err := fn(vm, []values.Value{r, l})
		if err != nil {
			return 0, false, err
		}
		return -int(v.I), false, nil
	}

	if l.IsObjRef() && r.IsObjRef() {
		if l.Obj == r.Obj {
			return 0, true, nil
		}
		return 1, true, nil
	}
	return 1, true, nil
}

func cmpInt(a, b int32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpReal(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return int(a[i]) - int(b[i])
		}
	}
	return len(a) - len(b)
}
