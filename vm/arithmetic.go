package vm

import (
	"math"

	"github.com/eel-lang/eel/classes"
	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/opcodes"
	"github.com/eel-lang/eel/values"
)

// opToMetamethod maps an arithmetic opcode to the class metamethod
// dispatched to when an operand is not a built-in numeric kind.
var opToMetamethod = map[opcodes.Opcode]classes.Metamethod{
	opcodes.OP_ADD: classes.MAdd, opcodes.OP_SUB: classes.MSub,
	opcodes.OP_MUL: classes.MMul, opcodes.OP_DIV: classes.MDiv,
	opcodes.OP_MOD: classes.MMod, opcodes.OP_BAND: classes.MBAnd,
	opcodes.OP_BOR: classes.MBOr, opcodes.OP_BXOR: classes.MBXor,
	opcodes.OP_SHL: classes.MShl, opcodes.OP_SHR: classes.MShr,
}

// execBinaryArith implements's binary arithmetic instructions:
// integer ops wrap modulo 2^32, mixing an integer with a real promotes the
// whole operation to real, and any
// non-numeric operand is retried against its class's metamethod, left
// operand first then right.
func (vm *VirtualMachine) execBinaryArith(f *CallFrame, inst *opcodes.Instruction) error {
	dst, lr, rr := inst.Op(0), inst.Op(1), inst.Op(2)
	l, r := f.get(lr), f.get(rr)

	if l.IsNumeric() && r.IsNumeric() {
		result, err := vm.numericBinary(inst.Opcode, l, r)
		if err != nil {
			return err
		}
		f.set(dst, result)
		return nil
	}

	mm := opToMetamethod[inst.Opcode]
	if result, ok, err := vm.tryBinaryMetamethod(mm, l, r); ok {
		if err != nil {
			return err
		}
		f.set(dst, result)
		return nil
	}
	return rtErr(exception.WrongType, "%s: operand is not numeric and has no %s metamethod", inst.Opcode, mm)
}

// tryBinaryMetamethod tries the operation against l's class first, then
// r's when l's class has no such metamethod or its metamethod fails with
// NotImplemented.
func (vm *VirtualMachine) tryBinaryMetamethod(mm classes.Metamethod, l, r values.Value) (values.Value, bool, error) {
	if fn := vm.Classes.ResolveMetamethod(l.ClassOf(), mm); fn != nil {
		v, err := fn(vm, []values.Value{l, r})
		if AsCode(err) != exception.NotImplemented {
			return v, true, err
		}
	}
	if fn := vm.Classes.ResolveMetamethod(r.ClassOf(), mm); fn != nil {
		v, err := fn(vm, []values.Value{l, r})
		return v, true, err
	}
	return values.Nil, false, nil
}

func (vm *VirtualMachine) numericBinary(op opcodes.Opcode, l, r values.Value) (values.Value, error) {
	if l.Kind == values.KindReal || r.Kind == values.KindReal {
		return realBinary(op, l.AsFloat(), r.AsFloat())
	}
	return intBinary(op, l.I, r.I)
}

// intBinary implements 32-bit two's-complement wraparound arithmetic:
// integer overflow wraps modulo 2^32.
func intBinary(op opcodes.Opcode, a, b int32) (values.Value, error) {
	ua, ub := uint32(a), uint32(b)
	switch op {
	case opcodes.OP_ADD:
		return values.Int(int32(ua + ub)), nil
	case opcodes.OP_SUB:
		return values.Int(int32(ua - ub)), nil
	case opcodes.OP_MUL:
		return values.Int(int32(ua * ub)), nil
	case opcodes.OP_DIV:
		if b == 0 {
			return values.Nil, rtErr(exception.DivByZero, "integer division by zero")
		}
		return values.Int(a / b), nil
	case opcodes.OP_MOD:
		if b == 0 {
			return values.Nil, rtErr(exception.DivByZero, "integer modulo by zero")
		}
		return values.Int(a % b), nil
	case opcodes.OP_BAND:
		return values.Int(int32(ua & ub)), nil
	case opcodes.OP_BOR:
		return values.Int(int32(ua | ub)), nil
	case opcodes.OP_BXOR:
		return values.Int(int32(ua ^ ub)), nil
	case opcodes.OP_SHL:
		return values.Int(int32(ua << (uint(ub) & 31))), nil
	case opcodes.OP_SHR:
		return values.Int(int32(ua >> (uint(ub) & 31))), nil
	default:
		return values.Nil, rtErr(exception.NotImplemented, "unsupported integer operator %s", op)
	}
}

// realBinary follows IEEE 754 for division and modulo: a zero divisor
// yields ±Inf or NaN rather than raising, unlike the integer path.
func realBinary(op opcodes.Opcode, a, b float64) (values.Value, error) {
	switch op {
	case opcodes.OP_ADD:
		return values.Real(a + b), nil
	case opcodes.OP_SUB:
		return values.Real(a - b), nil
	case opcodes.OP_MUL:
		return values.Real(a * b), nil
	case opcodes.OP_DIV:
		return values.Real(a / b), nil
	case opcodes.OP_MOD:
		return values.Real(realMod(a, b)), nil
	default:
		// Bitwise operators have no real-valued meaning; widening a real down to an
		// integer silently would hide a type error, so this is rejected.
		return values.Nil, rtErr(exception.WrongType, "%s: bitwise operator requires integer operands", op)
	}
}

func realMod(a, b float64) float64 {
	return math.Mod(a, b)
}

// execUnaryArith implements NEG and BNOT.
func (vm *VirtualMachine) execUnaryArith(f *CallFrame, inst *opcodes.Instruction) error {
	dst, sr := inst.Op(0), inst.Op(1)
	v := f.get(sr)

	switch inst.Opcode {
	case opcodes.OP_NEG:
		switch {
		case v.IsInt():
			f.set(dst, values.Int(int32(-uint32(v.I))))
			return nil
		case v.IsReal():
			f.set(dst, values.Real(-v.R))
			return nil
		}
		if fn := vm.Classes.ResolveMetamethod(v.ClassOf(), classes.MNeg); fn != nil {
			r, err := fn(vm, []values.Value{v})
			if err != nil {
				return err
			}
			f.set(dst, r)
			return nil
		}
	case opcodes.OP_BNOT:
		if v.IsInt() {
			f.set(dst, values.Int(int32(^uint32(v.I))))
			return nil
		}
		if fn := vm.Classes.ResolveMetamethod(v.ClassOf(), classes.MBNot); fn != nil {
			r, err := fn(vm, []values.Value{v})
			if err != nil {
				return err
			}
			f.set(dst, r)
			return nil
		}
	}
	return rtErr(exception.WrongType, "%s: operand does not support unary operator", inst.Opcode)
}
