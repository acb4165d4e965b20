// Package values implements the EEL value model: a small tagged union of
// immediate kinds plus a single object-reference kind pointing into the
// per-VM object heap (see Object in object.go).
package values

import (
	"fmt"
	"math"
)

// Kind identifies which arm of the Value union is populated.
type Kind byte

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindReal
	KindClassID
	KindObjRef
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindReal:
		return "real"
	case KindClassID:
		return "classid"
	case KindObjRef:
		return "objref"
	default:
		return "unknown"
	}
}

// Value is copied by assignment. Copying an objref must go through Copy (or
// Own on the referent) so the heap refcount stays in sync; dropping a value
// must go through Destroy.
type Value struct {
	Kind Kind
	I    int32   // integer, also boolean (0/1) and classid
	R    float64 // real
	Obj  *Object // objref payload; nil unless Kind == KindObjRef
}

// Nil is the neutral value for uninitialised or cleared slots.
var Nil = Value{Kind: KindNil}

func Bool(b bool) Value {
	if b {
		return Value{Kind: KindBool, I: 1}
	}
	return Value{Kind: KindBool, I: 0}
}

// Int wraps an int32 as EEL's signed 32-bit integer kind.
func Int(i int32) Value { return Value{Kind: KindInt, I: i} }

func Real(r float64) Value { return Value{Kind: KindReal, R: r} }

func ClassID(id int32) Value { return Value{Kind: KindClassID, I: id} }

// ObjRef wraps an owned object reference (the caller is transferring its
// refcount-1 ownership into the returned Value; it does not Own again).
func ObjRef(o *Object) Value {
	if o == nil {
		return Nil
	}
	return Value{Kind: KindObjRef, Obj: o}
}

func (v Value) IsNil() bool      { return v.Kind == KindNil }
func (v Value) IsBool() bool     { return v.Kind == KindBool }
func (v Value) IsInt() bool      { return v.Kind == KindInt }
func (v Value) IsReal() bool     { return v.Kind == KindReal }
func (v Value) IsNumeric() bool  { return v.Kind == KindInt || v.Kind == KindReal }
func (v Value) IsClassID() bool  { return v.Kind == KindClassID }
func (v Value) IsObjRef() bool   { return v.Kind == KindObjRef }

func (v Value) Bool() bool { return v.I != 0 }

// AsFloat returns the value's numeric contents widened to float64,
// implementing the "if either operand is real, the operation is real"
// mixing rule from at the call site.
func (v Value) AsFloat() float64 {
	if v.Kind == KindReal {
		return v.R
	}
	return float64(v.I)
}

// ClassOf reports the classid of v: the built-in immediate classid for
// non-object kinds, or the referent's classid for an objref.
func (v Value) ClassOf() int32 {
	switch v.Kind {
	case KindNil:
		return CNil
	case KindBool:
		return CBoolean
	case KindInt:
		return CInteger
	case KindReal:
		return CReal
	case KindClassID:
		return CClassID
	case KindObjRef:
		if v.Obj == nil {
			return CNil
		}
		return v.Obj.ClassID
	default:
		return CNil
	}
}

// Copy produces a new owned Value, incrementing the referent's refcount if
// v is an objref. Every Value handed to another owner (a register, a
// container slot, a module export) must go through Copy or be a fresh
// value returned from a constructor.
func Copy(v Value) Value {
	if v.Kind == KindObjRef && v.Obj != nil {
		Own(v.Obj)
	}
	return v
}

// Destroy releases v's ownership claim. Call exactly once per owned Value.
func Destroy(v Value) {
	if v.Kind == KindObjRef && v.Obj != nil {
		Disown(v.Obj)
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		return fmt.Sprintf("%t", v.Bool())
	case KindInt:
		return fmt.Sprintf("%d", v.I)
	case KindReal:
		if math.IsNaN(v.R) {
			return "nan"
		}
		return fmt.Sprintf("%g", v.R)
	case KindClassID:
		return fmt.Sprintf("<class %d>", v.I)
	case KindObjRef:
		if v.Obj == nil {
			return "nil"
		}
		return fmt.Sprintf("<object %d:%d>", v.Obj.ClassID, v.Obj.id)
	default:
		return "?"
	}
}

// Reserved built-in classids
const (
	CNil int32 = iota
	CBoolean
	CInteger
	CReal
	CClassID
	CObjRef
	CString
	CDString
	CArray
	CTable
	CFunction
	CModule
	CVectorU8
	CVectorS8
	CVectorU16
	CVectorS16
	CVectorU32
	CVectorS32
	CVectorF
	CVectorD
	// FirstUserClass is the first classid a host registration may allocate.
	FirstUserClass
)
