// Package module implements the EEL Module and Function objects: the
// bytecode image a translation unit loads into, and the function table
// it owns.
package module

import (
	"github.com/eel-lang/eel/opcodes"
	"github.com/eel-lang/eel/values"
)

// HostFunc is the trampoline signature for a function implemented in Go
// rather than bytecode. ctx is opaque
// here (the calling *vm.VirtualMachine in practice) to avoid an import cycle;
// implementations type-assert to their concrete VM context type.
type HostFunc func(ctx interface{}, args []values.Value) (values.Value, error)

// Function describes either a bytecode body or a host callback, with the
// arity descriptor requires: required/optional argument counts,
// a tuple-arg group size for trailing repeating varargs, and a result
// count that is always 0 or 1 in EEL's call/return protocol.
type Function struct {
	Name        string
	RequiredArg int
	OptionalArg int
	TupleArg    int // 0 if the function takes no trailing tuple group
	Results     int // 0 or 1

	// Bytecode body, nil when Host is set instead.
	Instructions []*opcodes.Instruction
	NumRegisters int

	// Host callback, nil when Instructions is set instead.
	Host HostFunc

	Module *Module // owning module (back-pointer)
}

// IsHost reports whether f is implemented as a Go callback rather than
// bytecode.
func (f *Function) IsHost() bool { return f.Host != nil }

// MaxArgs returns the largest legal actual-argument count
// (required + optional), or -1 if the function's tuple group makes the
// argument count unbounded (TupleArg > 0).
func (f *Function) MaxArgs() int {
	if f.TupleArg > 0 {
		return -1
	}
	return f.RequiredArg + f.OptionalArg
}

// AcceptsArgCount reports whether n actual arguments satisfy the binding
// rule: required <= n <= required + optional, or, for a function with a
// tuple group, n = required + optional + k*tuple for some integer k >= 1
// (arguments past the optional ones come in whole tuple groups).
func (f *Function) AcceptsArgCount(n int) (ok bool, tooFew bool) {
	if n < f.RequiredArg {
		return false, true
	}
	if f.TupleArg <= 0 {
		return n <= f.RequiredArg+f.OptionalArg, false
	}
	over := n - f.RequiredArg - f.OptionalArg
	if over <= 0 {
		return true, false
	}
	return over%f.TupleArg == 0, false
}
