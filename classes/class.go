// Package classes implements the EEL class registry: the per-VM table of
// classid -> {constructors, destructors, clone, cast table, metamethods}.
// It depends on values for the Value/Object types but never on vm, so vm
// can freely depend on classes.
package classes

import (
	"fmt"
	"strings"
	"sync"

	"github.com/eel-lang/eel/values"
)

// Metamethod names form the closed set enumerates.
type Metamethod string

const (
	MGetIndex Metamethod = "getindex"
	MSetIndex Metamethod = "setindex"
	MIn       Metamethod = "in"
	MLength   Metamethod = "length"
	MCompare  Metamethod = "compare"
	MHash     Metamethod = "hash"
	MAdd      Metamethod = "add"
	MSub      Metamethod = "sub"
	MMul      Metamethod = "mul"
	MDiv      Metamethod = "div"
	MMod      Metamethod = "mod"
	MNeg      Metamethod = "neg"
	MBNot     Metamethod = "bnot"
	MBAnd     Metamethod = "band"
	MBOr      Metamethod = "bor"
	MBXor     Metamethod = "bxor"
	MShl      Metamethod = "shl"
	MShr      Metamethod = "shr"
	MCast     Metamethod = "cast"
	MCall     Metamethod = "call"
	MDelete   Metamethod = "delete"
)

// Context is the minimal VM surface a metamethod/constructor/destructor
// needs, kept as an interface here so this package never imports vm (vm
// imports classes instead, mirroring how the teacher's BuiltinCallContext
// keeps registry decoupled from vm in vm/builtin_context.go).
type Context interface {
	// Call invokes fn (typically retrieved via the `call` metamethod or a
	// function value) with args, returning its single result or an error
	// carrying an exception code (see exception.Code).
	Call(fn values.Value, args []values.Value) (values.Value, error)
	// VM exposes the owning virtual machine for operations that need the
	// string pool, class registry, or heap allocation (opaque here to
	// avoid a cycle; concrete callers type-assert to their own VM type).
	VM() interface{}
}

// ConstructFunc builds the private Data payload for a new instance of the
// class. It returns only the payload; the object is allocated with the
// class's Destruct callback (see vm.execNewObj).
type ConstructFunc func(ctx Context, args []values.Value) (interface{}, error)
type DestructFunc func(ctx Context, data interface{})
type CloneFunc func(ctx Context, data interface{}) (interface{}, error)
type CastFunc func(ctx Context, v values.Value) (values.Value, error)
type MetamethodFunc func(ctx Context, args []values.Value) (values.Value, error)

// Class is a record in the per-VM registry.
type Class struct {
	ID     int32
	Name   string
	Parent int32 // -1 for no parent

	Construct ConstructFunc
	Destruct  DestructFunc
	Clone     CloneFunc

	casts       map[int32]CastFunc
	metamethods map[Metamethod]MetamethodFunc
}

// HasParent reports whether c declares a parent classid.
func (c *Class) HasParent() bool { return c.Parent >= 0 }

// Registry is the per-VM class table. classid 0 is the built-in `nil`
// class and is never issued by RegisterClass; built-in classids are
// pre-seeded by NewRegistry to match the reserved constants in values.Value.
type Registry struct {
	mu      sync.RWMutex
	classes []*Class // indexed by classid
	byName  map[string]int32
}

// ErrTableOverflow is the failure RegisterClass returns once the classid
// space is exhausted.
var (
	ErrTableOverflow = fmt.Errorf("classes: class table overflow")
)

// maxClasses bounds the registry the same way the original EEL
// implementation bounds its classid space (a small integer, not an
// unbounded counter) — calls classid "a small integer".
const maxClasses = 1 << 16

func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]int32)}
	r.seedBuiltins()
	return r
}

func (r *Registry) seedBuiltins() {
	names := []string{
		values.CNil: "nil", values.CBoolean: "boolean", values.CInteger: "integer",
		values.CReal: "real", values.CClassID: "classid", values.CObjRef: "objref",
		values.CString: "string", values.CDString: "dstring", values.CArray: "array",
		values.CTable: "table", values.CFunction: "function", values.CModule: "module",
		values.CVectorU8: "vector_u8", values.CVectorS8: "vector_s8",
		values.CVectorU16: "vector_u16", values.CVectorS16: "vector_s16",
		values.CVectorU32: "vector_u32", values.CVectorS32: "vector_s32",
		values.CVectorF: "vector_f", values.CVectorD: "vector_d",
	}
	r.classes = make([]*Class, values.FirstUserClass)
	for id := int32(0); id < values.FirstUserClass; id++ {
		name := names[id]
		c := &Class{ID: id, Name: name, Parent: -1, metamethods: make(map[Metamethod]MetamethodFunc)}
		r.classes[id] = c
		r.byName[strings.ToLower(name)] = id
	}
}

// RegisterClass installs a new class, returning its classid.
func (r *Registry) RegisterClass(name string, parent int32, construct ConstructFunc, destruct DestructFunc, clone CloneFunc) (int32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.classes) >= maxClasses {
		return 0, ErrTableOverflow
	}
	id := int32(len(r.classes))
	c := &Class{
		ID: id, Name: name, Parent: parent,
		Construct: construct, Destruct: destruct, Clone: clone,
		metamethods: make(map[Metamethod]MetamethodFunc),
	}
	r.classes = append(r.classes, c)
	r.byName[strings.ToLower(name)] = id
	return id, nil
}

// Class returns the class record for id, or nil if id is out of range.
func (r *Registry) Class(id int32) *Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id < 0 || int(id) >= len(r.classes) {
		return nil
	}
	return r.classes[id]
}

// ClassByName resolves a class by its registered name (case-insensitive).
func (r *Registry) ClassByName(name string) (*Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return r.classes[id], true
}

// SetMetamethod installs a dispatch entry on class id.
func (r *Registry) SetMetamethod(id int32, name Metamethod, fn MetamethodFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.classAt(id)
	if c == nil {
		return fmt.Errorf("classes: no such class %d", id)
	}
	c.metamethods[name] = fn
	return nil
}

// SetCast installs a conversion callback from id to the class `to`.
func (r *Registry) SetCast(id, to int32, fn CastFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.classAt(id)
	if c == nil {
		return fmt.Errorf("classes: no such class %d", id)
	}
	if c.casts == nil {
		c.casts = make(map[int32]CastFunc)
	}
	c.casts[to] = fn
	return nil
}

func (r *Registry) classAt(id int32) *Class {
	if id < 0 || int(id) >= len(r.classes) {
		return nil
	}
	return r.classes[id]
}

// ResolveMetamethod walks id's parent chain looking for name: metamethod
// lookup walks the parent chain. Returns nil if unresolved anywhere in
// the chain.
func (r *Registry) ResolveMetamethod(id int32, name Metamethod) MetamethodFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for c := r.classAt(id); c != nil; c = r.classAt(c.Parent) {
		if fn, ok := c.metamethods[name]; ok {
			return fn
		}
		if !c.HasParent() {
			break
		}
	}
	return nil
}

// ResolveCast walks id's parent chain looking for a cast to `to`.
func (r *Registry) ResolveCast(id, to int32) CastFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for c := r.classAt(id); c != nil; c = r.classAt(c.Parent) {
		if c.casts != nil {
			if fn, ok := c.casts[to]; ok {
				return fn
			}
		}
		if !c.HasParent() {
			break
		}
	}
	return nil
}
