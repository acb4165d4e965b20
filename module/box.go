package module

import "github.com/eel-lang/eel/values"

// FunctionValue boxes fn as an owned objref Value of the built-in
// `function` class. A function's real lifetime is governed by its owning
// module, so the boxed object's destructor is a no-op; disowning the
// last reference to the box simply lets the box itself be collected.
func FunctionValue(fn *Function) values.Value {
	obj := values.Alloc(values.CFunction, fn, nil)
	return values.ObjRef(obj)
}

// AsFunction unwraps a function Value back to *Function, or nil if v is
// not a function objref.
func AsFunction(v values.Value) *Function {
	if !v.IsObjRef() || v.Obj == nil || v.Obj.ClassID != values.CFunction {
		return nil
	}
	fn, _ := v.Obj.Data.(*Function)
	return fn
}

// ModuleValue boxes m as an owned objref Value of the built-in `module`
// class, used when host code or bytecode needs to hold a reference to a
// loaded module itself.
func ModuleValue(m *Module) values.Value {
	obj := values.Alloc(values.CModule, m, nil)
	return values.ObjRef(obj)
}

func AsModule(v values.Value) *Module {
	if !v.IsObjRef() || v.Obj == nil || v.Obj.ClassID != values.CModule {
		return nil
	}
	m, _ := v.Obj.Data.(*Module)
	return m
}
