// Package host implements the EEL C-style host API surface:
// the entry points an embedding program uses to open a VM, load modules,
// call functions, and marshal values across the Go/script boundary.
// Naming follows the original eel_* C API in spirit (documented per
// function) but uses idiomatic Go receivers instead of a bare function
// table, the same adaptation the teacher applies to its own C-derived
// surfaces.
package host

import (
	"fmt"

	"github.com/eel-lang/eel/bytecode"
	"github.com/eel-lang/eel/classes"
	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/module"
	"github.com/eel-lang/eel/opcodes"
	"github.com/eel-lang/eel/values"
	"github.com/eel-lang/eel/vm"
)

// Host wraps a *vm.VirtualMachine with the marshalling and module-loading
// conveniences groups under eel_open/eel_close and friends.
type Host struct {
	VM *vm.VirtualMachine

	// epoch increments on every call into script code; StrictLifetimes
	// uses it to detect a V2S borrow outliving its call (see convert.go).
	epoch         uint64
	strictStrings bool
}

// Options configures a Host at Open time.
type Options struct {
	// StrictLifetimes enables epoch-based enforcement of the V2S
	// borrowed-pointer contract: a build meant for development should set
	// this, a release embedding can leave it off to skip the bookkeeping.
	StrictLifetimes bool
	Debug           vm.DebugLevel
}

// Open creates a new VM and wraps it in a Host, mirroring eel_open:
// "eel_open() -> VM*", the single entry point that allocates everything
// else hangs off of.
func Open(opts Options) *Host {
	v := vm.New()
	v.Debug = opts.Debug
	return &Host{VM: v, strictStrings: opts.StrictLifetimes}
}

// Close tears down every loaded module in reverse registration order,
// mirroring eel_close.
func (h *Host) Close() error {
	return h.VM.Close()
}

// CreateModule allocates a new, empty Module and registers it with the
// VM, mirroring eel_create_module. unload may be nil.
func (h *Host) CreateModule(name string, unload module.UnloadFunc, userData interface{}) *module.Module {
	m := module.New(name, unload, userData)
	h.VM.RegisterModule(m)
	return m
}

// Stats reports heap diagnostics an embedder can surface for debugging:
// how many reference-counted objects are currently live and how many have
// ever been allocated, process-wide (the object heap has no per-VM
// partition to report on separately).
type Stats struct {
	LiveObjects    int64
	TotalAllocated int64
}

func (h *Host) Stats() Stats {
	return Stats{LiveObjects: values.LiveObjects(), TotalAllocated: values.TotalAllocated()}
}

// ExportCFunction defines fn as a host (Go) callback and exports it under
// name from m, mirroring eel_export_cfunction.
func (h *Host) ExportCFunction(m *module.Module, name string, required, optional, tuple, results int, fn module.HostFunc) {
	f := &module.Function{
		Name: name, RequiredArg: required, OptionalArg: optional,
		TupleArg: tuple, Results: results, Host: fn,
	}
	m.DefineFunction(f)
	m.Export(name, module.FunctionValue(f))
}

// ExportClass registers a new class in the VM's registry and exports its
// classid under name from m, mirroring eel_export_class.
func (h *Host) ExportClass(m *module.Module, name string, parent int32, construct classes.ConstructFunc, destruct classes.DestructFunc, clone classes.CloneFunc) (int32, error) {
	id, err := h.VM.Classes.RegisterClass(name, parent, construct, destruct, clone)
	if err != nil {
		return 0, err
	}
	m.Export(name, values.ClassID(id))
	return id, nil
}

// ExportConstants exports a batch of name->Value pairs from m, mirroring
// eel_export_constants / eel_export_constants_d: each Value is copied,
// so the caller retains ownership of what it passed in.
func (h *Host) ExportConstants(m *module.Module, constants map[string]values.Value) {
	for name, v := range constants {
		m.Export(name, values.Copy(v))
	}
}

// RegisterException reserves exception codes for a host binding, mirroring
// eel_register_exception.
func (h *Host) RegisterException(namePrefix string, count int, descriptions []string) exception.Code {
	return h.VM.Exceptions.Register(namePrefix, count, descriptions)
}

// Load decodes a module image and installs its functions/exports as a new
// Module, mirroring eel_load. A function named `init` in the module's
// function table, if present (exported or not), is invoked before Load
// returns.
func (h *Host) Load(name string, img *bytecode.Image) (*module.Module, error) {
	m := module.New(name, nil, nil)

	funcs := make([]*module.Function, len(img.Functions))
	for i, fe := range img.Functions {
		instrs, err := opcodes.DecodeAll(fe.Code)
		if err != nil {
			return nil, fmt.Errorf("host: module %q function %d: %w", name, i, err)
		}
		fn := &module.Function{
			Name:         img.Names[fe.NameIndex],
			RequiredArg:  int(fe.ReqArgs),
			OptionalArg:  int(fe.OptArgs),
			TupleArg:     int(fe.TupArg),
			Results:      int(fe.Results),
			Instructions: instrs,
			NumRegisters: int(fe.NumRegisters),
		}
		m.DefineFunction(fn)
		funcs[i] = fn
	}

	m.Constants = make([]values.Value, len(img.Constants))
	for i, c := range img.Constants {
		m.Constants[i] = decodeConst(h, img, funcs, c)
	}

	for _, e := range img.Exports {
		m.Export(img.Names[e.NameIndex], module.FunctionValue(funcs[e.FuncIndex]))
	}

	h.VM.RegisterModule(m)

	if initFn, ok := m.Function("init"); ok {
		if _, err := h.VM.Invoke(initFn, nil); err != nil {
			return nil, exception.New(h.VM.Exceptions, exception.ModuleInit, "module %q init failed: %v", name, err)
		}
	}
	return m, nil
}

// LoadFile reads path via bytecode.LoadModuleFile (mmap'd) and Loads it,
// mirroring eel_load for the on-disk case.
func (h *Host) LoadFile(path string) (*module.Module, error) {
	img, err := bytecode.LoadModuleFile(path)
	if err != nil {
		return nil, err
	}
	return h.Load(path, img)
}

// LoadBuffer decodes an already-in-memory image, mirroring eel_load_buffer:
// used when the embedder owns the image bytes itself (e.g. compiled in,
// or received over the wire) rather than reading a file.
func (h *Host) LoadBuffer(name string, buf []byte) (*module.Module, error) {
	img, err := bytecode.Decode(buf)
	if err != nil {
		return nil, err
	}
	return h.Load(name, img)
}

// Unload requests teardown of m, mirroring eel_unload.
// closing is false here: the module may refuse via module.RefuseUnload.
func (h *Host) Unload(m *module.Module) error {
	return m.Unload(false)
}

func decodeConst(h *Host, img *bytecode.Image, funcs []*module.Function, c bytecode.ConstEntry) values.Value {
	switch c.Tag {
	case bytecode.TagNil:
		return values.Nil
	case bytecode.TagBool:
		return values.Bool(c.Int != 0)
	case bytecode.TagInt:
		return values.Int(c.Int)
	case bytecode.TagReal:
		return values.Real(c.Real)
	case bytecode.TagClassID:
		return values.ClassID(c.Int)
	case bytecode.TagStringRef:
		return values.ObjRef(h.VM.Strings.NewString(img.Names[c.NameIndex]))
	case bytecode.TagFuncRef:
		return module.FunctionValue(funcs[c.Int])
	default:
		return values.Nil
	}
}
