package host

import (
	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/module"
	"github.com/eel-lang/eel/values"
)

// Call invokes fn with args, mirroring eel_call. It ticks the
// call epoch first so any Borrow obtained from a previous V2S is caught
// by Borrow.Bytes if the embedder still holds it.
func (h *Host) Call(fn values.Value, args []values.Value) (values.Value, error) {
	h.tick()
	f := module.AsFunction(fn)
	if f == nil {
		return values.Nil, exception.New(h.VM.Exceptions, exception.WrongType, "value is not callable")
	}
	return h.VM.Invoke(f, args)
}

// CallN looks up a function by name on m and calls it, mirroring eel_calln
//: a thin convenience over Lookup+Call for the common
// call-an-export-by-name path.
func (h *Host) CallN(m *module.Module, name string, args []values.Value) (values.Value, error) {
	v, ok := m.Lookup(name)
	if !ok {
		return values.Nil, exception.New(h.VM.Exceptions, exception.WrongIndex, "module %q has no export %q", m.Name, name)
	}
	return h.Call(v, args)
}

// CallF calls fn with arguments built from a printf-style format string,
// mirroring eel_callf. See Argf for the format-character
// table.
func (h *Host) CallF(fn values.Value, format string, argv ...interface{}) (values.Value, error) {
	args, err := h.Argf(format, argv...)
	if err != nil {
		return values.Nil, err
	}
	return h.Call(fn, args)
}
