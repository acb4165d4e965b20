package host

import (
	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/values"
)

// PSNew interns a Go string into the VM's string pool, mirroring
// eel_ps_new from EEL.h: equal content always resolves to the same
// pooled object.
func (h *Host) PSNew(s string) values.Value {
	return values.ObjRef(h.VM.Strings.NewString(s))
}

// PSNNew interns the first n bytes of b, mirroring eel_ps_nnew's
// length-bounded variant for callers holding a non-NUL-terminated
// buffer.
func (h *Host) PSNNew(b []byte, n int) values.Value {
	if n > len(b) {
		n = len(b)
	}
	return values.ObjRef(h.VM.Strings.New(b[:n]))
}

// PSFind looks up an already-interned string without creating a new pool
// entry, mirroring eel_ps_find. Returns values.Nil if no such string is
// currently interned.
func (h *Host) PSFind(s string) values.Value {
	o := h.VM.Strings.Find([]byte(s))
	if o == nil {
		return values.Nil
	}
	return values.ObjRef(o)
}

// DSNew allocates a mutable dstring from s, mirroring eel_ds_new.
func (h *Host) DSNew(s string) values.Value {
	return values.ObjRef(values.NewDString([]byte(s)))
}

// DSNNew allocates a mutable dstring from the first n bytes of b,
// mirroring eel_ds_nnew.
func (h *Host) DSNNew(b []byte, n int) values.Value {
	if n > len(b) {
		n = len(b)
	}
	return values.ObjRef(values.NewDString(b[:n]))
}

// NewIndexable allocates an instance of one of the built-in indexable
// container classes by name, mirroring eel_new_indexable. An array is
// Nil-filled, a dstring zero-filled and a vector (u8 elements) zeroed to
// length elements; a table starts empty and ignores length. It is a
// single generic entry point the original offers instead of three
// separate `eel_new_array`/`eel_new_table`/... calls.
func (h *Host) NewIndexable(kind string, length int) (values.Value, error) {
	switch kind {
	case "array":
		return values.ObjRef(values.NewArray(length)), nil
	case "table":
		return values.ObjRef(values.NewTable()), nil
	case "dstring":
		return values.ObjRef(values.NewDString(make([]byte, length))), nil
	case "vector":
		return values.ObjRef(values.NewVector(values.ElemU8, length)), nil
	default:
		return values.Nil, exception.New(h.VM.Exceptions, exception.WrongType, "new_indexable: unknown kind %q", kind)
	}
}

// NewVectorUninit allocates a typed vector without zero-initializing its
// backing buffer on the original's semantics, mirroring eel_cv_new_noinit;
// see values.NewVectorUninit for the Go-side caveat that this build still
// zero-fills.
func (h *Host) NewVectorUninit(elem values.VectorElemKind, count int) values.Value {
	return values.ObjRef(values.NewVectorUninit(elem, count))
}
