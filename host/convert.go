package host

import (
	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/values"
)

// L2V/D2V/S2V/O2V/B2V/Nil2V box a Go primitive into an owned Value,
// mirroring the eel_*2v family.
func (h *Host) L2V(i int32) values.Value { return values.Int(i) }
func (h *Host) D2V(r float64) values.Value { return values.Real(r) }
func (h *Host) B2V(b bool) values.Value { return values.Bool(b) }
func (h *Host) Nil2V() values.Value { return values.Nil }

// S2V interns s and returns an owned string Value, mirroring eel_s2v
//.
func (h *Host) S2V(s string) values.Value {
	return values.ObjRef(h.VM.Strings.NewString(s))
}

// O2V boxes an already-allocated object (classid/Clone-specific helpers
// construct these) as an owned objref Value.
func (h *Host) O2V(o *values.Object) values.Value { return values.ObjRef(o) }

// V2L/V2D unwrap a numeric Value, widening as's mixing rule
// does: V2L truncates a real toward zero, V2D widens an integer.
func (h *Host) V2L(v values.Value) (int32, error) {
	switch {
	case v.IsInt(), v.IsBool(), v.IsClassID():
		return v.I, nil
	case v.IsReal():
		return int32(v.R), nil
	default:
		return 0, exception.New(h.VM.Exceptions, exception.WrongType, "value is not numeric")
	}
}

func (h *Host) V2D(v values.Value) (float64, error) {
	if !v.IsNumeric() {
		return 0, exception.New(h.VM.Exceptions, exception.WrongType, "value is not numeric")
	}
	return v.AsFloat(), nil
}

// V2S returns a borrowed view of v's string bytes, mirroring eel_v2s's
// documented lifetime from EEL.h. The returned borrow is stamped with the
// current call epoch; when the Host was opened with StrictLifetimes,
// Borrow.Bytes panics once more than borrowTolerance further
// Call/CallN/CallF calls have been made, instead of silently handing back
// stale or reused memory. V2S and V2Sdup calls do not advance the epoch.
func (h *Host) V2S(v values.Value) (*Borrow, error) {
	if !v.IsObjRef() || v.Obj == nil || (v.Obj.ClassID != values.CString && v.Obj.ClassID != values.CDString) {
		return nil, exception.New(h.VM.Exceptions, exception.NeedString, "value is not a string or dstring")
	}
	var b []byte
	if v.Obj.ClassID == values.CString {
		b = values.StringBytes(v.Obj)
	} else {
		b = values.DSRawView(v.Obj)
	}
	return &Borrow{host: h, bytes: b, epoch: h.epoch}, nil
}

// V2Sdup copies out v's string content, escaping the V2S borrow contract
// entirely, mirroring eel_v2s's documented "dup if you need to keep it"
// escape hatch.
func (h *Host) V2Sdup(v values.Value) ([]byte, error) {
	b, err := h.V2S(v)
	if err != nil {
		return nil, err
	}
	cp := make([]byte, len(b.bytes))
	copy(cp, b.bytes)
	return cp, nil
}

// Borrow is a short-lived view into a string/dstring object's bytes,
// returned by V2S. See V2S for the lifetime contract it enforces under
// StrictLifetimes.
type Borrow struct {
	host  *Host
	bytes []byte
	epoch uint64
}

// borrowTolerance is how many further API calls a Borrow stays valid for
// under StrictLifetimes before Bytes panics, mirroring eel_v2s's documented
// "invalid after more than five further API calls" wording.
const borrowTolerance = 5

// Bytes returns the borrowed view, panicking if StrictLifetimes is on and
// the VM has advanced more than borrowTolerance calls past the one this
// borrow was taken during.
func (b *Borrow) Bytes() []byte {
	if b.host.strictStrings && b.host.epoch-b.epoch > borrowTolerance {
		panic("host: V2S borrow used after its call epoch ended (see eel_v2s lifetime contract)")
	}
	return b.bytes
}

// tick advances the call epoch; invoked around every Call/CallN/CallF
// entry so a live Borrow from a prior call is caught by Bytes().
func (h *Host) tick() { h.epoch++ }
