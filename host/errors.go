package host

import (
	"fmt"
	"io"

	"github.com/eel-lang/eel/values"
	"github.com/eel-lang/eel/vm"
)

// Own/Disown expose the raw refcount primitives at the host boundary,
// mirroring eel_own/eel_disown: an embedder holding onto
// a Value outside of any register or container slot must pair one Own
// with one eventual Disown.
func (h *Host) Own(v values.Value) values.Value { return values.Copy(v) }
func (h *Host) Disown(v values.Value)            { values.Destroy(v) }

// PError writes a diagnostic line for err to w, mirroring eel_perror
//: the exception code's registered name plus the wrapped
// message, not a stack trace. This is the one place the host package
// writes text output directly rather than just returning errors, matching
// the teacher's own perror-style helper instead of reaching for a logging
// library for a one-line diagnostic.
func (h *Host) PError(w io.Writer, prefix string, err error) {
	if err == nil {
		return
	}
	code := vm.AsCode(err)
	name := h.VM.Exceptions.Name(code)
	if prefix != "" {
		fmt.Fprintf(w, "%s: %s: %s\n", prefix, name, err)
		return
	}
	fmt.Fprintf(w, "%s: %s\n", name, err)
}
