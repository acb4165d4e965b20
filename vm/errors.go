package vm

import (
	"fmt"

	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/opcodes"
)

// RuntimeError wraps an exception.Code with the call-site context needed
// for diagnostics, mirroring the teacher's *VMError pattern (a base
// sentinel plus Context/Frame/Opcode/IP fields) but keyed on the numeric
// exception protocol requires instead of a bare Go error.
type RuntimeError struct {
	Code    exception.Code
	Message string
	Opcode  opcodes.Opcode
	IP      int
}

func (e *RuntimeError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("eel: %s (ip=%d opcode=%s): %s", exceptionName(e.Code), e.IP, e.Opcode, e.Message)
	}
	return fmt.Sprintf("eel: %s (ip=%d opcode=%s)", exceptionName(e.Code), e.IP, e.Opcode)
}

func exceptionName(c exception.Code) string {
	return fmt.Sprintf("code(%d)", int32(c))
}

// AsCode extracts the exception.Code carried by err, defaulting to
// exception.WrongType for an error this package did not originate (the
// same fallback exception.CodeOf uses at the Host API boundary).
func AsCode(err error) exception.Code {
	if err == nil {
		return exception.None
	}
	if re, ok := err.(*RuntimeError); ok {
		return re.Code
	}
	return exception.CodeOf(err)
}

func rtErr(code exception.Code, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Code: code, Message: fmt.Sprintf(format, args...)}
}
