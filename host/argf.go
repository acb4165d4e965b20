package host

import (
	"fmt"

	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/values"
)

// Argf builds an argument slice from a printf-style format string,
// mirroring eel_argf. Recognised format characters:
//
//	i  int        (Go int or int32)
//	f  float64    real
//	s  string     interned as a string object
//	b  bool       boolean
//	v  values.Value  passed through unchanged
//	.  nil
//
// Arguments are consumed strictly left to right against argv, one per
// format character, with no lookahead or reordering: the original's
// argument
// fetch order is not treated as contractual, so this binding always
// evaluates in format-string order).
func (h *Host) Argf(format string, argv ...interface{}) ([]values.Value, error) {
	out := make([]values.Value, 0, len(format))
	ai := 0
	next := func() (interface{}, error) {
		if ai >= len(argv) {
			return nil, exception.New(h.VM.Exceptions, exception.FewArgs, "argf %q: not enough arguments", format)
		}
		a := argv[ai]
		ai++
		return a, nil
	}

	for _, ch := range format {
		switch ch {
		case 'i':
			a, err := next()
			if err != nil {
				return nil, err
			}
			n, err := toInt32(a)
			if err != nil {
				return nil, err
			}
			out = append(out, values.Int(n))
		case 'f':
			a, err := next()
			if err != nil {
				return nil, err
			}
			f, ok := a.(float64)
			if !ok {
				return nil, exception.New(h.VM.Exceptions, exception.WrongType, "argf %q: expected float64 argument", format)
			}
			out = append(out, values.Real(f))
		case 's':
			a, err := next()
			if err != nil {
				return nil, err
			}
			s, ok := a.(string)
			if !ok {
				return nil, exception.New(h.VM.Exceptions, exception.NeedString, "argf %q: expected string argument", format)
			}
			out = append(out, h.S2V(s))
		case 'b':
			a, err := next()
			if err != nil {
				return nil, err
			}
			b, ok := a.(bool)
			if !ok {
				return nil, exception.New(h.VM.Exceptions, exception.WrongType, "argf %q: expected bool argument", format)
			}
			out = append(out, values.Bool(b))
		case 'v':
			a, err := next()
			if err != nil {
				return nil, err
			}
			v, ok := a.(values.Value)
			if !ok {
				return nil, exception.New(h.VM.Exceptions, exception.WrongType, "argf %q: expected values.Value argument", format)
			}
			out = append(out, values.Copy(v))
		case '.':
			out = append(out, values.Nil)
		default:
			return nil, exception.New(h.VM.Exceptions, exception.WrongFormat, "argf: unknown format character %q", ch)
		}
	}
	if ai != len(argv) {
		return nil, exception.New(h.VM.Exceptions, exception.ManyArgs, "argf %q: %d unconsumed arguments", format, len(argv)-ai)
	}
	return out, nil
}

func toInt32(a interface{}) (int32, error) {
	switch n := a.(type) {
	case int32:
		return n, nil
	case int:
		return int32(n), nil
	default:
		return 0, fmt.Errorf("host: argf %%i expected int/int32, got %T", a)
	}
}
