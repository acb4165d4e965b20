package values

// DStringData is a mutable, non-pooled byte buffer. Unlike String, a
// dstring is never interned: two dstrings with identical contents are
// distinct objects.
type DStringData struct {
	Bytes []byte
}

// NewDString allocates a fresh mutable buffer from the given bytes (copied).
func NewDString(b []byte) *Object {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Alloc(CDString, &DStringData{Bytes: cp}, nil)
}

// DSLength implements the dstring length() metamethod.
func DSLength(o *Object) int {
	return len(o.Data.(*DStringData).Bytes)
}

// DSGetIndex implements dstring getindex(i): byte at i, error if i is
// out of [0,length).
func DSGetIndex(o *Object, i int) (byte, bool) {
	d := o.Data.(*DStringData).Bytes
	if i < 0 || i >= len(d) {
		return 0, false
	}
	return d[i], true
}

// DSSetIndex implements dstring setindex(i, value): writing at i >= length
// extends the buffer with zero bytes up to and including i
// value is clamped to 0..255 by the caller before invocation.
func DSSetIndex(o *Object, i int, value byte) bool {
	if i < 0 {
		return false
	}
	d := &o.Data.(*DStringData).Bytes
	if i >= len(*d) {
		grown := make([]byte, i+1)
		copy(grown, *d)
		*d = grown
	}
	(*d)[i] = value
	return true
}

// DSDelete removes the byte at i, shifting subsequent bytes down and
// shrinking the buffer by one.
func DSDelete(o *Object, i int) bool {
	d := &o.Data.(*DStringData).Bytes
	if i < 0 || i >= len(*d) {
		return false
	}
	*d = append((*d)[:i], (*d)[i+1:]...)
	return true
}

// DSRawView exposes the dstring's contiguous storage for bulk host I/O. The
// returned slice aliases the object's storage and is only valid until the
// next mutation.
func DSRawView(o *Object) []byte {
	return o.Data.(*DStringData).Bytes
}
