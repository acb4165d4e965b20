package values

import "math"

// TableData backs the ordered key->value mapping. Iteration order is
// insertion order; a later write to an existing key preserves its
// original position.
type TableData struct {
	keys []Value
	vals []Value
	// index maps a key hash to the positions in keys/vals with that hash,
	// to resolve collisions via KeyOps.Equal.
	index map[uint64][]int
}

// KeyOps supplies the hash/equality operations a Table needs to compare
// keys of arbitrary hashable classes. Built-in immediate kinds and interned
// strings are handled by DefaultKeyOps without any class dispatch; an
// objref of any other class falls back to identity unless the caller
// supplies a KeyOps that consults that class's hash/compare metamethods.
// The vm indexes every table with DefaultKeyOps, so a class's `hash`
// metamethod is not consulted for table keys.
type KeyOps struct {
	Hash  func(Value) (uint64, error)
	Equal func(a, b Value) (bool, error)
}

// DefaultKeyOps hashes/compares boolean, integer, real, classid and
// interned-string keys by value, and any other objref by pointer identity.
// A nil key is rejected with errWrongIndexNilKey.
var DefaultKeyOps = KeyOps{Hash: defaultHash, Equal: defaultEqual}

func defaultHash(v Value) (uint64, error) {
	switch v.Kind {
	case KindNil:
		return 0, errWrongIndexNilKey
	case KindBool, KindInt, KindClassID:
		return uint64(uint32(v.I)) | uint64(v.Kind)<<32, nil
	case KindReal:
		return math.Float64bits(v.R), nil
	case KindObjRef:
		if v.Obj == nil {
			return 0, errWrongIndexNilKey
		}
		if v.Obj.ClassID == CString {
			return fnv1a64(StringBytes(v.Obj)), nil
		}
		return uint64(uintptr(ptrOf(v.Obj))), nil
	default:
		return 0, errWrongIndexNilKey
	}
}

func defaultEqual(a, b Value) (bool, error) {
	if a.Kind != b.Kind {
		return false, nil
	}
	switch a.Kind {
	case KindNil:
		return true, nil
	case KindBool, KindInt, KindClassID:
		return a.I == b.I, nil
	case KindReal:
		return a.R == b.R, nil
	case KindObjRef:
		if a.Obj == nil || b.Obj == nil {
			return a.Obj == b.Obj, nil
		}
		if a.Obj.ClassID == CString && b.Obj.ClassID == CString {
			return sameBytes(StringBytes(a.Obj), StringBytes(b.Obj)), nil
		}
		return a.Obj == b.Obj, nil
	default:
		return false, nil
	}
}

// errWrongIndexNilKey is returned by DefaultKeyOps when asked to hash a nil
// key; the vm layer maps this to the `wrongindex` exception code.
var errWrongIndexNilKey = tableKeyError{"nil is not a valid table key"}

type tableKeyError struct{ msg string }

func (e tableKeyError) Error() string { return e.msg }

func NewTable() *Object {
	return Alloc(CTable, &TableData{index: make(map[uint64][]int)}, tableDestruct)
}

func tableDestruct(o *Object) {
	td := o.Data.(*TableData)
	for _, k := range td.keys {
		Destroy(k)
	}
	for _, v := range td.vals {
		Destroy(v)
	}
	td.keys, td.vals, td.index = nil, nil, nil
}

func TableLength(o *Object) int {
	return len(o.Data.(*TableData).keys)
}

func tableFind(td *TableData, ops KeyOps, key Value) (int, error) {
	h, err := ops.Hash(key)
	if err != nil {
		return -1, err
	}
	for _, pos := range td.index[h] {
		if pos < 0 {
			continue
		}
		eq, err := ops.Equal(td.keys[pos], key)
		if err != nil {
			return -1, err
		}
		if eq {
			return pos, nil
		}
	}
	return -1, nil
}

// TableGetIndex looks up key. found is false when the key is absent (the
// vm maps this to `wrongindex`).
func TableGetIndex(o *Object, ops KeyOps, key Value) (val Value, found bool, err error) {
	td := o.Data.(*TableData)
	pos, err := tableFind(td, ops, key)
	if err != nil {
		return Nil, false, err
	}
	if pos < 0 {
		return Nil, false, nil
	}
	return td.vals[pos], true, nil
}

// TableSetIndex writes key->value, taking ownership of both. Writing to a
// missing key appends at the end, preserving the insertion order invariant;
// writing to an existing key updates the value in place, preserving its
// position. Per writing Nil as the value is equivalent to
// delete; this function implements that shorthand, so its caller does not
// need to special-case it.
func TableSetIndex(o *Object, ops KeyOps, key, value Value) error {
	td := o.Data.(*TableData)
	pos, err := tableFind(td, ops, key)
	if err != nil {
		return err
	}
	if value.IsNil() {
		Destroy(key) // this path stores no new reference to key
		if pos >= 0 {
			return tableDeleteAt(o, ops, key, pos)
		}
		return nil
	}
	if pos >= 0 {
		Destroy(td.vals[pos])
		td.vals[pos] = value
		Destroy(key) // key already owned by the table from its first insertion
		return nil
	}
	h, err := ops.Hash(key)
	if err != nil {
		return err
	}
	newPos := len(td.keys)
	td.keys = append(td.keys, key)
	td.vals = append(td.vals, value)
	td.index[h] = append(td.index[h], newPos)
	return nil
}

// TableDelete removes key if present. A nil *key* is always a
// `wrongindex` failure (DefaultKeyOps.Hash rejects it); a nil
// value written via TableSetIndex is the documented delete shorthand.
func TableDelete(o *Object, ops KeyOps, key Value) error {
	td := o.Data.(*TableData)
	pos, err := tableFind(td, ops, key)
	if err != nil {
		return err
	}
	if pos < 0 {
		return nil
	}
	return tableDeleteAt(o, ops, key, pos)
}

func tableDeleteAt(o *Object, ops KeyOps, key Value, pos int) error {
	td := o.Data.(*TableData)
	h, err := ops.Hash(td.keys[pos])
	if err != nil {
		return err
	}
	Destroy(td.keys[pos])
	Destroy(td.vals[pos])
	td.keys = append(td.keys[:pos], td.keys[pos+1:]...)
	td.vals = append(td.vals[:pos], td.vals[pos+1:]...)
	delete(td.index, h)
	// Positions after pos shifted down by one; rebuild the index rather
	// than patch it in place, tables are not expected to be huge hot loops
	// for deletion.
	rebuildTableIndex(td)
	_ = key
	return nil
}

func rebuildTableIndex(td *TableData) {
	td.index = make(map[uint64][]int, len(td.keys))
	for i, k := range td.keys {
		h, err := DefaultKeyOps.Hash(k)
		if err != nil {
			continue
		}
		td.index[h] = append(td.index[h], i)
	}
}

// TableAt returns the key/value pair at sequential position i, for
// insertion-order iteration.
func TableAt(o *Object, i int) (key, val Value, ok bool) {
	td := o.Data.(*TableData)
	if i < 0 || i >= len(td.keys) {
		return Nil, Nil, false
	}
	return td.keys[i], td.vals[i], true
}

// TableClone deep-copies key/value slots at the top level: new table, same length/contents, independent mutation.
func TableClone(o *Object) *Object {
	td := o.Data.(*TableData)
	clone := NewTable()
	cd := clone.Data.(*TableData)
	cd.keys = make([]Value, len(td.keys))
	cd.vals = make([]Value, len(td.vals))
	for i := range td.keys {
		cd.keys[i] = Copy(td.keys[i])
		cd.vals[i] = Copy(td.vals[i])
	}
	rebuildTableIndex(cd)
	return clone
}
