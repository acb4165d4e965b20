package values

import "sync"

// StringData is the per-class private payload of an interned string object.
type StringData struct {
	Bytes []byte
	Hash  uint64
	pool  *StringPool
}

// StringPool interns immutable byte strings for a single VM: equal byte
// sequences always resolve to the same *Object. It lives for the VM's
// lifetime; individual entries disappear when their refcount reaches zero.
type StringPool struct {
	mu      sync.Mutex
	buckets map[uint64][]*Object
}

func NewStringPool() *StringPool {
	return &StringPool{buckets: make(map[uint64][]*Object)}
}

// fnv1a64 hashes a byte string. FNV-1a is the hashing scheme
// recommends ("FNV-style or equivalent").
func fnv1a64(b []byte) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for _, c := range b {
		h ^= uint64(c)
		h *= prime64
	}
	return h
}

// New looks up an existing interned string equal to b, or inserts a new
// one. Returns an owned reference: the caller must Disown (directly, or by
// letting the Value holding it be destroyed) exactly once.
func (p *StringPool) New(b []byte) *Object {
	h := fnv1a64(b)
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, o := range p.buckets[h] {
		if sameBytes(o.Data.(*StringData).Bytes, b) {
			Own(o)
			return o
		}
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	sd := &StringData{Bytes: cp, Hash: h, pool: p}
	o := Alloc(CString, sd, func(dead *Object) {
		p.remove(dead)
	})
	p.buckets[h] = append(p.buckets[h], o)
	return o
}

func (p *StringPool) NewString(s string) *Object { return p.New([]byte(s)) }

// Find looks up a string without inserting. Returns nil if absent.
func (p *StringPool) Find(b []byte) *Object {
	h := fnv1a64(b)
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, o := range p.buckets[h] {
		if sameBytes(o.Data.(*StringData).Bytes, b) {
			Own(o)
			return o
		}
	}
	return nil
}

// remove is invoked by the string's destructor (a closure over the pool,
// installed by New) once refcount reaches zero; it is safe to call with the
// pool's mutex not held because Disown already guarantees single-call.
func (p *StringPool) remove(o *Object) {
	sd := o.Data.(*StringData)
	p.mu.Lock()
	defer p.mu.Unlock()
	bucket := p.buckets[sd.Hash]
	for i, cand := range bucket {
		if cand == o {
			bucket[i] = bucket[len(bucket)-1]
			p.buckets[sd.Hash] = bucket[:len(bucket)-1]
			break
		}
	}
	if len(p.buckets[sd.Hash]) == 0 {
		delete(p.buckets, sd.Hash)
	}
}

func sameBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// StringBytes returns the interned byte content of a string object. o must
// have ClassID == CString.
func StringBytes(o *Object) []byte {
	return o.Data.(*StringData).Bytes
}
