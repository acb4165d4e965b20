package values

import (
	"fmt"
	"sync/atomic"
)

// Destructor is invoked exactly once, when an object's refcount reaches
// zero. It must not re-own (resurrect) the object it is passed.
type Destructor func(o *Object)

// Object is the common header every heap-allocated, reference-counted value
// shares. Per-class private data lives in Data; containers store their
// backing slices/maps there (see array.go, table.go, vector.go, dstring.go).
type Object struct {
	ClassID    int32
	refcount   int32
	destructed bool
	destruct   Destructor
	Data       interface{}

	id uint64 // process-wide allocation sequence number, for diagnostics only
}

var (
	objectIDCounter uint64
	liveObjects     int64
	totalAllocated  int64
)

// Alloc returns a new object with refcount 1, owned by the caller. destruct
// may be nil for classes with no teardown behaviour.
func Alloc(classid int32, data interface{}, destruct Destructor) *Object {
	atomic.AddInt64(&liveObjects, 1)
	atomic.AddInt64(&totalAllocated, 1)
	return &Object{
		ClassID:  classid,
		refcount: 1,
		destruct: destruct,
		Data:     data,
		id:       atomic.AddUint64(&objectIDCounter, 1),
	}
}

// LiveObjects reports the number of heap objects currently allocated and
// not yet destructed, across every VM in the process.
func LiveObjects() int64 {
	return atomic.LoadInt64(&liveObjects)
}

// TotalAllocated reports the lifetime count of objects ever allocated,
// across every VM in the process.
func TotalAllocated() int64 {
	return atomic.LoadInt64(&totalAllocated)
}

// Refcount returns the object's current reference count. Exposed for
// testing the ref-safety invariant and for host diagnostics.
func (o *Object) Refcount() int32 {
	return atomic.LoadInt32(&o.refcount)
}

// Own increments o's refcount. It is the object-heap half of copying a
// Value; the immediate-kind half is a plain struct copy.
func Own(o *Object) {
	if o == nil {
		return
	}
	atomic.AddInt32(&o.refcount, 1)
}

// Disown decrements o's refcount and, if it reaches zero, runs the
// destructor exactly once and marks the object dead. Disowning an object
// whose refcount is already zero is a programming error (double-free) and
// panics rather than corrupting the heap silently.
func Disown(o *Object) {
	if o == nil {
		return
	}
	rc := atomic.AddInt32(&o.refcount, -1)
	if rc > 0 {
		return
	}
	if rc < 0 {
		panic(fmt.Sprintf("values: disown on object %d (class %d) with refcount already zero", o.id, o.ClassID))
	}
	if o.destructed {
		return
	}
	o.destructed = true
	atomic.AddInt64(&liveObjects, -1)
	if o.destruct != nil {
		o.destruct(o)
	}
}

// Dead reports whether the object has already run its destructor. Live
// back-pointers (e.g. a joystick list entry) should check
// this rather than hold the object alive.
func (o *Object) Dead() bool {
	if o == nil {
		return true
	}
	return o.destructed
}
