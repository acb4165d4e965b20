package values

import "unsafe"

// ptrOf returns the identity address of an object, used as the default
// table-key hash for classes that define no `hash` metamethod.
func ptrOf(o *Object) unsafe.Pointer {
	return unsafe.Pointer(o)
}
