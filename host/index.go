package host

import "github.com/eel-lang/eel/values"

// GetLIndex/SetLIndex index a container by an integer key, mirroring
// eel_getlindex/eel_setlindex.
func (h *Host) GetLIndex(container values.Value, i int32) (values.Value, error) {
	return h.VM.GetIndex(container, values.Int(i))
}

func (h *Host) SetLIndex(container values.Value, i int32, v values.Value) error {
	return h.VM.SetIndex(container, values.Int(i), v)
}

// GetSIndex/SetSIndex index a container by a string key, mirroring
// eel_getsindex/eel_setsindex.
func (h *Host) GetSIndex(container values.Value, key string) (values.Value, error) {
	k := h.S2V(key)
	v, err := h.VM.GetIndex(container, k)
	values.Destroy(k)
	return v, err
}

func (h *Host) SetSIndex(container values.Value, key string, v values.Value) error {
	k := h.S2V(key)
	err := h.VM.SetIndex(container, k, v)
	values.Destroy(k) // SetIndex always copies the key it needs to retain
	return err
}

// Length mirrors eel_length.
func (h *Host) Length(container values.Value) (int, error) {
	return h.VM.Length(container)
}
