package module

import (
	"fmt"
	"sync"

	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/values"
)

// UnloadFunc is called when a module is torn down.
// closing is true during normal VM-shutdown teardown, in which case the
// module must release all state and return nil; closing is false for an
// explicit host-initiated `unload` attempt, in which case the callback may
// return exception.Refuse to decline disposal (the loader then leaves the
// module installed).
type UnloadFunc func(m *Module, closing bool) error

// Module is a loaded translation unit: it owns a constant
// pool, a function table, an ordered map of exported symbols, an unload
// callback, and a closing flag distinguishing the two teardown paths.
type Module struct {
	Name string

	mu        sync.RWMutex
	Constants []values.Value
	Functions map[string]*Function

	exportOrder []string
	exportVals  map[string]values.Value

	unload   UnloadFunc
	userData interface{}

	closing bool
}

func New(name string, unload UnloadFunc, userData interface{}) *Module {
	return &Module{
		Name:       name,
		Functions:  make(map[string]*Function),
		exportVals: make(map[string]values.Value),
		unload:     unload,
		userData:   userData,
	}
}

func (m *Module) UserData() interface{} { return m.userData }

// DefineFunction adds fn to the module's function table and points its
// Module back-pointer at m.
func (m *Module) DefineFunction(fn *Function) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn.Module = m
	m.Functions[fn.Name] = fn
}

func (m *Module) Function(name string) (*Function, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn, ok := m.Functions[name]
	return fn, ok
}

// Export installs name->value in the module's ordered export map, taking
// ownership of value. First write establishes export order; re-exporting
// the same name updates the value in place (mirrors Table semantics,
//).
func (m *Module) Export(name string, value values.Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.exportVals[name]; !exists {
		m.exportOrder = append(m.exportOrder, name)
	} else {
		values.Destroy(m.exportVals[name])
	}
	m.exportVals[name] = value
}

// Lookup returns the value exported under name. The returned Value is
// the module's own reference; it is not copied.
func (m *Module) Lookup(name string) (values.Value, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.exportVals[name]
	return v, ok
}

// Exports returns the exported names in insertion order.
func (m *Module) Exports() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.exportOrder))
	copy(out, m.exportOrder)
	return out
}

// Closing reports whether this module is mid-teardown.
func (m *Module) Closing() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closing
}

// Unload runs the module's unload callback. closing selects
// between the two teardown paths; see UnloadFunc.
func (m *Module) Unload(closing bool) error {
	m.mu.Lock()
	m.closing = closing
	cb := m.unload
	m.mu.Unlock()

	if cb == nil {
		return m.releaseOwnedState()
	}
	if err := cb(m, closing); err != nil {
		return err
	}
	return m.releaseOwnedState()
}

// releaseOwnedState drops the module's strong references to its constants
// and exported values: "A module keeps strong references to
// its constants, functions, and exported objects, so tearing down a
// module in the right order drops those refs and lets its transitive data
// die."
func (m *Module) releaseOwnedState() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.Constants {
		values.Destroy(v)
	}
	m.Constants = nil
	for _, name := range m.exportOrder {
		values.Destroy(m.exportVals[name])
	}
	m.exportOrder = nil
	m.exportVals = make(map[string]values.Value)
	return nil
}

// ErrRefused is the sentinel loader.Release wraps into its error when a
// module's unload callback declines with an exception.Refuse error, so
// callers can test for a refusal with errors.Is.
var ErrRefused = fmt.Errorf("module: unload refused")

// RefuseUnload is a convenience an unload callback can return to decline
// disposal.
func RefuseUnload() error {
	return exception.New(nil, exception.Refuse, "module declined unload while VM is still alive")
}
