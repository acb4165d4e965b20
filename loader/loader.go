// Package loader implements module discovery and refuse-unload handling
// on top of host.Host's lower-level Load/Unload primitives: given a search
// path, find a module's image file, load it, and track it so later
// Release/CloseAll calls can find it by name again. A refused unload is
// reported to the caller and is not retried.
package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/eel-lang/eel/exception"
	"github.com/eel-lang/eel/host"
	"github.com/eel-lang/eel/module"
)

// Loader resolves module names against a search path, the same role the
// original runtime's dynamic loader plays when a script statement
// requests a module that is not yet resident.
type Loader struct {
	Host        *host.Host
	SearchPaths []string

	loaded map[string]*module.Module
}

// New creates a Loader bound to h, searching paths in order for modules
// it has not already resolved.
func New(h *host.Host, searchPaths ...string) *Loader {
	return &Loader{Host: h, SearchPaths: searchPaths, loaded: make(map[string]*module.Module)}
}

// Require loads name if it is not already resident, returning the cached
// instance on a repeat request.
func (l *Loader) Require(name string) (*module.Module, error) {
	if m, ok := l.loaded[name]; ok {
		return m, nil
	}
	path, err := l.resolve(name)
	if err != nil {
		return nil, err
	}
	m, err := l.Host.LoadFile(path)
	if err != nil {
		return nil, err
	}
	l.loaded[name] = m
	return m, nil
}

// resolve walks SearchPaths looking for name's module image, trying the
// bare name first and then name+".eel.img" in each directory.
func (l *Loader) resolve(name string) (string, error) {
	candidates := []string{name, name + ".eel.img"}
	for _, dir := range l.SearchPaths {
		for _, c := range candidates {
			p := filepath.Join(dir, c)
			if _, err := os.Stat(p); err == nil {
				return p, nil
			}
		}
	}
	return "", exception.New(l.Host.VM.Exceptions, exception.DeviceOpen, "module %q not found in search path", name)
}

// Release requests unload of a previously-Required module: a
// module may refuse by returning an exception.Refuse error (as
// module.RefuseUnload builds), in which case Release leaves it installed
// and returns an error wrapping module.ErrRefused rather than forcing it
// out from under live references.
func (l *Loader) Release(name string) error {
	m, ok := l.loaded[name]
	if !ok {
		return fmt.Errorf("loader: %q is not loaded", name)
	}
	if err := l.Host.Unload(m); err != nil {
		if exception.CodeOf(err) == exception.Refuse {
			return fmt.Errorf("loader: module %q refused unload: %w", name, module.ErrRefused)
		}
		return fmt.Errorf("loader: module %q: %w", name, err)
	}
	delete(l.loaded, name)
	return nil
}

// CloseAll tears down every module still resident, in the VM's own
// reverse-registration-order teardown, via Host.Close.
func (l *Loader) CloseAll() error {
	if err := l.Host.Close(); err != nil {
		return err
	}
	l.loaded = make(map[string]*module.Module)
	return nil
}
