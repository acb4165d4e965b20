package loader

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eel-lang/eel/host"
	"github.com/eel-lang/eel/module"
)

func TestReleaseSurfacesErrRefused(t *testing.T) {
	h := host.Open(host.Options{})
	defer h.Close()

	l := New(h)
	m := h.CreateModule("stubborn", func(*module.Module, bool) error {
		return module.RefuseUnload()
	}, nil)
	l.loaded["stubborn"] = m

	err := l.Release("stubborn")
	require.Error(t, err)
	assert.True(t, errors.Is(err, module.ErrRefused))

	if _, stillLoaded := l.loaded["stubborn"]; !stillLoaded {
		t.Fatal("a refused unload must leave the module resident")
	}
}
