package bytecode

import (
	"os"

	"github.com/edsrzf/mmap-go"
)

// LoadModuleFile maps a compiled module image from disk and decodes it.
// Mapping rather than reading the whole file mirrors how saferwall/pe maps
// PE binaries for zero-copy header/table parsing (see DESIGN.md); a module
// image's header + tables are read once at load time and never written
// back, so a read-only mapping is the right shape here too.
func LoadModuleFile(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return nil, errShort
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer m.Unmap()

	return Decode(m)
}

// SaveModuleFile writes img's serialized form to path.
func SaveModuleFile(path string, img *Image) error {
	return os.WriteFile(path, Encode(img), 0o644)
}
