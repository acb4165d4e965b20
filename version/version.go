// Package version reports the runtime's own build identity and the
// module-image format version it reads and writes.
package version

import "fmt"

// VERSION/COMMIT/BUILT are stamped at build time via -ldflags, matching
// the teacher's own version package convention.
var (
	VERSION = "0.1.0"
	COMMIT  = "dev"
	BUILT   = ""
)

func Version() string {
	return fmt.Sprintf("%s (%s)", VERSION, BUILT)
}

// ImageMajor/ImageMinor/ImageMicro is the module-image format version this
// build produces and accepts. Major changes are
// wire-incompatible; minor/micro changes only add optional sections.
const (
	ImageMajor = 1
	ImageMinor = 0
	ImageMicro = 0
)

func ImageVersion() string {
	return fmt.Sprintf("%d.%d.%d", ImageMajor, ImageMinor, ImageMicro)
}
