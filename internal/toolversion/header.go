package toolversion

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/earshooks/internal/fsutil"
)

// HeaderGuard is the include guard of the generated header.
const HeaderGuard = "__EARS_TOOLS_VERSION_H__"

// Header is the content of EARS_toolsVersionDef.h.
type Header struct {
	Environment string
	UnixTime    string
	Compiler    Record
	Platform    Record
}

// Render formats the header. Output is deterministic for a given Header.
func (h Header) Render() []byte {
	var b strings.Builder
	b.WriteString("// Auto-generated version information\n")
	b.WriteString("// Do not edit manually\n")
	fmt.Fprintf(&b, "// Generated on: %s\n", h.Environment)
	fmt.Fprintf(&b, "// Build timestamp: %s\n\n", h.UnixTime)

	fmt.Fprintf(&b, "#ifndef %s\n", HeaderGuard)
	fmt.Fprintf(&b, "#define %s\n\n", HeaderGuard)

	b.WriteString("// Xtensa Compiler Version\n")
	writeMacros(&b, "EARS_XTENSA_COMPILER", h.Compiler)
	b.WriteString("// Espressif Platform Version (espressif32)\n")
	writeMacros(&b, "EARS_ESPRESSIF_PLATFORM", h.Platform)

	fmt.Fprintf(&b, "#endif // %s\n", HeaderGuard)
	return []byte(b.String())
}

func writeMacros(b *strings.Builder, prefix string, r Record) {
	version := r.Version
	if version == "" {
		version = Unknown
	}
	fmt.Fprintf(b, "#define %s_VERSION \"%s\"\n", prefix, version)
	fmt.Fprintf(b, "#define %s_MAJOR %d\n", prefix, r.Major)
	fmt.Fprintf(b, "#define %s_MINOR %d\n", prefix, r.Minor)
	fmt.Fprintf(b, "#define %s_PATCH %d\n\n", prefix, r.Patch)
}

// WriteHeader replaces path with the rendered header, creating its directory.
func WriteHeader(path string, h Header) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create header directory: %w", err)
	}
	return fsutil.WriteFileAtomic(path, h.Render())
}
