package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/earshooks/internal/buildenv"
)

// envFiles are loaded in order; earlier files win and the process environment is never
// overridden.
var envFiles = []string{".env", ".env.local"}

func loadEnvFiles() {
	for _, path := range envFiles {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("Failed to load env file", slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		slog.Debug("Loaded environment variables", slog.String("path", path))
	}
}

// buildVars are resolved at hook time by buildenv, not at load time, so templates
// like "$PROJECT_DIR/include" survive expansion.
var buildVars = map[string]struct{}{
	buildenv.VarProjectDir: {},
	buildenv.VarBuildDir:   {},
	buildenv.VarProgName:   {},
	buildenv.VarPIOEnv:     {},
	buildenv.VarCC:         {},
	buildenv.VarUnixTime:   {},
}

// expandEnv is os.ExpandEnv except that build variables and unset names are kept
// verbatim.
func expandEnv(s string) string {
	return os.Expand(s, func(name string) string {
		if _, ok := buildVars[name]; !ok {
			if v, ok := os.LookupEnv(name); ok {
				return v
			}
		}
		return "${" + name + "}"
	})
}
