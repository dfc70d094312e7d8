// Package buildenv models the context a build orchestrator hands to every pre-build hook:
// symbolic path substitution, execution of the configured compiler and the platform
// descriptor. Hooks depend on the Env interface only, so tests can substitute fakes.
package buildenv

import (
	"context"
	"os"
	"sort"
	"strconv"
	"time"
)

// Well-known substitution variables.
const (
	VarProjectDir = "PROJECT_DIR"
	VarBuildDir   = "BUILD_DIR"
	VarProgName   = "PROGNAME"
	VarPIOEnv     = "PIOENV"
	VarCC         = "CC"
	VarUnixTime   = "UNIX_TIME"
)

// Env is the hook-facing view of the build environment.
type Env interface {
	// Subst resolves $VAR and ${VAR} references. Unknown variables expand to "".
	Subst(s string) string
	// Exec runs name with args and returns its captured stdout and stderr.
	Exec(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
	// Platform returns the active platform/toolchain descriptor.
	Platform() (Platform, error)
}

// Static is an Env backed by a fixed variable table.
type Static struct {
	vars     map[string]string
	runner   Runner
	platform PlatformSource
}

// Option configures a Static environment.
type Option func(*Static)

// WithRunner replaces the subprocess runner.
func WithRunner(r Runner) Option {
	return func(s *Static) { s.runner = r }
}

// WithPlatform sets the platform descriptor source.
func WithPlatform(p PlatformSource) Option {
	return func(s *Static) { s.platform = p }
}

// New builds a Static environment. UNIX_TIME is filled from now unless vars sets it,
// and lookups for names missing from vars fall back to the process environment.
func New(vars map[string]string, now time.Time, opts ...Option) *Static {
	table := make(map[string]string, len(vars)+1)
	for k, v := range vars {
		table[k] = v
	}
	if _, ok := table[VarUnixTime]; !ok {
		table[VarUnixTime] = strconv.FormatInt(now.Unix(), 10)
	}

	s := &Static{
		vars:     table,
		runner:   ExecRunner{},
		platform: FixedPlatform{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subst expands variables, resolving nested references up to a fixed depth so values
// such as BUILD_DIR="$PROJECT_DIR/.pio/build/esp32s3" work.
func (s *Static) Subst(in string) string {
	out := in
	for range 8 {
		next := os.Expand(out, s.lookup)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func (s *Static) lookup(name string) string {
	if v, ok := s.vars[name]; ok {
		return v
	}
	return os.Getenv(name)
}

// Var returns a raw, unexpanded variable.
func (s *Static) Var(name string) (string, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// Names lists the configured variable names in sorted order.
func (s *Static) Names() []string {
	names := make([]string, 0, len(s.vars))
	for k := range s.vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Exec delegates to the configured Runner.
func (s *Static) Exec(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	return s.runner.Run(ctx, name, args...)
}

// Platform delegates to the configured PlatformSource.
func (s *Static) Platform() (Platform, error) {
	return s.platform.Platform()
}
