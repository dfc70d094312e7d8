package toolversion

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"git.home.luguber.info/inful/earshooks/internal/buildenv"
	"git.home.luguber.info/inful/earshooks/internal/logfields"
	"git.home.luguber.info/inful/earshooks/internal/observability"
)

// DefaultProbeTimeout bounds the compiler --version subprocess.
const DefaultProbeTimeout = 10 * time.Second

// ProbeCompiler runs "<compiler> --version" and parses stdout and stderr together.
// The compiler string may carry a launcher prefix such as "ccache gcc". Every failure
// yields the Unknown record and a warning log.
func ProbeCompiler(ctx context.Context, env buildenv.Env, compiler string, timeout time.Duration) Record {
	argv := strings.Fields(compiler)
	if len(argv) == 0 {
		observability.WarnContext(ctx, "No compiler configured, recording unknown version",
			logfields.Component(ComponentCompiler))
		return UnknownRecord(ComponentCompiler)
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(argv[1:], "--version")
	stdout, stderr, err := env.Exec(probeCtx, argv[0], args...)
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		// Some toolchains exit non-zero on --version; their output is still usable.
		observability.DebugContext(ctx, "Compiler exited non-zero, parsing output anyway",
			logfields.Component(ComponentCompiler), logfields.Error(err))
	default:
		observability.WarnContext(ctx, "Compiler version probe failed",
			logfields.Component(ComponentCompiler), logfields.Error(err))
		return UnknownRecord(ComponentCompiler)
	}

	rec, ok := ParseRecord(ComponentCompiler, string(stdout)+string(stderr))
	if !ok {
		observability.WarnContext(ctx, "Could not parse compiler version",
			logfields.Component(ComponentCompiler))
		return rec
	}
	observability.InfoContext(ctx, "Detected compiler version",
		logfields.Component(ComponentCompiler), logfields.Version(rec.Version))
	return rec
}

// ProbePlatform reads the version attribute of the platform descriptor.
func ProbePlatform(ctx context.Context, env buildenv.Env) Record {
	p, err := env.Platform()
	if err != nil {
		observability.WarnContext(ctx, "Platform version unavailable",
			logfields.Component(ComponentPlatform), logfields.Error(err))
		return UnknownRecord(ComponentPlatform)
	}

	rec, ok := ParseRecord(ComponentPlatform, p.Version)
	if !ok {
		observability.WarnContext(ctx, "Could not parse platform version",
			logfields.Component(ComponentPlatform), logfields.Version(p.Version))
		return rec
	}
	observability.InfoContext(ctx, "Detected platform version",
		logfields.Component(ComponentPlatform), logfields.Version(rec.Version))
	return rec
}
