package toolversion

import (
	"context"
	"time"

	"git.home.luguber.info/inful/earshooks/internal/buildenv"
	foundationerrors "git.home.luguber.info/inful/earshooks/internal/foundation/errors"
	"git.home.luguber.info/inful/earshooks/internal/logfields"
	"git.home.luguber.info/inful/earshooks/internal/observability"
)

// Default path templates, resolved through buildenv.Env.Subst.
const (
	DefaultCompiler = "$CC"
	DefaultHeader   = "$PROJECT_DIR/include/EARS_toolsVersionDef.h"
)

// Extractor probes toolchain versions and writes the version header.
type Extractor struct {
	Compiler string
	Header   string
	Timeout  time.Duration
}

// NewExtractor returns an Extractor with default paths and timeout.
func NewExtractor() *Extractor {
	return &Extractor{
		Compiler: DefaultCompiler,
		Header:   DefaultHeader,
		Timeout:  DefaultProbeTimeout,
	}
}

// Result holds what Extract found. Err records a header write failure; extraction
// itself never fails.
type Result struct {
	Compiler Record
	Platform Record
	Header   string
	Err      error
}

// Degraded reports whether any part fell back or failed.
func (r *Result) Degraded() bool {
	return r.Err != nil || !r.Compiler.Known() || !r.Platform.Known()
}

// Extract probes both components and rewrites the header.
func (e *Extractor) Extract(ctx context.Context, env buildenv.Env) *Result {
	res := &Result{
		Compiler: ProbeCompiler(ctx, env, env.Subst(e.Compiler), e.Timeout),
		Platform: ProbePlatform(ctx, env),
		Header:   env.Subst(e.Header),
	}

	h := Header{
		Environment: env.Subst("$" + buildenv.VarPIOEnv),
		UnixTime:    env.Subst("$" + buildenv.VarUnixTime),
		Compiler:    res.Compiler,
		Platform:    res.Platform,
	}
	if err := WriteHeader(res.Header, h); err != nil {
		res.Err = foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "write version header").
			WithPath(res.Header).
			Warning().
			Build()
		observability.WarnContext(ctx, "Failed to write version header",
			logfields.Path(res.Header), logfields.Error(err))
		return res
	}
	observability.InfoContext(ctx, "Version header written", logfields.Path(res.Header))
	return res
}
