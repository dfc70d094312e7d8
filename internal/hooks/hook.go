// Package hooks runs pre-build hooks in registration order against named build targets,
// the way the firmware build orchestrator invokes them, and collects a per-hook report.
package hooks

import (
	"context"
	"time"

	"git.home.luguber.info/inful/earshooks/internal/buildenv"
	foundationerrors "git.home.luguber.info/inful/earshooks/internal/foundation/errors"
	"git.home.luguber.info/inful/earshooks/internal/metrics"
)

// Build targets hooks attach to.
const (
	// TargetBuildProg runs before any object is compiled.
	TargetBuildProg = "buildprog"
	// TargetProgram runs before the final binary is linked.
	TargetProgram = "$BUILD_DIR/${PROGNAME}.elf"
)

// Outcome classifies how a hook finished.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeWarning  Outcome = "warning"
	OutcomeFatal    Outcome = "fatal"
	OutcomeCanceled Outcome = "canceled"
)

func (o Outcome) label() metrics.ResultLabel {
	switch o {
	case OutcomeWarning:
		return metrics.ResultWarning
	case OutcomeFatal:
		return metrics.ResultFatal
	case OutcomeCanceled:
		return metrics.ResultCanceled
	default:
		return metrics.ResultSuccess
	}
}

// Result is what a hook reports back to the chain.
type Result struct {
	Outcome Outcome
	Summary string
	Err     error
}

// Success builds a successful result.
func Success(summary string) Result { return Result{Outcome: OutcomeSuccess, Summary: summary} }

// Warning builds a degraded, non-blocking result.
func Warning(summary string, err error) Result {
	return Result{Outcome: OutcomeWarning, Summary: summary, Err: err}
}

// FromError classifies err by severity: fatal and error severities fail the hook,
// anything else is a warning.
func FromError(summary string, err error) Result {
	if err == nil {
		return Success(summary)
	}
	if foundationerrors.GetSeverity(err).Degrades() {
		return Warning(summary, err)
	}
	return Result{Outcome: OutcomeFatal, Summary: summary, Err: err}
}

// Func is the body of a hook.
type Func func(ctx context.Context, env buildenv.Env) Result

// Hook is a named pre-action.
type Hook struct {
	Name string
	Run  Func
}

// Entry is one hook execution in a Report.
type Entry struct {
	Target   string
	Hook     string
	Outcome  Outcome
	Summary  string
	Err      error
	Duration time.Duration
}
