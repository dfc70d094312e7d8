package hooks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"git.home.luguber.info/inful/earshooks/internal/buildenv"
	foundationerrors "git.home.luguber.info/inful/earshooks/internal/foundation/errors"
	"git.home.luguber.info/inful/earshooks/internal/logfields"
	"git.home.luguber.info/inful/earshooks/internal/metrics"
	"git.home.luguber.info/inful/earshooks/internal/observability"
)

type registration struct {
	target string
	hook   Hook
}

// SourceFilter decides whether a candidate source file is compiled.
type SourceFilter func(path string) bool

// Chain holds hook registrations in order.
type Chain struct {
	regs        []registration
	filters     []SourceFilter
	stopOnFatal bool
	recorder    metrics.Recorder
	now         func() time.Time
}

// Option configures a Chain.
type Option func(*Chain)

// WithStopOnFatal stops the run at the first fatal hook.
func WithStopOnFatal(stop bool) Option {
	return func(c *Chain) { c.stopOnFatal = stop }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Chain) {
		if r != nil {
			c.recorder = r
		}
	}
}

// NewChain creates an empty chain.
func NewChain(opts ...Option) *Chain {
	c := &Chain{recorder: metrics.NoopRecorder{}, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddPreAction registers hook to run before target. Hooks for the same target run in
// registration order.
func (c *Chain) AddPreAction(target string, hook Hook) {
	c.regs = append(c.regs, registration{target: target, hook: hook})
}

// AddBuildMiddleware registers a source filter applied by FilterSources.
func (c *Chain) AddBuildMiddleware(f SourceFilter) {
	c.filters = append(c.filters, f)
}

// FilterSources splits candidate source paths into kept and dropped using every
// registered middleware; a path is dropped as soon as one filter rejects it.
func (c *Chain) FilterSources(paths []string) (kept, dropped []string) {
	for _, p := range paths {
		keep := true
		for _, f := range c.filters {
			if !f(p) {
				keep = false
				break
			}
		}
		if keep {
			kept = append(kept, p)
		} else {
			dropped = append(dropped, p)
		}
	}
	return kept, dropped
}

// Targets lists registered targets in first-registration order.
func (c *Chain) Targets() []string {
	var out []string
	seen := map[string]bool{}
	for _, r := range c.regs {
		if !seen[r.target] {
			seen[r.target] = true
			out = append(out, r.target)
		}
	}
	return out
}

// Hooks lists hook names registered for target (matched as in Run).
func (c *Chain) Hooks(env buildenv.Env, target string) []string {
	var out []string
	for _, r := range c.regs {
		if matchTarget(env, r.target, target) {
			out = append(out, r.hook.Name)
		}
	}
	return out
}

func matchTarget(env buildenv.Env, registered, requested string) bool {
	if requested == "" || registered == requested {
		return true
	}
	return env.Subst(registered) == env.Subst(requested)
}

// Run executes the hooks registered for target, or every hook in registration order
// when target is empty. Fatal hooks do not stop the chain unless WithStopOnFatal is
// set; the returned error aggregates every fatal hook.
func (c *Chain) Run(ctx context.Context, env buildenv.Env, target string) (*Report, error) {
	report := &Report{RunID: observability.GetContext(ctx).RunID, Start: c.now()}
	if report.RunID == "" {
		report.RunID = observability.NewRunID()
		ctx = observability.WithRunID(ctx, report.RunID)
	}

	matched := 0
	for _, r := range c.regs {
		if !matchTarget(env, r.target, target) {
			continue
		}
		matched++

		if err := ctx.Err(); err != nil {
			report.add(Entry{Target: r.target, Hook: r.hook.Name, Outcome: OutcomeCanceled, Err: err})
			c.recorder.IncHookResult(r.hook.Name, metrics.ResultCanceled)
			continue
		}

		entry := c.runHook(ctx, env, r)
		report.add(entry)
		if entry.Outcome == OutcomeFatal && c.stopOnFatal {
			observability.ErrorContext(ctx, "Stopping hook chain after fatal hook", logfields.Hook(entry.Hook))
			break
		}
	}
	report.End = c.now()

	if matched == 0 && target != "" {
		return report, foundationerrors.ValidationError("no hooks registered for target").
			WithContext("target", target).
			Build()
	}
	if err := report.Err(); err != nil {
		return report, err
	}
	if report.Count(OutcomeCanceled) > 0 {
		return report, ctx.Err()
	}
	return report, nil
}

func (c *Chain) runHook(ctx context.Context, env buildenv.Env, r registration) (entry Entry) {
	hookCtx := observability.WithHook(observability.WithTarget(ctx, r.target), r.hook.Name)
	entry = Entry{Target: r.target, Hook: r.hook.Name}

	observability.DebugContext(hookCtx, "Running hook")
	start := c.now()
	defer func() {
		if p := recover(); p != nil {
			entry.Outcome = OutcomeFatal
			observability.DebugContext(hookCtx, "Hook panic stack", slog.String("stack", string(debug.Stack())))
			entry.Err = foundationerrors.InternalError(fmt.Sprintf("hook panicked: %v", p)).
				WithHook(entry.Hook).
				Build()
		}
		entry.Duration = c.now().Sub(start)
		c.recorder.ObserveHookDuration(entry.Hook, entry.Duration)
		c.recorder.IncHookResult(entry.Hook, entry.Outcome.label())
		logOutcome(hookCtx, entry)
	}()

	res := r.hook.Run(hookCtx, env)
	entry.Outcome, entry.Summary, entry.Err = res.Outcome, res.Summary, res.Err
	if entry.Outcome == "" {
		entry.Outcome = OutcomeSuccess
	}
	return entry
}

func logOutcome(ctx context.Context, e Entry) {
	attrs := []slog.Attr{logfields.DurationMS(float64(e.Duration.Microseconds()) / 1000)}
	if e.Summary != "" {
		attrs = append(attrs, slog.String("summary", e.Summary))
	}
	if e.Err != nil {
		attrs = append(attrs, logfields.Error(e.Err))
	}
	switch e.Outcome {
	case OutcomeFatal:
		observability.ErrorContext(ctx, "Hook failed", attrs...)
	case OutcomeWarning:
		observability.WarnContext(ctx, "Hook completed with warnings", attrs...)
	default:
		observability.InfoContext(ctx, "Hook completed", attrs...)
	}
}

// Report collects hook entries of one chain run.
type Report struct {
	RunID   string
	Start   time.Time
	End     time.Time
	Entries []Entry
}

func (r *Report) add(e Entry) { r.Entries = append(r.Entries, e) }

// Count returns the number of entries with outcome o.
func (r *Report) Count(o Outcome) int {
	n := 0
	for _, e := range r.Entries {
		if e.Outcome == o {
			n++
		}
	}
	return n
}

// Failed lists the names of fatal hooks.
func (r *Report) Failed() []string {
	var out []string
	for _, e := range r.Entries {
		if e.Outcome == OutcomeFatal {
			out = append(out, e.Hook)
		}
	}
	return out
}

// Err aggregates fatal hook errors; it carries the first failure's category.
func (r *Report) Err() error {
	var errs []error
	category := foundationerrors.CategoryInternal
	for _, e := range r.Entries {
		if e.Outcome != OutcomeFatal {
			continue
		}
		if len(errs) == 0 {
			category = foundationerrors.GetCategory(e.Err)
		}
		err := e.Err
		if err == nil {
			err = errors.New("failed")
		}
		errs = append(errs, fmt.Errorf("%s: %w", e.Hook, err))
	}
	if len(errs) == 0 {
		return nil
	}
	return foundationerrors.WrapError(errors.Join(errs...), category, fmt.Sprintf("%d hook(s) failed", len(errs))).
		WithContext("hooks", strings.Join(r.Failed(), ",")).
		Fatal().
		Build()
}
