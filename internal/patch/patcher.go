package patch

import (
	"context"
	"errors"
	"io/fs"

	"git.home.luguber.info/inful/earshooks/internal/buildenv"
	foundationerrors "git.home.luguber.info/inful/earshooks/internal/foundation/errors"
	"git.home.luguber.info/inful/earshooks/internal/logfields"
	"git.home.luguber.info/inful/earshooks/internal/metrics"
	"git.home.luguber.info/inful/earshooks/internal/observability"
)

// DefaultTarget is the EEZ Studio flow source relative to the project.
const DefaultTarget = "$PROJECT_DIR/src/ui/eez-flow.cpp"

// Patcher applies a rule set to the generated UI source.
type Patcher struct {
	rules    []Rule
	target   string
	dryRun   bool
	recorder metrics.Recorder
}

// Option configures a Patcher.
type Option func(*Patcher)

// WithTarget overrides the target path template (resolved through Env.Subst).
func WithTarget(target string) Option {
	return func(p *Patcher) {
		if target != "" {
			p.target = target
		}
	}
}

// WithDryRun makes Run count substitutions without writing.
func WithDryRun(dryRun bool) Option {
	return func(p *Patcher) { p.dryRun = dryRun }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Patcher) {
		if r != nil {
			p.recorder = r
		}
	}
}

// NewPatcher creates a patcher for rules.
func NewPatcher(rules []Rule, opts ...Option) *Patcher {
	p := &Patcher{
		rules:    rules,
		target:   DefaultTarget,
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result summarises one patcher run.
type Result struct {
	Path    string
	Skipped bool
	DryRun  bool
	Written bool
	PerRule []RuleCount
	Total   int
}

// Changed reports whether any substitution was made (or would be, in dry-run mode).
func (r *Result) Changed() bool { return r.Total > 0 }

// Target returns the resolved target path.
func (p *Patcher) Target(env buildenv.Env) string {
	return env.Subst(p.target)
}

// Run patches the target file. A missing target is reported as a skipped result, not
// an error.
func (p *Patcher) Run(ctx context.Context, env buildenv.Env) (*Result, error) {
	path := p.Target(env)
	res := &Result{Path: path, DryRun: p.dryRun}

	observability.InfoContext(ctx, "Checking LVGL compatibility", logfields.Path(path))

	doc, err := LoadDocument(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			observability.WarnContext(ctx, "Patch target not found, skipping", logfields.Path(path))
			res.Skipped = true
			return res, nil
		}
		return res, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "read patch target").
			WithPath(path).
			Fatal().
			Build()
	}

	res.PerRule = doc.Apply(p.rules)
	for _, rc := range res.PerRule {
		res.Total += rc.Count
		if rc.Count > 0 {
			observability.InfoContext(ctx, "Fixed call sites",
				logfields.Rule(rc.Rule), logfields.Count(rc.Count))
		}
		p.recorder.AddPatchFixes(rc.Rule, rc.Count)
	}

	if !doc.Changed() {
		observability.InfoContext(ctx, "Source already compatible", logfields.Path(path))
		return res, nil
	}
	if p.dryRun {
		observability.InfoContext(ctx, "Dry run, not writing changes",
			logfields.Path(path), logfields.Count(res.Total))
		return res, nil
	}

	written, err := doc.Save()
	if err != nil {
		return res, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "write patch target").
			WithPath(path).
			Fatal().
			Build()
	}
	res.Written = written
	observability.InfoContext(ctx, "Applied LVGL compatibility fixes", logfields.Path(path), logfields.Count(res.Total))
	return res, nil
}
