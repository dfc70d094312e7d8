package buildstate

import (
	"context"
	"errors"
	"io/fs"

	"github.com/jonboulle/clockwork"

	"git.home.luguber.info/inful/earshooks/internal/buildenv"
	foundationerrors "git.home.luguber.info/inful/earshooks/internal/foundation/errors"
	"git.home.luguber.info/inful/earshooks/internal/fsutil"
	"git.home.luguber.info/inful/earshooks/internal/logfields"
	"git.home.luguber.info/inful/earshooks/internal/metrics"
	"git.home.luguber.info/inful/earshooks/internal/observability"
)

// DefaultHeader is the checked-in version header relative to the project.
const DefaultHeader = "$PROJECT_DIR/include/EARS_versionDef.h"

// Updater bumps the build state in a header file.
type Updater struct {
	header   string
	opts     Options
	clock    clockwork.Clock
	recorder metrics.Recorder
}

// Option configures an Updater.
type Option func(*Updater)

// WithHeader overrides the header path template.
func WithHeader(path string) Option {
	return func(u *Updater) {
		if path != "" {
			u.header = path
		}
	}
}

// WithBuildNumber also increments EARS_APP_BUILD_NUMBER when present.
func WithBuildNumber(enabled bool) Option {
	return func(u *Updater) { u.opts.BuildNumber = enabled }
}

// WithClock injects the clock used for the build timestamp.
func WithClock(c clockwork.Clock) Option {
	return func(u *Updater) {
		if c != nil {
			u.clock = c
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(u *Updater) {
		if r != nil {
			u.recorder = r
		}
	}
}

// NewUpdater returns an Updater for the default header using the real clock.
func NewUpdater(opts ...Option) *Updater {
	u := &Updater{
		header:   DefaultHeader,
		clock:    clockwork.NewRealClock(),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Result is the outcome of a bump.
type Result struct {
	Path  string
	State State
}

// Run reads the header, computes the new state in memory and writes it back in one
// atomic replace. A missing header is fatal for the hook.
func (u *Updater) Run(ctx context.Context, env buildenv.Env) (*Result, error) {
	path := env.Subst(u.header)
	res := &Result{Path: path}

	text, err := fsutil.ReadText(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return res, foundationerrors.WrapError(err, foundationerrors.CategoryNotFound, "version header not found").
				WithPath(path).
				Fatal().
				Build()
		}
		return res, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "read version header").
			WithPath(path).
			Fatal().
			Build()
	}

	updated, st, err := Update(text.Body, u.clock.Now(), u.opts)
	if err != nil {
		if ce, ok := foundationerrors.AsClassified(err); ok {
			return res, foundationerrors.WrapError(ce, ce.Category(), "update version header").
				WithPath(path).
				Fatal().
				Build()
		}
		return res, err
	}
	res.State = st

	switch {
	case st.Inserted:
		observability.WarnContext(ctx, "Build counter missing, inserted initial value",
			logfields.Path(path), logfields.Count(st.Counter))
	case st.Migrated:
		observability.WarnContext(ctx, "Build counter was a bare integer, rewritten in quoted form",
			logfields.Path(path), logfields.Count(st.Counter))
	default:
		observability.InfoContext(ctx, "Build counter advanced",
			logfields.Path(path), logfields.Count(st.Counter))
	}
	if st.TimestampMissing {
		observability.WarnContext(ctx, "Build timestamp macro not found", logfields.Path(path))
	}

	text.Body = updated
	if err := fsutil.WriteText(path, text); err != nil {
		return res, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "write version header").
			WithPath(path).
			Fatal().
			Build()
	}
	u.recorder.SetBuildCounter(st.Counter)
	return res, nil
}
