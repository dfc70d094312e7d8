package hooks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/earshooks/internal/buildenv"
	foundationerrors "git.home.luguber.info/inful/earshooks/internal/foundation/errors"
	"git.home.luguber.info/inful/earshooks/internal/metrics"
	"git.home.luguber.info/inful/earshooks/internal/observability"
)

func testEnv() buildenv.Env {
	return buildenv.New(map[string]string{
		buildenv.VarBuildDir: "/p/.pio/build/esp32s3",
		buildenv.VarProgName: "firmware",
	}, time.Now())
}

func recordingHook(name string, calls *[]string, res Result) Hook {
	return Hook{Name: name, Run: func(context.Context, buildenv.Env) Result {
		*calls = append(*calls, name)
		return res
	}}
}

type resultRecorder struct {
	metrics.NoopRecorder
	results map[string]metrics.ResultLabel
}

func (r *resultRecorder) IncHookResult(hook string, result metrics.ResultLabel) {
	r.results[hook] = result
}

func TestChain_RunsInRegistrationOrder(t *testing.T) {
	var calls []string
	c := NewChain()
	c.AddPreAction(TargetBuildProg, recordingHook("versions", &calls, Success("")))
	c.AddPreAction(TargetProgram, recordingHook("bump", &calls, Success("")))
	c.AddPreAction(TargetProgram, recordingHook("patch", &calls, Success("")))

	report, err := c.Run(context.Background(), testEnv(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"versions", "bump", "patch"}, calls)
	assert.Equal(t, 3, report.Count(OutcomeSuccess))
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, []string{TargetBuildProg, TargetProgram}, c.Targets())
}

func TestChain_SelectsTarget(t *testing.T) {
	var calls []string
	c := NewChain()
	c.AddPreAction(TargetBuildProg, recordingHook("versions", &calls, Success("")))
	c.AddPreAction(TargetProgram, recordingHook("bump", &calls, Success("")))

	_, err := c.Run(context.Background(), testEnv(), "/p/.pio/build/esp32s3/firmware.elf")
	require.NoError(t, err)
	assert.Equal(t, []string{"bump"}, calls)

	calls = nil
	_, err = c.Run(context.Background(), testEnv(), TargetBuildProg)
	require.NoError(t, err)
	assert.Equal(t, []string{"versions"}, calls)
	assert.Equal(t, []string{"bump"}, c.Hooks(testEnv(), TargetProgram))
}

func TestChain_UnknownTarget(t *testing.T) {
	c := NewChain()
	_, err := c.Run(context.Background(), testEnv(), "upload")
	require.Error(t, err)
	assert.Equal(t, foundationerrors.CategoryValidation, foundationerrors.GetCategory(err))
}

func TestChain_ContinuesAfterFatal(t *testing.T) {
	var calls []string
	rec := &resultRecorder{results: map[string]metrics.ResultLabel{}}
	bumpErr := foundationerrors.NotFoundError("version header not found").Build()

	c := NewChain(WithRecorder(rec))
	c.AddPreAction(TargetProgram, recordingHook("bump", &calls, FromError("", bumpErr)))
	c.AddPreAction(TargetProgram, recordingHook("patch", &calls, Success("")))

	report, err := c.Run(context.Background(), testEnv(), "")
	require.Error(t, err)
	assert.Equal(t, []string{"bump", "patch"}, calls)
	assert.Equal(t, []string{"bump"}, report.Failed())
	assert.Equal(t, foundationerrors.CategoryNotFound, foundationerrors.GetCategory(err))
	assert.ErrorIs(t, err, bumpErr)
	assert.Equal(t, metrics.ResultFatal, rec.results["bump"])
	assert.Equal(t, metrics.ResultSuccess, rec.results["patch"])
}

func TestChain_StopOnFatal(t *testing.T) {
	var calls []string
	c := NewChain(WithStopOnFatal(true))
	c.AddPreAction(TargetProgram, recordingHook("bump", &calls, Result{Outcome: OutcomeFatal, Err: errors.New("boom")}))
	c.AddPreAction(TargetProgram, recordingHook("patch", &calls, Success("")))

	report, err := c.Run(context.Background(), testEnv(), "")
	require.Error(t, err)
	assert.Equal(t, []string{"bump"}, calls)
	assert.Len(t, report.Entries, 1)
}

func TestChain_WarningsDoNotFail(t *testing.T) {
	var calls []string
	c := NewChain()
	c.AddPreAction(TargetBuildProg, recordingHook("versions", &calls,
		FromError("", foundationerrors.SubprocessError("compiler missing").Build())))

	report, err := c.Run(context.Background(), testEnv(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(OutcomeWarning))
}

func TestChain_RecoversPanics(t *testing.T) {
	c := NewChain()
	c.AddPreAction(TargetProgram, Hook{Name: "boom", Run: func(context.Context, buildenv.Env) Result {
		panic("unexpected")
	}})

	report, err := c.Run(context.Background(), testEnv(), "")
	require.Error(t, err)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, OutcomeFatal, report.Entries[0].Outcome)
	assert.Equal(t, foundationerrors.CategoryInternal, foundationerrors.GetCategory(err))
}

func TestChain_Canceled(t *testing.T) {
	var calls []string
	c := NewChain()
	c.AddPreAction(TargetProgram, recordingHook("bump", &calls, Success("")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := c.Run(ctx, testEnv(), "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, calls)
	assert.Equal(t, 1, report.Count(OutcomeCanceled))
}

func TestChain_PropagatesRunIDAndHook(t *testing.T) {
	var seen observability.LogContext
	c := NewChain()
	c.AddPreAction(TargetProgram, Hook{Name: "bump", Run: func(ctx context.Context, _ buildenv.Env) Result {
		seen = observability.GetContext(ctx)
		return Success("")
	}})

	ctx := observability.WithRunID(context.Background(), "run-1")
	report, err := c.Run(ctx, testEnv(), "")
	require.NoError(t, err)
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, observability.LogContext{RunID: "run-1", Target: TargetProgram, Hook: "bump"}, seen)
}

func TestChain_FilterSources(t *testing.T) {
	c := NewChain()
	c.AddBuildMiddleware(func(p string) bool { return p != "b.c" })
	c.AddBuildMiddleware(func(p string) bool { return p != "c.c" })

	kept, dropped := c.FilterSources([]string{"a.c", "b.c", "c.c"})
	assert.Equal(t, []string{"a.c"}, kept)
	assert.Equal(t, []string{"b.c", "c.c"}, dropped)
}

func TestFromError(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, FromError("", nil).Outcome)
	assert.Equal(t, OutcomeFatal, FromError("", errors.New("plain")).Outcome)
	assert.Equal(t, OutcomeWarning, FromError("", foundationerrors.SubprocessError("x").Build()).Outcome)
	assert.Equal(t, OutcomeFatal, FromError("", foundationerrors.ParseError("x").Build()).Outcome)
}
