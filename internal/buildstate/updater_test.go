package buildstate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/earshooks/internal/buildenv"
	foundationerrors "git.home.luguber.info/inful/earshooks/internal/foundation/errors"
	"git.home.luguber.info/inful/earshooks/internal/metrics"
)

type counterRecorder struct {
	metrics.NoopRecorder
	counter int
}

func (c *counterRecorder) SetBuildCounter(n int) { c.counter = n }

func projectWithHeader(t *testing.T, content string) (buildenv.Env, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "include", "EARS_versionDef.h")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return buildenv.New(map[string]string{buildenv.VarProjectDir: dir}, time.Now()), path
}

func TestUpdater_Run(t *testing.T) {
	env, path := projectWithHeader(t, header)
	clock := clockwork.NewFakeClockAt(buildTime)
	rec := &counterRecorder{}

	res, err := NewUpdater(WithClock(clock), WithRecorder(rec)).Run(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, path, res.Path)
	assert.Equal(t, 68, res.State.Counter)
	assert.Equal(t, 68, rec.counter)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `#define EARS_APP_VERSION_PATCH "68"`)
	assert.Contains(t, string(data), "#define EARS_APP_BUILD_TIMESTAMP 20261018093005")

	clock.Advance(time.Hour)
	res, err = NewUpdater(WithClock(clock)).Run(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, 69, res.State.Counter)
	assert.Equal(t, "20261018103005", res.State.Timestamp)
}

func TestUpdater_MissingHeader(t *testing.T) {
	env, _ := projectWithHeader(t, "")

	_, err := NewUpdater().Run(context.Background(), env)
	require.Error(t, err)
	assert.Equal(t, foundationerrors.CategoryNotFound, foundationerrors.GetCategory(err))
	assert.Equal(t, foundationerrors.SeverityFatal, foundationerrors.GetSeverity(err))
}

func TestUpdater_NoAnchorLeavesFileUntouched(t *testing.T) {
	content := "#pragma once\n#define SOMETHING_ELSE 1\n"
	env, path := projectWithHeader(t, content)

	_, err := NewUpdater().Run(context.Background(), env)
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryParse))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestUpdater_CustomHeaderAndBuildNumber(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "version.h")
	require.NoError(t, os.WriteFile(path, []byte(header+"#define EARS_APP_BUILD_NUMBER 7\n"), 0o600))
	env := buildenv.New(map[string]string{"ROOT": dir}, time.Now())

	res, err := NewUpdater(
		WithHeader("$ROOT/version.h"),
		WithBuildNumber(true),
		WithClock(clockwork.NewFakeClockAt(buildTime)),
	).Run(context.Background(), env)
	require.NoError(t, err)
	require.NotNil(t, res.State.BuildNumber)
	assert.Equal(t, 8, *res.State.BuildNumber)
}

func TestUpdater_MaxCounterLeavesFileUntouched(t *testing.T) {
	content := "#define EARS_APP_VERSION_PATCH \"9223372036854775807\"\n#define EARS_APP_BUILD_TIMESTAMP 20250101000000\n"
	env, path := projectWithHeader(t, content)

	_, err := NewUpdater().Run(context.Background(), env)
	require.Error(t, err)
	assert.Equal(t, foundationerrors.CategoryParse, foundationerrors.GetCategory(err))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}
