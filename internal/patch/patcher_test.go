package patch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/earshooks/internal/buildenv"
	foundationerrors "git.home.luguber.info/inful/earshooks/internal/foundation/errors"
	"git.home.luguber.info/inful/earshooks/internal/metrics"
)

type fixCounter struct {
	metrics.NoopRecorder
	fixes map[string]int
}

func (f *fixCounter) AddPatchFixes(rule string, n int) { f.fixes[rule] += n }

func writeTarget(t *testing.T, content []byte) (buildenv.Env, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "src", "ui", "eez-flow.cpp")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	if content != nil {
		require.NoError(t, os.WriteFile(path, content, 0o600))
	}
	return buildenv.New(map[string]string{buildenv.VarProjectDir: dir}, time.Now()), path
}

func TestPatcher_Run(t *testing.T) {
	env, path := writeTarget(t, []byte("lv_bar_set_value(bar, 1);\nlv_dropdown_set_selected(dd, 0, LV_ANIM_ON);\n"))

	res, err := NewPatcher(LVGL93Rules()).Run(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, path, res.Path)
	assert.True(t, res.Written)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.PerRule, 5)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "lv_bar_set_value(bar, 1, LV_ANIM_OFF);\nlv_dropdown_set_selected(dd, 0);\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestPatcher_RunTwiceWritesOnce(t *testing.T) {
	env, path := writeTarget(t, []byte("lv_tabview_set_active(tabs, 1);\n"))
	p := NewPatcher(LVGL93Rules())

	_, err := p.Run(context.Background(), env)
	require.NoError(t, err)
	before, err := os.Stat(path)
	require.NoError(t, err)

	res, err := p.Run(context.Background(), env)
	require.NoError(t, err)
	assert.False(t, res.Written)
	assert.Zero(t, res.Total)
	assert.False(t, res.Changed())

	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestPatcher_MissingTarget(t *testing.T) {
	env, _ := writeTarget(t, nil)

	res, err := NewPatcher(LVGL93Rules()).Run(context.Background(), env)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Empty(t, res.PerRule)
}

func TestPatcher_DryRun(t *testing.T) {
	original := "lv_slider_set_value(s, 3);\n"
	env, path := writeTarget(t, []byte(original))

	res, err := NewPatcher(LVGL93Rules(), WithDryRun(true)).Run(context.Background(), env)
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.Equal(t, 1, res.Total)
	assert.False(t, res.Written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
}

func TestPatcher_PreservesBOM(t *testing.T) {
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("lv_roller_set_selected(r, 1);\n")...)
	env, path := writeTarget(t, content)

	_, err := NewPatcher(LVGL93Rules()).Run(context.Background(), env)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0xEF, 0xBB, 0xBF}, []byte("lv_roller_set_selected(r, 1, LV_ANIM_OFF);\n")...), data)
}

func TestPatcher_InvalidUTF8IsFatal(t *testing.T) {
	env, _ := writeTarget(t, []byte{'a', 0xff, 'b'})

	_, err := NewPatcher(LVGL93Rules()).Run(context.Background(), env)
	require.Error(t, err)
	assert.Equal(t, foundationerrors.CategoryFileSystem, foundationerrors.GetCategory(err))
	assert.Equal(t, foundationerrors.SeverityFatal, foundationerrors.GetSeverity(err))
}

func TestPatcher_CustomTarget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flow.cpp")
	require.NoError(t, os.WriteFile(path, []byte("lv_bar_set_value(b, 0);"), 0o600))
	env := buildenv.New(map[string]string{"UI": dir}, time.Now())

	p := NewPatcher(LVGL93Rules(), WithTarget("${UI}/flow.cpp"))
	assert.Equal(t, path, p.Target(env))

	res, err := p.Run(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
}

func TestPatcher_RecordsFixes(t *testing.T) {
	env, _ := writeTarget(t, []byte("lv_bar_set_value(a, 1);\nlv_bar_set_value(b, 2);\n"))
	rec := &fixCounter{fixes: map[string]int{}}

	_, err := NewPatcher(LVGL93Rules(), WithRecorder(rec)).Run(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.fixes["lv_bar_set_value/add-param"])
	assert.Zero(t, rec.fixes["lv_slider_set_value/add-param"])
}
