package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/earshooks/internal/buildenv"
	foundationerrors "git.home.luguber.info/inful/earshooks/internal/foundation/errors"
	"git.home.luguber.info/inful/earshooks/internal/srcfilter"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "earshooks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("EARS_TOOLCHAIN", "/opt/xtensa/bin/xtensa-esp32s3-elf-gcc")

	path := writeConfig(t, dir, `project_dir: /work/ears
vars:
  PIOENV: esp32s3
compiler:
  path: ${EARS_TOOLCHAIN}
  timeout: 3s
platform:
  name: espressif32
  version: 6.9.0
patch:
  target: $PROJECT_DIR/src/ui/custom-flow.cpp
buildstate:
  build_number: true
filter:
  markers: [helium]
  mode: SEGMENT
doxygen:
  allowed: [brief, "@param"]
  forbidden: []
hooks:
  stop_on_fatal: true
logging:
  level: DEBUG
  format: json
metrics:
  textfile: /var/lib/node_exporter/earshooks.prom
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/work/ears", cfg.ProjectDir)
	assert.Equal(t, "/opt/xtensa/bin/xtensa-esp32s3-elf-gcc", cfg.Compiler.Path)
	assert.Equal(t, 3*time.Second, cfg.ProbeTimeout())
	assert.Equal(t, "$PROJECT_DIR/src/ui/custom-flow.cpp", cfg.Patch.Target, "build variables survive load-time expansion")
	assert.Equal(t, "$PROJECT_DIR/include/EARS_versionDef.h", cfg.BuildState.Header)
	assert.True(t, cfg.BuildState.BuildNumber)
	assert.Equal(t, []string{"helium"}, cfg.Filter.Markers)
	assert.Nil(t, cfg.Filter.Extensions)
	assert.Equal(t, FilterModeSegment, cfg.Filter.Mode)
	assert.Equal(t, []string{"@brief", "@param"}, cfg.Doxygen.Allowed)
	assert.NotNil(t, cfg.Doxygen.Forbidden)
	assert.Empty(t, cfg.Doxygen.Forbidden)
	assert.True(t, cfg.Hooks.StopOnFatal)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
	assert.Equal(t, "/var/lib/node_exporter/earshooks.prom", cfg.Metrics.Textfile)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load("nope.yaml")
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryNotFound))
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeConfig(t, dir, "compiler: [unterminated\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryConfig))
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad timeout", "compiler:\n  timeout: soon\n"},
		{"negative timeout", "compiler:\n  timeout: -1s\n"},
		{"filter extension without dot", "filter:\n  extensions: [S]\n"},
		{"absolute doxygen dir", "doxygen:\n  dirs: [/src]\n"},
		{"bad var name", "vars:\n  \"A B\": x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			path := writeConfig(t, dir, tt.body)

			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryValidation))
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("default path missing falls back", func(t *testing.T) {
		t.Chdir(t.TempDir())
		cfg, err := LoadOrDefault(DefaultPath)
		require.NoError(t, err)
		assert.Equal(t, "$CC", cfg.Compiler.Path)
		assert.Equal(t, FilterModeSubstring, cfg.Filter.Mode)
		assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	})

	t.Run("explicit path missing is an error", func(t *testing.T) {
		t.Chdir(t.TempDir())
		_, err := LoadOrDefault("custom.yaml")
		require.Error(t, err)
	})
}

func TestLoad_DotEnvDoesNotOverrideProcessEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("EARS_TEST_COMPILER", "from-process")
	t.Setenv("EARS_TEST_TARGET", "")
	require.NoError(t, os.Unsetenv("EARS_TEST_TARGET"))
	t.Cleanup(func() { _ = os.Unsetenv("EARS_TEST_TARGET") })

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("EARS_TEST_COMPILER=from-dotenv\nEARS_TEST_TARGET=/tmp/flow.cpp\n"), 0o600))
	path := writeConfig(t, dir, "compiler:\n  path: ${EARS_TEST_COMPILER}\npatch:\n  target: ${EARS_TEST_TARGET}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-process", cfg.Compiler.Path)
	assert.Equal(t, "/tmp/flow.cpp", cfg.Patch.Target)
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("EARS_SET", "value")
	t.Setenv(buildenv.VarProjectDir, "/should/not/expand")

	assert.Equal(t, "value/x", expandEnv("${EARS_SET}/x"))
	assert.Equal(t, "${EARS_UNSET_FOR_TEST}", expandEnv("$EARS_UNSET_FOR_TEST"))
	assert.Equal(t, "${PROJECT_DIR}/src", expandEnv("$PROJECT_DIR/src"))
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "earshooks.yaml")

	require.NoError(t, Init(path, false))

	err := Init(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "use --force")

	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "$PROJECT_DIR/src/ui/eez-flow.cpp", cfg.Patch.Target)
	assert.Equal(t, []string{"helium", "neon"}, cfg.Filter.Markers)
}

func TestNormalizeConfig_Warnings(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{Level: "loud", Format: "JSON"},
		Filter:  FilterConfig{Mode: "fuzzy"},
		Doxygen: DoxygenConfig{SkipDirs: []string{"build", " build ", ""}},
	}
	res, err := NormalizeConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
	assert.Equal(t, FilterModeSubstring, cfg.Filter.Mode)
	assert.Equal(t, []string{"build"}, cfg.Doxygen.SkipDirs)
	assert.Len(t, res.Warnings, 4)
}

func TestNormalizeLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel(" Warning "))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel(""))
	assert.Equal(t, LogLevelError, NormalizeLogLevel("ERROR"))
}

func TestComponents(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Default()
	require.NoError(t, err)
	cfg.ProjectDir = "/work/ears"
	cfg.Platform = PlatformConfig{Manifest: "$PROJECT_DIR/platform.json"}
	cfg.Filter = FilterConfig{Markers: []string{}, Extensions: nil, Mode: FilterModeSegment}

	env := cfg.Env(time.Unix(1700000000, 0), map[string]string{buildenv.VarPIOEnv: "esp32s3"})
	assert.Equal(t, "/work/ears/src/ui/eez-flow.cpp", env.Subst(cfg.Patch.Target))
	v, ok := env.Var(buildenv.VarPIOEnv)
	assert.True(t, ok)
	assert.Equal(t, "esp32s3", v)

	_, err = env.Platform()
	require.Error(t, err, "manifest under /work/ears does not exist")

	f := cfg.SourceFilter()
	assert.True(t, f.Keep("lib/lvgl/src/draw/sw/blend/helium/lv_blend_helium.c"), "markers disabled")
	assert.False(t, f.Keep("lib/lvgl/src/draw/sw/blend/lv_blend_arm.S"))
	assert.Equal(t, srcfilter.New([]string{}, nil, srcfilter.ModeSegment), f)

	lint := cfg.LintConfig(true)
	assert.True(t, lint.Quiet)
	assert.Equal(t, cfg.Doxygen.Dirs, lint.Dirs)

	ex := cfg.Extractor()
	assert.Equal(t, "$CC", ex.Compiler)
	assert.Equal(t, 10*time.Second, ex.Timeout)
}

func TestEnv_DefaultsProjectDirToWorkingDir(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(buildenv.VarProjectDir, "")
	require.NoError(t, os.Unsetenv(buildenv.VarProjectDir))

	cfg, err := Default()
	require.NoError(t, err)
	env := cfg.Env(time.Now(), nil)
	assert.Equal(t, "./include/EARS_versionDef.h", env.Subst(cfg.BuildState.Header))
}
