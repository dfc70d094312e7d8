package toolversion

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/earshooks/internal/buildenv"
)

const gccBanner = "xtensa-esp32s3-elf-gcc (crosstool-NG esp-14.2.0_20241119) 14.2.0\nCopyright (C) 2024 Free Software Foundation, Inc.\n"

func newEnv(t *testing.T, runner buildenv.RunnerFunc, platform buildenv.PlatformSource) (*buildenv.Static, string) {
	t.Helper()
	dir := t.TempDir()
	vars := map[string]string{
		buildenv.VarProjectDir: dir,
		buildenv.VarCC:         "xtensa-esp32s3-elf-gcc",
		buildenv.VarPIOEnv:     "esp32s3",
		buildenv.VarUnixTime:   "1760000000",
	}
	return buildenv.New(vars, time.Now(), buildenv.WithRunner(runner), buildenv.WithPlatform(platform)), dir
}

func banner(out, errOut string, err error) buildenv.RunnerFunc {
	return func(context.Context, string, ...string) ([]byte, []byte, error) {
		return []byte(out), []byte(errOut), err
	}
}

func TestParseRecord(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Record
		ok   bool
	}{
		{"gcc banner", gccBanner, Record{Component: "c", Version: "14.2.0", Major: 14, Minor: 2, Patch: 0}, true},
		{"first triple wins", "v1.2.3 then 4.5.6", Record{Component: "c", Version: "1.2.3", Major: 1, Minor: 2, Patch: 3}, true},
		{"leading zeros", "08.01.002", Record{Component: "c", Version: "8.1.2", Major: 8, Minor: 1, Patch: 2}, true},
		{"two parts only", "version 6.9", UnknownRecord("c"), false},
		{"empty", "", UnknownRecord("c"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRecord("c", tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProbeCompiler(t *testing.T) {
	ctx := context.Background()

	t.Run("stdout", func(t *testing.T) {
		env, _ := newEnv(t, banner(gccBanner, "", nil), buildenv.FixedPlatform{})
		rec := ProbeCompiler(ctx, env, "gcc", time.Second)
		assert.Equal(t, "14.2.0", rec.Version)
	})

	t.Run("stderr only", func(t *testing.T) {
		env, _ := newEnv(t, banner("", "clang version 17.0.6\n", nil), buildenv.FixedPlatform{})
		rec := ProbeCompiler(ctx, env, "clang", time.Second)
		assert.Equal(t, 17, rec.Major)
	})

	t.Run("start failure", func(t *testing.T) {
		env, _ := newEnv(t, banner("", "", exec.ErrNotFound), buildenv.FixedPlatform{})
		rec := ProbeCompiler(ctx, env, "missing-gcc", time.Second)
		assert.Equal(t, UnknownRecord(ComponentCompiler), rec)
	})

	t.Run("timeout", func(t *testing.T) {
		env, _ := newEnv(t, banner(gccBanner, "", context.DeadlineExceeded), buildenv.FixedPlatform{})
		rec := ProbeCompiler(ctx, env, "gcc", time.Second)
		assert.False(t, rec.Known())
		assert.Zero(t, rec.Major)
	})

	t.Run("non-zero exit still parsed", func(t *testing.T) {
		runner := func(ctx context.Context, _ string, _ ...string) ([]byte, []byte, error) {
			cmd := exec.CommandContext(ctx, "sh", "-c", "echo 'gcc 12.2.0'; exit 3")
			out, err := cmd.Output()
			return out, nil, err
		}
		env, _ := newEnv(t, runner, buildenv.FixedPlatform{})
		rec := ProbeCompiler(ctx, env, "gcc", time.Second)
		assert.Equal(t, "12.2.0", rec.Version)
	})

	t.Run("no compiler", func(t *testing.T) {
		called := false
		runner := func(context.Context, string, ...string) ([]byte, []byte, error) {
			called = true
			return nil, nil, nil
		}
		env, _ := newEnv(t, runner, buildenv.FixedPlatform{})
		rec := ProbeCompiler(ctx, env, "  ", time.Second)
		assert.False(t, called)
		assert.False(t, rec.Known())
	})

	t.Run("launcher prefix", func(t *testing.T) {
		var gotName string
		var gotArgs []string
		runner := func(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
			gotName, gotArgs = name, args
			return []byte("gcc 13.2.0"), nil, nil
		}
		env, _ := newEnv(t, runner, buildenv.FixedPlatform{})
		ProbeCompiler(ctx, env, "ccache xtensa-esp32s3-elf-gcc", 0)
		assert.Equal(t, "ccache", gotName)
		assert.Equal(t, []string{"xtensa-esp32s3-elf-gcc", "--version"}, gotArgs)
	})
}

func TestProbePlatform(t *testing.T) {
	ctx := context.Background()

	env, _ := newEnv(t, banner("", "", nil), buildenv.FixedPlatform{Name: "espressif32", Version: "6.9.0"})
	assert.Equal(t, "6.9.0", ProbePlatform(ctx, env).Version)

	env, _ = newEnv(t, banner("", "", nil), buildenv.FixedPlatform{Name: "espressif32"})
	assert.Equal(t, UnknownRecord(ComponentPlatform), ProbePlatform(ctx, env))

	env, _ = newEnv(t, banner("", "", nil), buildenv.FixedPlatform{Name: "espressif32", Version: "develop"})
	assert.False(t, ProbePlatform(ctx, env).Known())
}

func TestHeader_Render(t *testing.T) {
	h := Header{
		Environment: "esp32s3",
		UnixTime:    "1760000000",
		Compiler:    Record{Component: ComponentCompiler, Version: "14.2.0", Major: 14, Minor: 2},
		Platform:    UnknownRecord(ComponentPlatform),
	}
	want := `// Auto-generated version information
// Do not edit manually
// Generated on: esp32s3
// Build timestamp: 1760000000

#ifndef __EARS_TOOLS_VERSION_H__
#define __EARS_TOOLS_VERSION_H__

// Xtensa Compiler Version
#define EARS_XTENSA_COMPILER_VERSION "14.2.0"
#define EARS_XTENSA_COMPILER_MAJOR 14
#define EARS_XTENSA_COMPILER_MINOR 2
#define EARS_XTENSA_COMPILER_PATCH 0

// Espressif Platform Version (espressif32)
#define EARS_ESPRESSIF_PLATFORM_VERSION "UNKNOWN"
#define EARS_ESPRESSIF_PLATFORM_MAJOR 0
#define EARS_ESPRESSIF_PLATFORM_MINOR 0
#define EARS_ESPRESSIF_PLATFORM_PATCH 0

#endif // __EARS_TOOLS_VERSION_H__
`
	assert.Equal(t, want, string(h.Render()))
}

func TestExtractor_Extract(t *testing.T) {
	env, dir := newEnv(t, banner(gccBanner, "", nil), buildenv.FixedPlatform{Name: "espressif32", Version: "6.9.0"})

	res := NewExtractor().Extract(context.Background(), env)
	require.NoError(t, res.Err)
	assert.False(t, res.Degraded())
	assert.Equal(t, filepath.Join(dir, "include", "EARS_toolsVersionDef.h"), res.Header)

	data, err := os.ReadFile(res.Header)
	require.NoError(t, err)
	assert.Contains(t, string(data), `#define EARS_XTENSA_COMPILER_VERSION "14.2.0"`)
	assert.Contains(t, string(data), "#define EARS_ESPRESSIF_PLATFORM_MINOR 9")
	assert.Contains(t, string(data), "// Generated on: esp32s3")
}

func TestExtractor_OverwritesStaleValues(t *testing.T) {
	env, dir := newEnv(t, banner("", "", errors.New("boom")), buildenv.FixedPlatform{})
	path := filepath.Join(dir, "include", "EARS_toolsVersionDef.h")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(`#define EARS_XTENSA_COMPILER_VERSION "13.2.0"`), 0o600))

	res := NewExtractor().Extract(context.Background(), env)
	require.NoError(t, res.Err)
	assert.True(t, res.Degraded())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "13.2.0")
	assert.Contains(t, string(data), `#define EARS_XTENSA_COMPILER_VERSION "UNKNOWN"`)
	assert.Contains(t, string(data), `#define EARS_ESPRESSIF_PLATFORM_VERSION "UNKNOWN"`)
}

func TestExtractor_WriteFailureIsRecorded(t *testing.T) {
	env, dir := newEnv(t, banner(gccBanner, "", nil), buildenv.FixedPlatform{Version: "6.9.0"})
	// A regular file where the include directory should be.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "include"), nil, 0o600))

	res := NewExtractor().Extract(context.Background(), env)
	require.Error(t, res.Err)
	assert.True(t, res.Degraded())
	assert.Equal(t, "14.2.0", res.Compiler.Version)
}
