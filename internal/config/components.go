package config

import (
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"git.home.luguber.info/inful/earshooks/internal/buildenv"
	"git.home.luguber.info/inful/earshooks/internal/buildstate"
	"git.home.luguber.info/inful/earshooks/internal/doxylint"
	"git.home.luguber.info/inful/earshooks/internal/metrics"
	"git.home.luguber.info/inful/earshooks/internal/patch"
	"git.home.luguber.info/inful/earshooks/internal/srcfilter"
	"git.home.luguber.info/inful/earshooks/internal/toolversion"
)

// Env builds the build environment. Precedence, highest first: overrides, the
// project_dir/build_dir settings, vars, then the process environment. PROJECT_DIR
// falls back to the working directory when set nowhere.
func (c *Config) Env(now time.Time, overrides map[string]string, opts ...buildenv.Option) *buildenv.Static {
	vars := make(map[string]string, len(c.Vars)+len(overrides)+2)
	for k, v := range c.Vars {
		vars[k] = v
	}
	if c.ProjectDir != "" {
		vars[buildenv.VarProjectDir] = c.ProjectDir
	}
	if c.BuildDir != "" {
		vars[buildenv.VarBuildDir] = c.BuildDir
	}
	for k, v := range overrides {
		vars[k] = v
	}
	if _, ok := vars[buildenv.VarProjectDir]; !ok {
		if _, inEnv := os.LookupEnv(buildenv.VarProjectDir); !inEnv {
			vars[buildenv.VarProjectDir] = "."
		}
	}

	// The manifest path may reference build variables.
	resolver := buildenv.New(vars, now)
	var platform buildenv.PlatformSource = buildenv.FixedPlatform{Name: c.Platform.Name, Version: c.Platform.Version}
	if c.Platform.Manifest != "" {
		platform = buildenv.ManifestPlatform{Path: resolver.Subst(c.Platform.Manifest)}
	}

	return buildenv.New(vars, now, append([]buildenv.Option{buildenv.WithPlatform(platform)}, opts...)...)
}

// ProbeTimeout is compiler.timeout as a duration.
func (c *Config) ProbeTimeout() time.Duration {
	d, err := time.ParseDuration(c.Compiler.Timeout)
	if err != nil || d <= 0 {
		return toolversion.DefaultProbeTimeout
	}
	return d
}

// Extractor builds the toolchain version extractor.
func (c *Config) Extractor() *toolversion.Extractor {
	return &toolversion.Extractor{
		Compiler: c.Compiler.Path,
		Header:   c.Versions.Header,
		Timeout:  c.ProbeTimeout(),
	}
}

// Updater builds the build counter updater.
func (c *Config) Updater(clock clockwork.Clock, recorder metrics.Recorder) *buildstate.Updater {
	return buildstate.NewUpdater(
		buildstate.WithHeader(c.BuildState.Header),
		buildstate.WithBuildNumber(c.BuildState.BuildNumber),
		buildstate.WithClock(clock),
		buildstate.WithRecorder(recorder),
	)
}

// Patcher builds the LVGL 9.3 call-site patcher.
func (c *Config) Patcher(dryRun bool, recorder metrics.Recorder) *patch.Patcher {
	return patch.NewPatcher(patch.LVGL93Rules(),
		patch.WithTarget(c.Patch.Target),
		patch.WithDryRun(dryRun),
		patch.WithRecorder(recorder),
	)
}

// SourceFilter builds the library source filter.
func (c *Config) SourceFilter() srcfilter.Filter {
	mode, err := srcfilter.ParseMode(string(c.Filter.Mode))
	if err != nil {
		mode = srcfilter.ModeSubstring
	}
	return srcfilter.New(c.Filter.Markers, c.Filter.Extensions, mode)
}

// LintConfig builds the Doxygen validator policy.
func (c *Config) LintConfig(quiet bool) doxylint.Config {
	return doxylint.Config{
		Dirs:       c.Doxygen.Dirs,
		Extensions: c.Doxygen.Extensions,
		SkipDirs:   c.Doxygen.SkipDirs,
		Allowed:    c.Doxygen.Allowed,
		Forbidden:  c.Doxygen.Forbidden,
		Quiet:      quiet,
	}
}
