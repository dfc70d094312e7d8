package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	foundationerrors "git.home.luguber.info/inful/earshooks/internal/foundation/errors"
)

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = "earshooks.yaml"

// Config is the earshooks configuration file.
type Config struct {
	// ProjectDir and BuildDir seed $PROJECT_DIR and $BUILD_DIR when non-empty.
	ProjectDir string            `yaml:"project_dir,omitempty"`
	BuildDir   string            `yaml:"build_dir,omitempty"`
	Vars       map[string]string `yaml:"vars,omitempty"`
	Compiler   CompilerConfig    `yaml:"compiler"`
	Platform   PlatformConfig    `yaml:"platform"`
	Patch      PatchConfig       `yaml:"patch"`
	Versions   VersionsConfig    `yaml:"versions"`
	BuildState BuildStateConfig  `yaml:"buildstate"`
	Filter     FilterConfig      `yaml:"filter"`
	Doxygen    DoxygenConfig     `yaml:"doxygen"`
	Hooks      HooksConfig       `yaml:"hooks"`
	Logging    LoggingConfig     `yaml:"logging"`
	Metrics    MetricsConfig     `yaml:"metrics"`
}

// CompilerConfig controls the cross-compiler version probe.
type CompilerConfig struct {
	Path    string `yaml:"path"`    // template, e.g. "$CC"
	Timeout string `yaml:"timeout"` // Go duration, e.g. "10s"
}

// PlatformConfig describes where the platform version comes from. Manifest wins over
// a fixed Name/Version pair.
type PlatformConfig struct {
	Name     string `yaml:"name,omitempty"`
	Version  string `yaml:"version,omitempty"`
	Manifest string `yaml:"manifest,omitempty"`
}

// PatchConfig controls the LVGL call-site patcher.
type PatchConfig struct {
	Target string `yaml:"target"`
}

// VersionsConfig controls the toolchain version header.
type VersionsConfig struct {
	Header string `yaml:"header"`
}

// BuildStateConfig controls the build counter header.
type BuildStateConfig struct {
	Header      string `yaml:"header"`
	BuildNumber bool   `yaml:"build_number"`
}

// FilterConfig controls which library sources reach the compiler. A nil list selects
// the built-in markers/extensions; an explicit empty list disables that check.
type FilterConfig struct {
	Markers    []string   `yaml:"markers,omitempty"`
	Extensions []string   `yaml:"extensions,omitempty"`
	Mode       FilterMode `yaml:"mode"`
}

// DoxygenConfig is the documentation policy for `earshooks validate`.
type DoxygenConfig struct {
	Dirs       []string `yaml:"dirs"`
	Extensions []string `yaml:"extensions"`
	SkipDirs   []string `yaml:"skip_dirs"`
	Allowed    []string `yaml:"allowed"`
	Forbidden  []string `yaml:"forbidden"`
}

// HooksConfig controls the hook chain.
type HooksConfig struct {
	StopOnFatal bool `yaml:"stop_on_fatal"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// Load reads, expands, normalizes, defaults and validates a configuration file.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		return nil, foundationerrors.NotFoundError("configuration file not found").
			WithPath(configPath).
			Build()
	}

	// #nosec G304 -- config path is operator input
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "failed to read config file").
			WithPath(configPath).
			Fatal().
			Build()
	}

	expanded := expandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "failed to unmarshal config").
			WithPath(configPath).
			Fatal().
			Build()
	}

	if err := finalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configPath. When the file is missing and it is the default path,
// the built-in defaults are returned instead of an error.
func LoadOrDefault(configPath string) (*Config, error) {
	cfg, err := Load(configPath)
	if err == nil {
		return cfg, nil
	}
	if filepath.Clean(configPath) == DefaultPath && foundationerrors.HasCategory(err, foundationerrors.CategoryNotFound) {
		return Default()
	}
	return nil, err
}

// Default returns the built-in configuration.
func Default() (*Config, error) {
	loadEnvFiles()
	var cfg Config
	if err := finalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func finalize(cfg *Config) error {
	// Normalization pass (case-fold enumerations, trim lists)
	res, err := NormalizeConfig(cfg)
	if err != nil {
		return foundationerrors.ConfigError("normalize: " + err.Error()).Build()
	}
	for _, w := range res.Warnings {
		slog.Warn("config normalization", slog.String("detail", w))
	}
	// Defaults after normalization so canonical values drive defaults
	applyDefaults(cfg)
	if err := ValidateConfig(cfg); err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryValidation, "configuration validation failed").
			Fatal().
			Build()
	}
	return nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return foundationerrors.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).Build()
	}

	example := Config{
		Compiler:   CompilerConfig{Path: "$CC", Timeout: "10s"},
		Platform:   PlatformConfig{Manifest: "${HOME}/.platformio/platforms/espressif32/platform.json"},
		Patch:      PatchConfig{Target: "$PROJECT_DIR/src/ui/eez-flow.cpp"},
		Versions:   VersionsConfig{Header: "$PROJECT_DIR/include/EARS_toolsVersionDef.h"},
		BuildState: BuildStateConfig{Header: "$PROJECT_DIR/include/EARS_versionDef.h"},
		Filter:     FilterConfig{Markers: []string{"helium", "neon"}, Extensions: []string{".S"}, Mode: FilterModeSubstring},
		Hooks:      HooksConfig{StopOnFatal: false},
		Logging:    LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
	}
	applyDefaults(&example)

	data, err := yaml.Marshal(&example)
	if err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryInternal, "failed to marshal example config").Build()
	}

	header := "# earshooks configuration\n" +
		"# Values support ${VAR} expansion from the environment and .env files.\n"
	// #nosec G306 -- configuration file is not secret
	if err := os.WriteFile(configPath, append([]byte(header), data...), 0o644); err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "failed to write config file").
			WithPath(configPath).
			Build()
	}
	return nil
}
