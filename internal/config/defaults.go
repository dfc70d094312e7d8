package config

import (
	"git.home.luguber.info/inful/earshooks/internal/buildstate"
	"git.home.luguber.info/inful/earshooks/internal/doxylint"
	"git.home.luguber.info/inful/earshooks/internal/patch"
	"git.home.luguber.info/inful/earshooks/internal/toolversion"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config)
	Domain() string
}

type hookDefaultApplier struct{}

func (hookDefaultApplier) Domain() string { return "hooks" }

func (hookDefaultApplier) ApplyDefaults(cfg *Config) {
	if cfg.Compiler.Path == "" {
		cfg.Compiler.Path = toolversion.DefaultCompiler
	}
	if cfg.Compiler.Timeout == "" {
		cfg.Compiler.Timeout = toolversion.DefaultProbeTimeout.String()
	}
	if cfg.Patch.Target == "" {
		cfg.Patch.Target = patch.DefaultTarget
	}
	if cfg.Versions.Header == "" {
		cfg.Versions.Header = toolversion.DefaultHeader
	}
	if cfg.BuildState.Header == "" {
		cfg.BuildState.Header = buildstate.DefaultHeader
	}
	if cfg.Filter.Mode == "" {
		cfg.Filter.Mode = FilterModeSubstring
	}
}

type doxygenDefaultApplier struct{}

func (doxygenDefaultApplier) Domain() string { return "doxygen" }

func (doxygenDefaultApplier) ApplyDefaults(cfg *Config) {
	def := doxylint.DefaultConfig()
	d := &cfg.Doxygen
	if len(d.Dirs) == 0 {
		d.Dirs = def.Dirs
	}
	if len(d.Extensions) == 0 {
		d.Extensions = def.Extensions
	}
	if d.SkipDirs == nil {
		d.SkipDirs = def.SkipDirs
	}
	if len(d.Allowed) == 0 {
		d.Allowed = def.Allowed
	}
	if d.Forbidden == nil {
		d.Forbidden = def.Forbidden
	}
}

type loggingDefaultApplier struct{}

func (loggingDefaultApplier) Domain() string { return "logging" }

func (loggingDefaultApplier) ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
}

var defaultAppliers = []DefaultApplier{
	hookDefaultApplier{},
	doxygenDefaultApplier{},
	loggingDefaultApplier{},
}

func applyDefaults(cfg *Config) {
	for _, a := range defaultAppliers {
		a.ApplyDefaults(cfg)
	}
}
