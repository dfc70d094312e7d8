package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ValidateConfig checks the configuration after defaults have been applied.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config nil")
	}
	var errs []error
	if err := validateCompiler(cfg.Compiler); err != nil {
		errs = append(errs, err)
	}
	if err := validateFilter(cfg.Filter); err != nil {
		errs = append(errs, err)
	}
	if err := validateDoxygen(cfg.Doxygen); err != nil {
		errs = append(errs, err)
	}
	for name := range cfg.Vars {
		if name == "" || strings.ContainsAny(name, "$ {}") {
			errs = append(errs, fmt.Errorf("vars: invalid variable name %q", name))
		}
	}
	return errors.Join(errs...)
}

func validateCompiler(c CompilerConfig) error {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("compiler.timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("compiler.timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

func validateFilter(f FilterConfig) error {
	for _, ext := range f.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("filter.extensions: %q must start with '.'", ext)
		}
	}
	return nil
}

func validateDoxygen(d DoxygenConfig) error {
	for _, ext := range d.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("doxygen.extensions: %q must start with '.'", ext)
		}
	}
	for _, dir := range d.Dirs {
		if strings.HasPrefix(dir, "/") || strings.Contains(dir, "..") {
			return fmt.Errorf("doxygen.dirs: %q must be relative to the project root", dir)
		}
	}
	for _, cmd := range slices.Concat(d.Allowed, d.Forbidden) {
		if len(cmd) < 2 || strings.ContainsAny(cmd, " \t") {
			return fmt.Errorf("doxygen: invalid command %q", cmd)
		}
	}
	return nil
}
