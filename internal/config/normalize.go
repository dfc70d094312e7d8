package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// NormalizationResult captures adjustments & warnings from normalization pass.
type NormalizationResult struct{ Warnings []string }

// NormalizeConfig canonicalizes enumerations and list fields prior to default
// application. It mutates c in place.
func NormalizeConfig(c *Config) (*NormalizationResult, error) {
	if c == nil {
		return nil, errors.New("config nil")
	}
	res := &NormalizationResult{}

	c.Logging.Level = normalizeEnum("logging.level", c.Logging.Level, NormalizeLogLevel(string(c.Logging.Level)), LogLevelInfo, res)
	c.Logging.Format = normalizeEnum("logging.format", c.Logging.Format, NormalizeLogFormat(string(c.Logging.Format)), LogFormatText, res)
	c.Filter.Mode = normalizeEnum("filter.mode", c.Filter.Mode, NormalizeFilterMode(string(c.Filter.Mode)), FilterModeSubstring, res)

	// Order matters for neither list, but empty-vs-nil does: an explicit [] disables.
	c.Filter.Markers = trimStringSlice(c.Filter.Markers)
	c.Filter.Extensions = trimStringSlice(c.Filter.Extensions)

	c.Doxygen.Dirs = trimStringSlice(c.Doxygen.Dirs)
	c.Doxygen.Extensions = trimStringSlice(c.Doxygen.Extensions)
	c.Doxygen.SkipDirs = normalizeStringSlice("doxygen.skip_dirs", c.Doxygen.SkipDirs, res)
	c.Doxygen.Allowed = normalizeStringSlice("doxygen.allowed", prefixAt(c.Doxygen.Allowed), res)
	c.Doxygen.Forbidden = normalizeStringSlice("doxygen.forbidden", prefixAt(c.Doxygen.Forbidden), res)

	c.Compiler.Timeout = strings.TrimSpace(c.Compiler.Timeout)
	return res, nil
}

// normalizeEnum records a warning when raw is rewritten to its canonical value.
func normalizeEnum[T ~string](field string, raw, canonical, fallback T, res *NormalizationResult) T {
	trimmed := strings.TrimSpace(string(raw))
	switch {
	case trimmed == "":
		return canonical
	case strings.EqualFold(trimmed, string(canonical)):
		if string(raw) != string(canonical) {
			res.Warnings = append(res.Warnings, warnChanged(field, raw, canonical))
		}
	case canonical == fallback:
		res.Warnings = append(res.Warnings, warnUnknown(field, string(raw), string(fallback)))
	default:
		// alias such as "warning" -> "warn"
		res.Warnings = append(res.Warnings, warnChanged(field, raw, canonical))
	}
	return canonical
}

// prefixAt accepts Doxygen commands written without the leading '@'.
func prefixAt(in []string) []string {
	if len(in) == 0 {
		return in
	}
	out := make([]string, len(in))
	for i, v := range in {
		v = strings.TrimSpace(v)
		if v != "" && !strings.HasPrefix(v, "@") {
			v = "@" + v
		}
		out[i] = v
	}
	return out
}

// normalizeStringSlice trims, dedupes and sorts a string slice, recording a warning
// when entries were dropped.
func normalizeStringSlice(label string, in []string, res *NormalizationResult) []string {
	if len(in) == 0 {
		return in
	}

	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	changed := false
	for _, v := range in {
		t := strings.TrimSpace(v)
		if t == "" {
			changed = true
			continue
		}
		if _, ok := seen[t]; ok {
			changed = true
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if changed {
		res.Warnings = append(res.Warnings, fmt.Sprintf("normalized %s list (%d -> %d entries)", label, len(in), len(out)))
	}
	sort.Strings(out)
	return out
}

// trimStringSlice removes empty entries without reordering. A non-nil input yields a
// non-nil output.
func trimStringSlice(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, p := range in {
		if tp := strings.TrimSpace(p); tp != "" {
			out = append(out, tp)
		}
	}
	return out
}

func warnChanged[T ~string](field string, from, to T) string {
	return fmt.Sprintf("%s normalized from %q to %q", field, string(from), string(to))
}

func warnUnknown(field, value, fallback string) string {
	return fmt.Sprintf("%s has unknown value %q, using %q", field, value, fallback)
}
