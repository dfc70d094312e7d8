// Package srcfilter decides which candidate source files reach the compiler. LVGL ships
// ARM Helium and NEON assembly variants that must not be built for Xtensa targets.
package srcfilter

import (
	"strings"

	"git.home.luguber.info/inful/earshooks/internal/foundation/normalization"
)

// Mode selects how markers are matched against a path.
type Mode string

const (
	// ModeSubstring drops a path containing a marker anywhere.
	ModeSubstring Mode = "substring"
	// ModeSegment drops a path only when a marker is a whole path segment or a whole
	// "_", "-" or "." separated token of one, so lv_blend_helium.c is dropped and
	// heliumsensor.cpp is kept.
	ModeSegment Mode = "segment"
)

var modes = normalization.NewEnum(ModeSubstring, ModeSubstring, ModeSegment)

// ParseMode normalizes a configured mode; empty means ModeSubstring.
func ParseMode(raw string) (Mode, error) {
	return modes.Parse(raw)
}

// ValidModes lists accepted mode names.
func ValidModes() []string { return modes.Names() }

// Default exclusion markers and suffixes. Matching is case-sensitive.
var (
	DefaultMarkers    = []string{"helium", "neon"}
	DefaultExtensions = []string{".S"}
)

// Filter is a pure keep/drop predicate over source paths.
type Filter struct {
	markers    []string
	extensions []string
	mode       Mode
}

// New returns a Filter. Nil markers or extensions select the defaults; empty non-nil
// slices disable that check.
func New(markers, extensions []string, mode Mode) Filter {
	if markers == nil {
		markers = DefaultMarkers
	}
	if extensions == nil {
		extensions = DefaultExtensions
	}
	if mode == "" {
		mode = ModeSubstring
	}
	return Filter{
		markers:    append([]string(nil), markers...),
		extensions: append([]string(nil), extensions...),
		mode:       mode,
	}
}

// Default returns the filter for the stock LVGL tree.
func Default() Filter { return New(nil, nil, ModeSubstring) }

// Keep reports whether path should be compiled.
func (f Filter) Keep(path string) bool {
	return f.Reason(path) == ""
}

// Reason returns the marker or extension that excludes path, or "" when it is kept.
func (f Filter) Reason(path string) string {
	for _, ext := range f.extensions {
		if ext != "" && strings.HasSuffix(path, ext) {
			return ext
		}
	}
	for _, m := range f.markers {
		if m == "" {
			continue
		}
		if f.mode == ModeSegment {
			if hasSegmentToken(path, m) {
				return m
			}
			continue
		}
		if strings.Contains(path, m) {
			return m
		}
	}
	return ""
}

func hasSegmentToken(path, marker string) bool {
	for _, seg := range strings.FieldsFunc(path, isPathSeparator) {
		if seg == marker {
			return true
		}
		for _, tok := range strings.FieldsFunc(seg, isTokenSeparator) {
			if tok == marker {
				return true
			}
		}
	}
	return false
}

func isPathSeparator(r rune) bool { return r == '/' || r == '\\' }

func isTokenSeparator(r rune) bool { return r == '_' || r == '-' || r == '.' }

// Partition splits paths into kept and dropped, preserving order.
func (f Filter) Partition(paths []string) (kept, dropped []string) {
	for _, p := range paths {
		if f.Keep(p) {
			kept = append(kept, p)
		} else {
			dropped = append(dropped, p)
		}
	}
	return kept, dropped
}
