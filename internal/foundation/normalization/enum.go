// Package normalization maps loosely written configuration strings onto typed enums.
package normalization

import (
	"fmt"
	"slices"
	"strings"
)

// Enum is the set of canonical values of a string enum plus accepted aliases.
// Lookups ignore case and surrounding whitespace.
type Enum[T ~string] struct {
	fallback T
	values   map[string]T
	names    []string
}

// NewEnum registers each value under its own name. fallback is returned for empty
// input and, by Normalize, for unknown input.
func NewEnum[T ~string](fallback T, values ...T) *Enum[T] {
	e := &Enum[T]{fallback: fallback, values: make(map[string]T, len(values))}
	for _, v := range values {
		key := fold(string(v))
		e.values[key] = v
		e.names = append(e.names, key)
	}
	slices.Sort(e.names)
	return e
}

// WithAlias accepts alias as another spelling of value. Aliases are not listed by Names.
func (e *Enum[T]) WithAlias(alias string, value T) *Enum[T] {
	e.values[fold(alias)] = value
	return e
}

// Lookup returns the canonical value for raw and whether raw was recognised.
func (e *Enum[T]) Lookup(raw string) (T, bool) {
	v, ok := e.values[fold(raw)]
	return v, ok
}

// Normalize is Lookup with the fallback for empty or unknown input.
func (e *Enum[T]) Normalize(raw string) T {
	if v, ok := e.Lookup(raw); ok {
		return v
	}
	return e.fallback
}

// Parse is Normalize but rejects unknown non-empty input.
func (e *Enum[T]) Parse(raw string) (T, error) {
	if fold(raw) == "" {
		return e.fallback, nil
	}
	if v, ok := e.Lookup(raw); ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid value %q (want one of %s)", raw, strings.Join(e.names, ", "))
}

// Names lists the canonical names, sorted.
func (e *Enum[T]) Names() []string { return slices.Clone(e.names) }

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
