package buildenv

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Platform describes the active platform/toolchain distribution package.
type Platform struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ErrNoPlatformVersion is returned when the descriptor carries no version attribute.
var ErrNoPlatformVersion = errors.New("platform descriptor has no version")

// PlatformSource yields the platform descriptor on demand.
type PlatformSource interface {
	Platform() (Platform, error)
}

// FixedPlatform is a descriptor known up front (for example from configuration).
type FixedPlatform Platform

// Platform implements PlatformSource.
func (f FixedPlatform) Platform() (Platform, error) {
	if f.Version == "" {
		return Platform(f), ErrNoPlatformVersion
	}
	return Platform(f), nil
}

// ManifestPlatform reads a PlatformIO-style platform.json manifest.
type ManifestPlatform struct {
	Path string
}

// Platform implements PlatformSource.
func (m ManifestPlatform) Platform() (Platform, error) {
	// #nosec G304 -- manifest path is operator configuration
	data, err := os.ReadFile(m.Path)
	if err != nil {
		return Platform{}, fmt.Errorf("read platform manifest: %w", err)
	}
	var p Platform
	if err := json.Unmarshal(data, &p); err != nil {
		return Platform{}, fmt.Errorf("parse platform manifest %s: %w", m.Path, err)
	}
	if p.Version == "" {
		return p, ErrNoPlatformVersion
	}
	return p, nil
}
