package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across hooks.
const (
	KeyRunID      = "run_id"
	KeyHook       = "hook"
	KeyTarget     = "target"
	KeyPath       = "path"
	KeyRule       = "rule"
	KeyCount      = "count"
	KeyComponent  = "component"
	KeyVersion    = "version"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr         { return slog.String(KeyRunID, id) }
func Hook(name string) slog.Attr        { return slog.String(KeyHook, name) }
func Target(name string) slog.Attr      { return slog.String(KeyTarget, name) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func Rule(name string) slog.Attr        { return slog.String(KeyRule, name) }
func Count(n int) slog.Attr             { return slog.Int(KeyCount, n) }
func Component(name string) slog.Attr   { return slog.String(KeyComponent, name) }
func Version(v string) slog.Attr        { return slog.String(KeyVersion, v) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
