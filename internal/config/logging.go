package config

import (
	"log/slog"

	"git.home.luguber.info/inful/earshooks/internal/foundation/normalization"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevels = normalization.NewEnum(LogLevelInfo,
	LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError,
).WithAlias("warning", LogLevelWarn)

func NormalizeLogLevel(raw string) LogLevel {
	return logLevels.Normalize(raw)
}

// SlogLevel maps the level onto slog.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormats = normalization.NewEnum(LogFormatText, LogFormatJSON, LogFormatText)

func NormalizeLogFormat(raw string) LogFormat {
	return logFormats.Normalize(raw)
}

// FilterMode mirrors srcfilter.Mode in the configuration file.
type FilterMode string

const (
	FilterModeSubstring FilterMode = "substring"
	FilterModeSegment   FilterMode = "segment"
)

var filterModes = normalization.NewEnum(FilterModeSubstring, FilterModeSubstring, FilterModeSegment)

func NormalizeFilterMode(raw string) FilterMode {
	return filterModes.Normalize(raw)
}
