// Package observability threads per-run log context (run ID, target, hook) through hook execution.
package observability

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/earshooks/internal/logfields"
)

// LogContext holds structured logging context information.
type LogContext struct {
	RunID  string
	Target string
	Hook   string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// NewRunID returns a fresh identifier for one invocation of the hook chain.
func NewRunID() string {
	return uuid.NewString()
}

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	lc := extractLogContext(ctx)
	lc.RunID = runID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithTarget adds the build target currently being processed.
func WithTarget(ctx context.Context, target string) context.Context {
	lc := extractLogContext(ctx)
	lc.Target = target
	return context.WithValue(ctx, logContextKey, lc)
}

// WithHook adds the running hook's name.
func WithHook(ctx context.Context, hook string) context.Context {
	lc := extractLogContext(ctx)
	lc.Hook = hook
	return context.WithValue(ctx, logContextKey, lc)
}

// GetContext returns the structured log context from the provided context.
func GetContext(ctx context.Context) LogContext {
	return extractLogContext(ctx)
}

func extractLogContext(ctx context.Context) LogContext {
	if ctx == nil {
		return LogContext{}
	}
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

func getLogAttrs(ctx context.Context) []slog.Attr {
	lc := extractLogContext(ctx)
	attrs := make([]slog.Attr, 0, 3)

	if lc.RunID != "" {
		attrs = append(attrs, logfields.RunID(lc.RunID))
	}
	if lc.Target != "" {
		attrs = append(attrs, logfields.Target(lc.Target))
	}
	if lc.Hook != "" {
		attrs = append(attrs, logfields.Hook(lc.Hook))
	}
	return attrs
}

// logAt prefixes attrs with the run, target and hook carried by ctx.
func logAt(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	slog.LogAttrs(ctx, level, msg, append(getLogAttrs(ctx), attrs...)...)
}

func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAt(ctx, slog.LevelInfo, msg, attrs)
}

func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAt(ctx, slog.LevelWarn, msg, attrs)
}

func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAt(ctx, slog.LevelError, msg, attrs)
}

// DebugContext is used for per-hook start messages and panic stacks.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAt(ctx, slog.LevelDebug, msg, attrs)
}
