package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// CLIErrorAdapter turns a command error into stderr output and an exit code.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
}

func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, out: os.Stderr}
}

// ExitCodeFor maps err to its category's exit code; unclassified errors exit 1.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if classified, ok := AsClassified(err); ok {
		return classified.Category().ExitCode()
	}
	return 1
}

// FormatError renders the one-line message printed to the user. Verbose mode adds
// the category and context fields.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	classified, ok := AsClassified(err)
	switch {
	case !ok:
		return "Error: " + err.Error()
	case a.verbose:
		return fmt.Sprintf("Error [%s]: %s", classified.Category(), classified.Error())
	case classified.Cause() != nil:
		return fmt.Sprintf("Error: %s: %v", classified.Message(), classified.Cause())
	default:
		return "Error: " + classified.Message()
	}
}

// PrintError logs err with its context and prints the user-facing line.
func (a *CLIErrorAdapter) PrintError(err error) {
	if err == nil {
		return
	}
	a.logError(err)
	_, _ = fmt.Fprintln(a.out, a.FormatError(err))
}

func (a *CLIErrorAdapter) logError(err error) {
	classified, ok := AsClassified(err)
	if !ok {
		a.logger.Error("Unclassified error", slog.String("error", err.Error()))
		return
	}

	attrs := []slog.Attr{slog.String("category", string(classified.Category()))}
	for _, f := range classified.Fields() {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	if cause := classified.Cause(); cause != nil {
		attrs = append(attrs, slog.String("error", cause.Error()))
	}
	level := slog.LevelError
	if classified.Severity().Degrades() {
		level = slog.LevelWarn
	}
	a.logger.LogAttrs(context.Background(), level, classified.Message(), attrs...)
}
