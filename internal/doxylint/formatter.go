package doxylint

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Formatter formats validation results for output.
type Formatter interface {
	Format(w io.Writer, result *Result) error
}

// TextFormatter formats results as human-readable text.
type TextFormatter struct{}

// NewTextFormatter creates a text formatter.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Format outputs results in human-readable text format.
func (f *TextFormatter) Format(w io.Writer, result *Result) error {
	if _, err := fmt.Fprintf(w, "Validating documentation annotations in: %s\n", result.Root); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}

	if err := f.formatSection(w, "✗ ERRORS", result.Root, result.Errors); err != nil {
		return err
	}
	if err := f.formatSection(w, "⚠ WARNINGS", result.Root, result.Warnings); err != nil {
		return err
	}

	// Summary
	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Results:\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  %d files scanned\n", result.FilesTotal); err != nil {
		return err
	}
	if n := result.ErrorCount(); n > 0 {
		if _, err := fmt.Fprintf(w, "  %d error%s (blocks build)\n", n, pluralize(n)); err != nil {
			return err
		}
	}
	if n := result.WarningCount(); n > 0 {
		if _, err := fmt.Fprintf(w, "  %d warning%s (non-blocking)\n", n, pluralize(n)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	return f.printFinalMessage(w, result)
}

func (f *TextFormatter) formatSection(w io.Writer, title, root string, findings []Finding) error {
	if len(findings) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\n%s (%d):\n", title, len(findings)); err != nil {
		return err
	}
	for _, finding := range findings {
		if _, err := fmt.Fprintf(w, "  %s\n", FormatFinding(root, finding)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// printFinalMessage prints the appropriate final message based on the result.
func (f *TextFormatter) printFinalMessage(w io.Writer, result *Result) error {
	var msg string
	switch {
	case result.HasErrors():
		msg = "❌ Documentation annotations contain forbidden commands."
	case result.HasWarnings():
		msg = "⚠️  Unknown documentation commands found. Consider fixing before commit."
	default:
		msg = "✨ All files passed validation!"
	}
	_, err := fmt.Fprintln(w, msg)
	return err
}

// FormatFinding renders "path:line - message" with path relative to root when possible.
func FormatFinding(root string, f Finding) string {
	path := f.FilePath
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = filepath.ToSlash(rel)
		}
	}
	if f.Line > 0 {
		return fmt.Sprintf("%s:%d - %s", path, f.Line, f.Message)
	}
	return fmt.Sprintf("%s - %s", path, f.Message)
}

// JSONFormatter formats results as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// JSONOutput represents the JSON output structure.
type JSONOutput struct {
	Root         string        `json:"root"`
	FilesTotal   int           `json:"files_total"`
	ErrorCount   int           `json:"error_count"`
	WarningCount int           `json:"warning_count"`
	Errors       []JSONFinding `json:"errors"`
	Warnings     []JSONFinding `json:"warnings"`
}

// JSONFinding represents a single finding in JSON format.
type JSONFinding struct {
	FilePath string `json:"file_path"`
	Line     int    `json:"line,omitempty"`
	Command  string `json:"command,omitempty"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Format outputs results in JSON format.
func (f *JSONFormatter) Format(w io.Writer, result *Result) error {
	output := JSONOutput{
		Root:         result.Root,
		FilesTotal:   result.FilesTotal,
		ErrorCount:   result.ErrorCount(),
		WarningCount: result.WarningCount(),
		Errors:       toJSON(result.Errors),
		Warnings:     toJSON(result.Warnings),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func toJSON(findings []Finding) []JSONFinding {
	out := make([]JSONFinding, 0, len(findings))
	for _, f := range findings {
		out = append(out, JSONFinding{
			FilePath: f.FilePath,
			Line:     f.Line,
			Command:  f.Command,
			Severity: f.Severity.String(),
			Message:  f.Message,
		})
	}
	return out
}

// NewFormatter creates the appropriate formatter based on format string.
func NewFormatter(format string) Formatter {
	switch format {
	case "json":
		return NewJSONFormatter()
	default:
		return NewTextFormatter()
	}
}

// pluralize returns "s" if count != 1, otherwise empty string.
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
