// Package doxylint checks Doxygen command tokens in C/C++ documentation comments
// against a project whitelist and blacklist.
package doxylint

import "slices"

// Severity indicates the importance level of a finding.
type Severity int

const (
	// SeverityInfo is informational only.
	SeverityInfo Severity = iota
	// SeverityWarning flags an unknown command; it does not fail the build.
	SeverityWarning
	// SeverityError flags a forbidden command or an unreadable file.
	SeverityError
)

// String returns the human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Finding is a single annotation problem.
type Finding struct {
	FilePath string
	Line     int // 1-based, 0 for file-level findings
	Command  string
	Severity Severity
	Message  string
}

// Result holds findings in scan order.
type Result struct {
	Root       string
	Errors     []Finding
	Warnings   []Finding
	FilesTotal int
}

func (r *Result) add(f Finding) {
	switch f.Severity {
	case SeverityError:
		r.Errors = append(r.Errors, f)
	case SeverityWarning:
		r.Warnings = append(r.Warnings, f)
	}
}

// HasErrors returns true if any error-level findings exist.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// HasWarnings returns true if any warning-level findings exist.
func (r *Result) HasWarnings() bool { return len(r.Warnings) > 0 }

// ErrorCount returns the number of error-level findings.
func (r *Result) ErrorCount() int { return len(r.Errors) }

// WarningCount returns the number of warning-level findings.
func (r *Result) WarningCount() int { return len(r.Warnings) }

// ExitCode is the error count, clamped to the range a process can return.
func (r *Result) ExitCode() int {
	return min(len(r.Errors), 255)
}

// Config controls what is scanned and how commands are classified.
type Config struct {
	// Dirs are scanned relative to the project root, in order, when present.
	Dirs []string
	// Extensions selects files by suffix.
	Extensions []string
	// SkipDirs are directory names never descended into.
	SkipDirs []string
	// Allowed commands, including the leading '@'.
	Allowed []string
	// Forbidden commands, including the leading '@'.
	Forbidden []string
	// Quiet drops warnings from the result.
	Quiet bool
}

// DefaultConfig returns the EARS documentation policy.
func DefaultConfig() Config {
	return Config{
		Dirs:       []string{"src", "lib", "include"},
		Extensions: []string{".cpp", ".h"},
		SkipDirs:   []string{".git", ".pio", "build", "test"},
		Allowed: []string{
			"@file", "@brief", "@author", "@date", "@version",
			"@param", "@return", "@returns", "@note", "@warning",
			"@see", "@class", "@struct", "@enum", "@var",
			"@code", "@endcode", "@example", "@details",
			"@pre", "@post", "@todo", "@bug", "@deprecated",
		},
		Forbidden: []string{"@internal", "@mainpage", "@page", "@section", "@subsection", "@private"},
	}
}

func (c Config) skipDir(name string) bool {
	return slices.Contains(c.SkipDirs, name)
}
