package errors

// ErrorCategory classifies a hook or CLI failure.
type ErrorCategory string

const (
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	// CategoryNotFound is a required input file that does not exist.
	CategoryNotFound ErrorCategory = "not_found"
	// CategoryFileSystem covers read/write failures on hook target files.
	CategoryFileSystem ErrorCategory = "filesystem"
	// CategoryParse is an expected pattern missing from an otherwise readable file.
	CategoryParse      ErrorCategory = "parse"
	CategorySubprocess ErrorCategory = "subprocess"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity decides whether a hook fails or degrades.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops the current hook
	SeverityError   ErrorSeverity = "error"   // Fails the current operation
	SeverityWarning ErrorSeverity = "warning" // Continues with sentinel output
	SeverityInfo    ErrorSeverity = "info"
)

type categorySpec struct {
	exitCode int
	severity ErrorSeverity
}

// Exit codes are part of the CLI contract; 1 is reserved for unclassified errors.
var categorySpecs = map[ErrorCategory]categorySpec{
	CategoryValidation: {exitCode: 2, severity: SeverityFatal},
	CategoryNotFound:   {exitCode: 3, severity: SeverityFatal},
	CategoryParse:      {exitCode: 4, severity: SeverityFatal},
	CategoryConfig:     {exitCode: 7, severity: SeverityFatal},
	CategorySubprocess: {exitCode: 8, severity: SeverityWarning},
	CategoryInternal:   {exitCode: 10, severity: SeverityFatal},
	CategoryFileSystem: {exitCode: 11, severity: SeverityError},
}

// ExitCode is the process status for errors of this category.
func (c ErrorCategory) ExitCode() int {
	if spec, ok := categorySpecs[c]; ok {
		return spec.exitCode
	}
	return 1
}

// DefaultSeverity is the severity NewError assigns before any override.
func (c ErrorCategory) DefaultSeverity() ErrorSeverity {
	if spec, ok := categorySpecs[c]; ok {
		return spec.severity
	}
	return SeverityError
}

// Degrades reports whether a hook failing with this severity still succeeds with a warning.
func (s ErrorSeverity) Degrades() bool {
	return s == SeverityWarning || s == SeverityInfo
}
