package errors

// Well-known context keys.
const (
	FieldPath = "path"
	FieldHook = "hook"
)

// ErrorBuilder assembles a ClassifiedError.
type ErrorBuilder struct {
	err ClassifiedError
}

// NewError starts an error with the category's default severity.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{err: ClassifiedError{
		category: category,
		severity: category.DefaultSeverity(),
		message:  message,
	}}
}

// WrapError starts an error caused by err.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	b := NewError(category, message)
	b.err.cause = err
	return b
}

func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.err.fields = append(b.err.fields, Field{Key: key, Value: value})
	return b
}

// WithPath records the file the failure concerns.
func (b *ErrorBuilder) WithPath(path string) *ErrorBuilder {
	return b.WithContext(FieldPath, path)
}

// WithHook records the hook that produced the failure.
func (b *ErrorBuilder) WithHook(name string) *ErrorBuilder {
	return b.WithContext(FieldHook, name)
}

func (b *ErrorBuilder) Fatal() *ErrorBuilder {
	b.err.severity = SeverityFatal
	return b
}

// Warning downgrades the error so the hook degrades instead of failing.
func (b *ErrorBuilder) Warning() *ErrorBuilder {
	b.err.severity = SeverityWarning
	return b
}

// Build returns a copy, so a builder can be reused as a template.
func (b *ErrorBuilder) Build() *ClassifiedError {
	e := b.err
	e.fields = append([]Field(nil), b.err.fields...)
	return &e
}

func ConfigError(message string) *ErrorBuilder { return NewError(CategoryConfig, message) }

func ValidationError(message string) *ErrorBuilder { return NewError(CategoryValidation, message) }

// NotFoundError is a required input file that does not exist.
func NotFoundError(message string) *ErrorBuilder { return NewError(CategoryNotFound, message) }

func FileSystemError(message string) *ErrorBuilder { return NewError(CategoryFileSystem, message) }

// ParseError is a pattern that should exist but does not.
func ParseError(message string) *ErrorBuilder { return NewError(CategoryParse, message) }

// SubprocessError is an external tool failure; callers fall back to sentinel values.
func SubprocessError(message string) *ErrorBuilder { return NewError(CategorySubprocess, message) }

func InternalError(message string) *ErrorBuilder { return NewError(CategoryInternal, message) }
