package errors

import (
	stderrors "errors"
	"fmt"
	"slices"
	"strings"
)

// Field is one piece of structured error context, e.g. the header path.
type Field struct {
	Key   string
	Value any
}

// ClassifiedError carries the category, severity and context of a failure.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	message  string
	cause    error
	fields   []Field
}

// Error renders "message (k=v, ...): cause"; the category is left to the caller.
func (e *ClassifiedError) Error() string {
	var b strings.Builder
	b.WriteString(e.message)
	if len(e.fields) > 0 {
		parts := make([]string, 0, len(e.fields))
		for _, f := range e.fields {
			parts = append(parts, fmt.Sprintf("%s=%v", f.Key, f.Value))
		}
		b.WriteString(" (" + strings.Join(parts, ", ") + ")")
	}
	if e.cause != nil {
		b.WriteString(": " + e.cause.Error())
	}
	return b.String()
}

func (e *ClassifiedError) Unwrap() error { return e.cause }

func (e *ClassifiedError) Category() ErrorCategory { return e.category }

func (e *ClassifiedError) Severity() ErrorSeverity { return e.severity }

func (e *ClassifiedError) Message() string { return e.message }

func (e *ClassifiedError) Cause() error { return e.cause }

// Fields returns the context fields in the order they were added.
func (e *ClassifiedError) Fields() []Field { return slices.Clone(e.fields) }

// Field returns the value stored under key, preferring the most recent one.
func (e *ClassifiedError) Field(key string) (any, bool) {
	for i := len(e.fields) - 1; i >= 0; i-- {
		if e.fields[i].Key == key {
			return e.fields[i].Value, true
		}
	}
	return nil, false
}

// Path is shorthand for the "path" field every file-touching hook sets.
func (e *ClassifiedError) Path() string {
	if v, ok := e.Field(FieldPath); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// IsFatal reports whether the error stops the current hook.
func (e *ClassifiedError) IsFatal() bool { return !e.severity.Degrades() }

// AsClassified finds the first ClassifiedError in err's chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var classified *ClassifiedError
	if stderrors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// HasCategory reports whether the first classified error in the chain has category.
func HasCategory(err error, category ErrorCategory) bool {
	classified, ok := AsClassified(err)
	return ok && classified.category == category
}

// GetCategory returns the category of err, or CategoryInternal when unclassified.
func GetCategory(err error) ErrorCategory {
	if classified, ok := AsClassified(err); ok {
		return classified.category
	}
	return CategoryInternal
}

// GetSeverity returns the severity of err, or SeverityError when unclassified.
func GetSeverity(err error) ErrorSeverity {
	if classified, ok := AsClassified(err); ok {
		return classified.severity
	}
	return SeverityError
}
