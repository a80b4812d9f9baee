package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig  Category = "config"
	CategoryStorage Category = "storage"
	CategoryState   Category = "state"
	CategoryAPI     Category = "api"
	CategoryCLI     Category = "cli"
)

// ShellError is a structured error with a code, explanation and a fix hint.
type ShellError struct {
	// Code is a unique error identifier (e.g., "E120").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *ShellError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *ShellError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a ShellError with the same code.
func (e *ShellError) Is(target error) bool {
	t, ok := target.(*ShellError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// WithSuggestion adds a fix suggestion to the error.
func (e *ShellError) WithSuggestion(s string) *ShellError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *ShellError) WithDetail(d string) *ShellError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *ShellError) Wrap(err error) *ShellError {
	e.Wrapped = err
	return e
}

// New creates a ShellError from a registered error code.
func New(code string) *ShellError {
	template, ok := registry[code]
	if !ok {
		return &ShellError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &ShellError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new ShellError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *ShellError {
	return &ShellError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a ShellError.
// Errors that already are (or wrap) a ShellError are returned as-is.
func FromError(err error, code string) *ShellError {
	if err == nil {
		return nil
	}
	var se *ShellError
	if stderrors.As(err, &se) {
		return se
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err is, or wraps, a ShellError with the given code.
func HasCode(err error, code string) bool {
	var se *ShellError
	for err != nil {
		if stderrors.As(err, &se) {
			if se.Code == code {
				return true
			}
			err = se.Wrapped
			continue
		}
		return false
	}
	return false
}
