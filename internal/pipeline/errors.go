package pipeline

import (
	"errors"
	"fmt"

	"github.com/feedkit/calamine/internal/dom"
)

// ErrorType defines the category of an error
type ErrorType string

// Error types
const (
	ParseError      ErrorType = "parse"
	ExtractionError ErrorType = "extraction"
	ValidationError ErrorType = "validation"
	RenderError     ErrorType = "render"
	TimeoutError    ErrorType = "timeout"
)

// Common errors that can be used throughout the package
var (
	ErrNoDocument    = errors.New("no document to parse")
	ErrDocumentLarge = errors.New("document too large")
	ErrTimeout       = errors.New("operation timed out")
	ErrNoContent     = errors.New("no content found")
	ErrTreeTooLarge  = dom.ErrTreeTooLarge
)

// Error is an error tagged with its category and the operation that
// produced it.
type Error struct {
	Type    ErrorType
	Func    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("[%s:%s] %v", e.Type, e.Func, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Func, e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// WrapError wraps an error with context information
func WrapError(err error, errorType ErrorType, funcName, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Type: errorType, Func: funcName, Message: message, Err: err}
}

// WrapParseError wraps a parsing error
func WrapParseError(err error, funcName, message string) error {
	return WrapError(err, ParseError, funcName, message)
}

// WrapExtractionError wraps an extraction error
func WrapExtractionError(err error, funcName, message string) error {
	return WrapError(err, ExtractionError, funcName, message)
}

// WrapValidationError wraps a validation error
func WrapValidationError(err error, funcName, message string) error {
	return WrapError(err, ValidationError, funcName, message)
}

// WrapRenderError wraps a rendering error
func WrapRenderError(err error, funcName, message string) error {
	return WrapError(err, RenderError, funcName, message)
}

// IsErrorType checks if any error in the chain is of a specific type
func IsErrorType(err error, errorType ErrorType) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Type == errorType {
			return true
		}
		err = e.Err
	}
	return false
}

// IsParseError returns true if the error is a parse error
func IsParseError(err error) bool {
	return IsErrorType(err, ParseError)
}

// IsExtractionError returns true if the error is an extraction error
func IsExtractionError(err error) bool {
	return IsErrorType(err, ExtractionError)
}

// IsValidationError returns true if the error is a validation error
func IsValidationError(err error) bool {
	return IsErrorType(err, ValidationError)
}

// IsRenderError returns true if the error is a rendering error
func IsRenderError(err error) bool {
	return IsErrorType(err, RenderError)
}

// IsTimeoutError returns true if the error is a timeout error
func IsTimeoutError(err error) bool {
	return IsErrorType(err, TimeoutError)
}
