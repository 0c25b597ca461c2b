package calamine

import "github.com/feedkit/calamine/internal/pipeline"

// ErrorType is the category of an extraction error.
type ErrorType = pipeline.ErrorType

// Error categories.
const (
	ParseError      = pipeline.ParseError
	ExtractionError = pipeline.ExtractionError
	ValidationError = pipeline.ValidationError
	RenderError     = pipeline.RenderError
	TimeoutError    = pipeline.TimeoutError
)

// Sentinel errors, matched with errors.Is.
var (
	ErrNoDocument    = pipeline.ErrNoDocument
	ErrDocumentLarge = pipeline.ErrDocumentLarge
	ErrTimeout       = pipeline.ErrTimeout
	ErrTreeTooLarge  = pipeline.ErrTreeTooLarge
	ErrNoContent     = pipeline.ErrNoContent
)

// IsErrorType reports whether any error in the chain of err has the given
// category.
func IsErrorType(err error, errorType ErrorType) bool {
	return pipeline.IsErrorType(err, errorType)
}

// IsParseError returns true if the error is a parse error
func IsParseError(err error) bool { return pipeline.IsParseError(err) }

// IsExtractionError returns true if the error is an extraction error
func IsExtractionError(err error) bool { return pipeline.IsExtractionError(err) }

// IsValidationError returns true if the error is a validation error
func IsValidationError(err error) bool { return pipeline.IsValidationError(err) }

// IsRenderError returns true if the error is a rendering error
func IsRenderError(err error) bool { return pipeline.IsRenderError(err) }

// IsTimeoutError returns true if the error is a timeout error
func IsTimeoutError(err error) bool { return pipeline.IsTimeoutError(err) }
