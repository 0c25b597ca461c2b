package pipeline

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapError(t *testing.T) {
	baseErr := errors.New("base error")
	wrapped := WrapError(baseErr, ParseError, "TestFunc", "test message")

	assert.Equal(t, "[parse:TestFunc] test message: base error", wrapped.Error())
	assert.ErrorIs(t, wrapped, baseErr)

	assert.Equal(t, "[parse:TestFunc] base error", WrapError(baseErr, ParseError, "TestFunc", "").Error())
	assert.NoError(t, WrapError(nil, ParseError, "TestFunc", "msg"))
}

func TestWrapErrorSpecificTypes(t *testing.T) {
	baseErr := errors.New("base error")

	tests := []struct {
		name      string
		wrapFunc  func(error, string, string) error
		errorType ErrorType
		checkFunc func(error) bool
	}{
		{"ParseError", WrapParseError, ParseError, IsParseError},
		{"ExtractionError", WrapExtractionError, ExtractionError, IsExtractionError},
		{"ValidationError", WrapValidationError, ValidationError, IsValidationError},
		{"RenderError", WrapRenderError, RenderError, IsRenderError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrappedErr := tt.wrapFunc(baseErr, "TestFunc", "test message")
			assert.True(t, tt.checkFunc(wrappedErr))
			assert.True(t, IsErrorType(wrappedErr, tt.errorType))

			for _, other := range tests {
				if other.errorType != tt.errorType {
					assert.False(t, IsErrorType(wrappedErr, other.errorType))
				}
			}
		})
	}
}

func TestIsErrorTypeThroughChain(t *testing.T) {
	inner := WrapValidationError(ErrTreeTooLarge, "FromHTML", "")
	outer := fmt.Errorf("extracting: %w", WrapParseError(inner, "Parse", "reading"))

	assert.True(t, IsParseError(outer))
	assert.True(t, IsValidationError(outer))
	assert.False(t, IsTimeoutError(outer))
	assert.ErrorIs(t, outer, ErrTreeTooLarge)
	assert.False(t, IsParseError(nil))
	assert.False(t, IsParseError(errors.New("[parse:Fake] not tagged")))
}
