package ai

import (
	"errors"
	"fmt"
)

var (
	ErrGeneration   = errors.New("generation failed")
	ErrTimeout      = errors.New("request timed out")
	ErrInvalidJSON  = errors.New("not valid JSON")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidImage = errors.New("invalid image")
)

// ValidationError is a local, field-level rejection raised before any provider call.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalidField(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func generationError(err error) error {
	if errors.Is(err, ErrGeneration) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrGeneration, err)
}
