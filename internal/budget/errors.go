package budget

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid input")
)

// FieldError reports the first invalid field of a form.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

func (e *FieldError) Unwrap() error {
	return ErrInvalid
}

func invalid(field, message string) error {
	return &FieldError{Field: field, Message: message}
}
