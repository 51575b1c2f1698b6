package core

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific form field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return "validation failed"
	}
	return err.Err.Error()
}

// FieldMessages flattens a validation failure into {field: message}.
// Errors that are not validation errors yield nil.
func FieldMessages(err error, translator ut.Translator) map[string]string {
	switch origErr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		msgs := make(map[string]string, len(origErr))
		for _, vErr := range origErr {
			msgs[vErr.Field()] = vErr.Translate(translator)
		}
		return msgs
	case *ValidationError:
		msgs := make(map[string]string, len(origErr.Fields))
		for _, fErr := range origErr.Fields {
			msgs[fErr.Field] = fErr.Error
		}
		return msgs
	default:
		return nil
	}
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
