package models

import (
	"errors"
	"strings"
)

// ErrInvalid matches any ValidationErrors through errors.Is.
var ErrInvalid = errors.New("invalid input")

// FieldError describes one rejected form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors aggregates field errors of a form.
type ValidationErrors []FieldError

// Add records a field error.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}

// Merge appends the field errors of err under prefix, or a generic error when err
// is not a ValidationErrors.
func (v *ValidationErrors) Merge(prefix string, err error) {
	if err == nil {
		return
	}
	var inner ValidationErrors
	if !errors.As(err, &inner) {
		v.Add(prefix, err.Error())
		return
	}
	for _, fe := range inner {
		field := fe.Field
		if prefix != "" {
			field = prefix + "." + field
		}
		v.Add(field, fe.Message)
	}
}

// Err returns nil when no errors were recorded.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrInvalid) hold.
func (v ValidationErrors) Is(target error) bool {
	return target == ErrInvalid
}
