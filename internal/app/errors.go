package app

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned on a uniqueness violation (book code,
	// account name or email).
	ErrConflict = errors.New("already in use")

	// ErrUnauthorized is returned when a request lacks a valid session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials is returned on login failure. The message is
	// uniform so it does not enable account enumeration.
	ErrInvalidCredentials = errors.New("incorrect email address or password")
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects field-level input failures.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
