package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindNetwork    ErrorKind = "network"
	KindNotFound   ErrorKind = "not_found"
	KindValidation ErrorKind = "validation"
	KindCreation   ErrorKind = "creation"
	KindGeneration ErrorKind = "generation"
	KindStorage    ErrorKind = "storage"
)

var (
	ErrNotFound    = errors.New("analysis not found")
	ErrNotTerminal = errors.New("analysis is not in a terminal state")
)

// Error is the typed error returned across package boundaries.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// IsKind reports whether err, or any error it wraps, is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
