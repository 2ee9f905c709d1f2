package providers

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed supplier call.
type ErrorKind int

const (
	// ErrKindAuth is a token fetch or refresh failure, or an upstream 401.
	ErrKindAuth ErrorKind = iota
	// ErrKindTimeout means the call exceeded the hard timeout.
	ErrKindTimeout
	// ErrKindRejected is an upstream 4xx other than auth. Never retried.
	ErrKindRejected
	// ErrKindUnavailable is an upstream 5xx or transport failure.
	ErrKindUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindAuth:
		return "auth"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindRejected:
		return "rejected"
	case ErrKindUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// Error is a typed failure scoped to one supplier call.
type Error struct {
	Provider string
	Op       string
	Kind     ErrorKind
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Provider, e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Provider, e.Op, e.Kind)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the generic retry budget applies to this failure.
// Auth failures have their own single forced-refresh retry instead.
func (e *Error) Retryable() bool {
	return e.Kind == ErrKindTimeout || e.Kind == ErrKindUnavailable
}

// IsKind checks whether err is a supplier error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var perr *Error
	return errors.As(err, &perr) && perr.Kind == kind
}
