package api

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a failed API call.
type Kind int

const (
	// KindTransport means the request did not complete.
	KindTransport Kind = iota
	// KindStatus means the server answered with a non-2xx status.
	KindStatus
	// KindSchema means the response did not match the expected shape.
	KindSchema
	// KindCanceled means the caller aborted the request.
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindSchema:
		return "schema"
	case KindCanceled:
		return "canceled"
	default:
		return "transport"
	}
}

// Error is the uniform failure value of every API operation.
type Error struct {
	Op      string
	Kind    Kind
	Status  int
	Message string // human-readable, safe to show to the user
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (%d)", e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsCanceled reports whether err came from an aborted request.
func IsCanceled(err error) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == KindCanceled
	}
	return errors.Is(err, context.Canceled)
}

// IsNotFound reports whether the server answered 404.
func IsNotFound(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == KindStatus && ae.Status == 404
}

// Message extracts the user-facing message of err.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
