package gateway

import (
	"errors"
	"fmt"
)

// FailureClass discriminates gateway failures for callers that only need
// the category, not the wrapped cause.
type FailureClass string

const (
	// Unauthenticated: no usable credential before a guarded call.
	Unauthenticated FailureClass = "unauthenticated"
	// NetworkUnavailable: transport-level failure (DNS, TLS, timeout, reset).
	NetworkUnavailable FailureClass = "network_unavailable"
	// MalformedResponse: body not decodable as the expected envelope.
	MalformedResponse FailureClass = "malformed_response"
	// ServerRejected: a decodable envelope signalling application failure.
	ServerRejected FailureClass = "server_rejected"
)

// Error is the typed outcome every gateway call surfaces on failure. The
// gateway never lets a raw transport or decode fault cross its boundary.
type Error struct {
	Class   FailureClass
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("gateway %s: %s: %v", e.Class, e.Message, e.Cause)
	}
	return fmt.Sprintf("gateway %s: %s", e.Class, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(class FailureClass, message string, cause error) *Error {
	return &Error{
		Class:   class,
		Message: message,
		Cause:   cause,
	}
}

// ClassOf extracts the failure class, returning false for foreign errors.
func ClassOf(err error) (FailureClass, bool) {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Class, true
	}
	return "", false
}

// Reason returns the operator-facing reason string for a gateway error.
func Reason(err error) string {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Message
	}
	return err.Error()
}
