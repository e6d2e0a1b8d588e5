package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	// Sentinel errors for errors.Is checks at the HTTP boundary.
	ErrNotFound     = errors.New("backend: resource not found")
	ErrValidation   = errors.New("backend: request rejected")
	ErrUnauthorized = errors.New("backend: access denied")
	ErrConflict     = errors.New("backend: conflicting state")
	ErrUpstream     = errors.New("backend: internal error")
	ErrUnavailable  = errors.New("backend: host unreachable or transport failure")
	ErrTimeout      = errors.New("backend: request timed out")
	ErrBadResponse  = errors.New("backend: malformed response")
)

// APIError wraps a sentinel with the failing operation and the backend message.
type APIError struct {
	Sentinel  error
	Operation string
	Status    int
	Message   string
	Path      string
	Err       error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Sentinel
}

// UserMessage returns the text shown to the operator: the backend message when
// one was sent, the sentinel description otherwise.
func (e *APIError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Sentinel.Error()
}

func sentinelForStatus(status int) error {
	switch {
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return ErrValidation
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusConflict:
		return ErrConflict
	case status >= http.StatusInternalServerError:
		return ErrUpstream
	default:
		return ErrBadResponse
	}
}

func transportError(op string, err error) *APIError {
	sentinel := ErrUnavailable
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		sentinel = ErrTimeout
	}
	return &APIError{Sentinel: sentinel, Operation: op, Err: err}
}
