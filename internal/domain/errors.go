package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when a mutation target is missing from the local store.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidID is returned when a record ID is not a positive integer.
	ErrInvalidID = errors.New("invalid record ID")

	// ErrClosed is returned when an operation targets a screen that was closed.
	ErrClosed = errors.New("screen closed")

	// ErrNotOwner is returned when a delete targets a post the caller did not create.
	ErrNotOwner = errors.New("record not owned by current user")

	// ErrUnsupported is returned when a mutation does not apply to a screen's records.
	ErrUnsupported = errors.New("operation not supported for this list")
)

// NetworkError reports that the remote collection could not be reached.
// It is transient: the store keeps its contents and the caller may retry.
type NetworkError struct {
	Op      string
	Timeout bool
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: request timed out: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: network unavailable: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError reports a non-success response. Message is shown to the user verbatim.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("server error: %d: %s", e.Status, e.Message)
}

// ValidationError reports a fetched page that failed the shape check.
// The page is dropped and the store left unchanged.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return "invalid page: " + e.Reason
	}
	return fmt.Sprintf("invalid page: %s: %v", e.Reason, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsTransient reports whether retrying the same request may succeed.
func IsTransient(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var srvErr *ServerError
	if errors.As(err, &srvErr) {
		return srvErr.Status >= http.StatusInternalServerError
	}
	return false
}

// UserMessage returns the text a screen should display for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var srvErr *ServerError
	if errors.As(err, &srvErr) && srvErr.Message != "" {
		return srvErr.Message
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		if netErr.Timeout {
			return "The server took too long to respond. Try again."
		}
		return "No connection. Try again."
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return "Received unexpected data from the server."
	}
	return err.Error()
}
