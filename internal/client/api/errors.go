package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when no account is bound to the device identifier.
var ErrNotFound = errors.New("account not found")

// ValidationError is a field-specific rejection reported by the server.
type ValidationError struct {
	Field   string
	Code    int
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed (code %d): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("validation failed on %s (code %d): %s", e.Field, e.Code, e.Message)
}

// BackendError covers transport failures and server errors other than NotFound
// and validation. Status is zero when no response was received.
// RequestID is the server's request id when the response carried one.
type BackendError struct {
	Status    int
	Code      int
	Message   string
	RequestID string
	Err       error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backend unavailable: %v", e.Err)
	}
	msg := fmt.Sprintf("backend error (HTTP %d, code %d): %s", e.Status, e.Code, e.Message)
	if e.RequestID != "" {
		msg += " [request " + e.RequestID + "]"
	}
	return msg
}

func (e *BackendError) Unwrap() error { return e.Err }

// Transient reports whether another attempt may succeed.
func (e *BackendError) Transient() bool {
	return e.Status == 0 || e.Status >= http.StatusInternalServerError
}

// IsTransient reports whether err is a BackendError worth retrying.
func IsTransient(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.Transient()
}
