/*
Package errs defines the business error codes of the SeaSnap API.

Every code has a fixed message template and HTTP status in errorMap. Handlers build
errors with NewError and send them with resp.Fail.
*/
package errs

import (
	"errors"
	"fmt"
	"strings"

	"seasnap/internal/pkg/logx"
)

// CustomError is an API error: a business code, the client-facing message, the HTTP
// status it is served with and, for validation errors, the offending request field.
type CustomError struct {
	Code    int
	Message string
	Status  int
	Field   string
}

func (e *CustomError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("code %d (%s): %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("code %d: %s", e.Code, e.Message)
}

// WithField returns a copy of e annotated with the request field that failed validation.
func (e *CustomError) WithField(field string) *CustomError {
	c := *e
	c.Field = field
	return &c
}

// NewError returns a fresh error for code. Args fill the printf verbs of the message
// template. Unknown codes degrade to ErrUnknown.
func NewError(code int, args ...any) *CustomError {
	tmpl, ok := errorMap[code]
	if !ok {
		logx.Warn("Unknown error code requested", "requested_code", code)
		tmpl = errorMap[ErrUnknown]
	}

	e := tmpl
	if len(args) > 0 && ok {
		if strings.Contains(e.Message, "%") {
			e.Message = fmt.Sprintf(e.Message, args...)
		} else {
			logx.Debug("Error message takes no arguments", "code", code)
		}
	}
	return &e
}

// As extracts a *CustomError from err, if one is present in its chain.
func As(err error) (*CustomError, bool) {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
