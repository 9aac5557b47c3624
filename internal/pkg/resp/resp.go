/*
Package resp writes the JSON envelope shared by every SeaSnap API response.

Successful responses carry code 0 and a data payload. Failures carry the business code
from package errs, the offending field for validation errors and the request id so a
client report can be matched to the server log.
*/
package resp

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"seasnap/internal/pkg/errs"
	"seasnap/internal/pkg/logx"
)

// Envelope is the body of every API response.
type Envelope struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// Write encodes body as JSON with the given status. Encoding happens before any header
// is sent, so a marshalling failure still produces a well-formed 500 envelope.
func Write(w http.ResponseWriter, r *http.Request, status int, body Envelope) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		logx.Ctx(r.Context()).Error().Err(err).Int("http_status", status).Msg("Encoding response failed")

		buf.Reset()
		fallback := errs.NewError(errs.ErrUnknown)
		_ = json.NewEncoder(&buf).Encode(Envelope{Code: fallback.Code, Message: fallback.Message})
		status = fallback.Status
	}

	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Content-Length", strconv.Itoa(buf.Len()))
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// OK writes a 200 response carrying data.
func OK(w http.ResponseWriter, r *http.Request, data any) {
	Write(w, r, http.StatusOK, Envelope{Message: "success", Data: data})
}

// Fail writes the status and code of e. A nil e is reported as an unknown error.
func Fail(w http.ResponseWriter, r *http.Request, e *errs.CustomError) {
	if e == nil {
		e = errs.NewError(errs.ErrUnknown)
	}
	Write(w, r, e.Status, Envelope{
		Code:      e.Code,
		Message:   e.Message,
		Field:     e.Field,
		RequestID: middleware.GetReqID(r.Context()),
	})
}
