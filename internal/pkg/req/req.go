/*
Package req decodes SeaSnap API requests into handler input structs.

Decoding failures are returned as *errs.CustomError so handlers can respond with them
directly.
*/
package req

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"seasnap/internal/pkg/errs"
)

// MaxJSONBodySize bounds every JSON request body (256 KB). A profile update carries at most
// a 100,000 byte image, so the limit leaves room for the JSON framing around it.
const MaxJSONBodySize int64 = 256 << 10

// DecodeJSON decodes exactly one JSON object from the request body into dst.
// Unknown fields and trailing content are rejected.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	return decode(w, r, dst, false)
}

// DecodeOptionalJSON is DecodeJSON for endpoints where the whole body may be omitted.
// An empty body leaves dst untouched.
func DecodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	if r.ContentLength == 0 {
		return nil
	}
	return decode(w, r, dst, true)
}

func decode(w http.ResponseWriter, r *http.Request, dst any, optional bool) *errs.CustomError {
	if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mediaType != "application/json" {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxJSONBodySize))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		case optional && errors.Is(err, io.EOF):
			return nil
		default:
			return errs.NewError(errs.ErrInvalidJSONFormat)
		}
	}

	if dec.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}
	return nil
}

// IntQuery parses the named query parameter and checks it lies in [min, max].
// It reports ok=false when the parameter is absent.
func IntQuery(r *http.Request, name string, min, max int) (v int, ok bool, err error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, false, nil
	}

	v, err = strconv.Atoi(s)
	if err != nil {
		return 0, true, err
	}
	if v < min || v > max {
		return 0, true, strconv.ErrRange
	}
	return v, true, nil
}
