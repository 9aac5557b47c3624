package req

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seasnap/internal/pkg/errs"
)

type input struct {
	DeviceID string `json:"device_id"`
}

func newRequest(body, contentType string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	return r
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		wantCode    int
	}{
		{name: "ok", body: `{"device_id":"abc"}`, contentType: "application/json"},
		{name: "charset param", body: `{"device_id":"abc"}`, contentType: "application/json; charset=utf-8"},
		{name: "wrong media type", body: `{}`, contentType: "text/plain", wantCode: errs.ErrUnsupportedMediaType},
		{name: "missing media type", body: `{}`, wantCode: errs.ErrUnsupportedMediaType},
		{name: "syntax error", body: `{"device_id":`, contentType: "application/json", wantCode: errs.ErrInvalidJSONFormat},
		{name: "unknown field", body: `{"device":"abc"}`, contentType: "application/json", wantCode: errs.ErrInvalidJSONFormat},
		{name: "trailing object", body: `{"device_id":"a"}{"device_id":"b"}`, contentType: "application/json", wantCode: errs.ErrExtraContentInBody},
		{name: "too large", body: `{"device_id":"` + strings.Repeat("a", int(MaxJSONBodySize)) + `"}`, contentType: "application/json", wantCode: errs.ErrRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in input
			e := DecodeJSON(httptest.NewRecorder(), newRequest(tt.body, tt.contentType), &in)
			if tt.wantCode == 0 {
				require.Nil(t, e)
				assert.Equal(t, "abc", in.DeviceID)
				return
			}
			require.NotNil(t, e)
			assert.Equal(t, tt.wantCode, e.Code)
		})
	}
}

func TestDecodeOptionalJSON_EmptyBody(t *testing.T) {
	in := input{DeviceID: "keep"}
	assert.Nil(t, DecodeOptionalJSON(httptest.NewRecorder(), newRequest("", ""), &in))
	assert.Equal(t, "keep", in.DeviceID)

	e := DecodeJSON(httptest.NewRecorder(), newRequest("", "application/json"), &in)
	require.NotNil(t, e)
	assert.Equal(t, errs.ErrInvalidJSONFormat, e.Code)
}

func TestIntQuery(t *testing.T) {
	get := func(q string) *http.Request { return httptest.NewRequest(http.MethodGet, "/?"+q, nil) }

	_, ok, err := IntQuery(get(""), "month", 1, 12)
	assert.False(t, ok)
	assert.NoError(t, err)

	v, ok, err := IntQuery(get("month=7"), "month", 1, 12)
	assert.True(t, ok)
	assert.NoError(t, err)
	assert.Equal(t, 7, v)

	_, ok, err = IntQuery(get("month=13"), "month", 1, 12)
	assert.True(t, ok)
	assert.Error(t, err)

	_, _, err = IntQuery(get("month=x"), "month", 1, 12)
	assert.Error(t, err)
}
