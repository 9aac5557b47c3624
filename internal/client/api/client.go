/*
Package api is the HTTP client for the SeaSnap account endpoints.

Every call runs with a per-attempt timeout. Transient failures (no response, HTTP 5xx)
are retried with exponential backoff a bounded number of times; NotFound and validation
failures are returned immediately.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"seasnap/internal/app/account"
	"seasnap/internal/app/season"
	"seasnap/internal/pkg/errs"
	"seasnap/internal/pkg/logx"
	"seasnap/internal/pkg/randx"
)

const (
	DefaultTimeout    = 10 * time.Second
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 200 * time.Millisecond

	// maxResponseSize bounds decoded responses; an account row is at most ~100 KB.
	maxResponseSize = 1 << 20
)

// envelope mirrors the server's response wrapper.
type envelope struct {
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	Field     string          `json:"field,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Provisioned is the result of anonymous provisioning.
type Provisioned struct {
	AccountID   string `json:"account_id"`
	DeviceID    string `json:"device_id"`
	AccessToken string `json:"access_token,omitempty"`
}

type Client struct {
	baseURL    *url.URL
	http       *http.Client
	timeout    time.Duration
	maxRetries uint64
	baseDelay  time.Duration

	mu     sync.RWMutex
	tokens map[string]string // device id -> access token
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRetries sets the maximum number of retries after the first attempt.
func WithRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithBaseDelay sets the first backoff delay; later delays double.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) { c.baseDelay = d }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New returns a Client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    u,
		http:       &http.Client{},
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		baseDelay:  DefaultBaseDelay,
		tokens:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AccessToken returns the token issued for deviceID by a previous Provision, if any.
func (c *Client) AccessToken(deviceID string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens[deviceID]
}

// ResolveByDeviceID fetches the account bound to deviceID, or ErrNotFound.
func (c *Client) ResolveByDeviceID(ctx context.Context, deviceID string) (*account.Account, error) {
	var acc account.Account
	body := map[string]string{"device_id": deviceID}
	if err := c.do(ctx, http.MethodPost, "/api/auth/user", body, "", &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// Provision creates (or recovers) the anonymous account for deviceID. An empty deviceID
// is replaced by a generated one before the first attempt, so retries rebind the same
// identifier instead of provisioning a second account.
func (c *Client) Provision(ctx context.Context, deviceID string) (*Provisioned, error) {
	if deviceID == "" {
		deviceID = randx.DeviceID()
	}
	body := map[string]string{"device_id": deviceID}

	var out Provisioned
	if err := c.do(ctx, http.MethodPost, "/api/auth/anonymous", body, "", &out); err != nil {
		return nil, err
	}

	if out.AccessToken != "" {
		c.mu.Lock()
		c.tokens[out.DeviceID] = out.AccessToken
		c.mu.Unlock()
	}
	return &out, nil
}

type updateUserRequest struct {
	DeviceID     string  `json:"device_id"`
	UserName     *string `json:"user_name,omitempty"`
	ProfileImage *string `json:"profile_image,omitempty"`
}

// UpdateProfile applies u to the account bound to deviceID and returns the stored row.
func (c *Client) UpdateProfile(ctx context.Context, deviceID string, u account.ProfileUpdate) (*account.Account, error) {
	body := updateUserRequest{DeviceID: deviceID, UserName: u.DisplayName, ProfileImage: u.Image}

	var acc account.Account
	if err := c.do(ctx, http.MethodPut, "/api/auth/user", body, c.AccessToken(deviceID), &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// Season fetches the season overview for month (1-12), or for the server's current
// month when month is zero.
func (c *Client) Season(ctx context.Context, month int) (*season.Overview, error) {
	path := "/api/season"
	if month != 0 {
		path += "?month=" + strconv.Itoa(month)
	}

	var ov season.Overview
	if err := c.do(ctx, http.MethodGet, path, nil, "", &ov); err != nil {
		return nil, err
	}
	return &ov, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, token string, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.baseDelay))

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := c.attempt(ctx, method, path, payload, token, out)
		if IsTransient(err) {
			logx.Ctx(ctx).Debug().Err(err).Str("path", path).Int("attempt", attempt).Msg("Transient failure, retrying")
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, token string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return &BackendError{Err: err}
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(res.Body, maxResponseSize)).Decode(&env); err != nil {
		return &BackendError{Status: res.StatusCode, Message: "malformed response", Err: fmt.Errorf("decode response: %w", err)}
	}

	if res.StatusCode >= http.StatusOK && res.StatusCode < http.StatusMultipleChoices && env.Code == 0 {
		if out == nil || len(env.Data) == 0 {
			return nil
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &BackendError{Status: res.StatusCode, Message: "malformed response data", Err: err}
		}
		return nil
	}

	return classify(res.StatusCode, env)
}

// classify maps an error envelope onto the client error taxonomy.
func classify(status int, env envelope) error {
	switch {
	case env.Code == errs.ErrUserNotFound:
		return ErrNotFound
	case env.Field != "":
		return &ValidationError{Field: env.Field, Code: env.Code, Message: env.Message}
	case env.Code == errs.ErrDeviceIDInvalid || env.Code == errs.ErrDeviceIDRequired:
		return &ValidationError{Field: "device_id", Code: env.Code, Message: env.Message}
	}

	return &BackendError{Status: status, Code: env.Code, Message: env.Message, RequestID: env.RequestID}
}

// IsNotFound reports whether err means no account is bound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
