// Package client talks to the omechoo HTTP APIs: menu recommendation, restaurant search and rooms.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/daehan00/omechoo/logging"
	"github.com/daehan00/omechoo/session"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const DefaultTimeout = 10 * time.Second

// Client holds two bases because the recommendation API is versioned under /api/v1 while rooms live under /api.
type Client struct {
	apiBase  string
	roomBase string
	http     *http.Client
	tokens   session.Store
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithAPIBase overrides the menu/restaurant base, e.g. "https://host/api/v1".
func WithAPIBase(base string) Option {
	return func(c *Client) { c.apiBase = strings.TrimRight(base, "/") }
}

// New builds a client for a server root such as "http://localhost:8000".
func New(serverURL string, tokens session.Store, opts ...Option) *Client {
	root := strings.TrimRight(serverURL, "/")
	c := &Client{
		apiBase:  root + "/api/v1",
		roomBase: root + "/api",
		http:     &http.Client{Timeout: DefaultTimeout},
		tokens:   tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Tokens() session.Store {
	return c.tokens
}

// APIError is any non-2xx answer. Code carries the server's machine code when one was sent.
type APIError struct {
	StatusCode int
	Code       string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d %s: %s", e.StatusCode, e.Code, e.Detail)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Detail)
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func IsNotFound(err error) bool { return statusOf(err) == http.StatusNotFound }
func IsConflict(err error) bool { return statusOf(err) == http.StatusConflict }
func IsGone(err error) bool     { return statusOf(err) == http.StatusGone }

// IsAlreadyVoted matches the 409 a second cast gets. Older servers send no code, so the
// message is checked as well.
func IsAlreadyVoted(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusConflict {
		return false
	}
	return apiErr.Code == "ALREADY_VOTED" || strings.Contains(strings.ToLower(apiErr.Detail), "already voted")
}

var roomPath = regexp.MustCompile(`/rooms/([a-f0-9-]+)`)

// RoomIDFromURL extracts the room id from a share URL or path.
func RoomIDFromURL(raw string) (string, bool) {
	m := roomPath.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// errorBody covers both the room API ({code, error}) and FastAPI style ({detail}) errors.
type errorBody struct {
	Code    string          `json:"code"`
	Error   string          `json:"error"`
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		apiErr.Detail = strings.TrimSpace(string(body))
		return apiErr
	}
	apiErr.Code = eb.Code
	switch {
	case eb.Error != "":
		apiErr.Detail = eb.Error
	case len(eb.Detail) > 0:
		var s string
		if json.Unmarshal(eb.Detail, &s) == nil {
			apiErr.Detail = s
		} else {
			apiErr.Detail = string(eb.Detail)
		}
	default:
		apiErr.Detail = eb.Message
	}
	if apiErr.Detail == "" {
		apiErr.Detail = http.StatusText(status)
	}
	return apiErr
}

// do sends body as JSON and decodes a 2xx answer into out. bearer is attached when non-empty.
func (c *Client) do(ctx context.Context, method, url string, body, out any, bearer string) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	res, err := c.http.Do(req)
	if err != nil {
		logging.Log.Errorf("API: %s %s failed: %v", method, url, err)
		return fmt.Errorf("request %s %s: %w", method, url, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := decodeAPIError(res.StatusCode, data)
		logging.Log.Debugf("API: %s %s -> %v", method, url, apiErr)
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, url, err)
	}
	return nil
}

// Envelope is the {success, data, message, meta} wrapper of the recommendation API.
type Envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Message string         `json:"message,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}
