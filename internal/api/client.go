package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Sentinel errors for the two backend responses every page must branch on.
var (
	ErrUnauthorized = errors.New("api: unauthorized")
	ErrNotFound     = errors.New("api: not found")
)

// APIError carries a 4xx rejection body from the backend: either a free-text
// "detail" message (business-rule rejections) or per-field validation
// messages keyed by field name.
type APIError struct {
	Status int
	Detail string
	Fields map[string]string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: %d: %s", e.Status, e.Detail)
	}
	if f, msg, ok := e.FirstField(); ok {
		return fmt.Sprintf("api: %d: %s: %s", e.Status, f, msg)
	}
	return fmt.Sprintf("api: %d", e.Status)
}

// FirstField returns the first reported field/message pair in field-name
// order, the pair surfaced to the operator.
func (e *APIError) FirstField() (field, msg string, ok bool) {
	if len(e.Fields) == 0 {
		return "", "", false
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0], e.Fields[keys[0]], true
}

// Message is the user-facing text for this rejection, with a generic
// fallback when the backend sent nothing usable.
func (e *APIError) Message(fallback string) string {
	if e.Detail != "" {
		return e.Detail
	}
	if f, msg, ok := e.FirstField(); ok {
		return f + ": " + msg
	}
	return fallback
}

// Client talks to the OS backend REST API. One instance is shared by all
// handlers; the bearer token is per call, never stored on the client.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// do performs one JSON round trip. token may be empty for the auth
// endpoints. out may be nil when the response body is irrelevant.
func (c *Client) do(ctx context.Context, token, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 400:
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	return nil
}

// decodeAPIError maps a DRF error body, either {"detail": "..."} or
// {"field": ["msg", ...], ...}, onto an APIError.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Fields: map[string]string{}}
	var raw map[string]any
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&raw); err != nil {
		return apiErr
	}
	for field, v := range raw {
		switch val := v.(type) {
		case string:
			if field == "detail" {
				apiErr.Detail = val
			} else {
				apiErr.Fields[field] = val
			}
		case []any:
			if len(val) > 0 {
				if s, ok := val[0].(string); ok {
					apiErr.Fields[field] = s
				}
			}
		}
	}
	return apiErr
}

func (c *Client) get(ctx context.Context, token, path string, out any) error {
	return c.do(ctx, token, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, token, path string, body, out any) error {
	return c.do(ctx, token, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, token, path string, body, out any) error {
	return c.do(ctx, token, http.MethodPut, path, body, out)
}

func (c *Client) patch(ctx context.Context, token, path string, body, out any) error {
	return c.do(ctx, token, http.MethodPatch, path, body, out)
}

func (c *Client) delete(ctx context.Context, token, path string) error {
	return c.do(ctx, token, http.MethodDelete, path, nil, nil)
}

// --- Auth endpoints (no bearer token) ---

// Login exchanges credentials for an access token at the token endpoint.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out struct {
		Access string `json:"access"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.post(ctx, "", "/token/", body, &out); err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", errors.New("api: token response missing access token")
	}
	return out.Access, nil
}

// RegisterUser creates a new operator account.
func (c *Client) RegisterUser(ctx context.Context, in RegisterInput) error {
	return c.post(ctx, "", "/user/register/", in, nil)
}
