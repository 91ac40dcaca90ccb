// Package backend provides the HTTP client for the upstream VPS agent.
// It is the single chokepoint through which every tool handler talks to the
// backend, so error normalization lives here and nowhere else.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds a single backend call when no timeout is configured.
	DefaultTimeout = 30 * time.Second

	// maxErrorBodyBytes limits how much of an error response body is read
	// into an error message.
	maxErrorBodyBytes = 8 << 10
)

// Error is the normalized failure raised for any backend problem: transport
// errors, non-2xx HTTP responses, and application-level failures signaled
// via a `success: false` field in an otherwise successful response.
type Error struct {
	Message string

	cause error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Client calls the upstream VPS agent. A zero number of retries is
// deliberate: the backend is a single stateful remote machine, and retrying
// a command-execution call could duplicate side effects.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a backend client for the given base URL.
// A non-positive timeout falls back to DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Call sends body as a JSON-encoded POST to baseURL+path and returns the
// parsed JSON response object verbatim. A nil body is sent as an empty
// object. No schema is imposed on the response beyond "valid JSON object";
// callers interpret the fields they expect.
func (c *Client) Call(ctx context.Context, path string, body map[string]any) (map[string]any, error) {
	if body == nil {
		body = map[string]any{}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body for %s: %w", path, err)
	}

	u := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request to %s: %w", u, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{
			Message: fmt.Sprintf("request to %s failed: %v", u, err),
			cause:   err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Reading the body is best-effort: a read failure must not mask
		// the status code.
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		msg := fmt.Sprintf("backend returned status %d", resp.StatusCode)
		if text := strings.TrimSpace(string(raw)); text != "" {
			msg = fmt.Sprintf("%s: %s", msg, text)
		}
		return nil, &Error{Message: msg}
	}

	var parsed map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &Error{
			Message: fmt.Sprintf("failed to decode backend response from %s: %v", u, err),
			cause:   err,
		}
	}

	// The backend may signal an application-level failure alongside HTTP 200.
	if success, ok := parsed["success"].(bool); ok && !success {
		msg, _ := parsed["stderr"].(string)
		if msg == "" {
			msg = "backend reported failure"
		}
		return nil, &Error{Message: msg}
	}

	return parsed, nil
}
