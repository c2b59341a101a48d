// Package client wraps the protect/reveal HTTP API behind a typed client.
//
// The client's contract is lopsided: PostJSON never returns an error. HTTP
// error statuses (4xx/5xx) come back as ordinary Responses so
// callers can inspect the error body, and transport failures come back as a
// Response with StatusCode 0 carrying the error text. The benchmark loop
// treats every outcome as data.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client issues JSON POST requests to the four protect/reveal endpoints.
// A single underlying http.Client is reused across calls so connections are
// kept alive; all access is from one goroutine.
type Client struct {
	baseURL        string
	protectURL     string
	revealURL      string
	protectBulkURL string
	revealBulkURL  string

	policy     string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a client for the API at host:port. Endpoint URLs are computed
// once here. The policy name is attached to every request payload.
func New(host string, port int, policy string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := fmt.Sprintf("http://%s:%d", host, port)
	return &Client{
		baseURL:        base,
		protectURL:     base + "/v1/protect",
		revealURL:      base + "/v1/reveal",
		protectBulkURL: base + "/v1/protectbulk",
		revealBulkURL:  base + "/v1/revealbulk",
		policy:         policy,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Policy returns the protection policy name this client was built with.
func (c *Client) Policy() string {
	return c.policy
}

// PostJSON sends payload to url and normalizes the outcome into a Response.
// It never returns an error: transport failures become a Response with
// StatusCode 0 and the error text as body; non-2xx statuses are returned
// like any other response with the body JSON-decoded when possible.
func (c *Client) PostJSON(ctx context.Context, url string, payload map[string]any) Response {
	body, err := json.Marshal(payload)
	if err != nil {
		// Payloads are built in this package from strings and slices, so
		// this only fires on a programming error.
		return Response{Body: fmt.Sprintf("marshal payload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Response{Body: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("sending request", zap.String("url", url), zap.Int("payload_bytes", len(body)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("transport failure", zap.String("url", url), zap.Error(err))
		return Response{Body: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{StatusCode: resp.StatusCode, Body: fmt.Sprintf("read body: %v", err)}
	}

	c.logger.Debug("received response",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Int("body_bytes", len(raw)))

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		// Keep the raw text so error bodies are still inspectable.
		return Response{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return Response{StatusCode: resp.StatusCode, Body: decoded}
}

// Protect sends one value through /v1/protect.
func (c *Client) Protect(ctx context.Context, data string) Response {
	payload := map[string]any{
		"protection_policy_name": c.policy,
		"data":                   data,
	}
	return c.PostJSON(ctx, c.protectURL, payload)
}

// Reveal sends one token through /v1/reveal. An empty token is sent as-is;
// the caller may want to exercise the endpoint's error handling.
func (c *Client) Reveal(ctx context.Context, token string) Response {
	payload := map[string]any{
		"protection_policy_name": c.policy,
		"protected_data":         token,
	}
	return c.PostJSON(ctx, c.revealURL, payload)
}

// ProtectBulk sends a batch of values through /v1/protectbulk. The batch is
// carried under both "data" and "data_array" because observed server
// implementations disagree on the key.
func (c *Client) ProtectBulk(ctx context.Context, items []string) Response {
	payload := map[string]any{
		"protection_policy_name": c.policy,
		"data":                   items,
		"data_array":             items,
	}
	return c.PostJSON(ctx, c.protectBulkURL, payload)
}

// RevealBulkOption adjusts a bulk reveal request.
type RevealBulkOption func(payload map[string]any)

// WithUsername attaches a username field to the bulk reveal payload; some
// server variants require it.
func WithUsername(username string) RevealBulkOption {
	return func(payload map[string]any) {
		if username != "" {
			payload["username"] = username
		}
	}
}

// RevealBulk sends a batch of tokens through /v1/revealbulk. Three
// compatibility keys cover the known server variants: the simple list under
// "protected_data" and "protected_array", and the wrapped form under
// "protected_data_array".
func (c *Client) RevealBulk(ctx context.Context, tokens []string, opts ...RevealBulkOption) Response {
	wrapped := make([]map[string]any, 0, len(tokens))
	for _, tok := range tokens {
		wrapped = append(wrapped, map[string]any{"protected_data": tok})
	}

	payload := map[string]any{
		"protection_policy_name": c.policy,
		"protected_data":         tokens,
		"protected_array":        tokens,
		"protected_data_array":   wrapped,
	}
	for _, opt := range opts {
		opt(payload)
	}
	return c.PostJSON(ctx, c.revealBulkURL, payload)
}
