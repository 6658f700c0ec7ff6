package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"luminahealth.io/client-go/internal/metrics"
)

// TokenSource supplies bearer credentials for authenticated calls. The auth
// store implements it; Refresh must coalesce concurrent callers so only one
// refresh is ever in flight.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Refresh(ctx context.Context) error
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	Tokens    TokenSource
	UserAgent string
}

// Client is the HTTP transport every entity binding goes through.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	userAgent  string
}

// New creates a Client from options, applying the default timeout when none
// is given.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "lumina-client-go"
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		tokens:     opts.Tokens,
		userAgent:  userAgent,
	}
}

// Timeout returns the transport timeout, used to bound detached cache
// fetches.
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

// SetTokenSource attaches the token source after construction. The auth
// store and the client reference each other, so one of them has to be
// wired second.
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.tokens = tokens
}

// do issues one request and returns the normalized payload bytes. On a 401
// with a token source attached it attempts a single silent refresh and
// retries once before surfacing the failure.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) (json.RawMessage, error) {
	payload, status, err := c.doOnce(ctx, method, path, query, body)
	if err == nil || c.tokens == nil || !IsUnauthorized(err) {
		return payload, err
	}
	if token, tokenErr := c.tokens.Token(ctx); tokenErr != nil || token == "" {
		// The call went out anonymously; a refresh cannot help it.
		return payload, err
	}

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Msg("Authenticated call rejected, attempting silent token refresh")

	if refreshErr := c.tokens.Refresh(ctx); refreshErr != nil {
		return nil, fmt.Errorf("token refresh after 401 failed: %w", refreshErr)
	}
	payload, _, err = c.doOnce(ctx, method, path, query, body)
	return payload, err
}

func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, body interface{}) (json.RawMessage, int, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to obtain access token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	fetchStart := time.Now()
	resp, err := c.httpClient.Do(req)
	fetchDuration := time.Since(fetchStart)

	if err != nil {
		metrics.RecordAPIRequest(method, path, "error")
		metrics.RecordAPIRequestDuration(method, path, fetchDuration)
		if ctx.Err() != nil {
			// Benign cancellation: the caller abandoned the view.
			return nil, 0, fmt.Errorf("request abandoned: %w", ctx.Err())
		}
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	metrics.RecordAPIRequest(method, path, statusClass(resp.StatusCode))
	metrics.RecordAPIRequestDuration(method, path, fetchDuration)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, errorFromBody(resp.StatusCode, raw)
	}
	if len(raw) == 0 {
		return nil, resp.StatusCode, nil
	}

	payload, err := decodePayload(resp.StatusCode, raw)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return payload, resp.StatusCode, nil
}

// errorFromBody builds an APIError carrying the server message when the
// error body is parseable.
func errorFromBody(status int, body []byte) error {
	var probe envelopeProbe
	if err := json.Unmarshal(body, &probe); err == nil && probe.Error != nil {
		return &APIError{Status: status, Code: probe.Error.Code, Message: probe.Error.Message}
	}
	var bare struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &bare); err == nil && bare.Error != "" {
		return &APIError{Status: status, Message: bare.Error}
	}
	return &APIError{Status: status, Message: http.StatusText(status)}
}

func statusClass(code int) string {
	if code >= 200 && code <= 299 {
		return "success"
	}
	return "error"
}
