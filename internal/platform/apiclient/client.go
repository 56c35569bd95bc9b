// Package apiclient is the single chokepoint through which the synthfhir
// client talks to the generation backend.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader is sent with every call so backend logs can be correlated.
const RequestIDHeader = "X-Request-ID"

// Client issues HTTP requests against a fixed base URL. It holds no mutable
// state and is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
	timeout *time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithTimeout bounds every request. Zero means no client-side timeout;
// callers can still cancel through the context. It applies on top of any
// WithHTTPClient, whatever the option order, and never mutates that client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = &d }
}

// New creates a Client for baseURL, e.g. "http://localhost:8000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout != nil {
		hc := *c.http
		hc.Timeout = *c.timeout
		c.http = &hc
	}
	return c
}

// BaseURL returns the backend address the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

type requestOptions struct {
	Method string
	Body   io.Reader
	// Headers override the defaults key by key. A non-nil empty header set
	// drops the default Content-Type so the transport can set its own.
	Headers http.Header
}

func defaultHeaders() http.Header {
	return http.Header{"Content-Type": []string{"application/json"}}
}

func mergeHeaders(override http.Header) http.Header {
	if override != nil && len(override) == 0 {
		return http.Header{}
	}
	h := defaultHeaders()
	for k, vs := range override {
		h[http.CanonicalHeaderKey(k)] = vs
	}
	return h
}

// do performs one round trip and returns the raw 2xx body. Non-2xx replies
// become *APIError; transport failures are wrapped.
func (c *Client) do(ctx context.Context, path string, opts requestOptions) ([]byte, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, opts.Body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range mergeHeaders(opts.Headers) {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	reqID := uuid.New().String()
	req.Header.Set(RequestIDHeader, reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug().
			Str("request_id", reqID).
			Str("method", method).
			Str("path", path).
			Err(err).
			Msg("request failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.logger.Debug().
		Str("request_id", reqID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("request")
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}

// request performs a call and decodes the JSON reply into out.
func (c *Client) request(ctx context.Context, path string, opts requestOptions, out any) error {
	body, err := c.do(ctx, path, opts)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return bytes.NewReader(b), nil
}
