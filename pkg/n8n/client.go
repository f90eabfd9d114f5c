// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/tombee/n8n-mcp/pkg/httpclient"
)

const (
	// APIKeyHeader carries the n8n API key.
	APIKeyHeader = "X-N8N-API-KEY"

	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 32 << 20
)

// Config configures a Client.
type Config struct {
	// BaseURL is the URL every operation path is appended to.
	// Default: http://localhost:5678
	BaseURL string

	// APIKey is sent in the X-N8N-API-KEY header. Required.
	APIKey string

	// MaxRetries is the number of retries after the first attempt.
	// Default: 3. At most MaxRetriesLimit.
	MaxRetries int

	// RetryDelay is the wait before the first retry; later waits double.
	// Default: 1s
	RetryDelay time.Duration

	// Timeout bounds each HTTP attempt.
	// Default: 30s
	Timeout time.Duration

	// EnableLogging turns on per-request logging in the HTTP layer.
	EnableLogging bool

	// Logger receives attempt and retry logs. Nil discards them.
	Logger *slog.Logger

	// UserAgent is sent with every request.
	UserAgent string

	// BreakerThreshold opens a circuit breaker after this many consecutive
	// transport failures or 5xx responses. While open, attempts fail as
	// NETWORK_ERROR without reaching n8n. 0 disables the breaker.
	BreakerThreshold int

	// BreakerTimeout is how long the breaker stays open before probing.
	// Default: 30s
	BreakerTimeout time.Duration
}

// DefaultConfig returns a Config with the documented defaults. APIKey is
// left empty.
func DefaultConfig() Config {
	return Config{
		BaseURL:        "http://localhost:5678",
		MaxRetries:     3,
		RetryDelay:     time.Second,
		Timeout:        30 * time.Second,
		EnableLogging:  true,
		UserAgent:      "n8n-mcp/dev",
		BreakerTimeout: 30 * time.Second,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base url must be an absolute http(s) URL, got %q", httpclient.RedactURL(c.BaseURL))
	}
	if c.APIKey == "" {
		return fmt.Errorf("api key is required")
	}
	if c.MaxRetries < 0 || c.MaxRetries > MaxRetriesLimit {
		return fmt.Errorf("max retries must be between 0 and %d, got %d", MaxRetriesLimit, c.MaxRetries)
	}
	if c.RetryDelay <= 0 {
		return fmt.Errorf("retry delay must be > 0, got %v", c.RetryDelay)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %v", c.Timeout)
	}
	if c.BreakerThreshold < 0 {
		return fmt.Errorf("breaker threshold must be >= 0, got %d", c.BreakerThreshold)
	}
	return nil
}

// Option customizes a Client.
type Option func(*Client)

// WithMetrics records attempts, retries and failures.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.exec.metrics = m
	}
}

// WithTracer wraps every call in a client span.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		if tracer != nil {
			c.exec.tracer = tracer
		}
	}
}

// withSleep replaces the wait between attempts. Used by tests.
func withSleep(fn sleepFunc) Option {
	return func(c *Client) {
		c.exec.sleep = fn
	}
}

// Client talks to the n8n REST API. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	exec    *executor
	logger  *slog.Logger
}

// NewClient creates a client from cfg.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid n8n client config: %w", err)
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid n8n client config: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("component", "n8n")

	hcfg := httpclient.DefaultConfig()
	hcfg.Timeout = cfg.Timeout
	if cfg.UserAgent != "" {
		hcfg.UserAgent = cfg.UserAgent
	}
	hcfg.Headers = map[string]string{
		APIKeyHeader:   cfg.APIKey,
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	if cfg.EnableLogging {
		hcfg.Logger = logger
	}
	if cfg.BreakerThreshold > 0 {
		hcfg.Breaker = &httpclient.BreakerConfig{
			ConsecutiveFailures: uint32(cfg.BreakerThreshold),
			OpenTimeout:         cfg.BreakerTimeout,
			OnStateChange: func(from, to string) {
				logger.Warn("n8n circuit breaker state changed", "from", from, "to", to)
			},
		}
	}

	hc, err := httpclient.New(hcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	c := &Client{
		baseURL: base,
		http:    hc,
		logger:  logger,
		exec: &executor{
			policy: RetryPolicy{
				MaxRetries: cfg.MaxRetries,
				BaseDelay:  cfg.RetryDelay,
			},
			logger: logger,
			sleep:  sleepContext,
			tracer: noop.NewTracerProvider().Tracer("n8n"),
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BaseURL returns the configured n8n root URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Policy returns the retry policy the client applies to every call.
func (c *Client) Policy() RetryPolicy {
	return c.exec.policy
}

// request is one logical API call.
type request struct {
	operation string
	method    string
	// path is appended to the base URL path. Segments must already be
	// escaped.
	path    string
	query   url.Values
	body    any
	headers map[string]string
}

// validMethods are the verbs the client will send.
var validMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// do runs req through the executor and decodes the response into T. One
// request ID is generated per call and reused on every attempt.
func do[T any](ctx context.Context, c *Client, req request) (T, error) {
	requestID := uuid.NewString()

	return execute(ctx, c.exec, call{
		operation: req.operation,
		method:    strings.ToUpper(req.method),
		path:      req.path,
		requestID: requestID,
	}, func(ctx context.Context) (T, error) {
		var out T

		method := strings.ToUpper(req.method)
		if !validMethods[method] {
			return out, newInvalidMethodError(strings.ToLower(req.method))
		}

		body, err := c.roundTrip(ctx, method, req, requestID)
		if err != nil {
			return out, err
		}

		if err := decodeBody(body, &out); err != nil {
			return out, newUnknownError(err)
		}
		return out, nil
	})
}

// roundTrip performs one HTTP attempt and returns the response body for
// 2xx/3xx responses.
func (c *Client) roundTrip(ctx context.Context, method string, req request, requestID string) ([]byte, error) {
	var bodyReader io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, newUnknownError(fmt.Errorf("failed to encode request body: %w", err))
		}
		bodyReader = bytes.NewReader(payload)
	}

	target := c.resolve(req.path, req.query)
	httpReq, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, newUnknownError(err)
	}

	httpReq.Header.Set(httpclient.RequestIDHeader, requestID)
	for name, value := range req.headers {
		httpReq.Header.Set(name, value)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, newNetworkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, newNetworkError(err)
	}

	if resp.StatusCode >= 400 {
		return nil, newHTTPError(resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) resolve(escapedPath string, query url.Values) string {
	u := *c.baseURL
	u.RawPath = strings.TrimRight(c.baseURL.EscapedPath(), "/") + escapedPath
	if p, err := url.PathUnescape(u.RawPath); err == nil {
		u.Path = p
	}
	u.RawQuery = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// decodeBody decodes a JSON body into out. An empty body leaves out at its
// zero value. When out is *any, non-JSON bodies decode to the raw string.
func decodeBody(body []byte, out any) error {
	if _, skip := out.(*struct{}); skip {
		return nil
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}

	if raw, ok := out.(*any); ok {
		var v any
		if err := json.Unmarshal(trimmed, &v); err != nil {
			*raw = string(body)
			return nil
		}
		*raw = v
		return nil
	}

	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
