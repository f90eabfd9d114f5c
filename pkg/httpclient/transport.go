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

package httpclient

import (
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// RequestIDHeader carries the per-call request identifier.
const RequestIDHeader = "X-Request-ID"

// headerTransport sets static headers and the User-Agent, and injects the
// trace context of the request.
type headerTransport struct {
	base      http.RoundTripper
	userAgent string
	headers   map[string]string
}

func newHeaderTransport(base http.RoundTripper, userAgent string, headers map[string]string) *headerTransport {
	if base == nil {
		base = http.DefaultTransport
	}

	copied := make(map[string]string, len(headers))
	for k, v := range headers {
		copied[k] = v
	}

	return &headerTransport{
		base:      base,
		userAgent: userAgent,
		headers:   copied,
	}
}

// RoundTrip implements http.RoundTripper. Headers already present on the
// request win over the static ones.
func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request.
	req = req.Clone(req.Context())

	for name, value := range t.headers {
		if req.Header.Get(name) == "" {
			req.Header.Set(name, value)
		}
	}

	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	otel.GetTextMapPropagator().Inject(req.Context(), propagation.HeaderCarrier(req.Header))

	return t.base.RoundTrip(req)
}

// loggingTransport logs every request with a sanitized URL and its duration.
type loggingTransport struct {
	base   http.RoundTripper
	logger *slog.Logger
}

func newLoggingTransport(base http.RoundTripper, logger *slog.Logger) *loggingTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &loggingTransport{
		base:   base,
		logger: logger,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := t.base.RoundTrip(req)
	duration := time.Since(start).Milliseconds()

	logURL := sanitizeURL(req.URL)
	requestID := req.Header.Get(RequestIDHeader)

	if err != nil {
		t.logger.WarnContext(req.Context(), "http request failed",
			"method", req.Method,
			"url", logURL,
			"request_id", requestID,
			"duration_ms", duration,
			"error", err.Error(),
		)
		return resp, err
	}

	level := slog.LevelDebug
	if resp.StatusCode >= 400 {
		level = slog.LevelWarn
	}
	t.logger.Log(req.Context(), level, "http request",
		"method", req.Method,
		"url", logURL,
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration_ms", duration,
	)

	return resp, nil
}
