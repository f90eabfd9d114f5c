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
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// New creates a new HTTP client with the given configuration.
//
// Returns an error if the configuration is invalid.
func New(cfg Config) (*http.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseTransport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			MaxVersion: tls.VersionTLS13,
		},

		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,

		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	var finalTransport http.RoundTripper = baseTransport

	// Layer 1: circuit breaker (innermost, guards the connection pool)
	if cfg.Breaker != nil {
		finalTransport = newBreakerTransport(finalTransport, *cfg.Breaker)
	}

	// Layer 2: logging (sees the final headers and breaker rejections)
	if cfg.Logger != nil {
		finalTransport = newLoggingTransport(finalTransport, cfg.Logger)
	}

	// Layer 3: headers, user agent and trace propagation
	finalTransport = newHeaderTransport(finalTransport, cfg.UserAgent, cfg.Headers)

	return &http.Client{
		Transport: finalTransport,
		Timeout:   cfg.Timeout,
	}, nil
}
