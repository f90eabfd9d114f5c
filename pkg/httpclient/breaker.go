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
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned while the breaker rejects requests.
var ErrCircuitOpen = gobreaker.ErrOpenState

// BreakerConfig configures the circuit breaker. Transport errors and 5xx
// responses count as failures; every other response is a success.
type BreakerConfig struct {
	// ConsecutiveFailures opens the breaker. Must be > 0.
	ConsecutiveFailures uint32

	// OpenTimeout is how long the breaker stays open before a single probe
	// request is let through.
	// Default: 30s
	OpenTimeout time.Duration

	// OnStateChange is called on every transition with the state names
	// ("closed", "half-open", "open").
	OnStateChange func(from, to string)
}

func (c *BreakerConfig) validate() error {
	if c.ConsecutiveFailures == 0 {
		return fmt.Errorf("breaker consecutive failures must be > 0")
	}
	if c.OpenTimeout < 0 {
		return fmt.Errorf("breaker open timeout must be >= 0, got %v", c.OpenTimeout)
	}
	return nil
}

// serverFailure carries a 5xx response through the breaker so it is
// counted as a failure but still returned to the caller.
type serverFailure struct {
	resp *http.Response
}

func (e *serverFailure) Error() string {
	return fmt.Sprintf("server responded %d", e.resp.StatusCode)
}

// breakerTransport short-circuits requests while the upstream is failing.
// One breaker covers every request made through the transport.
type breakerTransport struct {
	base http.RoundTripper
	cb   *gobreaker.CircuitBreaker[*http.Response]
}

func newBreakerTransport(base http.RoundTripper, cfg BreakerConfig) *breakerTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	timeout := cfg.OpenTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        "n8n",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		// A caller giving up says nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	if cfg.OnStateChange != nil {
		settings.OnStateChange = func(_ string, from, to gobreaker.State) {
			cfg.OnStateChange(from.String(), to.String())
		}
	}

	return &breakerTransport{
		base: base,
		cb:   gobreaker.NewCircuitBreaker[*http.Response](settings),
	}
}

// RoundTrip implements http.RoundTripper.
func (t *breakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.cb.Execute(func() (*http.Response, error) {
		resp, err := t.base.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, &serverFailure{resp: resp}
		}
		return resp, nil
	})

	var sf *serverFailure
	if errors.As(err, &sf) {
		return sf.resp, nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("circuit breaker: %w", err)
	}
	return resp, err
}
