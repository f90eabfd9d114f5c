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
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Config configures the HTTP client.
type Config struct {
	// Timeout is the per-request timeout.
	// Default: 30s. Must be > 0.
	Timeout time.Duration

	// UserAgent is the User-Agent header value.
	// Required. Must be non-empty.
	UserAgent string

	// Headers are set on every request unless the request already carries
	// a value for the same header.
	Headers map[string]string

	// Logger receives request logs. Nil disables request logging.
	Logger *slog.Logger

	// Breaker enables a circuit breaker in front of the connection pool.
	// Nil disables it.
	Breaker *BreakerConfig
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:   30 * time.Second,
		UserAgent: "n8n-mcp/dev",
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %v", c.Timeout)
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user_agent is required and must be non-empty")
	}

	for name := range c.Headers {
		if name == "" {
			return fmt.Errorf("header names must be non-empty")
		}
		if http.CanonicalHeaderKey(name) == "User-Agent" {
			return fmt.Errorf("set User-Agent through user_agent, not headers")
		}
	}

	if c.Breaker != nil {
		if err := c.Breaker.validate(); err != nil {
			return err
		}
	}

	return nil
}
