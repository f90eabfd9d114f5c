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

// Package tracing sets up OpenTelemetry for n8n-mcp: a tracer provider for
// per-call spans and a meter provider bridged to Prometheus.
package tracing

import (
	"fmt"
	"os"
	"strings"
)

// Exporter names.
const (
	ExporterConsole  = "console"
	ExporterOTLPHTTP = "otlp-http"
	ExporterOTLPGRPC = "otlp-grpc"
)

// Config configures the tracer provider.
type Config struct {
	// ServiceName is reported as service.name.
	ServiceName string

	// ServiceVersion is reported as service.version.
	ServiceVersion string

	// Exporter selects where spans go.
	// Default: console (stderr)
	Exporter string

	// Endpoint is the OTLP collector host:port.
	Endpoint string

	// Insecure disables TLS for OTLP exporters.
	Insecure bool

	// Headers are sent with every OTLP export.
	Headers map[string]string

	// SampleRate is the fraction of root spans kept, 0..1.
	// Default: 1
	SampleRate float64
}

// DefaultConfig returns a console-exporting configuration.
func DefaultConfig(version string) Config {
	return Config{
		ServiceName:    "n8n-mcp",
		ServiceVersion: version,
		Exporter:       ExporterConsole,
		SampleRate:     1,
	}
}

// FromEnv applies the standard OTEL_EXPORTER_OTLP_* variables to cfg.
// Setting an endpoint switches to an OTLP exporter; the protocol picks
// gRPC or HTTP.
func FromEnv(cfg Config) Config {
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT")
	if endpoint == "" {
		endpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}
	if endpoint != "" {
		switch {
		case strings.HasPrefix(endpoint, "http://"):
			cfg.Insecure = true
			endpoint = strings.TrimPrefix(endpoint, "http://")
		case strings.HasPrefix(endpoint, "https://"):
			endpoint = strings.TrimPrefix(endpoint, "https://")
		}
		cfg.Endpoint = strings.TrimRight(endpoint, "/")
		cfg.Exporter = ExporterOTLPHTTP
		if os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL") == "grpc" {
			cfg.Exporter = ExporterOTLPGRPC
		}
	}

	if raw := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); raw != "" {
		cfg.Headers = parseHeaders(raw)
	}
	if os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true" {
		cfg.Insecure = true
	}
	return cfg
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	switch c.Exporter {
	case ExporterConsole:
	case ExporterOTLPHTTP, ExporterOTLPGRPC:
		if c.Endpoint == "" {
			return fmt.Errorf("exporter %s requires an endpoint", c.Exporter)
		}
	default:
		return fmt.Errorf("unknown trace exporter %q", c.Exporter)
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("sample rate must be between 0 and 1, got %v", c.SampleRate)
	}
	return nil
}

// parseHeaders parses the "k1=v1,k2=v2" form used by OTEL_EXPORTER_OTLP_HEADERS.
func parseHeaders(raw string) map[string]string {
	headers := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			continue
		}
		headers[k] = strings.TrimSpace(v)
	}
	return headers
}
