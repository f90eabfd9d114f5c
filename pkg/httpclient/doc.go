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

// Package httpclient builds the *http.Client used to talk to the n8n API.
//
// The client composes transport layers on top of a pooled TLS transport:
//   - Static headers (API key, content type) set on every request unless
//     the caller already set them
//   - User-Agent header injection
//   - Trace context propagation through the global OpenTelemetry propagator
//   - Request logging with sanitized URLs (sensitive params redacted)
//
// The client never retries. Retry policy belongs to the caller so that the
// number of attempts and the delays between them are decided in one place.
//
// # Usage
//
//	cfg := httpclient.DefaultConfig()
//	cfg.Headers = map[string]string{"X-N8N-API-KEY": key}
//	cfg.Logger = logger
//	client, err := httpclient.New(cfg)
//	if err != nil {
//	    return err
//	}
//
// # Security
//
//   - Sensitive query parameters (api_key, token, password, etc.) are redacted from logs
//   - Header values are never logged
//   - TLS 1.2 minimum with certificate validation enabled
//
// # Observability
//
// When Logger is set, requests emit structured logs:
//   - Debug level: successful requests (status < 400)
//   - Warn level: failed requests (status >= 400, transport errors)
//   - Fields: method, url (sanitized), status, duration_ms, request_id, error
package httpclient
