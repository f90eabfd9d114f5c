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
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// recordingSleep captures requested delays without waiting.
type recordingSleep struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *recordingSleep) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

// scriptedServer answers each request with the next scripted handler and
// repeats the last one when the script runs out.
type scriptedServer struct {
	*httptest.Server
	calls    atomic.Int32
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
}

func newScriptedServer(t *testing.T, script ...http.HandlerFunc) *scriptedServer {
	t.Helper()
	require.NotEmpty(t, script)

	s := &scriptedServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(s.calls.Add(1)) - 1

		buf, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.requests = append(s.requests, r.Clone(context.Background()))
		s.bodies = append(s.bodies, string(buf))
		s.mu.Unlock()

		if n >= len(script) {
			n = len(script) - 1
		}
		script[n](w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *scriptedServer) request(i int) *http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[i]
}

func (s *scriptedServer) body(i int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bodies[i]
}

func status(code int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = w.Write([]byte(body))
	}
}

func newTestClient(t *testing.T, baseURL string, maxRetries int, sleeper *recordingSleep) *Client {
	t.Helper()

	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.APIKey = "test-key"
	cfg.MaxRetries = maxRetries
	cfg.RetryDelay = time.Second
	cfg.EnableLogging = false

	client, err := NewClient(cfg, withSleep(sleeper.sleep))
	require.NoError(t, err)
	return client
}
