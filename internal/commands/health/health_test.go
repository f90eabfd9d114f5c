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

package health

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/n8n-mcp/internal/commands/shared"
)

func setup(t *testing.T, status int) *atomic.Int32 {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("N8N_API_URL", srv.URL)
	t.Setenv("N8N_API_KEY", "test-key")
	t.Setenv("N8N_MAX_RETRIES", "0")
	t.Setenv("N8N_ENABLE_LOGGING", "false")
	t.Cleanup(shared.SetFlagsForTest(false, false, "", filepath.Join(dir, "missing.env")))
	t.Cleanup(shared.SetSecretStoreForTest(nil))
	return &calls
}

func TestHealthy(t *testing.T) {
	calls := setup(t, http.StatusOK)

	var buf bytes.Buffer
	err := run(context.Background(), &buf, false)

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "n8n is reachable")
	assert.Contains(t, buf.String(), "env")
	assert.Equal(t, int32(1), calls.Load())
}

func TestUnhealthy(t *testing.T) {
	setup(t, http.StatusServiceUnavailable)

	var buf bytes.Buffer
	err := run(context.Background(), &buf, false)

	var exitErr *shared.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, shared.ExitFailure, exitErr.Code)
	assert.Contains(t, buf.String(), "n8n is not reachable")
}

func TestHealthJSON(t *testing.T) {
	setup(t, http.StatusOK)

	var buf bytes.Buffer
	require.NoError(t, run(context.Background(), &buf, true))

	var got Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.True(t, got.Healthy)
	assert.True(t, got.Success)
	assert.Equal(t, "health", got.Command)
	assert.Equal(t, "env", got.APIKeySource)
}

func TestMissingConfig(t *testing.T) {
	setup(t, http.StatusOK)
	t.Setenv("N8N_API_KEY", "")

	err := run(context.Background(), &bytes.Buffer{}, false)

	var exitErr *shared.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, shared.ExitConfigError, exitErr.Code)
}
