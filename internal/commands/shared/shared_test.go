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

package shared

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/n8n-mcp/internal/config"
	"github.com/tombee/n8n-mcp/pkg/n8n"
)

// isolate points every config source at an empty temp dir.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, key := range []string{
		"N8N_API_URL", "N8N_API_KEY", "N8N_MAX_RETRIES", "N8N_RETRY_DELAY",
		"N8N_TIMEOUT", "N8N_ENABLE_LOGGING", "N8N_BREAKER_THRESHOLD", "N8N_BREAKER_TIMEOUT",
		"LOG_LEVEL", "LOG_FORMAT",
		"LOG_SOURCE", "N8N_MCP_RATE_LIMIT", "N8N_MCP_DEBUG",
	} {
		t.Setenv(key, "")
	}
	t.Cleanup(SetFlagsForTest(false, false, "", filepath.Join(dir, "missing.env")))
	t.Cleanup(SetSecretStoreForTest(nil))
}

func TestReportError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  []string
	}{
		{
			name:     "plain error",
			err:      errors.New("boom"),
			wantCode: ExitFailure,
			wantOut:  []string{"Error: boom"},
		},
		{
			name:     "exit error",
			err:      NewConfigError(errors.New("N8N_API_KEY is required")),
			wantCode: ExitConfigError,
			wantOut:  []string{"Error: invalid configuration: N8N_API_KEY is required"},
		},
		{
			name:     "suggestion from n8n error",
			err:      NewFailureError("health check failed", &n8n.Error{Code: n8n.CodeHTTPError, StatusCode: 401, Message: "unauthorized"}),
			wantCode: ExitFailure,
			wantOut:  []string{"Error: health check failed: HTTP_ERROR (status 401): unauthorized", "Suggestion: Check N8N_API_KEY"},
		},
		{
			name:     "silent",
			err:      NewSilentError(ExitInterrupted),
			wantCode: ExitInterrupted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			code := reportError(&buf, tt.err)

			assert.Equal(t, tt.wantCode, code)
			if len(tt.wantOut) == 0 {
				assert.Empty(t, buf.String())
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestExitErrorUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := NewFailureError("failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed: cause", err.Error())
	assert.Equal(t, "cause", (&ExitError{Cause: cause}).Error())
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		isolate(t)

		_, err := LoadConfig(context.Background())
		require.Error(t, err)

		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, ExitConfigError, exitErr.Code)
	})

	t.Run("from environment", func(t *testing.T) {
		isolate(t)
		t.Setenv("N8N_API_KEY", "key-from-env")
		t.Setenv("N8N_API_URL", "https://n8n.example.com/api/v1")

		cfg, err := LoadConfig(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "key-from-env", cfg.N8N.APIKey)
		assert.Equal(t, config.SourceEnv, cfg.APIKeySource)
		assert.Equal(t, "https://n8n.example.com/api/v1", cfg.N8N.APIURL)
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("configured level", func(t *testing.T) {
		isolate(t)
		cfg := config.Default()
		cfg.Log.Level = "warn"

		logger := NewLogger(cfg)
		assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
		assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
	})

	t.Run("verbose forces debug", func(t *testing.T) {
		isolate(t)
		t.Cleanup(SetFlagsForTest(true, false, "", ""))
		cfg := config.Default()
		cfg.Log.Level = "error"

		logger := NewLogger(cfg)
		assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	})

	t.Run("logging disabled", func(t *testing.T) {
		isolate(t)
		cfg := config.Default()
		cfg.N8N.EnableLogging = false

		logger := NewLogger(cfg)
		assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
	})
}

func TestNewClient(t *testing.T) {
	cfg := config.Default()
	cfg.N8N.APIKey = "key"

	client, err := NewClient(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5678", client.BaseURL())
	assert.Equal(t, 3, client.Policy().MaxRetries)

	cfg.N8N.APIKey = ""
	_, err = NewClient(cfg, nil)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitConfigError, exitErr.Code)
}

func TestUserAgent(t *testing.T) {
	SetVersion("1.2.3", "abc", "today")
	defer SetVersion("dev", "unknown", "unknown")

	assert.Equal(t, "n8n-mcp/1.2.3", UserAgent())
}

func TestIsNonInteractive(t *testing.T) {
	t.Run("explicit", func(t *testing.T) {
		t.Setenv("N8N_MCP_NON_INTERACTIVE", "true")
		assert.True(t, IsNonInteractive())
	})

	t.Run("ci", func(t *testing.T) {
		t.Setenv("N8N_MCP_NON_INTERACTIVE", "")
		t.Setenv("CI", "true")
		assert.True(t, IsNonInteractive())
	})
}

func TestEmitJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EmitJSON(&buf, NewJSONResponse("health", true)))
	assert.JSONEq(t, `{"@version":"1.0","command":"health","success":true}`, buf.String())
}
