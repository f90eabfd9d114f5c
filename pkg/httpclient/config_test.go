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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.NotEmpty(t, cfg.UserAgent)
	assert.Nil(t, cfg.Logger)
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		errText string
	}{
		{
			name: "valid config",
			cfg: Config{
				Timeout:   10 * time.Second,
				UserAgent: "n8n-mcp/test",
				Headers:   map[string]string{"X-N8N-API-KEY": "k"},
			},
		},
		{
			name:    "zero timeout",
			cfg:     Config{UserAgent: "n8n-mcp/test"},
			errText: "timeout must be > 0",
		},
		{
			name:    "negative timeout",
			cfg:     Config{Timeout: -time.Second, UserAgent: "n8n-mcp/test"},
			errText: "timeout must be > 0",
		},
		{
			name:    "empty user agent",
			cfg:     Config{Timeout: time.Second},
			errText: "user_agent is required",
		},
		{
			name: "empty header name",
			cfg: Config{
				Timeout:   time.Second,
				UserAgent: "n8n-mcp/test",
				Headers:   map[string]string{"": "x"},
			},
			errText: "header names must be non-empty",
		},
		{
			name: "user agent in headers",
			cfg: Config{
				Timeout:   time.Second,
				UserAgent: "n8n-mcp/test",
				Headers:   map[string]string{"user-agent": "x"},
			},
			errText: "set User-Agent through user_agent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.errText == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}
