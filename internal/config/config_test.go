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

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/tombee/n8n-mcp/internal/secrets"
	pkgerrors "github.com/tombee/n8n-mcp/pkg/errors"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

// isolate points the default config path and .env at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "http://localhost:5678", cfg.N8N.APIURL)
	assert.Equal(t, 3, cfg.N8N.MaxRetries)
	assert.Equal(t, time.Second, cfg.N8N.RetryDelay)
	assert.Equal(t, 30*time.Second, cfg.N8N.Timeout)
	assert.True(t, cfg.N8N.EnableLogging)
	assert.Equal(t, 100, cfg.Server.RateLimit)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOnly(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(context.Background(), LoadOptions{
		EnvFile: filepath.Join(dir, ".env"),
		LookupEnv: envMap(map[string]string{
			EnvAPIURL:        "https://n8n.example.com/api/v1",
			EnvAPIKey:        "env-key",
			EnvMaxRetries:    "5",
			EnvRetryDelay:    "250",
			EnvTimeout:       "10s",
			EnvEnableLogging: "false",
			EnvRateLimit:     "0",
			EnvLogLevel:      "DEBUG",
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, "https://n8n.example.com/api/v1", cfg.N8N.APIURL)
	assert.Equal(t, "env-key", cfg.N8N.APIKey)
	assert.Equal(t, SourceEnv, cfg.APIKeySource)
	assert.Equal(t, 5, cfg.N8N.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.N8N.RetryDelay)
	assert.Equal(t, 10*time.Second, cfg.N8N.Timeout)
	assert.False(t, cfg.N8N.EnableLogging)
	assert.Equal(t, 0, cfg.Server.RateLimit)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Precedence(t *testing.T) {
	dir := isolate(t)

	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
n8n:
  api_url: http://from-file:5678
  api_key: file-key
  max_retries: 1
  retry_delay: 2s
server:
  rate_limit: 10
`), 0o600))

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("N8N_API_URL=http://from-dotenv:5678\nN8N_MAX_RETRIES=2\n"), 0o600))

	cfg, err := Load(context.Background(), LoadOptions{
		ConfigPath: configPath,
		EnvFile:    envFile,
		LookupEnv:  envMap(map[string]string{EnvMaxRetries: "4"}),
	})
	require.NoError(t, err)

	assert.Equal(t, "http://from-dotenv:5678", cfg.N8N.APIURL, ".env overrides file")
	assert.Equal(t, 4, cfg.N8N.MaxRetries, "environment overrides .env")
	assert.Equal(t, 2*time.Second, cfg.N8N.RetryDelay, "file overrides defaults")
	assert.Equal(t, 10, cfg.Server.RateLimit)
	assert.Equal(t, "file-key", cfg.N8N.APIKey)
	assert.Equal(t, SourceFile, cfg.APIKeySource)
	assert.Equal(t, 30*time.Second, cfg.N8N.Timeout, "unset keys keep defaults")
}

func TestLoad_DefaultConfigPath(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "n8n-mcp"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "n8n-mcp", "config.yaml"), []byte("n8n:\n  api_key: xdg-key\n"), 0o600))

	cfg, err := Load(context.Background(), LoadOptions{
		EnvFile:   filepath.Join(dir, ".env"),
		LookupEnv: envMap(nil),
	})
	require.NoError(t, err)
	assert.Equal(t, "xdg-key", cfg.N8N.APIKey)
}

func TestLoad_ExplicitConfigMustExist(t *testing.T) {
	dir := isolate(t)

	_, err := Load(context.Background(), LoadOptions{
		ConfigPath: filepath.Join(dir, "missing.yaml"),
		LookupEnv:  envMap(map[string]string{EnvAPIKey: "k"}),
	})

	var cfgErr *pkgerrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "config_file", cfgErr.Key)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_KeychainFallback(t *testing.T) {
	dir := isolate(t)
	keyring.MockInit()

	store := secrets.NewKeychain("")
	require.NoError(t, store.Set(context.Background(), secrets.APIKeyName, "keychain-key"))

	cfg, err := Load(context.Background(), LoadOptions{
		EnvFile:   filepath.Join(dir, ".env"),
		Secrets:   store,
		LookupEnv: envMap(nil),
	})
	require.NoError(t, err)
	assert.Equal(t, "keychain-key", cfg.N8N.APIKey)
	assert.Equal(t, SourceKeychain, cfg.APIKeySource)

	cfg, err = Load(context.Background(), LoadOptions{
		EnvFile:   filepath.Join(dir, ".env"),
		Secrets:   store,
		LookupEnv: envMap(map[string]string{EnvAPIKey: "env-key"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.N8N.APIKey, "environment wins over keychain")
}

func TestLoad_MissingAPIKey(t *testing.T) {
	dir := isolate(t)

	_, err := Load(context.Background(), LoadOptions{
		EnvFile:   filepath.Join(dir, ".env"),
		LookupEnv: envMap(nil),
	})

	var cfgErr *pkgerrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, EnvAPIKey, cfgErr.Key)
	assert.Equal(t, "is required", cfgErr.Reason)
	assert.Contains(t, cfgErr.Suggestion(), "auth set-key")
}

func TestLoad_MalformedEnv(t *testing.T) {
	dir := isolate(t)

	_, err := Load(context.Background(), LoadOptions{
		EnvFile: filepath.Join(dir, ".env"),
		LookupEnv: envMap(map[string]string{
			EnvAPIKey:     "k",
			EnvMaxRetries: "three",
			EnvRetryDelay: "soon",
			EnvBreaker:    "many",
		}),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvMaxRetries)
	assert.Contains(t, err.Error(), EnvRetryDelay)
	assert.Contains(t, err.Error(), EnvBreaker)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.N8N.APIKey = "k"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantKey string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing key", mutate: func(c *Config) { c.N8N.APIKey = "" }, wantKey: EnvAPIKey},
		{name: "not a url", mutate: func(c *Config) { c.N8N.APIURL = "localhost" }, wantKey: EnvAPIURL},
		{name: "ftp url", mutate: func(c *Config) { c.N8N.APIURL = "ftp://files.example.com" }, wantKey: EnvAPIURL},
		{name: "empty url", mutate: func(c *Config) { c.N8N.APIURL = "" }, wantKey: EnvAPIURL},
		{name: "negative retries", mutate: func(c *Config) { c.N8N.MaxRetries = -1 }, wantKey: EnvMaxRetries},
		{name: "too many retries", mutate: func(c *Config) { c.N8N.MaxRetries = 11 }, wantKey: EnvMaxRetries},
		{name: "zero delay", mutate: func(c *Config) { c.N8N.RetryDelay = 0 }, wantKey: EnvRetryDelay},
		{name: "zero timeout", mutate: func(c *Config) { c.N8N.Timeout = 0 }, wantKey: EnvTimeout},
		{name: "negative breaker", mutate: func(c *Config) { c.N8N.BreakerThreshold = -1 }, wantKey: EnvBreaker},
		{name: "breaker without timeout", mutate: func(c *Config) {
			c.N8N.BreakerThreshold = 3
			c.N8N.BreakerTimeout = 0
		}, wantKey: EnvBreakerWait},
		{name: "negative rate limit", mutate: func(c *Config) { c.Server.RateLimit = -5 }, wantKey: EnvRateLimit},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "verbose" }, wantKey: EnvLogLevel},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantKey: EnvLogFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantKey == "" {
				assert.NoError(t, err)
				return
			}

			var cfgErr *pkgerrors.ConfigError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %v", err)
			assert.Equal(t, tt.wantKey, cfgErr.Key)
		})
	}
}

func TestParseMillisOrDuration(t *testing.T) {
	d, err := parseMillisOrDuration("1500")
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, d)

	d, err = parseMillisOrDuration("2s")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)

	_, err = parseMillisOrDuration("later")
	assert.Error(t, err)
}

func TestClientConfig(t *testing.T) {
	cfg := Default()
	cfg.N8N.APIKey = "k"

	cc := cfg.ClientConfig(nil, "n8n-mcp/1.2.3")

	assert.Equal(t, cfg.N8N.APIURL, cc.BaseURL)
	assert.Equal(t, "k", cc.APIKey)
	assert.Equal(t, 3, cc.MaxRetries)
	assert.Equal(t, time.Second, cc.RetryDelay)
	assert.Equal(t, "n8n-mcp/1.2.3", cc.UserAgent)
	assert.Zero(t, cc.BreakerThreshold)
	assert.Equal(t, 30*time.Second, cc.BreakerTimeout)
	require.NoError(t, cc.Validate())
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	dir, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg/n8n-mcp", dir)

	path, err := DefaultConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg/n8n-mcp/config.yaml", path)
}
