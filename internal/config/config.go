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

// Package config loads n8n-mcp settings from defaults, an optional YAML
// file, a .env file, the environment and the OS keychain, in increasing
// order of precedence. A loaded Config is never modified.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tombee/n8n-mcp/internal/secrets"
	pkgerrors "github.com/tombee/n8n-mcp/pkg/errors"
	"github.com/tombee/n8n-mcp/pkg/n8n"
)

// Environment variable names.
const (
	EnvAPIURL        = "N8N_API_URL"
	EnvAPIKey        = "N8N_API_KEY"
	EnvMaxRetries    = "N8N_MAX_RETRIES"
	EnvRetryDelay    = "N8N_RETRY_DELAY"
	EnvTimeout       = "N8N_TIMEOUT"
	EnvEnableLogging = "N8N_ENABLE_LOGGING"
	EnvBreaker       = "N8N_BREAKER_THRESHOLD"
	EnvBreakerWait   = "N8N_BREAKER_TIMEOUT"
	EnvRateLimit     = "N8N_MCP_RATE_LIMIT"
	EnvLogLevel      = "LOG_LEVEL"
	EnvLogFormat     = "LOG_FORMAT"
	EnvLogSource     = "LOG_SOURCE"
)

// Source values for Config.APIKeySource.
const (
	SourceDefault  = "default"
	SourceFile     = "file"
	SourceDotEnv   = ".env"
	SourceEnv      = "env"
	SourceKeychain = "keychain"
)

// Config is the complete n8n-mcp configuration.
type Config struct {
	N8N    N8NConfig    `yaml:"n8n"`
	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`

	// APIKeySource records where the API key came from. Not read from files.
	APIKeySource string `yaml:"-"`
}

// N8NConfig configures the n8n API client.
type N8NConfig struct {
	// APIURL is the n8n base URL.
	// Default: http://localhost:5678
	APIURL string `yaml:"api_url" env:"N8N_API_URL" validate:"required,url"`

	// APIKey authenticates against the n8n API. Required.
	APIKey string `yaml:"api_key" env:"N8N_API_KEY" validate:"required"`

	// MaxRetries is the number of retries after the first attempt.
	// Default: 3
	MaxRetries int `yaml:"max_retries" env:"N8N_MAX_RETRIES" validate:"min=0,max=10"`

	// RetryDelay is the base backoff delay.
	// Default: 1s
	RetryDelay time.Duration `yaml:"retry_delay" env:"N8N_RETRY_DELAY"`

	// Timeout bounds each HTTP attempt.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout" env:"N8N_TIMEOUT"`

	// EnableLogging turns on client request logging.
	// Default: true
	EnableLogging bool `yaml:"enable_logging" env:"N8N_ENABLE_LOGGING"`

	// BreakerThreshold opens the circuit breaker after this many
	// consecutive failed attempts. 0 disables it.
	BreakerThreshold int `yaml:"breaker_threshold" env:"N8N_BREAKER_THRESHOLD" validate:"min=0"`

	// BreakerTimeout is how long an open breaker waits before probing.
	// Default: 30s
	BreakerTimeout time.Duration `yaml:"breaker_timeout" env:"N8N_BREAKER_TIMEOUT"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level     string `yaml:"level" env:"LOG_LEVEL" validate:"oneof=trace debug info warn warning error"`
	Format    string `yaml:"format" env:"LOG_FORMAT" validate:"oneof=json text"`
	AddSource bool   `yaml:"add_source" env:"LOG_SOURCE"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	// RateLimit is the number of tool calls allowed per minute. 0 disables
	// rate limiting.
	// Default: 100
	RateLimit int `yaml:"rate_limit" env:"N8N_MCP_RATE_LIMIT" validate:"min=0"`
}

// Default returns a Config with all defaults applied and no API key.
func Default() *Config {
	return &Config{
		N8N: N8NConfig{
			APIURL:         "http://localhost:5678",
			MaxRetries:     3,
			RetryDelay:     time.Second,
			Timeout:        30 * time.Second,
			EnableLogging:  true,
			BreakerTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Server: ServerConfig{
			RateLimit: 100,
		},
		APIKeySource: SourceDefault,
	}
}

// LoadOptions controls where Load reads from.
type LoadOptions struct {
	// ConfigPath is an explicit YAML file. It must exist. When empty, the
	// default path is used if a file exists there.
	ConfigPath string

	// EnvFile is a dotenv file. Missing files are ignored.
	// Default: .env
	EnvFile string

	// Secrets is consulted for the API key when no other source set it.
	Secrets secrets.Store

	// LookupEnv reads the environment.
	// Default: os.LookupEnv
	LookupEnv func(string) (string, bool)
}

// Load builds a validated Config.
func Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg := Default()

	path, explicit := opts.ConfigPath, opts.ConfigPath != ""
	if !explicit {
		if p, err := DefaultConfigPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		if err := cfg.loadFromFile(path, explicit); err != nil {
			return nil, &pkgerrors.ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", path),
				Cause:  err,
			}
		}
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	dotenv, err := readDotEnv(envFile)
	if err != nil {
		return nil, &pkgerrors.ConfigError{
			Key:    "env_file",
			Reason: fmt.Sprintf("failed to read %s", envFile),
			Cause:  err,
		}
	}

	lookupEnv := opts.LookupEnv
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	lookup := func(key string) (string, string, bool) {
		if v, ok := lookupEnv(key); ok && v != "" {
			return v, SourceEnv, true
		}
		if v, ok := dotenv[key]; ok && v != "" {
			return v, SourceDotEnv, true
		}
		return "", "", false
	}

	if err := cfg.loadFromEnv(lookup); err != nil {
		return nil, err
	}

	if cfg.N8N.APIKey == "" {
		key, err := secrets.Lookup(ctx, opts.Secrets, secrets.APIKeyName)
		if err != nil {
			return nil, &pkgerrors.ConfigError{
				Key:    EnvAPIKey,
				Reason: "failed to read API key from keychain",
				Cause:  err,
			}
		}
		if key != "" {
			cfg.N8N.APIKey = key
			cfg.APIKeySource = SourceKeychain
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFromFile(path string, required bool) error {
	path, err := expandHome(path)
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	if c.N8N.APIKey != "" {
		c.APIKeySource = SourceFile
	}
	return nil
}

func readDotEnv(path string) (map[string]string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	return godotenv.Read(path)
}

// loadFromEnv applies environment overrides. Malformed values are errors.
func (c *Config) loadFromEnv(lookup func(string) (string, string, bool)) error {
	var errs []error
	bad := func(key, val, want string) {
		errs = append(errs, &pkgerrors.ConfigError{
			Key:    key,
			Reason: fmt.Sprintf("%s, got %q", want, val),
		})
	}

	if val, _, ok := lookup(EnvAPIURL); ok {
		c.N8N.APIURL = val
	}
	if val, src, ok := lookup(EnvAPIKey); ok {
		c.N8N.APIKey = val
		c.APIKeySource = src
	}
	if val, _, ok := lookup(EnvMaxRetries); ok {
		n, err := strconv.Atoi(val)
		if err != nil {
			bad(EnvMaxRetries, val, "must be an integer")
		} else {
			c.N8N.MaxRetries = n
		}
	}
	if val, _, ok := lookup(EnvRetryDelay); ok {
		d, err := parseMillisOrDuration(val)
		if err != nil {
			bad(EnvRetryDelay, val, "must be milliseconds or a duration like 500ms")
		} else {
			c.N8N.RetryDelay = d
		}
	}
	if val, _, ok := lookup(EnvTimeout); ok {
		d, err := parseMillisOrDuration(val)
		if err != nil {
			bad(EnvTimeout, val, "must be milliseconds or a duration like 30s")
		} else {
			c.N8N.Timeout = d
		}
	}
	if val, _, ok := lookup(EnvEnableLogging); ok {
		b, err := strconv.ParseBool(val)
		if err != nil {
			bad(EnvEnableLogging, val, "must be true or false")
		} else {
			c.N8N.EnableLogging = b
		}
	}
	if val, _, ok := lookup(EnvBreaker); ok {
		n, err := strconv.Atoi(val)
		if err != nil {
			bad(EnvBreaker, val, "must be an integer")
		} else {
			c.N8N.BreakerThreshold = n
		}
	}
	if val, _, ok := lookup(EnvBreakerWait); ok {
		d, err := parseMillisOrDuration(val)
		if err != nil {
			bad(EnvBreakerWait, val, "must be milliseconds or a duration like 30s")
		} else {
			c.N8N.BreakerTimeout = d
		}
	}
	if val, _, ok := lookup(EnvRateLimit); ok {
		n, err := strconv.Atoi(val)
		if err != nil {
			bad(EnvRateLimit, val, "must be an integer")
		} else {
			c.Server.RateLimit = n
		}
	}
	if val, _, ok := lookup(EnvLogLevel); ok {
		c.Log.Level = strings.ToLower(val)
	}
	if val, _, ok := lookup(EnvLogFormat); ok {
		c.Log.Format = strings.ToLower(val)
	}
	if val, _, ok := lookup(EnvLogSource); ok {
		c.Log.AddSource = val == "1" || strings.EqualFold(val, "true")
	}

	return errors.Join(errs...)
}

// parseMillisOrDuration accepts a bare integer (milliseconds) or a Go
// duration string.
func parseMillisOrDuration(val string) (time.Duration, error) {
	if ms, err := strconv.Atoi(val); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(val)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("env"); name != "" {
			return name
		}
		return fld.Name
	})
	return v
}

// Validate checks that the configuration is usable. Every problem is
// reported as a *errors.ConfigError keyed by its environment variable.
func (c *Config) Validate() error {
	var errs []error
	flagged := map[string]bool{}
	add := func(key, reason string) {
		flagged[key] = true
		errs = append(errs, &pkgerrors.ConfigError{Key: key, Reason: reason})
	}

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			add(fe.Field(), describe(fe))
		}
	}

	if u, err := url.Parse(c.N8N.APIURL); err == nil && !flagged[EnvAPIURL] {
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			add(EnvAPIURL, "must be an http or https URL with a host")
		}
	}
	if c.N8N.RetryDelay <= 0 {
		add(EnvRetryDelay, "must be greater than zero")
	}
	if c.N8N.Timeout <= 0 {
		add(EnvTimeout, "must be greater than zero")
	}
	if c.N8N.BreakerThreshold > 0 && c.N8N.BreakerTimeout <= 0 {
		add(EnvBreakerWait, "must be greater than zero when the breaker is enabled")
	}

	return errors.Join(errs...)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// ClientConfig converts the n8n section into a client configuration.
func (c *Config) ClientConfig(logger *slog.Logger, userAgent string) n8n.Config {
	return n8n.Config{
		BaseURL:          c.N8N.APIURL,
		APIKey:           c.N8N.APIKey,
		MaxRetries:       c.N8N.MaxRetries,
		RetryDelay:       c.N8N.RetryDelay,
		Timeout:          c.N8N.Timeout,
		EnableLogging:    c.N8N.EnableLogging,
		Logger:           logger,
		UserAgent:        userAgent,
		BreakerThreshold: c.N8N.BreakerThreshold,
		BreakerTimeout:   c.N8N.BreakerTimeout,
	}
}
