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

// Package log builds the slog loggers used across n8n-mcp. Logs always go
// to stderr by default because stdout carries the MCP protocol.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format represents the log output format.
type Format string

const (
	// FormatJSON outputs logs in JSON format for machine parsing.
	FormatJSON Format = "json"
	// FormatText outputs logs in human-readable text format.
	FormatText Format = "text"
)

// LevelTrace is more verbose than Debug; used for request and response
// payloads.
const LevelTrace = slog.Level(-8)

// Standard field keys for structured logging.
const (
	// ToolKey is the field key for MCP tool names.
	ToolKey = "tool"
	// OperationKey is the field key for n8n client operations.
	OperationKey = "operation"
	// RequestIDKey is the field key for per-call request identifiers.
	RequestIDKey = "request_id"
	// DurationKey is the field key for duration in milliseconds.
	DurationKey = "duration_ms"
	// EventKey is the field key for event types.
	EventKey = "event"
)

// Config holds the logging configuration.
type Config struct {
	// Level sets the minimum log level (trace, debug, info, warn, error).
	// Default: info
	Level string

	// Format sets the output format (json, text).
	// Default: json
	Format Format

	// Output is the writer for log output.
	// Default: os.Stderr
	Output io.Writer

	// AddSource adds source file and line information to logs.
	AddSource bool

	// Disabled discards every record.
	Disabled bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: FormatJSON,
		Output: os.Stderr,
	}
}

// New creates a new structured logger from the given configuration.
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Disabled {
		return Discard()
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:       ParseLevel(cfg.Level),
		AddSource:   cfg.AddSource,
		ReplaceAttr: renameTraceLevel,
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatText:
		handler = slog.NewTextHandler(output, opts)
	default:
		handler = slog.NewJSONHandler(output, opts)
	}

	return slog.New(handler)
}

// renameTraceLevel prints LevelTrace as "TRACE" instead of "DEBUG-4".
func renameTraceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
		a.Value = slog.StringValue("TRACE")
	}
	return a
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel converts a string level to slog.Level. Unknown values map to
// info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithComponent returns a new logger with a component name field.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}

// WithTool returns a new logger tagged with an MCP tool name.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(ToolKey, tool))
}

// Error creates an error attribute.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

// SanitizeAPIKey masks an API key, showing only the last 4 characters.
// Returns "[REDACTED]" if the key is 4 characters or shorter.
func SanitizeAPIKey(key string) string {
	if len(key) <= 4 {
		return "[REDACTED]"
	}
	return "..." + key[len(key)-4:]
}

// Trace logs a message at trace level.
func Trace(ctx context.Context, logger *slog.Logger, msg string, attrs ...slog.Attr) {
	if !logger.Enabled(ctx, LevelTrace) {
		return
	}
	logger.LogAttrs(ctx, LevelTrace, msg, attrs...)
}
