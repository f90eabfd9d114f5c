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

package errors

import (
	"fmt"
)

var (
	_ UserVisibleError = (*ValidationError)(nil)
	_ ErrorClassifier  = (*ValidationError)(nil)
	_ UserVisibleError = (*ConfigError)(nil)
)

// ValidationError represents invalid tool arguments or CLI input.
type ValidationError struct {
	// Field identifies which input field failed validation
	Field string

	// Message is the human-readable error description
	Message string

	// Hint provides actionable guidance for fixing the error
	Hint string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) IsUserVisible() bool { return true }
func (e *ValidationError) UserMessage() string { return e.Error() }
func (e *ValidationError) Suggestion() string  { return e.Hint }
func (e *ValidationError) ErrorType() string   { return "validation" }
func (e *ValidationError) IsRetryable() bool   { return false }

// ConfigError represents a missing or invalid configuration value.
type ConfigError struct {
	// Key is the configuration key, e.g. "N8N_API_KEY"
	Key string

	// Reason explains what's wrong with the configuration
	Reason string

	// Cause is the underlying error (e.g., file read error, parse error)
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

func (e *ConfigError) IsUserVisible() bool { return true }
func (e *ConfigError) UserMessage() string { return e.Error() }

// Suggestion points at the places configuration is read from.
func (e *ConfigError) Suggestion() string {
	if e.Key == "N8N_API_KEY" {
		return "Set N8N_API_KEY in the environment or .env, or run 'n8n-mcp auth set-key'"
	}
	return "Check the config file, .env and N8N_* environment variables"
}
