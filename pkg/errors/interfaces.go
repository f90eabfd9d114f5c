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

// Package errors defines the error contracts shared by the n8n client, the
// MCP tool handlers and the CLI.
package errors

// UserVisibleError is implemented by errors whose message can be shown to
// an MCP client or CLI user as-is.
type UserVisibleError interface {
	error

	// IsUserVisible returns true if this error should be shown to users.
	IsUserVisible() bool

	// UserMessage returns the message without internal prefixes.
	UserMessage() string

	// Suggestion returns actionable guidance, or "".
	Suggestion() string
}

// ErrorClassifier is implemented by errors that carry a machine-readable
// category and a retry verdict.
type ErrorClassifier interface {
	error

	// ErrorType returns a string identifying the error category,
	// e.g. "HTTP_ERROR", "validation".
	ErrorType() string

	// IsRetryable returns true if the operation may succeed when repeated.
	IsRetryable() bool
}
