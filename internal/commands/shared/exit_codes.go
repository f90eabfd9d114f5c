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
	"errors"
	"fmt"
	"io"
	"os"

	pkgerrors "github.com/tombee/n8n-mcp/pkg/errors"
)

// Exit codes
const (
	ExitSuccess     = 0
	ExitFailure     = 1
	ExitConfigError = 2
	ExitInterrupted = 130
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		if e.Message == "" {
			return e.Cause.Error()
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewFailureError creates an error for a failed command
func NewFailureError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitFailure,
		Message: msg,
		Cause:   cause,
	}
}

// NewConfigError creates an error for missing or invalid configuration
func NewConfigError(cause error) *ExitError {
	return &ExitError{
		Code:    ExitConfigError,
		Message: "invalid configuration",
		Cause:   cause,
	}
}

// NewSilentError exits with code without printing anything. Used when the
// command already reported the outcome.
func NewSilentError(code int) *ExitError {
	return &ExitError{Code: code}
}

// HandleExitError prints err to stderr and exits with its code.
func HandleExitError(err error) {
	if err == nil {
		return
	}
	os.Exit(reportError(os.Stderr, err))
}

// reportError writes err and any suggestion to w and returns the exit code.
func reportError(w io.Writer, err error) int {
	code := ExitFailure

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.Code
		if exitErr.Message == "" && exitErr.Cause == nil {
			return code
		}
	}

	fmt.Fprintln(w, "Error:", err.Error())
	if suggestion := pkgerrors.GetSuggestion(err); suggestion != "" && pkgerrors.IsUserVisible(err) {
		fmt.Fprintf(w, "\nSuggestion: %s\n", suggestion)
	}
	return code
}
