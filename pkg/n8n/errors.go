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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/tombee/n8n-mcp/pkg/errors"
)

// Error codes produced by the client.
const (
	// CodeHTTPError is used when the server answered with status >= 400
	// and did not supply its own code.
	CodeHTTPError = "HTTP_ERROR"

	// CodeNetworkError is used when no response was received.
	CodeNetworkError = "NETWORK_ERROR"

	// CodeUnknownError is used for every other failure.
	CodeUnknownError = "UNKNOWN_ERROR"

	// CodeInvalidHTTPMethod is raised before any I/O for an unsupported webhook verb.
	CodeInvalidHTTPMethod = "INVALID_HTTP_METHOD"
)

const (
	networkErrorMessage = "Network error: Unable to connect to n8n"
	unknownErrorMessage = "Unknown error occurred"
)

var (
	_ pkgerrors.UserVisibleError = (*Error)(nil)
	_ pkgerrors.ErrorClassifier  = (*Error)(nil)
)

// Error is the normalized failure returned by every client operation.
type Error struct {
	// Message is the server-supplied message or a fixed description.
	Message string `json:"message"`

	// Code classifies the failure (see the Code constants). Servers may
	// supply their own code for HTTP failures.
	Code string `json:"code"`

	// StatusCode is the HTTP status of the response. Zero when no response
	// was received.
	StatusCode int `json:"statusCode,omitempty"`

	// Details is the decoded response body for HTTP failures, or
	// structured context for local failures.
	Details map[string]any `json:"details,omitempty"`

	// permanent marks locally raised structural errors that can never
	// succeed on retry.
	permanent bool

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying transport or decoding error, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// IsRetryable reports whether the executor may retry the failed attempt.
// Client errors (4xx except 429) and permanent local errors are not retried.
func (e *Error) IsRetryable() bool {
	if e.permanent {
		return false
	}
	if e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != http.StatusTooManyRequests {
		return false
	}
	return true
}

// ErrorType returns the error code.
func (e *Error) ErrorType() string {
	return e.Code
}

// IsUserVisible always returns true; the message never carries credentials.
func (e *Error) IsUserVisible() bool {
	return true
}

// UserMessage returns the message without the code prefix.
func (e *Error) UserMessage() string {
	return e.Message
}

// Suggestion returns guidance for common failures.
func (e *Error) Suggestion() string {
	switch {
	case e.Code == CodeNetworkError:
		return "Check that n8n is running and that N8N_API_URL points at it"
	case e.Code == CodeInvalidHTTPMethod:
		return "Use one of GET, POST, PUT, PATCH or DELETE"
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusForbidden:
		return "Check N8N_API_KEY; create a key under Settings > n8n API"
	case e.StatusCode == http.StatusNotFound:
		return "Check the workflow or execution ID"
	case e.StatusCode == http.StatusTooManyRequests:
		return "n8n is rate limiting requests; raise N8N_RETRY_DELAY or retry later"
	}
	return ""
}

// newHTTPError builds an HTTP_ERROR from a response status and body. A JSON
// object body becomes Details and may supply message and code.
func newHTTPError(statusCode int, body []byte) *Error {
	e := &Error{
		Message:    fmt.Sprintf("Request failed with status code %d", statusCode),
		Code:       CodeHTTPError,
		StatusCode: statusCode,
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return e
	}

	var details map[string]any
	if err := json.Unmarshal(trimmed, &details); err != nil {
		e.Details = map[string]any{"body": string(trimmed)}
		return e
	}

	e.Details = details
	if msg, ok := details["message"].(string); ok && msg != "" {
		e.Message = msg
	}
	if code, ok := details["code"].(string); ok && code != "" {
		e.Code = code
	}
	return e
}

// newNetworkError builds a NETWORK_ERROR. The cause is kept for Unwrap only.
func newNetworkError(cause error) *Error {
	return &Error{
		Message: networkErrorMessage,
		Code:    CodeNetworkError,
		cause:   cause,
	}
}

// newUnknownError builds an UNKNOWN_ERROR carrying the cause's message.
func newUnknownError(cause error) *Error {
	msg := unknownErrorMessage
	if cause != nil && cause.Error() != "" {
		msg = cause.Error()
	}
	return &Error{
		Message: msg,
		Code:    CodeUnknownError,
		cause:   cause,
	}
}

// newInvalidMethodError is raised before any network call.
func newInvalidMethodError(method string) *Error {
	return &Error{
		Message:   fmt.Sprintf("Unsupported HTTP method: %s", method),
		Code:      CodeInvalidHTTPMethod,
		Details:   map[string]any{"method": method},
		permanent: true,
	}
}

// normalize converts any error into a *Error. Errors already normalized
// pass through unchanged.
func normalize(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return newUnknownError(err)
}
