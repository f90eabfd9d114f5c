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
	"errors"
	"fmt"
)

// Wrap creates a new error that wraps the given error with additional context.
// If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsUserVisible reports whether any error in err's chain is a visible
// UserVisibleError.
func IsUserVisible(err error) bool {
	var uv UserVisibleError
	return errors.As(err, &uv) && uv.IsUserVisible()
}

// GetUserMessage returns the user message of the first UserVisibleError in
// err's chain, falling back to err.Error().
func GetUserMessage(err error) string {
	if err == nil {
		return ""
	}
	var uv UserVisibleError
	if errors.As(err, &uv) && uv.IsUserVisible() {
		return uv.UserMessage()
	}
	return err.Error()
}

// GetSuggestion returns the suggestion of the first UserVisibleError in
// err's chain, or "".
func GetSuggestion(err error) string {
	var uv UserVisibleError
	if errors.As(err, &uv) {
		return uv.Suggestion()
	}
	return ""
}

// IsRetryable reports whether err is classified as retryable. Unclassified
// errors are not.
func IsRetryable(err error) bool {
	var c ErrorClassifier
	return errors.As(err, &c) && c.IsRetryable()
}

// ErrorType returns the category of the first ErrorClassifier in err's
// chain, or "unknown".
func ErrorType(err error) string {
	var c ErrorClassifier
	if errors.As(err, &c) {
		return c.ErrorType()
	}
	return "unknown"
}
