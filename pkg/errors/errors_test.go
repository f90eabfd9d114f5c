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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "loading config"))

	base := errors.New("file not found")
	err := Wrap(base, "loading config")
	assert.EqualError(t, err, "loading config: file not found")
	assert.ErrorIs(t, err, base)
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "with field",
			err:  &ValidationError{Field: "limit", Message: "must be between 1 and 100"},
			want: "validation failed on limit: must be between 1 and 100",
		},
		{
			name: "without field",
			err:  &ValidationError{Message: "arguments must be an object"},
			want: "validation failed: arguments must be an object",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.Equal(t, "validation", tt.err.ErrorType())
			assert.False(t, tt.err.IsRetryable())
		})
	}
}

func TestConfigError(t *testing.T) {
	cause := errors.New("yaml: line 3: mapping values are not allowed")
	err := &ConfigError{Key: "config.yaml", Reason: "failed to parse", Cause: cause}

	assert.Equal(t, "config error at config.yaml: failed to parse", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "config error: bad", (&ConfigError{Reason: "bad"}).Error())
	assert.Contains(t, (&ConfigError{Key: "N8N_API_KEY", Reason: "required"}).Suggestion(), "auth set-key")
}

func TestUserVisibleHelpers(t *testing.T) {
	verr := &ValidationError{Field: "id", Message: "required", Hint: "pass the workflow id"}
	wrapped := fmt.Errorf("get_workflow: %w", verr)

	assert.True(t, IsUserVisible(wrapped))
	assert.Equal(t, "validation failed on id: required", GetUserMessage(wrapped))
	assert.Equal(t, "pass the workflow id", GetSuggestion(wrapped))

	plain := errors.New("plain")
	assert.False(t, IsUserVisible(plain))
	assert.Equal(t, "plain", GetUserMessage(plain))
	assert.Empty(t, GetSuggestion(plain))
	assert.Empty(t, GetUserMessage(nil))
}

func TestClassifierHelpers(t *testing.T) {
	verr := &ValidationError{Message: "bad"}

	assert.False(t, IsRetryable(verr))
	assert.Equal(t, "validation", ErrorType(fmt.Errorf("wrap: %w", verr)))
	assert.Equal(t, "unknown", ErrorType(errors.New("x")))
	assert.False(t, IsRetryable(errors.New("x")))
}
