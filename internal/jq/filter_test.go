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

package jq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type workflow struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Active bool     `json:"active"`
	Tags   []string `json:"tags,omitempty"`
}

func TestFilterApply(t *testing.T) {
	workflows := []workflow{
		{ID: "1", Name: "Sync", Active: true, Tags: []string{"prod"}},
		{ID: "2", Name: "Backup", Active: false},
	}

	tests := []struct {
		name       string
		expression string
		data       any
		want       any
	}{
		{
			name:       "empty expression returns data as-is",
			expression: "",
			data:       workflows,
			want:       workflows,
		},
		{
			name:       "typed structs are normalized",
			expression: "map(.name)",
			data:       workflows,
			want:       []any{"Sync", "Backup"},
		},
		{
			name:       "select",
			expression: "[.[] | select(.active) | .id]",
			data:       workflows,
			want:       []any{"1"},
		},
		{
			name:       "multiple outputs become a slice",
			expression: ".[].id",
			data:       workflows,
			want:       []any{"1", "2"},
		},
		{
			name:       "no output",
			expression: "empty",
			data:       workflows,
			want:       nil,
		},
		{
			name:       "integral results are ints",
			expression: "length",
			data:       workflows,
			want:       2,
		},
		{
			name:       "map input",
			expression: ".healthy",
			data:       map[string]any{"healthy": true, "url": "http://localhost:5678"},
			want:       true,
		},
	}

	f := NewFilter(0, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.Apply(context.Background(), tt.expression, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterApplyErrors(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		data       any
		wantErr    string
	}{
		{
			name:       "parse error",
			expression: ".[",
			data:       map[string]any{},
			wantErr:    "invalid jq expression",
		},
		{
			name:       "runtime error",
			expression: ".foo.bar",
			data:       []any{1},
			wantErr:    "jq:",
		},
		{
			name:       "unencodable input",
			expression: ".",
			data:       map[string]any{"ch": make(chan int)},
			wantErr:    "failed to marshal",
		},
	}

	f := NewFilter(0, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Apply(context.Background(), tt.expression, tt.data)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFilterInputLimit(t *testing.T) {
	f := NewFilter(0, 8)

	_, err := f.Apply(context.Background(), ".", map[string]string{"name": "too large"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum")
}

func TestFilterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFilter(0, 0)
	_, err := f.Apply(ctx, "[range(0; 10000000)] | length", nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(""))
	assert.NoError(t, Validate(".data[] | .id"))
	assert.Error(t, Validate(".["))
	assert.Error(t, Validate("undefined_function(1)"))
}
