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

// Package jq narrows tool results with jq expressions.
package jq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/itchyny/gojq"
)

const (
	// DefaultTimeout bounds a single filter evaluation.
	DefaultTimeout = time.Second

	// DefaultMaxInputSize is the largest JSON input accepted (10MB).
	DefaultMaxInputSize = 10 * 1024 * 1024
)

// ErrTimeout is returned when evaluation exceeds the filter's timeout.
var ErrTimeout = errors.New("jq evaluation timed out")

// Filter evaluates jq expressions with time and size limits. The zero
// value is not usable; use NewFilter.
type Filter struct {
	timeout      time.Duration
	maxInputSize int
}

// NewFilter creates a filter. Zero values select the defaults.
func NewFilter(timeout time.Duration, maxInputSize int) *Filter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxInputSize <= 0 {
		maxInputSize = DefaultMaxInputSize
	}
	return &Filter{
		timeout:      timeout,
		maxInputSize: maxInputSize,
	}
}

// Apply runs expression against data. data may be any JSON-encodable
// value; it is normalized to plain JSON values first. A single output is
// returned as-is, several outputs as a slice, none as nil. An empty
// expression returns data unchanged.
func (f *Filter) Apply(ctx context.Context, expression string, data any) (any, error) {
	if expression == "" {
		return data, nil
	}

	code, err := compile(expression)
	if err != nil {
		return nil, err
	}

	input, err := f.normalize(data)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	var results []any
	iter := code.RunWithContext(ctx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				break
			}
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w after %v", ErrTimeout, f.timeout)
			}
			return nil, fmt.Errorf("jq: %w", err)
		}
		results = append(results, v)
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

// Validate reports whether expression parses and compiles.
func Validate(expression string) error {
	if expression == "" {
		return nil
	}
	_, err := compile(expression)
	return err
}

func compile(expression string) (*gojq.Code, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("jq compilation failed: %w", err)
	}
	return code, nil
}

// normalize round-trips data through JSON so the input holds only maps,
// slices, strings, float64, bool and nil. Outputs are not normalized: gojq
// emits integral numbers as int.
func (f *Filter) normalize(data any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal jq input: %w", err)
	}
	if len(raw) > f.maxInputSize {
		return nil, fmt.Errorf("jq input size (%d bytes) exceeds maximum (%d bytes)", len(raw), f.maxInputSize)
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to normalize jq input: %w", err)
	}
	return v, nil
}
