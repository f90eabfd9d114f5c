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
)

var errUnexpectedListShape = errors.New("list response is neither an array nor an object with a data array")

// listResponse decodes the two shapes a list endpoint may return: a bare
// JSON array, or an object carrying the array under "data". The envelope
// wins when both could apply.
type listResponse[T any] struct {
	items []T
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *listResponse[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		l.items = []T{}
		return nil
	}

	switch data[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decode list: %w", err)
		}
		l.items = items
	case '{':
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return fmt.Errorf("decode list envelope: %w", err)
		}
		raw := bytes.TrimSpace(envelope.Data)
		if len(raw) == 0 || raw[0] != '[' {
			return errUnexpectedListShape
		}
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return fmt.Errorf("decode list envelope: %w", err)
		}
		l.items = items
	default:
		return errUnexpectedListShape
	}

	if l.items == nil {
		l.items = []T{}
	}
	return nil
}

// Items returns the decoded elements. Never nil.
func (l listResponse[T]) Items() []T {
	if l.items == nil {
		return []T{}
	}
	return l.items
}
