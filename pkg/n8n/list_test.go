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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListResponse_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantIDs []ID
		wantErr bool
	}{
		{name: "bare array", input: `[{"id":"1"},{"id":"2"}]`, wantIDs: []ID{"1", "2"}},
		{name: "envelope", input: `{"data":[{"id":"3"}],"nextCursor":"abc"}`, wantIDs: []ID{"3"}},
		{name: "empty envelope", input: `{"data":[]}`, wantIDs: []ID{}},
		{name: "empty array", input: `[]`, wantIDs: []ID{}},
		{name: "null", input: `null`, wantIDs: []ID{}},
		{name: "envelope without data", input: `{"items":[]}`, wantErr: true},
		{name: "envelope with object data", input: `{"data":{"id":"1"}}`, wantErr: true},
		{name: "scalar", input: `"oops"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp listResponse[Execution]
			err := json.Unmarshal([]byte(tt.input), &resp)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			ids := make([]ID, 0, len(resp.Items()))
			for _, e := range resp.Items() {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.NotNil(t, resp.Items())
		})
	}
}

func TestListResponse_ZeroValue(t *testing.T) {
	var resp listResponse[Workflow]
	assert.NotNil(t, resp.Items())
	assert.Empty(t, resp.Items())
}

func TestID_Unmarshal(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"x1","b":42,"c":null}`), &v))

	assert.Equal(t, ID("x1"), v.A)
	assert.Equal(t, ID("42"), v.B)
	assert.Equal(t, ID(""), v.C)

	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &v))
}

func TestTag_Unmarshal(t *testing.T) {
	var wf Workflow
	require.NoError(t, json.Unmarshal([]byte(`{"name":"w","tags":["prod",{"id":"9","name":"billing"}]}`), &wf))

	assert.Equal(t, []Tag{{Name: "prod"}, {ID: "9", Name: "billing"}}, wf.Tags)
}
