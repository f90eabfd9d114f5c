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
	"fmt"
)

// ID is an n8n resource identifier. Depending on the n8n version the API
// returns identifiers as strings or numbers; both decode into an ID.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Workflow is a named automation definition.
type Workflow struct {
	ID          ID             `json:"id,omitempty"`
	Name        string         `json:"name"`
	Active      bool           `json:"active"`
	Nodes       []Node         `json:"nodes"`
	Connections map[string]any `json:"connections"`
	CreatedAt   string         `json:"createdAt,omitempty"`
	UpdatedAt   string         `json:"updatedAt,omitempty"`
	Tags        []Tag          `json:"tags,omitempty"`
	Settings    map[string]any `json:"settings,omitempty"`
}

// Node is a single step of a workflow.
type Node struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	TypeVersion float64        `json:"typeVersion"`
	Position    []float64      `json:"position"`
	Parameters  map[string]any `json:"parameters"`
	Credentials map[string]any `json:"credentials,omitempty"`
	Disabled    bool           `json:"disabled,omitempty"`
}

// Tag labels a workflow. Older servers return plain tag names, newer ones
// return objects; both decode into a Tag.
type Tag struct {
	ID   ID     `json:"id,omitempty"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts a tag name or a tag object.
func (t *Tag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &t.Name)
	}
	type plain Tag
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = Tag(p)
	return nil
}

// ExecutionStatus is the state of a workflow run.
type ExecutionStatus string

const (
	ExecutionRunning  ExecutionStatus = "running"
	ExecutionSuccess  ExecutionStatus = "success"
	ExecutionError    ExecutionStatus = "error"
	ExecutionWaiting  ExecutionStatus = "waiting"
	ExecutionCanceled ExecutionStatus = "canceled"
)

// ExecutionStatuses lists every status the server reports.
var ExecutionStatuses = []ExecutionStatus{
	ExecutionRunning,
	ExecutionSuccess,
	ExecutionError,
	ExecutionWaiting,
	ExecutionCanceled,
}

// Execution is one run instance of a workflow.
type Execution struct {
	ID         ID              `json:"id"`
	WorkflowID ID              `json:"workflowId"`
	Mode       string          `json:"mode,omitempty"`
	Status     ExecutionStatus `json:"status,omitempty"`
	Finished   bool            `json:"finished,omitempty"`
	StartedAt  string          `json:"startedAt,omitempty"`
	StoppedAt  string          `json:"stoppedAt,omitempty"`
	FinishedAt string          `json:"finishedAt,omitempty"`
	Data       map[string]any  `json:"data,omitempty"`
	Error      json.RawMessage `json:"error,omitempty"`
}

// CreateWorkflowRequest is the body of a workflow creation.
type CreateWorkflowRequest struct {
	Name        string         `json:"name"`
	Nodes       []Node         `json:"nodes"`
	Connections map[string]any `json:"connections"`
	Active      *bool          `json:"active,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Settings    map[string]any `json:"settings,omitempty"`
}

// UpdateWorkflowRequest is a partial workflow definition. Zero fields are
// left out of the request body.
type UpdateWorkflowRequest struct {
	Name        string         `json:"name,omitempty"`
	Nodes       []Node         `json:"nodes,omitempty"`
	Connections map[string]any `json:"connections,omitempty"`
	Active      *bool          `json:"active,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Settings    map[string]any `json:"settings,omitempty"`
}

// ListWorkflowsQuery filters ListWorkflows. Zero values are not sent.
type ListWorkflowsQuery struct {
	Active *bool
	Tags   []string
	Limit  int
	Offset int
}

// ListExecutionsQuery filters ListExecutions. Zero values are not sent.
type ListExecutionsQuery struct {
	WorkflowID  string
	Status      ExecutionStatus
	Limit       int
	Offset      int
	IncludeData *bool
}

// WebhookRequest describes a webhook invocation.
type WebhookRequest struct {
	// Data is sent as the JSON body for POST, PUT and PATCH.
	Data any

	// Headers are added to the request and override the static headers.
	Headers map[string]string

	// Method is the HTTP verb (get, post, put, patch, delete; any case).
	// Default: POST
	Method string
}
