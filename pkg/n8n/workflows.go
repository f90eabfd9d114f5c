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
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ListWorkflows returns workflows matching q. A nil q lists everything the
// server returns by default.
func (c *Client) ListWorkflows(ctx context.Context, q *ListWorkflowsQuery) ([]Workflow, error) {
	query := url.Values{}
	if q != nil {
		if q.Active != nil {
			query.Set("active", strconv.FormatBool(*q.Active))
		}
		for _, tag := range q.Tags {
			query.Add("tags", tag)
		}
		if q.Limit > 0 {
			query.Set("limit", strconv.Itoa(q.Limit))
		}
		if q.Offset > 0 {
			query.Set("offset", strconv.Itoa(q.Offset))
		}
	}

	resp, err := do[listResponse[Workflow]](ctx, c, request{
		operation: "list_workflows",
		method:    http.MethodGet,
		path:      "/workflows",
		query:     query,
	})
	if err != nil {
		return nil, err
	}
	return resp.Items(), nil
}

// GetWorkflow returns the workflow with the given id.
func (c *Client) GetWorkflow(ctx context.Context, id string) (*Workflow, error) {
	return do[*Workflow](ctx, c, request{
		operation: "get_workflow",
		method:    http.MethodGet,
		path:      workflowPath(id),
	})
}

// CreateWorkflow creates a workflow and returns it as stored by the server.
func (c *Client) CreateWorkflow(ctx context.Context, wf CreateWorkflowRequest) (*Workflow, error) {
	if wf.Connections == nil {
		wf.Connections = map[string]any{}
	}
	return do[*Workflow](ctx, c, request{
		operation: "create_workflow",
		method:    http.MethodPost,
		path:      "/workflows",
		body:      wf,
	})
}

// UpdateWorkflow replaces the fields set in wf.
func (c *Client) UpdateWorkflow(ctx context.Context, id string, wf UpdateWorkflowRequest) (*Workflow, error) {
	return do[*Workflow](ctx, c, request{
		operation: "update_workflow",
		method:    http.MethodPut,
		path:      workflowPath(id),
		body:      wf,
	})
}

// DeleteWorkflow deletes the workflow with the given id.
func (c *Client) DeleteWorkflow(ctx context.Context, id string) error {
	_, err := do[struct{}](ctx, c, request{
		operation: "delete_workflow",
		method:    http.MethodDelete,
		path:      workflowPath(id),
	})
	return err
}

// ActivateWorkflow enables the workflow's triggers.
func (c *Client) ActivateWorkflow(ctx context.Context, id string) (*Workflow, error) {
	return do[*Workflow](ctx, c, request{
		operation: "activate_workflow",
		method:    http.MethodPost,
		path:      workflowPath(id) + "/activate",
	})
}

// DeactivateWorkflow disables the workflow's triggers.
func (c *Client) DeactivateWorkflow(ctx context.Context, id string) (*Workflow, error) {
	return do[*Workflow](ctx, c, request{
		operation: "deactivate_workflow",
		method:    http.MethodPost,
		path:      workflowPath(id) + "/deactivate",
	})
}

func workflowPath(id string) string {
	return "/workflows/" + url.PathEscape(id)
}
