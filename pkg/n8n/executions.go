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

// ListExecutions returns executions matching q.
func (c *Client) ListExecutions(ctx context.Context, q *ListExecutionsQuery) ([]Execution, error) {
	query := url.Values{}
	if q != nil {
		if q.WorkflowID != "" {
			query.Set("workflowId", q.WorkflowID)
		}
		if q.Status != "" {
			query.Set("status", string(q.Status))
		}
		if q.Limit > 0 {
			query.Set("limit", strconv.Itoa(q.Limit))
		}
		if q.Offset > 0 {
			query.Set("offset", strconv.Itoa(q.Offset))
		}
		if q.IncludeData != nil {
			query.Set("includeData", strconv.FormatBool(*q.IncludeData))
		}
	}

	resp, err := do[listResponse[Execution]](ctx, c, request{
		operation: "list_executions",
		method:    http.MethodGet,
		path:      "/executions",
		query:     query,
	})
	if err != nil {
		return nil, err
	}
	return resp.Items(), nil
}

// GetExecution returns the execution with the given id.
func (c *Client) GetExecution(ctx context.Context, id string) (*Execution, error) {
	return do[*Execution](ctx, c, request{
		operation: "get_execution",
		method:    http.MethodGet,
		path:      executionPath(id),
	})
}

// DeleteExecution deletes the execution with the given id.
func (c *Client) DeleteExecution(ctx context.Context, id string) error {
	_, err := do[struct{}](ctx, c, request{
		operation: "delete_execution",
		method:    http.MethodDelete,
		path:      executionPath(id),
	})
	return err
}

func executionPath(id string) string {
	return "/executions/" + url.PathEscape(id)
}
