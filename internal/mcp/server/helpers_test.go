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

package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/tombee/n8n-mcp/pkg/n8n"
)

// fakeAPI records the last call and returns canned results.
type fakeAPI struct {
	calls []string

	workflows  []n8n.Workflow
	workflow   *n8n.Workflow
	executions []n8n.Execution
	execution  *n8n.Execution
	webhook    any
	healthy    bool
	err        error

	workflowsQuery  *n8n.ListWorkflowsQuery
	executionsQuery *n8n.ListExecutionsQuery
	created         n8n.CreateWorkflowRequest
	updated         n8n.UpdateWorkflowRequest
	lastID          string
	webhookName     string
	webhookReq      *n8n.WebhookRequest
}

func (f *fakeAPI) record(op, id string) {
	f.calls = append(f.calls, op)
	f.lastID = id
}

func (f *fakeAPI) ListWorkflows(_ context.Context, q *n8n.ListWorkflowsQuery) ([]n8n.Workflow, error) {
	f.record("ListWorkflows", "")
	f.workflowsQuery = q
	return f.workflows, f.err
}

func (f *fakeAPI) GetWorkflow(_ context.Context, id string) (*n8n.Workflow, error) {
	f.record("GetWorkflow", id)
	return f.workflow, f.err
}

func (f *fakeAPI) CreateWorkflow(_ context.Context, wf n8n.CreateWorkflowRequest) (*n8n.Workflow, error) {
	f.record("CreateWorkflow", "")
	f.created = wf
	return f.workflow, f.err
}

func (f *fakeAPI) UpdateWorkflow(_ context.Context, id string, wf n8n.UpdateWorkflowRequest) (*n8n.Workflow, error) {
	f.record("UpdateWorkflow", id)
	f.updated = wf
	return f.workflow, f.err
}

func (f *fakeAPI) DeleteWorkflow(_ context.Context, id string) error {
	f.record("DeleteWorkflow", id)
	return f.err
}

func (f *fakeAPI) ActivateWorkflow(_ context.Context, id string) (*n8n.Workflow, error) {
	f.record("ActivateWorkflow", id)
	return f.workflow, f.err
}

func (f *fakeAPI) DeactivateWorkflow(_ context.Context, id string) (*n8n.Workflow, error) {
	f.record("DeactivateWorkflow", id)
	return f.workflow, f.err
}

func (f *fakeAPI) ListExecutions(_ context.Context, q *n8n.ListExecutionsQuery) ([]n8n.Execution, error) {
	f.record("ListExecutions", "")
	f.executionsQuery = q
	return f.executions, f.err
}

func (f *fakeAPI) GetExecution(_ context.Context, id string) (*n8n.Execution, error) {
	f.record("GetExecution", id)
	return f.execution, f.err
}

func (f *fakeAPI) DeleteExecution(_ context.Context, id string) error {
	f.record("DeleteExecution", id)
	return f.err
}

func (f *fakeAPI) RunWebhook(_ context.Context, name string, req *n8n.WebhookRequest) (any, error) {
	f.record("RunWebhook", "")
	f.webhookName = name
	f.webhookReq = req
	return f.webhook, f.err
}

func (f *fakeAPI) HealthCheck(context.Context) bool {
	f.record("HealthCheck", "")
	return f.healthy
}

func (f *fakeAPI) BaseURL() string {
	return "http://n8n.test:5678"
}

func newTestServer(t *testing.T, api API) *Server {
	t.Helper()
	s, err := NewServer(ServerConfig{Client: api})
	require.NoError(t, err)
	return s
}

// callTool invokes a registered tool handler directly.
func callTool(t *testing.T, s *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()

	handler, ok := s.handlers[name]
	require.True(t, ok, "tool %s not registered", name)

	var request mcp.CallToolRequest
	request.Params.Name = name
	if args != nil {
		request.Params.Arguments = args
	}

	result, err := handler(context.Background(), request)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func jsonUnmarshal(text string, v any) error {
	return json.Unmarshal([]byte(text), v)
}
