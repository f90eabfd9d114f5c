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
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const jqDescription = "Optional jq expression applied to the result before it is returned, e.g. 'map({id, name})'"

// tools returns every tool the server exposes, bound to its handler.
func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool("list_workflows",
				mcp.WithDescription("List all workflows in n8n"),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithBoolean("active", mcp.Description("Only return active (true) or inactive (false) workflows")),
				mcp.WithArray("tags",
					mcp.Description("Only return workflows carrying all of these tags"),
					mcp.Items(map[string]any{"type": "string"}),
				),
				mcp.WithNumber("limit", mcp.Description("Maximum number of workflows to return (1-100)"), mcp.Min(1), mcp.Max(100)),
				mcp.WithNumber("offset", mcp.Description("Number of workflows to skip"), mcp.Min(0)),
				mcp.WithString("jq", mcp.Description(jqDescription)),
			),
			Handler: s.instrument("list_workflows", s.handleListWorkflows),
		},
		{
			Tool: mcp.NewTool("get_workflow",
				mcp.WithDescription("Get a workflow by ID, including its nodes and connections"),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithString("workflowId", mcp.Required(), mcp.Description("The workflow ID")),
				mcp.WithString("jq", mcp.Description(jqDescription)),
			),
			Handler: s.instrument("get_workflow", s.handleGetWorkflow),
		},
		{
			Tool: mcp.NewTool("create_workflow",
				mcp.WithDescription("Create a new workflow"),
				mcp.WithString("name", mcp.Required(), mcp.Description("Workflow name")),
				mcp.WithArray("nodes",
					mcp.Required(),
					mcp.Description("Workflow nodes"),
					mcp.Items(map[string]any{"type": "object"}),
				),
				mcp.WithObject("connections", mcp.Description("Connections between nodes, keyed by source node name")),
				mcp.WithBoolean("active", mcp.Description("Activate the workflow after creation")),
				mcp.WithArray("tags", mcp.Description("Tag names"), mcp.Items(map[string]any{"type": "string"})),
				mcp.WithObject("settings", mcp.Description("Workflow settings")),
			),
			Handler: s.instrument("create_workflow", s.handleCreateWorkflow),
		},
		{
			Tool: mcp.NewTool("update_workflow",
				mcp.WithDescription("Update an existing workflow. Only the supplied fields are changed."),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithString("workflowId", mcp.Required(), mcp.Description("The workflow ID")),
				mcp.WithString("name", mcp.Description("New workflow name")),
				mcp.WithArray("nodes", mcp.Description("Replacement nodes"), mcp.Items(map[string]any{"type": "object"})),
				mcp.WithObject("connections", mcp.Description("Replacement connections")),
				mcp.WithBoolean("active", mcp.Description("Active flag")),
				mcp.WithArray("tags", mcp.Description("Tag names"), mcp.Items(map[string]any{"type": "string"})),
				mcp.WithObject("settings", mcp.Description("Workflow settings")),
			),
			Handler: s.instrument("update_workflow", s.handleUpdateWorkflow),
		},
		{
			Tool: mcp.NewTool("delete_workflow",
				mcp.WithDescription("Delete a workflow"),
				mcp.WithDestructiveHintAnnotation(true),
				mcp.WithString("workflowId", mcp.Required(), mcp.Description("The workflow ID")),
			),
			Handler: s.instrument("delete_workflow", s.handleDeleteWorkflow),
		},
		{
			Tool: mcp.NewTool("activate_workflow",
				mcp.WithDescription("Activate a workflow so its triggers run"),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithString("workflowId", mcp.Required(), mcp.Description("The workflow ID")),
			),
			Handler: s.instrument("activate_workflow", s.handleActivateWorkflow),
		},
		{
			Tool: mcp.NewTool("deactivate_workflow",
				mcp.WithDescription("Deactivate a workflow"),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithString("workflowId", mcp.Required(), mcp.Description("The workflow ID")),
			),
			Handler: s.instrument("deactivate_workflow", s.handleDeactivateWorkflow),
		},
		{
			Tool: mcp.NewTool("list_executions",
				mcp.WithDescription("List workflow executions"),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithString("workflowId", mcp.Description("Only return executions of this workflow")),
				mcp.WithString("status",
					mcp.Description("Only return executions in this status"),
					mcp.Enum("running", "success", "error", "waiting", "canceled"),
				),
				mcp.WithNumber("limit", mcp.Description("Maximum number of executions to return (1-100)"), mcp.Min(1), mcp.Max(100)),
				mcp.WithNumber("offset", mcp.Description("Number of executions to skip"), mcp.Min(0)),
				mcp.WithBoolean("includeData", mcp.Description("Include execution data in the result")),
				mcp.WithString("jq", mcp.Description(jqDescription)),
			),
			Handler: s.instrument("list_executions", s.handleListExecutions),
		},
		{
			Tool: mcp.NewTool("get_execution",
				mcp.WithDescription("Get an execution by ID"),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithString("executionId", mcp.Required(), mcp.Description("The execution ID")),
				mcp.WithString("jq", mcp.Description(jqDescription)),
			),
			Handler: s.instrument("get_execution", s.handleGetExecution),
		},
		{
			Tool: mcp.NewTool("delete_execution",
				mcp.WithDescription("Delete an execution"),
				mcp.WithDestructiveHintAnnotation(true),
				mcp.WithString("executionId", mcp.Required(), mcp.Description("The execution ID")),
			),
			Handler: s.instrument("delete_execution", s.handleDeleteExecution),
		},
		{
			Tool: mcp.NewTool("run_webhook",
				mcp.WithDescription("Trigger a workflow through its webhook"),
				mcp.WithOpenWorldHintAnnotation(true),
				mcp.WithString("workflowName", mcp.Required(), mcp.Description("The webhook path the workflow listens on")),
				mcp.WithObject("data", mcp.Description("JSON payload sent as the request body")),
				mcp.WithObject("headers",
					mcp.Description("Additional HTTP headers"),
					mcp.AdditionalProperties(map[string]any{"type": "string"}),
				),
				mcp.WithString("method",
					mcp.Description("HTTP method (default: POST)"),
					mcp.Enum("GET", "POST", "PUT", "PATCH", "DELETE"),
				),
				mcp.WithString("jq", mcp.Description(jqDescription)),
			),
			Handler: s.instrument("run_webhook", s.handleRunWebhook),
		},
		{
			Tool: mcp.NewTool("health_check",
				mcp.WithDescription("Check whether the n8n instance is reachable"),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			Handler: s.instrument("health_check", s.handleHealthCheck),
		},
	}
}
