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
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) handleListWorkflows(ctx context.Context, request mcp.CallToolRequest) *mcp.CallToolResult {
	const action = "listing workflows"

	var args listWorkflowsArgs
	if err := bindArgs(request, &args); err != nil {
		return errorResult(action, err)
	}

	workflows, err := s.client.ListWorkflows(ctx, args.query())
	if err != nil {
		return errorResult(action, err)
	}
	return s.filteredResult(ctx, action, "", args.JQ, workflows)
}

func (s *Server) handleGetWorkflow(ctx context.Context, request mcp.CallToolRequest) *mcp.CallToolResult {
	const action = "getting workflow"

	var args getWorkflowArgs
	if err := bindArgs(request, &args); err != nil {
		return errorResult(action, err)
	}

	workflow, err := s.client.GetWorkflow(ctx, args.WorkflowID)
	if err != nil {
		return errorResult(action, err)
	}
	return s.filteredResult(ctx, action, "", args.JQ, workflow)
}

func (s *Server) handleCreateWorkflow(ctx context.Context, request mcp.CallToolRequest) *mcp.CallToolResult {
	const action = "creating workflow"

	var args createWorkflowArgs
	if err := bindArgs(request, &args); err != nil {
		return errorResult(action, err)
	}

	workflow, err := s.client.CreateWorkflow(ctx, args.request())
	if err != nil {
		return errorResult(action, err)
	}
	return jsonResult("Workflow created successfully: ", workflow)
}

func (s *Server) handleUpdateWorkflow(ctx context.Context, request mcp.CallToolRequest) *mcp.CallToolResult {
	const action = "updating workflow"

	var args updateWorkflowArgs
	if err := bindArgs(request, &args); err != nil {
		return errorResult(action, err)
	}

	workflow, err := s.client.UpdateWorkflow(ctx, args.WorkflowID, args.request())
	if err != nil {
		return errorResult(action, err)
	}
	return jsonResult("Workflow updated successfully: ", workflow)
}

func (s *Server) handleDeleteWorkflow(ctx context.Context, request mcp.CallToolRequest) *mcp.CallToolResult {
	const action = "deleting workflow"

	var args workflowIDArgs
	if err := bindArgs(request, &args); err != nil {
		return errorResult(action, err)
	}

	if err := s.client.DeleteWorkflow(ctx, args.WorkflowID); err != nil {
		return errorResult(action, err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Workflow %s deleted successfully", args.WorkflowID))
}

func (s *Server) handleActivateWorkflow(ctx context.Context, request mcp.CallToolRequest) *mcp.CallToolResult {
	const action = "activating workflow"

	var args workflowIDArgs
	if err := bindArgs(request, &args); err != nil {
		return errorResult(action, err)
	}

	if _, err := s.client.ActivateWorkflow(ctx, args.WorkflowID); err != nil {
		return errorResult(action, err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Workflow %s activated successfully", args.WorkflowID))
}

func (s *Server) handleDeactivateWorkflow(ctx context.Context, request mcp.CallToolRequest) *mcp.CallToolResult {
	const action = "deactivating workflow"

	var args workflowIDArgs
	if err := bindArgs(request, &args); err != nil {
		return errorResult(action, err)
	}

	if _, err := s.client.DeactivateWorkflow(ctx, args.WorkflowID); err != nil {
		return errorResult(action, err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Workflow %s deactivated successfully", args.WorkflowID))
}
