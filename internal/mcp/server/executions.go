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

func (s *Server) handleListExecutions(ctx context.Context, request mcp.CallToolRequest) *mcp.CallToolResult {
	const action = "listing executions"

	var args listExecutionsArgs
	if err := bindArgs(request, &args); err != nil {
		return errorResult(action, err)
	}

	executions, err := s.client.ListExecutions(ctx, args.query())
	if err != nil {
		return errorResult(action, err)
	}
	return s.filteredResult(ctx, action, "", args.JQ, executions)
}

func (s *Server) handleGetExecution(ctx context.Context, request mcp.CallToolRequest) *mcp.CallToolResult {
	const action = "getting execution"

	var args getExecutionArgs
	if err := bindArgs(request, &args); err != nil {
		return errorResult(action, err)
	}

	execution, err := s.client.GetExecution(ctx, args.ExecutionID)
	if err != nil {
		return errorResult(action, err)
	}
	return s.filteredResult(ctx, action, "", args.JQ, execution)
}

func (s *Server) handleDeleteExecution(ctx context.Context, request mcp.CallToolRequest) *mcp.CallToolResult {
	const action = "deleting execution"

	var args executionIDArgs
	if err := bindArgs(request, &args); err != nil {
		return errorResult(action, err)
	}

	if err := s.client.DeleteExecution(ctx, args.ExecutionID); err != nil {
		return errorResult(action, err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Execution %s deleted successfully", args.ExecutionID))
}
