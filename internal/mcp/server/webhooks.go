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

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tombee/n8n-mcp/pkg/n8n"
)

func (s *Server) handleRunWebhook(ctx context.Context, request mcp.CallToolRequest) *mcp.CallToolResult {
	const action = "executing webhook"

	var args runWebhookArgs
	if err := bindArgs(request, &args); err != nil {
		return errorResult(action, err)
	}

	req := &n8n.WebhookRequest{
		Headers: args.Headers,
		Method:  args.Method,
	}
	if args.Data != nil {
		req.Data = args.Data
	}

	result, err := s.client.RunWebhook(ctx, args.WorkflowName, req)
	if err != nil {
		return errorResult(action, err)
	}
	return s.filteredResult(ctx, action, "Webhook executed successfully: ", args.JQ, result)
}
