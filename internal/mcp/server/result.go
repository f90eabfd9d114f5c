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
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	pkgerrors "github.com/tombee/n8n-mcp/pkg/errors"
)

// jsonResult renders v as indented JSON, prefixed when prefix is set.
func jsonResult(prefix string, v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(prefix + string(data))
}

// filteredResult applies the optional jq expression before rendering.
func (s *Server) filteredResult(ctx context.Context, action, prefix, expression string, v any) *mcp.CallToolResult {
	if expression == "" {
		return jsonResult(prefix, v)
	}
	out, err := s.filter.Apply(ctx, expression, v)
	if err != nil {
		return errorResult(action, err)
	}
	return jsonResult(prefix, out)
}

// errorResult reports a failed tool call as "Error <action>: <message>",
// followed by a suggestion when the error carries one.
func errorResult(action string, err error) *mcp.CallToolResult {
	msg := fmt.Sprintf("Error %s: %v", action, err)
	if suggestion := pkgerrors.GetSuggestion(err); suggestion != "" {
		msg += "\n\nSuggestion: " + suggestion
	}
	return mcp.NewToolResultError(msg)
}
