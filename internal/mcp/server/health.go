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
)

// HealthResult is the health_check tool output.
type HealthResult struct {
	Healthy bool   `json:"healthy"`
	URL     string `json:"url"`
}

func (s *Server) handleHealthCheck(ctx context.Context, _ mcp.CallToolRequest) *mcp.CallToolResult {
	return jsonResult("", HealthResult{
		Healthy: s.client.HealthCheck(ctx),
		URL:     s.client.BaseURL(),
	})
}
