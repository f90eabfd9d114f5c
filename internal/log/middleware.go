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

package log

import (
	"context"
	"log/slog"
	"time"
)

// ToolCall describes an MCP tool invocation for logging purposes.
type ToolCall struct {
	// Tool is the MCP tool name, e.g. "list_workflows".
	Tool string

	// RequestID identifies the invocation.
	RequestID string
}

// ToolResult summarizes the outcome of a tool invocation.
type ToolResult struct {
	Success    bool
	Error      string
	DurationMs int64
}

// LogToolCall logs an incoming tool invocation at debug level.
func LogToolCall(ctx context.Context, logger *slog.Logger, call *ToolCall) {
	logger.DebugContext(ctx, "tool call received",
		EventKey, "tool_call",
		ToolKey, call.Tool,
		RequestIDKey, call.RequestID,
	)
}

// LogToolResult logs the outcome of a tool invocation. Failures are logged
// at warn level; the MCP client still receives them as tool errors.
func LogToolResult(ctx context.Context, logger *slog.Logger, call *ToolCall, res *ToolResult) {
	attrs := []any{
		EventKey, "tool_result",
		ToolKey, call.Tool,
		RequestIDKey, call.RequestID,
		"success", res.Success,
		DurationKey, res.DurationMs,
	}
	if res.Error != "" {
		attrs = append(attrs, "error", res.Error)
	}

	level := slog.LevelInfo
	message := "tool call completed"
	if !res.Success {
		level = slog.LevelWarn
		message = "tool call failed"
	}

	logger.Log(ctx, level, message, attrs...)
}

// ToolMiddleware wraps tool handlers with call logging.
type ToolMiddleware struct {
	logger *slog.Logger
}

// NewToolMiddleware creates a new tool logging middleware.
func NewToolMiddleware(logger *slog.Logger) *ToolMiddleware {
	return &ToolMiddleware{logger: logger}
}

// Handle runs handler and logs the call and its outcome. handler reports
// a tool-level failure through errMsg and a protocol failure through err.
func (m *ToolMiddleware) Handle(ctx context.Context, call *ToolCall, handler func() (errMsg string, err error)) error {
	start := time.Now()
	LogToolCall(ctx, m.logger, call)

	errMsg, err := handler()
	if err != nil && errMsg == "" {
		errMsg = err.Error()
	}

	LogToolResult(ctx, m.logger, call, &ToolResult{
		Success:    errMsg == "",
		Error:      errMsg,
		DurationMs: time.Since(start).Milliseconds(),
	})
	return err
}
