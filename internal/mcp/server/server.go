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

// Package server exposes the n8n REST API as MCP tools.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tombee/n8n-mcp/internal/jq"
	"github.com/tombee/n8n-mcp/internal/log"
	"github.com/tombee/n8n-mcp/internal/tracing"
	"github.com/tombee/n8n-mcp/pkg/n8n"
)

// API is the subset of *n8n.Client the tools call.
type API interface {
	ListWorkflows(ctx context.Context, q *n8n.ListWorkflowsQuery) ([]n8n.Workflow, error)
	GetWorkflow(ctx context.Context, id string) (*n8n.Workflow, error)
	CreateWorkflow(ctx context.Context, wf n8n.CreateWorkflowRequest) (*n8n.Workflow, error)
	UpdateWorkflow(ctx context.Context, id string, wf n8n.UpdateWorkflowRequest) (*n8n.Workflow, error)
	DeleteWorkflow(ctx context.Context, id string) error
	ActivateWorkflow(ctx context.Context, id string) (*n8n.Workflow, error)
	DeactivateWorkflow(ctx context.Context, id string) (*n8n.Workflow, error)
	ListExecutions(ctx context.Context, q *n8n.ListExecutionsQuery) ([]n8n.Execution, error)
	GetExecution(ctx context.Context, id string) (*n8n.Execution, error)
	DeleteExecution(ctx context.Context, id string) error
	RunWebhook(ctx context.Context, name string, req *n8n.WebhookRequest) (any, error)
	HealthCheck(ctx context.Context) bool
	BaseURL() string
}

var _ API = (*n8n.Client)(nil)

// DefaultRateLimit is the default number of tool calls allowed per minute.
const DefaultRateLimit = 100

// ServerConfig configures the MCP server
type ServerConfig struct {
	// Name is the server name (default: "n8n-mcp-server")
	Name string

	// Version is reported to MCP clients (default: "dev")
	Version string

	// Client performs the n8n API calls. Required.
	Client API

	// Logger receives tool call logs. It must not write to stdout.
	// Default: discard
	Logger *slog.Logger

	// RateLimit is the number of tool calls allowed per minute. Zero
	// disables limiting.
	RateLimit int

	// Metrics records tool calls. Optional.
	Metrics *tracing.ToolMetrics
}

// Server wraps the MCP server and provides the n8n tools
type Server struct {
	mcpServer   *server.MCPServer
	name        string
	version     string
	client      API
	rateLimiter *RateLimiter
	filter      *jq.Filter
	middleware  *log.ToolMiddleware
	metrics     *tracing.ToolMetrics
	logger      *slog.Logger
	handlers    map[string]server.ToolHandlerFunc
	toolNames   []string
}

// NewServer creates a new MCP server instance
func NewServer(config ServerConfig) (*Server, error) {
	if config.Client == nil {
		return nil, errors.New("n8n client is required")
	}
	if config.Name == "" {
		config.Name = "n8n-mcp-server"
	}
	if config.Version == "" {
		config.Version = "dev"
	}
	logger := config.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = log.WithComponent(logger, "mcp")

	s := &Server{
		mcpServer: server.NewMCPServer(config.Name, config.Version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		name:        config.Name,
		version:     config.Version,
		client:      config.Client,
		rateLimiter: NewRateLimiter(config.RateLimit),
		filter:      jq.NewFilter(0, 0),
		middleware:  log.NewToolMiddleware(logger),
		metrics:     config.Metrics,
		logger:      logger,
		handlers:    map[string]server.ToolHandlerFunc{},
	}

	tools := s.tools()
	for _, t := range tools {
		s.handlers[t.Tool.Name] = t.Handler
		s.toolNames = append(s.toolNames, t.Tool.Name)
	}
	s.mcpServer.AddTools(tools...)

	return s, nil
}

// toolHandler handles one tool call. Failures are reported in the result.
type toolHandler func(ctx context.Context, request mcp.CallToolRequest) *mcp.CallToolResult

// instrument applies rate limiting, call logging and metrics to h.
func (s *Server) instrument(name string, h toolHandler) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		status := "success"

		var result *mcp.CallToolResult
		call := &log.ToolCall{Tool: name, RequestID: uuid.NewString()}
		log.Trace(ctx, log.WithTool(s.logger, name), "tool arguments",
			slog.String(log.RequestIDKey, call.RequestID),
			slog.Any("arguments", request.GetArguments()),
		)
		err := s.middleware.Handle(ctx, call, func() (string, error) {
			if !s.rateLimiter.AllowCall() {
				status = "rate_limited"
				result = mcp.NewToolResultError("Rate limit exceeded. Please try again later.")
				return "rate limit exceeded", nil
			}

			result = h(ctx, request)
			if result.IsError {
				status = "error"
				return resultText(result), nil
			}
			return "", nil
		})

		s.metrics.RecordCall(ctx, name, status, time.Since(start))
		return result, err
	}
}

// resultText returns the text of the first text content block.
func resultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		switch tc := c.(type) {
		case mcp.TextContent:
			return tc.Text
		case *mcp.TextContent:
			return tc.Text
		}
	}
	return ""
}

// Serve serves MCP over the given streams.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("starting n8n MCP server",
		slog.String("version", s.version),
		slog.String("n8n_url", s.client.BaseURL()),
		slog.Int("tools", len(s.handlers)),
	)

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP server error: %w", err)
	}

	s.logger.Info("n8n MCP server stopped")
	return nil
}

// ToolNames returns the registered tool names.
func (s *Server) ToolNames() []string {
	return append([]string(nil), s.toolNames...)
}
