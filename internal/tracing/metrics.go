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

package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ToolMetrics records MCP tool invocations.
type ToolMetrics struct {
	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewToolMetrics creates the tool instruments on meterProvider.
func NewToolMetrics(meterProvider metric.MeterProvider) (*ToolMetrics, error) {
	meter := meterProvider.Meter("github.com/tombee/n8n-mcp")

	calls, err := meter.Int64Counter(
		"n8n_mcp_tool_calls_total",
		metric.WithDescription("Total number of MCP tool calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"n8n_mcp_tool_call_duration_seconds",
		metric.WithDescription("MCP tool call duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &ToolMetrics{calls: calls, duration: duration}, nil
}

// RecordCall records one tool call. status is "success", "error" or
// "rate_limited". A nil receiver records nothing.
func (m *ToolMetrics) RecordCall(ctx context.Context, tool, status string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("status", status),
	)
	m.calls.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Seconds(), attrs)
}
