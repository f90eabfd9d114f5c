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

// Package health implements the health command.
package health

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/n8n-mcp/internal/commands/shared"
)

// Result is the JSON output of the health command.
type Result struct {
	shared.JSONResponse
	Healthy      bool   `json:"healthy"`
	URL          string `json:"url"`
	APIKeySource string `json:"api_key_source"`
	DurationMs   int64  `json:"duration_ms"`
}

// NewCommand creates the health command
func NewCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that n8n is reachable",
		Long: `Probe the configured n8n instance through the same client the MCP
server uses, including its retry policy.

Exits with status 1 when n8n is not reachable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			return run(ctx, cmd.OutOrStdout(), shared.GetJSON())
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Overall deadline for the probe, including retries (0 = none)")

	return cmd
}

func run(ctx context.Context, out io.Writer, jsonOutput bool) error {
	cfg, err := shared.LoadConfig(ctx)
	if err != nil {
		return err
	}

	client, err := shared.NewClient(cfg, shared.NewLogger(cfg))
	if err != nil {
		return err
	}

	start := time.Now()
	healthy := client.HealthCheck(ctx)

	result := Result{
		JSONResponse: shared.NewJSONResponse("health", healthy),
		Healthy:      healthy,
		URL:          client.BaseURL(),
		APIKeySource: cfg.APIKeySource,
		DurationMs:   time.Since(start).Milliseconds(),
	}

	if jsonOutput {
		if err := shared.EmitJSON(out, result); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	} else {
		writeText(out, result)
	}

	if !healthy {
		return shared.NewSilentError(shared.ExitFailure)
	}
	return nil
}

func writeText(out io.Writer, r Result) {
	if r.Healthy {
		fmt.Fprintln(out, shared.RenderOK("n8n is reachable"))
	} else {
		fmt.Fprintln(out, shared.RenderError("n8n is not reachable"))
	}
	fmt.Fprintln(out, shared.RenderField("url", r.URL))
	fmt.Fprintln(out, shared.RenderField("api key source", r.APIKeySource))
	fmt.Fprintln(out, shared.RenderField("duration", fmt.Sprintf("%dms", r.DurationMs)))
}
