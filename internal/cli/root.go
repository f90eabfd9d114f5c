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

// Package cli assembles the n8n-mcp command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/tombee/n8n-mcp/internal/commands/auth"
	"github.com/tombee/n8n-mcp/internal/commands/completion"
	configcmd "github.com/tombee/n8n-mcp/internal/commands/config"
	"github.com/tombee/n8n-mcp/internal/commands/health"
	"github.com/tombee/n8n-mcp/internal/commands/serve"
	"github.com/tombee/n8n-mcp/internal/commands/shared"
	versioncmd "github.com/tombee/n8n-mcp/internal/commands/version"
)

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command with every subcommand.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "n8n-mcp",
		Short: "n8n MCP server",
		Long: `n8n-mcp exposes the n8n workflow automation REST API as Model Context
Protocol tools, so AI assistants can list, create, run and inspect
workflows and executions.

Configuration is read from ~/.config/n8n-mcp/config.yaml, .env, the
environment (N8N_API_URL, N8N_API_KEY, ...) and the OS keychain.

Run 'n8n-mcp health' to check connectivity.
Run 'n8n-mcp serve' to start the MCP server on stdio.`,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
	}

	verbose, json, config, envFile := shared.RegisterFlagPointers()

	cmd.PersistentFlags().BoolVarP(verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(json, "json", false, "Output in JSON format")
	cmd.PersistentFlags().StringVar(config, "config", "", "Path to config file (default: ~/.config/n8n-mcp/config.yaml)")
	cmd.PersistentFlags().StringVar(envFile, "env-file", ".env", "Path to a dotenv file; missing files are ignored")

	cmd.AddCommand(serve.NewCommand())
	cmd.AddCommand(health.NewCommand())
	cmd.AddCommand(auth.NewCommand())
	cmd.AddCommand(configcmd.NewConfigCommand())
	cmd.AddCommand(completion.NewCommand())
	cmd.AddCommand(versioncmd.NewVersionCommand())

	return cmd
}

// HandleExitError handles exit errors with proper exit codes
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
