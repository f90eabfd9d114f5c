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

// Package config implements the config command.
package config

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tombee/n8n-mcp/internal/commands/shared"
	"github.com/tombee/n8n-mcp/internal/config"
	"github.com/tombee/n8n-mcp/internal/log"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View configuration",
		Long: `View the effective n8n-mcp configuration.

Subcommands:
  show - Display the effective configuration
  path - Show config file location`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigPathCommand())

	// If no subcommand provided, default to 'show'
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runConfigShow(cmd, args)
	}

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Display the configuration after merging defaults, the config file,
.env, the environment and the keychain.

The API key is masked. Use --json for machine-readable output.`,
		Args: cobra.NoArgs,
		RunE: runConfigShow,
	}
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := shared.GetConfigPath()
			if path == "" {
				var err error
				path, err = config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("failed to determine config path: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

// effectiveConfig is the displayed form of config.Config.
type effectiveConfig struct {
	N8N struct {
		APIURL        string `yaml:"api_url" json:"api_url"`
		APIKey        string `yaml:"api_key" json:"api_key"`
		APIKeySource  string `yaml:"api_key_source" json:"api_key_source"`
		MaxRetries    int    `yaml:"max_retries" json:"max_retries"`
		RetryDelay    string `yaml:"retry_delay" json:"retry_delay"`
		Timeout       string `yaml:"timeout" json:"timeout"`
		EnableLogging bool   `yaml:"enable_logging" json:"enable_logging"`
		Breaker       int    `yaml:"breaker_threshold" json:"breaker_threshold"`
		BreakerWait   string `yaml:"breaker_timeout" json:"breaker_timeout"`
	} `yaml:"n8n" json:"n8n"`
	Log struct {
		Level     string `yaml:"level" json:"level"`
		Format    string `yaml:"format" json:"format"`
		AddSource bool   `yaml:"add_source" json:"add_source"`
	} `yaml:"log" json:"log"`
	Server struct {
		RateLimit int `yaml:"rate_limit" json:"rate_limit"`
	} `yaml:"server" json:"server"`
}

func mask(cfg *config.Config) effectiveConfig {
	var out effectiveConfig
	out.N8N.APIURL = cfg.N8N.APIURL
	out.N8N.APIKey = log.SanitizeAPIKey(cfg.N8N.APIKey)
	out.N8N.APIKeySource = cfg.APIKeySource
	out.N8N.MaxRetries = cfg.N8N.MaxRetries
	out.N8N.RetryDelay = cfg.N8N.RetryDelay.String()
	out.N8N.Timeout = cfg.N8N.Timeout.String()
	out.N8N.EnableLogging = cfg.N8N.EnableLogging
	out.N8N.Breaker = cfg.N8N.BreakerThreshold
	out.N8N.BreakerWait = cfg.N8N.BreakerTimeout.String()
	out.Log.Level = cfg.Log.Level
	out.Log.Format = cfg.Log.Format
	out.Log.AddSource = cfg.Log.AddSource
	out.Server.RateLimit = cfg.Server.RateLimit
	return out
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := shared.LoadConfig(cmd.Context())
	if err != nil {
		return err
	}
	return writeConfig(cmd.OutOrStdout(), mask(cfg), shared.GetJSON())
}

func writeConfig(out io.Writer, cfg effectiveConfig, jsonOutput bool) error {
	if jsonOutput {
		return shared.EmitJSON(out, cfg)
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}
