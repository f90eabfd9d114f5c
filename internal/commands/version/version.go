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

// Package version implements the version command.
package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/tombee/n8n-mcp/internal/commands/shared"
)

// VersionInfo contains version metadata
type VersionInfo struct {
	shared.JSONResponse
	AppVersion string `json:"version"`
	Commit     string `json:"commit"`
	BuildDate  string `json:"build_date"`
	GoVersion  string `json:"go_version"`
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date for n8n-mcp.`,
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
}

func runVersion(cmd *cobra.Command, args []string) error {
	v, c, b := shared.GetVersion()

	info := VersionInfo{
		JSONResponse: shared.NewJSONResponse("version", true),
		AppVersion:   v,
		Commit:       c,
		BuildDate:    b,
		GoVersion:    runtime.Version(),
	}

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		if err := shared.EmitJSON(out, info); err != nil {
			return fmt.Errorf("failed to marshal version info: %w", err)
		}
		return nil
	}

	fmt.Fprintf(out, "n8n-mcp version %s\n", info.AppVersion)
	fmt.Fprintf(out, "  commit:     %s\n", info.Commit)
	fmt.Fprintf(out, "  build date: %s\n", info.BuildDate)
	fmt.Fprintf(out, "  go:         %s\n", info.GoVersion)
	return nil
}
