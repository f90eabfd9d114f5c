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

package shared

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// ciMarkers are environment variables whose presence means no one is at
// the keyboard.
var ciMarkers = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "CIRCLECI", "BUILDKITE", "JENKINS_HOME"}

// IsNonInteractive reports whether prompting is off the table.
// N8N_MCP_NON_INTERACTIVE and CI markers win over the terminal check.
func IsNonInteractive() bool {
	if truthy(os.Getenv("N8N_MCP_NON_INTERACTIVE")) {
		return true
	}
	for _, name := range ciMarkers {
		if v := os.Getenv(name); v != "" && !strings.EqualFold(v, "false") && v != "0" {
			return true
		}
	}
	return !StdinIsTerminal()
}

// StdinIsTerminal reports whether stdin is attached to a TTY.
func StdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func truthy(v string) bool {
	return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
}
