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

package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	for _, want := range []string{"serve", "health", "auth", "config", "completion", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"verbose", "json", "config", "env-file"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "flag %s", name)
	}
	assert.Equal(t, ".env", cmd.PersistentFlags().Lookup("env-file").DefValue)
}

func TestRootCommand_SilencesErrors(t *testing.T) {
	cmd := NewRootCommand()

	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)
}

func TestRootCommand_Version(t *testing.T) {
	SetVersion("1.2.3", "abc", "today")
	defer SetVersion("dev", "unknown", "unknown")

	cmd := NewRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "n8n-mcp version 1.2.3")
}

func TestRootCommand_Completion(t *testing.T) {
	cmd := NewRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"completion", "bash"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "n8n-mcp")
}
