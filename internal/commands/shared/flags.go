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

// Package shared holds state and helpers common to the n8n-mcp commands.
package shared

// Global flag values - set by root command
var (
	verboseFlag bool
	jsonFlag    bool
	configFlag  string
	envFileFlag string

	// Build-time version information
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// RegisterFlagPointers returns pointers to flag variables for binding.
// Called by root command to register flags.
func RegisterFlagPointers() (verbose, json *bool, config, envFile *string) {
	return &verboseFlag, &jsonFlag, &configFlag, &envFileFlag
}

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	version = v
	commit = c
	buildDate = b
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return version, commit, buildDate
}

// UserAgent is sent with every n8n API request.
func UserAgent() string {
	return "n8n-mcp/" + version
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verboseFlag
}

// GetJSON returns the JSON output flag value
func GetJSON() bool {
	return jsonFlag
}

// GetConfigPath returns the config file path
func GetConfigPath() string {
	return configFlag
}

// GetEnvFile returns the dotenv file path
func GetEnvFile() string {
	return envFileFlag
}

// SetFlagsForTest overrides the global flags and returns a restore function.
func SetFlagsForTest(verbose, json bool, config, envFile string) func() {
	prevVerbose, prevJSON, prevConfig, prevEnv := verboseFlag, jsonFlag, configFlag, envFileFlag
	verboseFlag, jsonFlag, configFlag, envFileFlag = verbose, json, config, envFile
	return func() {
		verboseFlag, jsonFlag, configFlag, envFileFlag = prevVerbose, prevJSON, prevConfig, prevEnv
	}
}
