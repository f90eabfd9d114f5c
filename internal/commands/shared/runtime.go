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
	"context"
	"log/slog"
	"os"

	"github.com/tombee/n8n-mcp/internal/config"
	"github.com/tombee/n8n-mcp/internal/log"
	"github.com/tombee/n8n-mcp/internal/secrets"
	"github.com/tombee/n8n-mcp/pkg/n8n"
)

// newSecretStore is replaced in tests.
var newSecretStore = func() secrets.Store {
	return secrets.NewKeychain(secrets.DefaultService)
}

// SecretStore returns the keychain the commands use.
func SecretStore() secrets.Store {
	return newSecretStore()
}

// SetSecretStoreForTest replaces the keychain and returns a restore function.
func SetSecretStoreForTest(store secrets.Store) func() {
	prev := newSecretStore
	newSecretStore = func() secrets.Store { return store }
	return func() { newSecretStore = prev }
}

// LoadConfig loads the configuration from the global flags, environment
// and keychain. Failures are returned as config exit errors.
func LoadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx, config.LoadOptions{
		ConfigPath: GetConfigPath(),
		EnvFile:    GetEnvFile(),
		Secrets:    SecretStore(),
	})
	if err != nil {
		return nil, NewConfigError(err)
	}
	return cfg, nil
}

// NewLogger builds the process logger. Logs always go to stderr; stdout
// carries the MCP protocol.
func NewLogger(cfg *config.Config) *slog.Logger {
	lc := &log.Config{
		Level:     cfg.Log.Level,
		Format:    log.Format(cfg.Log.Format),
		AddSource: cfg.Log.AddSource,
		Output:    os.Stderr,
		Disabled:  !cfg.N8N.EnableLogging,
	}

	if GetVerbose() || truthy(os.Getenv("N8N_MCP_DEBUG")) {
		lc.Level = "debug"
		lc.AddSource = true
	}
	return log.New(lc)
}

// NewClient creates an n8n client from cfg.
func NewClient(cfg *config.Config, logger *slog.Logger, opts ...n8n.Option) (*n8n.Client, error) {
	client, err := n8n.NewClient(cfg.ClientConfig(logger, UserAgent()), opts...)
	if err != nil {
		return nil, NewConfigError(err)
	}
	return client, nil
}
