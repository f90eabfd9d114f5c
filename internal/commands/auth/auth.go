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

// Package auth implements the auth command, which manages the n8n API key
// stored in the OS keychain.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tombee/n8n-mcp/internal/commands/shared"
	"github.com/tombee/n8n-mcp/internal/log"
	"github.com/tombee/n8n-mcp/internal/secrets"
)

// NewCommand creates the auth command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the n8n API key in the OS keychain",
		Long: `Store the n8n API key in the system keychain (macOS Keychain, Linux
Secret Service, Windows Credential Manager).

The keychain is consulted only when N8N_API_KEY is not set by the
config file, .env or the environment.

Examples:
  n8n-mcp auth set-key
  echo "$KEY" | n8n-mcp auth set-key
  n8n-mcp auth status
  n8n-mcp auth clear-key`,
	}

	cmd.AddCommand(newSetKeyCommand())
	cmd.AddCommand(newClearKeyCommand())
	cmd.AddCommand(newStatusCommand())

	return cmd
}

func newSetKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-key",
		Short: "Store the n8n API key",
		Long: `Store the n8n API key in the keychain. The key is read from stdin when
piped, otherwise it is prompted for without echo.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := availableStore()
			if err != nil {
				return err
			}

			var key string
			if shared.IsNonInteractive() {
				key, err = readKey(cmd.InOrStdin())
			} else {
				key, err = promptKey()
			}
			if err != nil {
				return err
			}

			return setKey(cmd.Context(), store, key, cmd.OutOrStdout())
		},
	}
}

func newClearKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-key",
		Short: "Remove the stored n8n API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := availableStore()
			if err != nil {
				return err
			}
			return clearKey(cmd.Context(), store, cmd.OutOrStdout())
		},
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the API key comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return status(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func availableStore() (secrets.Store, error) {
	store := shared.SecretStore()
	if store == nil || !store.Available() {
		return nil, shared.NewFailureError("keychain is not available", secrets.ErrBackendUnavailable)
	}
	return store, nil
}

// readKey reads the key from a pipe. Surrounding whitespace is dropped.
func readKey(in io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(in, 64<<10))
	if err != nil {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// promptKey asks for the key on the terminal without echo.
func promptKey() (string, error) {
	var key string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("n8n API key").
				Description("Create one in n8n under Settings > n8n API").
				EchoMode(huh.EchoModePassword).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("API key cannot be empty")
					}
					return nil
				}).
				Value(&key),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", shared.NewSilentError(shared.ExitInterrupted)
		}
		return "", err
	}
	return strings.TrimSpace(key), nil
}

func setKey(ctx context.Context, store secrets.Store, key string, out io.Writer) error {
	if key == "" {
		return shared.NewFailureError("API key cannot be empty", nil)
	}
	if err := store.Set(ctx, secrets.APIKeyName, key); err != nil {
		return shared.NewFailureError("failed to store API key", err)
	}
	fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("API key %s stored in %s", log.SanitizeAPIKey(key), store.Name())))
	return nil
}

func clearKey(ctx context.Context, store secrets.Store, out io.Writer) error {
	err := store.Delete(ctx, secrets.APIKeyName)
	switch {
	case errors.Is(err, secrets.ErrSecretNotFound):
		fmt.Fprintln(out, "No API key stored")
		return nil
	case err != nil:
		return shared.NewFailureError("failed to remove API key", err)
	}
	fmt.Fprintln(out, shared.RenderOK("API key removed from "+store.Name()))
	return nil
}

// status reports the effective API key source after full config loading.
func status(ctx context.Context, out io.Writer) error {
	cfg, err := shared.LoadConfig(ctx)
	if err != nil {
		return err
	}

	if shared.GetJSON() {
		return shared.EmitJSON(out, struct {
			shared.JSONResponse
			Source string `json:"source"`
			Key    string `json:"key"`
		}{
			JSONResponse: shared.NewJSONResponse("auth status", true),
			Source:       cfg.APIKeySource,
			Key:          log.SanitizeAPIKey(cfg.N8N.APIKey),
		})
	}

	fmt.Fprintln(out, shared.RenderField("source", cfg.APIKeySource))
	fmt.Fprintln(out, shared.RenderField("key", log.SanitizeAPIKey(cfg.N8N.APIKey)))
	return nil
}
