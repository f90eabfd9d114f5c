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

package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// DefaultService is the keychain service name for n8n-mcp entries.
const DefaultService = "n8n-mcp"

// probeKey is looked up once to detect a locked or missing keychain.
const probeKey = "__n8n_mcp_availability_probe__"

var _ Store = (*Keychain)(nil)

// Keychain keeps secrets in the OS credential store through go-keyring:
// Keychain Access on macOS, the Secret Service on Linux and the Credential
// Manager on Windows.
type Keychain struct {
	service   string
	available bool
}

// NewKeychain creates a keychain store for service, or DefaultService when
// service is empty.
func NewKeychain(service string) *Keychain {
	if service == "" {
		service = DefaultService
	}
	_, err := keyring.Get(service, probeKey)
	return &Keychain{
		service:   service,
		available: err == nil || errors.Is(err, keyring.ErrNotFound),
	}
}

// Name returns the backend identifier.
func (k *Keychain) Name() string {
	return "keychain"
}

// Available reports whether the probe lookup at construction succeeded.
func (k *Keychain) Available() bool {
	return k.available
}

// Get returns the secret stored under key.
func (k *Keychain) Get(_ context.Context, key string) (string, error) {
	if !k.available {
		return "", errUnavailable
	}
	value, err := keyring.Get(k.service, key)
	if err != nil {
		return "", k.classify(key, err)
	}
	return value, nil
}

// Set stores value under key. Empty values are rejected; use Delete.
func (k *Keychain) Set(_ context.Context, key, value string) error {
	if value == "" {
		return fmt.Errorf("refusing to store empty secret for %s", key)
	}
	if !k.available {
		return errUnavailable
	}
	return k.classify(key, keyring.Set(k.service, key, value))
}

// Delete removes key.
func (k *Keychain) Delete(_ context.Context, key string) error {
	if !k.available {
		return errUnavailable
	}
	return k.classify(key, keyring.Delete(k.service, key))
}

var errUnavailable = fmt.Errorf("%w: keychain service unavailable", ErrBackendUnavailable)

// classify maps go-keyring errors onto the package sentinels.
func (k *Keychain) classify(key string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, keyring.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrSecretNotFound, key)
	case isKeychainUnavailableError(err):
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	default:
		return fmt.Errorf("keychain %s: %w", k.service, err)
	}
}

// unavailableHints are substrings of platform errors for a locked or
// unreachable credential store.
var unavailableHints = []string{
	"locked",
	"cannot access",
	"permission denied",
	"failed to unlock",
	"user interaction required",
	"secret service",
	"dbus",
	"user canceled",
}

func isKeychainUnavailableError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, hint := range unavailableHints {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}
