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

// Package secrets stores the n8n API key outside of config files.
package secrets

import (
	"context"
	"errors"
)

var (
	// ErrSecretNotFound is returned when a secret key does not exist in the backend.
	ErrSecretNotFound = errors.New("secret not found")

	// ErrBackendUnavailable is returned when a backend cannot be used in the current environment.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// APIKeyName is the key under which the n8n API key is stored.
const APIKeyName = "n8n-api-key"

// Store provides storage for sensitive values.
type Store interface {
	// Name returns the backend identifier, e.g. "keychain".
	Name() string

	// Get retrieves a secret by key. Returns ErrSecretNotFound if not present.
	Get(ctx context.Context, key string) (string, error)

	// Set stores a secret.
	Set(ctx context.Context, key string, value string) error

	// Delete removes a secret. Returns ErrSecretNotFound if not present.
	Delete(ctx context.Context, key string) error

	// Available returns true if this backend is usable in the current environment.
	Available() bool
}

// Lookup returns the secret stored under key, or "" when the store is nil,
// unavailable or does not hold the key. Other errors are returned.
func Lookup(ctx context.Context, store Store, key string) (string, error) {
	if store == nil || !store.Available() {
		return "", nil
	}
	value, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrSecretNotFound) || errors.Is(err, ErrBackendUnavailable) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}
