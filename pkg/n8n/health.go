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

package n8n

import (
	"context"
	"net/http"
)

// HealthCheck reports whether the n8n instance answered its health
// endpoint. Failures are retried like any other call and then reported as
// false; the error itself is discarded.
func (c *Client) HealthCheck(ctx context.Context) bool {
	_, err := do[struct{}](ctx, c, request{
		operation: "health_check",
		method:    http.MethodGet,
		path:      "/health",
	})
	if err != nil {
		c.logger.Debug("health check failed", "error", err)
		return false
	}
	return true
}
