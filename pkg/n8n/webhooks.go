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
	"net/url"
	"strings"
)

// RunWebhook invokes the webhook registered under name and returns the
// response body, decoded as JSON when possible and as a string otherwise.
//
// The verb defaults to POST. An unsupported verb fails with
// INVALID_HTTP_METHOD before any request is sent.
func (c *Client) RunWebhook(ctx context.Context, name string, req *WebhookRequest) (any, error) {
	if req == nil {
		req = &WebhookRequest{}
	}

	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	var body any
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		body = req.Data
	}

	return do[any](ctx, c, request{
		operation: "run_webhook",
		method:    method,
		path:      "/webhook/" + url.PathEscape(name),
		body:      body,
		headers:   req.Headers,
	})
}
