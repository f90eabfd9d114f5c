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

// Package n8n provides a client for the n8n REST API (workflows, executions,
// webhooks) with a uniform retry policy and a single normalized error type.
//
// # Usage
//
//	cfg := n8n.DefaultConfig()
//	cfg.BaseURL = "http://localhost:5678"
//	cfg.APIKey = os.Getenv("N8N_API_KEY")
//	client, err := n8n.NewClient(cfg)
//	if err != nil {
//	    return err
//	}
//	workflows, err := client.ListWorkflows(ctx, &n8n.ListWorkflowsQuery{Limit: 10})
//
// # Retry Behavior
//
// Every operation runs through the same executor:
//   - Success on any attempt returns immediately
//   - 4xx responses other than 429 are raised on the first attempt
//   - 429, 5xx, network failures and other statusless errors are retried
//   - Delay before retry n (0-based) is RetryDelay * 2^n, without jitter
//   - At most MaxRetries retries, so MaxRetries+1 attempts in total
//
// Errors raised locally for structural reasons (an unsupported webhook verb)
// are permanent and never retried.
//
// # Errors
//
// Every error returned by the client is a *Error with one of the codes
// HTTP_ERROR (or a code supplied by the server), NETWORK_ERROR,
// UNKNOWN_ERROR or INVALID_HTTP_METHOD. Use errors.As to inspect it:
//
//	var apiErr *n8n.Error
//	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
//	    // handle missing workflow
//	}
package n8n
