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

package httpclient

import (
	"net/url"
	"strings"
)

const redacted = "[REDACTED]"

// sensitiveParams are matched case-insensitively as substrings of query
// parameter names.
var sensitiveParams = []string{
	"api_key",
	"apikey",
	"token",
	"password",
	"auth",
	"secret",
	"key",
	"credential",
	"signature",
}

// RedactURL parses raw and returns it with credentials removed. Strings
// that do not parse are returned as "[REDACTED]".
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return redacted
	}
	return sanitizeURL(u)
}

// sanitizeURL masks sensitive query parameters and userinfo passwords.
func sanitizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	safe := *u
	if safe.User != nil {
		if _, hasPassword := safe.User.Password(); hasPassword {
			safe.User = url.UserPassword(safe.User.Username(), redacted)
		}
	}

	if safe.RawQuery != "" {
		q := safe.Query()
		for param := range q {
			if isSensitiveParam(param) {
				q.Set(param, redacted)
			}
		}
		safe.RawQuery = q.Encode()
	}

	return safe.String()
}

func isSensitiveParam(param string) bool {
	lower := strings.ToLower(param)
	for _, sensitive := range sensitiveParams {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}
