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

package server

import (
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter bounds the rate of MCP tool calls with a token bucket whose
// burst equals the per-minute allowance.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter allowing callsPerMinute tool calls per
// minute. A non-positive value disables limiting.
func NewRateLimiter(callsPerMinute int) *RateLimiter {
	if callsPerMinute <= 0 {
		return &RateLimiter{}
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(callsPerMinute)), callsPerMinute),
	}
}

// AllowCall reports whether a tool call may proceed now.
func (rl *RateLimiter) AllowCall() bool {
	if rl == nil || rl.limiter == nil {
		return true
	}
	return rl.limiter.Allow()
}

// allowAt is AllowCall against an explicit clock. Used by tests.
func (rl *RateLimiter) allowAt(now time.Time) bool {
	if rl == nil || rl.limiter == nil {
		return true
	}
	return rl.limiter.AllowN(now, 1)
}
