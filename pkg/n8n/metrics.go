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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for client calls. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	attempts *prometheus.CounterVec
	retries  *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the client collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "n8n_mcp_request_attempts_total",
				Help: "Total n8n API request attempts, including retries",
			},
			[]string{"operation"},
		),
		retries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "n8n_mcp_request_retries_total",
				Help: "Total n8n API request retries",
			},
			[]string{"operation"},
		),
		failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "n8n_mcp_request_failures_total",
				Help: "Total n8n API calls that failed after retries, by error code",
			},
			[]string{"operation", "code"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "n8n_mcp_request_duration_seconds",
				Help:    "Duration of n8n API calls including retry waits",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "status"},
		),
	}
}

func (m *Metrics) attempt(operation string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(operation).Inc()
}

func (m *Metrics) retry(operation string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(operation).Inc()
}

func (m *Metrics) failure(operation, code string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(operation, code).Inc()
}

func (m *Metrics) observe(operation, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(operation, status).Observe(d.Seconds())
}
