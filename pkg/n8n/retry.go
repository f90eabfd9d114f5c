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
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RetryPolicy controls how many times a failed call is retried and how long
// to wait between attempts.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	// Default: 3
	MaxRetries int

	// BaseDelay is the wait before the first retry. Each later retry
	// doubles it.
	// Default: 1s
	BaseDelay time.Duration
}

// MaxRetriesLimit is the largest MaxRetries a client accepts.
const MaxRetriesLimit = 10

// Delay returns the wait before retry number attempt (0-based):
// BaseDelay * 2^attempt, saturating at the largest time.Duration.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := p.BaseDelay
	for range attempt {
		if d > math.MaxInt64/2 {
			return math.MaxInt64
		}
		d *= 2
	}
	return d
}

// sleepFunc waits for d or until ctx is done.
type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// executor runs request thunks under a RetryPolicy.
type executor struct {
	policy  RetryPolicy
	logger  *slog.Logger
	sleep   sleepFunc
	metrics *Metrics
	tracer  trace.Tracer
}

// call identifies a logical operation for logging, metrics and tracing.
type call struct {
	operation string
	method    string
	path      string
	requestID string
}

// execute runs fn until it succeeds, fails with a non-retryable error, or
// the retry budget is spent. Every error it returns is a *Error.
//
// If ctx is cancelled while waiting between attempts, the last error is
// returned without another attempt.
func execute[T any](ctx context.Context, ex *executor, c call, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, span := ex.tracer.Start(ctx, "n8n."+c.operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", c.method),
			attribute.String("n8n.path", c.path),
			attribute.String("n8n.request_id", c.requestID),
		),
	)
	defer span.End()

	start := time.Now()
	logger := ex.logger.With(
		"operation", c.operation,
		"request_id", c.requestID,
	)

	var zero T
	attempt := 0
	for {
		ex.metrics.attempt(c.operation)
		logger.Debug("n8n request attempt",
			"attempt", attempt+1,
			"method", c.method,
			"path", c.path,
		)

		result, err := fn(ctx)
		if err == nil {
			span.SetAttributes(attribute.Int("n8n.attempts", attempt+1))
			ex.metrics.observe(c.operation, "success", time.Since(start))
			return result, nil
		}

		apiErr := normalize(err)

		if !apiErr.IsRetryable() || attempt >= ex.policy.MaxRetries {
			logger.Debug("n8n request failed",
				"attempt", attempt+1,
				"code", apiErr.Code,
				"status", apiErr.StatusCode,
				"error", apiErr.Message,
			)
			ex.fail(span, c, apiErr, attempt+1, start)
			return zero, apiErr
		}

		delay := ex.policy.Delay(attempt)
		logger.Warn("n8n request failed, retrying",
			"attempt", attempt+1,
			"max_retries", ex.policy.MaxRetries,
			"delay", delay,
			"code", apiErr.Code,
			"status", apiErr.StatusCode,
		)
		ex.metrics.retry(c.operation)
		span.AddEvent("retry", trace.WithAttributes(
			attribute.Int("attempt", attempt+1),
			attribute.Int64("delay_ms", delay.Milliseconds()),
		))

		if err := ex.sleep(ctx, delay); err != nil {
			logger.Debug("retry wait interrupted", "error", err)
			ex.fail(span, c, apiErr, attempt+1, start)
			return zero, apiErr
		}
		attempt++
	}
}

func (ex *executor) fail(span trace.Span, c call, apiErr *Error, attempts int, start time.Time) {
	span.SetAttributes(
		attribute.Int("n8n.attempts", attempts),
		attribute.String("n8n.error_code", apiErr.Code),
	)
	if apiErr.StatusCode != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", apiErr.StatusCode))
	}
	span.SetStatus(codes.Error, apiErr.Message)
	ex.metrics.failure(c.operation, apiErr.Code)
	ex.metrics.observe(c.operation, "error", time.Since(start))
}
