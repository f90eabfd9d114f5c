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

package tracing

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerProvider owns the SDK tracer provider installed by New.
type TracerProvider struct {
	tp *sdktrace.TracerProvider
}

// New creates an SDK tracer provider exporting per cfg and installs it,
// along with the W3C propagators, as the global provider.
func New(ctx context.Context, cfg Config, opts ...sdktrace.TracerProviderOption) (*TracerProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion)
	if err != nil {
		return nil, err
	}

	exp, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	allOpts := append([]sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exp),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))),
	}, opts...)

	tp := sdktrace.NewTracerProvider(allOpts...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &TracerProvider{tp: tp}, nil
}

// Tracer returns a tracer for the given instrumentation scope.
func (p *TracerProvider) Tracer(name string) trace.Tracer {
	return p.tp.Tracer(name)
}

// Shutdown flushes pending spans and stops the exporter.
func (p *TracerProvider) Shutdown(ctx context.Context) error {
	return p.tp.Shutdown(ctx)
}

// NewMeterProvider creates an OpenTelemetry meter provider whose
// instruments are exposed through reg.
func NewMeterProvider(reg prometheus.Registerer, serviceName, version string) (*sdkmetric.MeterProvider, error) {
	if reg == nil {
		return nil, errors.New("prometheus registerer is required")
	}

	res, err := newResource(serviceName, version)
	if err != nil {
		return nil, err
	}

	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	), nil
}

func newResource(serviceName, version string) (*resource.Resource, error) {
	// Empty schema URL avoids conflicts when merging with the default resource.
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}
