// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package telemetry wires optional OpenTelemetry tracing for the HTTP server.
//
// Tracing is enabled only when an OTLP endpoint is configured. Without one,
// [Init] installs nothing and the returned middleware is the identity.
package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

// Tracing holds the HTTP middleware and shutdown hook produced by [Init].
type Tracing struct {
	Enabled  bool
	Shutdown ShutdownFunc
	service  string
}

// Middleware wraps next with an otelhttp handler when tracing is enabled.
// A nil Tracing passes next through.
func (t *Tracing) Middleware(next http.Handler) http.Handler {
	if t == nil || !t.Enabled {
		return next
	}
	return otelhttp.NewHandler(next, t.service)
}

/*
Init configures the global tracer provider and propagators.

Parameters:
  - ctx: context for exporter and resource creation
  - serviceName: reported as service.name
  - endpoint: OTLP/HTTP collector URL, e.g. http://otel-collector:4318

Returns:
  - *Tracing: always non-nil; disabled when endpoint is empty
  - error: exporter or resource construction failures
*/
func Init(ctx context.Context, serviceName, endpoint string) (*Tracing, error) {
	noop := &Tracing{Shutdown: func(context.Context) error { return nil }, service: serviceName}
	if endpoint == "" {
		return noop, nil
	}

	options, err := exporterOptions(endpoint)
	if err != nil {
		return noop, err
	}

	exporter, err := otlptracehttp.New(ctx, options...)
	if err != nil {
		return noop, fmt.Errorf("telemetry: create exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return noop, fmt.Errorf("telemetry: create resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Tracing{Enabled: true, Shutdown: provider.Shutdown, service: serviceName}, nil
}

// exporterOptions accepts either a full URL or a bare host:port.
func exporterOptions(endpoint string) ([]otlptracehttp.Option, error) {
	if !strings.Contains(endpoint, "://") {
		return []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}, nil
	}

	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("telemetry: invalid OTLP endpoint %q", endpoint)
	}

	options := []otlptracehttp.Option{otlptracehttp.WithEndpoint(parsed.Host)}
	if parsed.Path != "" && parsed.Path != "/" {
		options = append(options, otlptracehttp.WithURLPath(parsed.Path))
	}
	if parsed.Scheme == "http" {
		options = append(options, otlptracehttp.WithInsecure())
	}
	return options, nil
}
