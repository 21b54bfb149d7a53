// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package tracing wraps OpenTelemetry for the spans emitted around each deployment stage.
package tracing

import (
	"context"
	"fmt"
	"os"

	"github.com/sageturner/sageturner/internal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/sageturner/sageturner"

// Well known span attributes.
const (
	StageKey         = attribute.Key("sageturner.stage")
	ModelNameKey     = attribute.Key("sageturner.model.name")
	EndpointKey      = attribute.Key("sageturner.endpoint.name")
	ContainerModeKey = attribute.Key("sageturner.container.mode")
	EndpointTypeKey  = attribute.Key("sageturner.endpoint.type")
)

// Start starts a span named spanName using the global tracer provider. When no provider has been
// installed the span is a no-op.
func Start(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// End ends the span, recording err as the span status when it is not nil.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End()
}

// FileProvider exports finished spans as JSON lines to a local file.
type FileProvider struct {
	tp   *sdktrace.TracerProvider
	file *os.File
}

// NewFileProvider creates the trace file at path and installs a tracer provider writing to it as the
// global provider.
func NewFileProvider(path string) (*FileProvider, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating trace log file: %w", err)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(file))
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	res, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName("sageturner"),
			semconv.ServiceVersion(internal.GetVersionNumber()),
		),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return &FileProvider{tp: tp, file: file}, nil
}

// Shutdown flushes pending spans and closes the trace file.
func (p *FileProvider) Shutdown(ctx context.Context) error {
	err := p.tp.Shutdown(ctx)
	if closeErr := p.file.Close(); err == nil {
		err = closeErr
	}

	return err
}
