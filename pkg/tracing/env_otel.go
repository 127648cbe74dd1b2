//go:build otel

// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Built with -tags=otel, spans from hash and verify runs are exported over
// OTLP/HTTP. Configuration comes from the standard OTEL_* variables.

package tracing

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"sigs.k8s.io/release-utils/version"

	"github.com/sigstore/code-hashing/pkg/hashing/algorithm"
)

const (
	serviceName = "code-hashing"
	tracerName  = "github.com/sigstore/code-hashing"

	// localEndpoint is used when no OTLP endpoint is configured, so a local
	// collector on the default port picks up spans without extra setup.
	localEndpoint = "http://localhost:4318"
)

var provider *sdktrace.TracerProvider

// InitFromEnv installs an OTLP tracer unless OTEL_TRACES_EXPORTER is "none"
// or OTEL_SDK_DISABLED is true.
func InitFromEnv() error {
	if os.Getenv("OTEL_TRACES_EXPORTER") == "none" {
		return nil
	}
	if disabled, _ := strconv.ParseBool(os.Getenv("OTEL_SDK_DISABLED")); disabled {
		return nil
	}

	exp, err := otlptracehttp.New(context.Background(), exporterOptions()...)
	if err != nil {
		return fmt.Errorf("create OTLP exporter: %w", err)
	}
	provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(newResource()),
	)
	otel.SetTracerProvider(provider)
	SetTracer(&otelTracer{tracer: provider.Tracer(tracerName)})
	return nil
}

// Shutdown flushes batched spans. It is a no-op when InitFromEnv installed
// nothing.
func Shutdown(ctx context.Context) error {
	if provider == nil {
		return nil
	}
	tp := provider
	provider = nil
	return tp.Shutdown(ctx)
}

func exporterOptions() []otlptracehttp.Option {
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" || os.Getenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT") != "" {
		return nil
	}
	return []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(localEndpoint),
		otlptracehttp.WithInsecure(),
	}
}

// newResource describes this binary: service name and version plus the
// digest algorithms it can produce, so traces from different builds can be
// told apart.
func newResource() *resource.Resource {
	name := os.Getenv("OTEL_SERVICE_NAME")
	if name == "" {
		name = serviceName
	}
	info := version.GetVersionInfo()

	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(name),
		semconv.ServiceVersion(info.GitVersion),
		attribute.String("code_hashing.git_commit", info.GitCommit),
		attribute.StringSlice("code_hashing.algorithms", algorithm.Names()),
	)
}

type otelTracer struct {
	tracer trace.Tracer
}

func (t *otelTracer) Start(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name)
	return ctx, &otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) SetAttribute(key string, value interface{}) {
	s.span.SetAttributes(toKeyValue(key, value))
}

func (s *otelSpan) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

func (s *otelSpan) End() {
	s.span.End()
}

// toKeyValue maps span attribute values to OTel types. Page counts and sizes
// stay numeric; anything else is rendered with %v.
func toKeyValue(key string, value interface{}) attribute.KeyValue {
	k := attribute.Key(key)
	switch v := value.(type) {
	case string:
		return k.String(v)
	case bool:
		return k.Bool(v)
	case int:
		return k.Int(v)
	case int64:
		return k.Int64(v)
	case float64:
		return k.Float64(v)
	case []string:
		return k.StringSlice(v)
	case fmt.Stringer:
		return k.String(v.String())
	case nil:
		return k.String("")
	default:
		return k.String(strings.TrimSpace(fmt.Sprintf("%v", v)))
	}
}
