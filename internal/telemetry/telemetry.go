// Package telemetry sets up the OpenTelemetry tracer used to record window
// operations.
package telemetry

import (
	"context"
	"os"

	"github.com/bryanchriswhite/winctl/internal/config"
	"github.com/bryanchriswhite/winctl/internal/logger"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/bryanchriswhite/winctl/internal/window"

// Provider owns the tracer provider. A disabled Provider hands out a no-op
// tracer.
type Provider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// endpointEnv lists the variables otlptracehttp reads its endpoint from.
var endpointEnv = []string{
	"OTEL_EXPORTER_OTLP_ENDPOINT",
	"OTEL_EXPORTER_OTLP_TRACES_ENDPOINT",
}

func endpointFromEnv() bool {
	for _, key := range endpointEnv {
		if os.Getenv(key) != "" {
			return true
		}
	}
	return false
}

// NewProvider creates an OTLP/HTTP exporter when an OTLP endpoint is set in
// the environment, or when tracing is enabled with cfg.Endpoint. The
// environment takes precedence over cfg.Endpoint.
func NewProvider(ctx context.Context, cfg config.TracingConfig) (*Provider, error) {
	fromEnv := endpointFromEnv()
	if !fromEnv && (!cfg.Enabled || cfg.Endpoint == "") {
		return &Provider{tracer: noop.NewTracerProvider().Tracer(instrumentationName)}, nil
	}

	var opts []otlptracehttp.Option
	if !fromEnv {
		opts = append(opts,
			otlptracehttp.WithEndpoint(cfg.Endpoint),
			otlptracehttp.WithInsecure(),
		)
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "winctl"
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)

	return NewWithExporter(exporter, res), nil
}

// NewWithExporter builds an enabled provider around exporter.
func NewWithExporter(exporter sdktrace.SpanExporter, res *resource.Resource) *Provider {
	opts := []sdktrace.TracerProviderOption{sdktrace.WithBatcher(exporter)}
	if res != nil {
		opts = append(opts, sdktrace.WithResource(res))
	}
	provider := sdktrace.NewTracerProvider(opts...)

	logger.WithComponent("telemetry").Info().Msg("Tracing enabled")
	return &Provider{
		provider: provider,
		tracer:   provider.Tracer(instrumentationName),
	}
}

// Enabled reports whether spans are exported.
func (p *Provider) Enabled() bool {
	return p.provider != nil
}

// Tracer returns the tracer for window operations.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// Shutdown flushes pending spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.provider == nil {
		return nil
	}
	return p.provider.Shutdown(ctx)
}
