package telemetry

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/bryanchriswhite/winctl/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func clearEndpointEnv(t *testing.T) {
	t.Helper()
	for _, key := range endpointEnv {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestDisabledProviderIsNoop(t *testing.T) {
	clearEndpointEnv(t)
	p, err := NewProvider(context.Background(), config.TracingConfig{Enabled: false})
	require.NoError(t, err)
	assert.False(t, p.Enabled())

	_, span := p.Tracer().Start(context.Background(), "op")
	span.End()
	assert.False(t, span.SpanContext().IsValid())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestEnabledWithoutEndpointIsNoop(t *testing.T) {
	clearEndpointEnv(t)
	p, err := NewProvider(context.Background(), config.TracingConfig{Enabled: true})
	require.NoError(t, err)
	assert.False(t, p.Enabled())
}

func TestExporterReceivesSpansOnFlush(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	p := NewWithExporter(exporter, nil)
	require.True(t, p.Enabled())

	_, span := p.Tracer().Start(context.Background(), "window.Maximize")
	span.End()
	require.NoError(t, p.provider.ForceFlush(context.Background()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "window.Maximize", spans[0].Name)
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestEndpointFromEnvironmentEnablesExporter(t *testing.T) {
	clearEndpointEnv(t)
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://127.0.0.1:4318")

	p, err := NewProvider(context.Background(), config.TracingConfig{})
	require.NoError(t, err)
	assert.True(t, p.Enabled())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	p.Shutdown(ctx)
}

func TestConfigEndpointEnablesExporter(t *testing.T) {
	clearEndpointEnv(t)

	p, err := NewProvider(context.Background(), config.TracingConfig{Enabled: true, Endpoint: "127.0.0.1:4318"})
	require.NoError(t, err)
	assert.True(t, p.Enabled())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	p.Shutdown(ctx)
}
