package instrumentation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	})
	require.NoError(t, err)
	require.NotNil(t, provider)

	assert.False(t, provider.Enabled())
	assert.NotNil(t, provider.Metrics(), "metrics must be usable when disabled")
	assert.False(t, provider.HasPrometheus())
	assert.NotNil(t, provider.Tracer("test"))

	// Recording against the no-op metrics must not panic.
	provider.Metrics().RecordToolInvocation(context.Background(), "get-haircut-times", StatusSuccess, time.Millisecond)

	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_PrometheusExporter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	})
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(ctx) }()

	assert.True(t, provider.Enabled())
	assert.True(t, provider.HasPrometheus())
	require.NotNil(t, provider.Metrics())
	assert.NotNil(t, provider.Tracer("test"))

	provider.Metrics().RecordUpstreamOperation(ctx, ServiceBokaDirekt, OperationAvailability, StatusSuccess, 20*time.Millisecond)
	provider.Metrics().RecordAvailableSlots(ctx, 3)
}

func TestNewProvider_StdoutExporter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, Config{
		ServiceName:       "test-service",
		ServiceVersion:    "1.0.0",
		Enabled:           true,
		MetricsExporter:   ExporterStdout,
		TracingExporter:   ExporterStdout,
		TraceSamplingRate: 1.0,
	})
	require.NoError(t, err)

	assert.True(t, provider.Enabled())
	assert.False(t, provider.HasPrometheus())

	_, span := provider.Tracer("test").Start(ctx, "test-span")
	span.End()

	assert.NoError(t, provider.Shutdown(ctx))
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{
			name:   "invalid metrics exporter",
			config: Config{Enabled: true, MetricsExporter: "invalid"},
		},
		{
			name:   "invalid tracing exporter",
			config: Config{Enabled: true, MetricsExporter: ExporterPrometheus, TracingExporter: "invalid"},
		},
		{
			name:   "invalid sampling rate",
			config: Config{Enabled: true, TraceSamplingRate: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(context.Background(), tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid instrumentation config")
		})
	}
}
