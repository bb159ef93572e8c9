package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" warning "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestParseRatio(t *testing.T) {
	assert.Equal(t, 0.25, parseRatio("0.25"))
	assert.Equal(t, 1.0, parseRatio(""))
	assert.Equal(t, 1.0, parseRatio("2"))
	assert.Equal(t, 1.0, parseRatio("half"))
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "TEXT")
	t.Setenv("OTEL_TRACES_EXPORTER", "none")
	t.Setenv("OTEL_TRACES_SAMPLER_RATIO", "0.5")
	t.Setenv("ENVIRONMENT", "")

	opts := OptionsFromEnv("pos-test")
	assert.Equal(t, "pos-test", opts.ServiceName)
	assert.Equal(t, "local", opts.Environment)
	assert.Equal(t, slog.LevelDebug, opts.LogLevel)
	assert.Equal(t, "text", opts.LogFormat)
	assert.Equal(t, ExporterNone, opts.Exporter)
	assert.Equal(t, 0.5, opts.SampleRatio)
}

func TestNewLogger_TagsServiceAndHonorsLevel(t *testing.T) {
	out := &bytes.Buffer{}
	logger := NewLogger(Options{ServiceName: "pos-test", LogLevel: slog.LevelWarn, LogOutput: out})

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), `"msg":"shown"`)
	assert.Contains(t, out.String(), `"service":"pos-test"`)
}

func TestInitWithOptions_WithoutExporter(t *testing.T) {
	ctx := context.Background()
	instruments, shutdown, err := InitWithOptions(ctx, Options{
		ServiceName: "pos-test",
		Exporter:    ExporterNone,
		SampleRatio: 1,
		LogOutput:   &bytes.Buffer{},
	})
	require.NoError(t, err)
	defer func() { require.NoError(t, shutdown(ctx)) }()

	counter, err := instruments.Meter("test").Int64Counter("pos.test.counter")
	require.NoError(t, err)
	counter.Add(ctx, 3)

	var rm metricdata.ResourceMetrics
	require.NoError(t, instruments.MetricReader.Collect(ctx, &rm))
	require.NotEmpty(t, rm.ScopeMetrics)
	assert.Equal(t, "pos.test.counter", rm.ScopeMetrics[0].Metrics[0].Name)

	_, span := instruments.Tracer("test").Start(ctx, "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}

func TestInstruments_NilSafe(t *testing.T) {
	var instruments *Instruments
	assert.NotNil(t, instruments.Tracer("test"))
	assert.NotNil(t, instruments.Meter("test"))
}
