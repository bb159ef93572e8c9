package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	menudomain "github.com/Apurer/restaurant-pos/internal/domains/menu/domain"
	menuports "github.com/Apurer/restaurant-pos/internal/domains/menu/ports"
)

type stubService struct {
	addErr    error
	deleteErr error
	feedErr   error
}

type stubSubscription struct{}

func (stubSubscription) State() menuports.SubscriptionState { return menuports.StateStreaming }
func (stubSubscription) Unsubscribe()                       {}

func (s *stubService) Subscribe(_ string, _ func([]menudomain.MenuItem), onError func(error)) menuports.Subscription {
	if s.feedErr != nil && onError != nil {
		onError(s.feedErr)
	}
	return stubSubscription{}
}

func (s *stubService) AddItem(context.Context, string, string, float64) error { return s.addErr }
func (s *stubService) DeleteItem(context.Context, string, string) error       { return s.deleteErr }

func newInstrumented(t *testing.T, inner menuports.Service) (menuports.Service, *tracetest.SpanRecorder, *sdkmetric.ManualReader, *bytes.Buffer) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	logs := &bytes.Buffer{}
	svc := New(inner,
		WithLogger(slog.New(slog.NewJSONHandler(logs, nil))),
		WithTracer(tp.Tracer("test")),
		WithMeter(mp.Meter("test")),
	)
	return svc, recorder, reader, logs
}

func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestService_AddItemRecordsSpanAndCounter(t *testing.T) {
	svc, spans, reader, _ := newInstrumented(t, &stubService{})

	require.NoError(t, svc.AddItem(context.Background(), "uid-1", "Soda", 1.5))

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "MenuService.AddItem", ended[0].Name())
	assert.Equal(t, int64(1), counterValue(t, reader, "menu.service.items_added"))
}

func TestService_FailureMarksSpanAndSkipsCounter(t *testing.T) {
	boom := errors.New("boom")
	svc, spans, reader, logs := newInstrumented(t, &stubService{deleteErr: boom})

	err := svc.DeleteItem(context.Background(), "uid-1", "item-1")
	require.ErrorIs(t, err, boom)

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Zero(t, counterValue(t, reader, "menu.service.items_deleted"))
	assert.Contains(t, logs.String(), "failed to delete menu item")
}

func TestService_SubscribeLogsFeedErrors(t *testing.T) {
	boom := errors.New("permission denied")
	svc, _, reader, logs := newInstrumented(t, &stubService{feedErr: boom})

	var got error
	sub := svc.Subscribe("uid-1", nil, func(err error) { got = err })

	assert.Equal(t, menuports.StateStreaming, sub.State())
	assert.ErrorIs(t, got, boom)
	assert.Contains(t, logs.String(), "menu subscription error")
	assert.Equal(t, int64(1), counterValue(t, reader, "menu.service.subscriptions_opened"))
}
