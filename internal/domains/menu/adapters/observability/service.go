package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	menudomain "github.com/Apurer/restaurant-pos/internal/domains/menu/domain"
	menuports "github.com/Apurer/restaurant-pos/internal/domains/menu/ports"
)

const tracerName = "github.com/Apurer/restaurant-pos/internal/domains/menu/adapters/observability/service"

// Service decorates the menu service with tracing, logging, and metrics.
type Service struct {
	inner   menuports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core menu service.
func New(inner menuports.Service, opts ...Option) menuports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

// Subscribe is not traced as a span; the feed outlives any request.
func (s *Service) Subscribe(identity string, onItems func([]menudomain.MenuItem), onError func(error)) menuports.Subscription {
	ctx := context.Background()
	s.logInfo(ctx, "opening menu subscription", slog.String("identity", identity))
	s.metrics.recordSubscribed(ctx)
	return s.inner.Subscribe(identity, onItems, func(err error) {
		s.logError(ctx, "menu subscription error", err, slog.String("identity", identity))
		if onError != nil {
			onError(err)
		}
	})
}

func (s *Service) AddItem(ctx context.Context, identity, name string, price float64) error {
	ctx, span := s.tracer.Start(ctx, "MenuService.AddItem",
		trace.WithAttributes(attribute.String("item.name", name), attribute.Float64("item.price", price)))
	defer span.End()

	s.logInfo(ctx, "adding menu item", slog.String("item.name", name), slog.Float64("item.price", price))
	if err := s.inner.AddItem(ctx, identity, name, price); err != nil {
		return s.handleError(ctx, span, err, "failed to add menu item", slog.String("item.name", name))
	}
	s.metrics.recordAdded(ctx)
	s.logInfo(ctx, "menu item added", slog.String("item.name", name))
	return nil
}

func (s *Service) DeleteItem(ctx context.Context, identity, itemID string) error {
	ctx, span := s.tracer.Start(ctx, "MenuService.DeleteItem", trace.WithAttributes(attribute.String("item.id", itemID)))
	defer span.End()

	s.logInfo(ctx, "deleting menu item", slog.String("item.id", itemID))
	if err := s.inner.DeleteItem(ctx, identity, itemID); err != nil {
		return s.handleError(ctx, span, err, "failed to delete menu item", slog.String("item.id", itemID))
	}
	s.metrics.recordDeleted(ctx)
	s.logInfo(ctx, "menu item deleted", slog.String("item.id", itemID))
	return nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	itemsAdded    metric.Int64Counter
	itemsDeleted  metric.Int64Counter
	subscriptions metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	itemsAdded, _ := m.Int64Counter("menu.service.items_added", metric.WithDescription("Number of menu items added"))
	itemsDeleted, _ := m.Int64Counter("menu.service.items_deleted", metric.WithDescription("Number of menu items deleted"))
	subscriptions, _ := m.Int64Counter("menu.service.subscriptions_opened", metric.WithDescription("Number of menu subscriptions opened"))
	return serviceMetrics{itemsAdded: itemsAdded, itemsDeleted: itemsDeleted, subscriptions: subscriptions}
}

func (m serviceMetrics) recordSubscribed(ctx context.Context) {
	if m.subscriptions != nil {
		m.subscriptions.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordAdded(ctx context.Context) {
	if m.itemsAdded != nil {
		m.itemsAdded.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	if m.itemsDeleted != nil {
		m.itemsDeleted.Add(ctx, 1)
	}
}

var _ menuports.Service = (*Service)(nil)
