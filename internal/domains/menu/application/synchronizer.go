package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Apurer/restaurant-pos/internal/domains/menu/domain"
	"github.com/Apurer/restaurant-pos/internal/domains/menu/ports"
	"github.com/Apurer/restaurant-pos/internal/platform/eventloop"
	"github.com/Apurer/restaurant-pos/internal/platform/metrics"
)

// Synchronizer bridges the menu store feed into subscriber callbacks, seeds
// empty collections, and guards item creation.
type Synchronizer struct {
	store      ports.Store
	seeder     ports.Seeder
	dispatcher eventloop.Dispatcher
	namespace  string
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type Option func(*Synchronizer)

// WithSeeder replaces the default parallel catalog seeder.
func WithSeeder(seeder ports.Seeder) Option {
	return func(s *Synchronizer) {
		if seeder != nil {
			s.seeder = seeder
		}
	}
}

// WithDispatcher sets the event queue callbacks are delivered on.
func WithDispatcher(d eventloop.Dispatcher) Option {
	return func(s *Synchronizer) {
		if d != nil {
			s.dispatcher = d
		}
	}
}

// WithNamespace prefixes collection paths with artifacts/{namespace}/.
func WithNamespace(namespace string) Option {
	return func(s *Synchronizer) {
		s.namespace = strings.TrimSpace(namespace)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Synchronizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Synchronizer) {
		s.metrics = m
	}
}

// NewSynchronizer wires the synchronizer around a menu store.
func NewSynchronizer(store ports.Store, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		store:      store,
		dispatcher: eventloop.Immediate,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.seeder == nil {
		s.seeder = NewCatalogSeeder(store, ports.SeedParallel, WithSeederLogger(s.logger))
	}
	return s
}

// Subscribe opens one live feed on the identity's collection. Non-empty
// snapshots go to onItems; an empty snapshot triggers a seeding pass instead.
func (s *Synchronizer) Subscribe(identity string, onItems func([]domain.MenuItem), onError func(error)) ports.Subscription {
	if onItems == nil {
		onItems = func([]domain.MenuItem) {}
	}
	if onError == nil {
		onError = func(error) {}
	}
	sub := newSubscription()

	collection, err := domain.NewCollection(s.namespace, identity)
	if err != nil {
		sub.fail()
		s.dispatcher.Post(func() { onError(fmt.Errorf("%w: %w", ErrSubscription, mapError(err))) })
		return sub
	}
	path := collection.Path()

	ctx, cancel := context.WithCancel(context.Background())
	s.metrics.SubscriptionOpened()
	sub.begin(cancel, s.metrics.SubscriptionClosed)

	feed := s.store.Subscribe(ctx, path,
		func(items []domain.MenuItem) {
			items = domain.CloneItems(items)
			s.dispatcher.Post(func() { s.handleSnapshot(ctx, sub, path, items, onItems, onError) })
		},
		func(err error) {
			s.dispatcher.Post(func() { s.handleFeedError(ctx, sub, path, err, onError) })
		},
	)
	sub.attach(feed)
	return sub
}

func (s *Synchronizer) handleSnapshot(ctx context.Context, sub *Subscription, path string, items []domain.MenuItem, onItems func([]domain.MenuItem), onError func(error)) {
	if len(items) > 0 {
		if !sub.transition(ports.StateStreaming) {
			return
		}
		s.metrics.IncrementSnapshotsDelivered()
		onItems(items)
		return
	}

	if !sub.transition(ports.StateSeeding) {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "menu collection empty, seeding default catalog", slog.String("menu.path", path))
	err := s.seeder.Seed(ctx, path)
	s.metrics.RecordSeedingPass(err)
	if !sub.transition(ports.StateStreaming) {
		return
	}
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "default catalog seeding failed",
			slog.String("menu.path", path), slog.String("error", err.Error()))
		onError(storeFailure(err))
	}
}

func (s *Synchronizer) handleFeedError(ctx context.Context, sub *Subscription, path string, err error, onError func(error)) {
	if !sub.fail() {
		return
	}
	s.metrics.IncrementSubscriptionErrors()
	s.logger.LogAttrs(ctx, slog.LevelWarn, "menu subscription terminated",
		slog.String("menu.path", path), slog.String("error", err.Error()))
	onError(fmt.Errorf("%w: %w", ErrSubscription, err))
}

// AddItem validates the item, rejects duplicate names, and issues one create.
// The new item reaches subscribers through the next snapshot.
func (s *Synchronizer) AddItem(ctx context.Context, identity, name string, price float64) error {
	draft, err := domain.NewDraft(name, price)
	if err != nil {
		return mapError(err)
	}
	collection, err := domain.NewCollection(s.namespace, identity)
	if err != nil {
		return mapError(err)
	}
	path := collection.Path()

	existing, err := s.store.QueryEqual(ctx, path, ports.FieldName, draft.Name)
	if err != nil {
		return storeFailure(err)
	}
	if len(existing) > 0 {
		return &DuplicateItemError{Name: draft.Name, ItemID: existing[0].ID}
	}
	if _, err := s.store.Create(ctx, path, draft); err != nil {
		return storeFailure(err)
	}
	return nil
}

// DeleteItem removes an item by id without checking that it exists.
func (s *Synchronizer) DeleteItem(ctx context.Context, identity, itemID string) error {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return mapError(ErrMissingItemID)
	}
	collection, err := domain.NewCollection(s.namespace, identity)
	if err != nil {
		return mapError(err)
	}
	if err := s.store.Delete(ctx, collection.Path(), itemID); err != nil {
		return storeFailure(err)
	}
	return nil
}

var _ ports.Service = (*Synchronizer)(nil)
