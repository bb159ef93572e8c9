package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Apurer/restaurant-pos/internal/domains/menu/domain"
	"github.com/Apurer/restaurant-pos/internal/domains/menu/ports"
)

var _ ports.Seeder = (*CatalogSeeder)(nil)

// CatalogSeeder writes the default catalog into a collection without durable orchestration.
type CatalogSeeder struct {
	store       ports.Store
	mode        ports.SeedMode
	catalog     []domain.Draft
	concurrency int
	logger      *slog.Logger
}

// SeederOption customizes a CatalogSeeder.
type SeederOption func(*CatalogSeeder)

// WithSeedConcurrency bounds concurrent writes in parallel mode. Zero or less means unbounded.
func WithSeedConcurrency(n int) SeederOption {
	return func(s *CatalogSeeder) {
		s.concurrency = n
	}
}

// WithCatalog replaces the default catalog.
func WithCatalog(catalog []domain.Draft) SeederOption {
	return func(s *CatalogSeeder) {
		s.catalog = append([]domain.Draft(nil), catalog...)
	}
}

// WithSeederLogger sets the logger used for guarded-mode failures.
func WithSeederLogger(logger *slog.Logger) SeederOption {
	return func(s *CatalogSeeder) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewCatalogSeeder wires a seeder for the given mode.
func NewCatalogSeeder(store ports.Store, mode ports.SeedMode, opts ...SeederOption) *CatalogSeeder {
	s := &CatalogSeeder{
		store:   store,
		mode:    mode,
		catalog: domain.DefaultCatalog(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Seed writes the catalog into path.
func (s *CatalogSeeder) Seed(ctx context.Context, path string) error {
	if s == nil || s.store == nil {
		return errors.New("catalog seeder not configured")
	}
	if s.mode == ports.SeedGuarded {
		s.seedGuarded(ctx, path)
		return nil
	}
	return s.seedParallel(ctx, path)
}

// seedParallel issues every write independently; one failure does not cancel the others.
func (s *CatalogSeeder) seedParallel(ctx context.Context, path string) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for _, draft := range s.catalog {
		draft := draft
		g.Go(func() error {
			if _, err := s.store.Create(ctx, path, draft); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("seed %q: %w", draft.Name, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func (s *CatalogSeeder) seedGuarded(ctx context.Context, path string) {
	for _, draft := range s.catalog {
		created, err := SeedItem(ctx, s.store, path, draft, true)
		if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelError, "failed to seed default menu item",
				slog.String("item.name", draft.Name), slog.String("error", err.Error()))
			continue
		}
		if !created {
			s.logger.LogAttrs(ctx, slog.LevelDebug, "default menu item already present",
				slog.String("item.name", draft.Name))
		}
	}
}

// SeedItem writes a single catalog entry. When guarded, an existing document with
// the same name is left alone and created is false.
func SeedItem(ctx context.Context, store ports.Store, path string, draft domain.Draft, guarded bool) (created bool, err error) {
	if guarded {
		existing, err := store.QueryEqual(ctx, path, ports.FieldName, draft.Name)
		if err != nil {
			return false, err
		}
		if len(existing) > 0 {
			return false, nil
		}
	}
	if _, err := store.Create(ctx, path, draft); err != nil {
		return false, err
	}
	return true, nil
}
