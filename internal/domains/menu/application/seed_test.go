package application

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/restaurant-pos/internal/domains/menu/domain"
	"github.com/Apurer/restaurant-pos/internal/domains/menu/ports"
)

const seedPath = "users/uid-1/menuItems"

func TestCatalogSeeder_ParallelWritesWholeCatalog(t *testing.T) {
	store, mem := newCountingStore()
	seeder := NewCatalogSeeder(store, ports.SeedParallel, WithSeedConcurrency(4))

	require.NoError(t, seeder.Seed(context.Background(), seedPath))
	assert.Equal(t, int32(17), store.creates.Load())
	assert.Zero(t, store.queries.Load())
	assert.Len(t, mem.Snapshot(seedPath), 17)
}

func TestCatalogSeeder_ParallelCollectsEveryFailure(t *testing.T) {
	store, _ := newCountingStore()
	store.createErr = errors.New("unavailable")
	seeder := NewCatalogSeeder(store, ports.SeedParallel, WithCatalog([]domain.Draft{
		{Name: "Soda", Price: 1},
		{Name: "Tea", Price: 1},
	}))

	err := seeder.Seed(context.Background(), seedPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `seed "Soda"`)
	assert.Contains(t, err.Error(), `seed "Tea"`)
	assert.Equal(t, int32(2), store.creates.Load())
}

func TestCatalogSeeder_GuardedSkipsExistingNames(t *testing.T) {
	store, mem := newCountingStore()
	_, err := mem.Create(context.Background(), seedPath, domain.Draft{Name: "PILSENER", Price: 1.25})
	require.NoError(t, err)

	seeder := NewCatalogSeeder(store, ports.SeedGuarded)
	require.NoError(t, seeder.Seed(context.Background(), seedPath))

	assert.Equal(t, int32(17), store.queries.Load())
	assert.Equal(t, int32(16), store.creates.Load())
	assert.Len(t, mem.Snapshot(seedPath), 17)
}

func TestCatalogSeeder_GuardedLogsFailures(t *testing.T) {
	store, _ := newCountingStore()
	store.createErr = errors.New("unavailable")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	seeder := NewCatalogSeeder(store, ports.SeedGuarded,
		WithSeederLogger(logger),
		WithCatalog([]domain.Draft{{Name: "Soda", Price: 1}}),
	)

	require.NoError(t, seeder.Seed(context.Background(), seedPath))
	assert.Contains(t, buf.String(), "failed to seed default menu item")
	assert.Contains(t, buf.String(), `"item.name":"Soda"`)
}

func TestSeedItem(t *testing.T) {
	store, _ := newCountingStore()
	draft := domain.Draft{Name: "Soda", Price: 1}

	created, err := SeedItem(context.Background(), store, seedPath, draft, true)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = SeedItem(context.Background(), store, seedPath, draft, true)
	require.NoError(t, err)
	assert.False(t, created)

	created, err = SeedItem(context.Background(), store, seedPath, draft, false)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int32(2), store.creates.Load())
}

func TestParseSeedMode(t *testing.T) {
	mode, err := ports.ParseSeedMode("")
	require.NoError(t, err)
	assert.Equal(t, ports.SeedParallel, mode)

	mode, err = ports.ParseSeedMode(" Guarded ")
	require.NoError(t, err)
	assert.Equal(t, ports.SeedGuarded, mode)

	_, err = ports.ParseSeedMode("eventual")
	assert.Error(t, err)
}
