//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/restaurant-pos/internal/domains/identity/domain"
	"github.com/Apurer/restaurant-pos/internal/domains/identity/ports"
	"github.com/Apurer/restaurant-pos/internal/platform/migrations"
)

func setupIdentityPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("pos_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}
	return db, cleanup
}

func TestStore_SaveKeepsToken(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupIdentityPostgresContainer(t)
	defer cleanup()

	store := NewStore(db)
	ctx := context.Background()
	issued := time.Now().UTC().Truncate(time.Second)

	identity, err := domain.NewIdentity("till-1", "token-1", issued)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, identity))

	identity.Token = "token-2"
	identity.Touch(issued.Add(time.Hour))
	require.NoError(t, store.Save(ctx, identity))

	got, err := store.Get(ctx, "till-1")
	require.NoError(t, err)
	assert.Equal(t, "token-1", got.Token)
	assert.True(t, got.LastSeenAt.Equal(issued.Add(time.Hour)))
}

func TestStore_PurgeInactive(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupIdentityPostgresContainer(t)
	defer cleanup()

	store := NewStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	stale, err := domain.NewIdentity("till-old", "token-1", now.Add(-40*24*time.Hour))
	require.NoError(t, err)
	fresh, err := domain.NewIdentity("till-new", "token-2", now)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, stale))
	require.NoError(t, store.Save(ctx, fresh))

	removed, err := store.PurgeInactive(ctx, now.Add(-DefaultRetention))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = store.Get(ctx, "till-old")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
