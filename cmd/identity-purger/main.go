package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Apurer/restaurant-pos/internal/app/api"
	identitypostgres "github.com/Apurer/restaurant-pos/internal/domains/identity/adapters/persistence/postgres"
	platformpostgres "github.com/Apurer/restaurant-pos/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	db, cleanup, err := platformpostgres.Open(ctx, cfg.PostgresDSN, logger)
	defer cleanup()
	if err != nil {
		log.Fatalf("POSTGRES_DSN not set or connection failed; cannot purge identities: %v", err)
	}

	cutoff := time.Now().Add(-cfg.IdentityRetention)
	removed, err := identitypostgres.NewStore(db).PurgeInactive(ctx, cutoff)
	if err != nil {
		log.Fatalf("failed to purge identities: %v", err)
	}
	logger.Info("identity purge completed", slog.Int64("removed", removed), slog.Time("cutoff", cutoff))
}
