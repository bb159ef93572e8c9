package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	posserver "github.com/Apurer/restaurant-pos/go"

	identitymemory "github.com/Apurer/restaurant-pos/internal/domains/identity/adapters/memory"
	identitypostgres "github.com/Apurer/restaurant-pos/internal/domains/identity/adapters/persistence/postgres"
	identityapp "github.com/Apurer/restaurant-pos/internal/domains/identity/application"
	identityports "github.com/Apurer/restaurant-pos/internal/domains/identity/ports"
	menumemory "github.com/Apurer/restaurant-pos/internal/domains/menu/adapters/memory"
	menuobs "github.com/Apurer/restaurant-pos/internal/domains/menu/adapters/observability"
	menupostgres "github.com/Apurer/restaurant-pos/internal/domains/menu/adapters/persistence/postgres"
	menuredis "github.com/Apurer/restaurant-pos/internal/domains/menu/adapters/persistence/redis"
	menuworkflows "github.com/Apurer/restaurant-pos/internal/domains/menu/adapters/workflows"
	menuapp "github.com/Apurer/restaurant-pos/internal/domains/menu/application"
	menuports "github.com/Apurer/restaurant-pos/internal/domains/menu/ports"
	terminalapp "github.com/Apurer/restaurant-pos/internal/domains/terminal/application"
	"github.com/Apurer/restaurant-pos/internal/platform/eventloop"
	"github.com/Apurer/restaurant-pos/internal/platform/metrics"
	"github.com/Apurer/restaurant-pos/internal/platform/migrations"
	platformobservability "github.com/Apurer/restaurant-pos/internal/platform/observability"
	platformpostgres "github.com/Apurer/restaurant-pos/internal/platform/postgres"
	platformredis "github.com/Apurer/restaurant-pos/internal/platform/redis"
	platformtemporal "github.com/Apurer/restaurant-pos/internal/platform/temporal"
)

const serviceName = "restaurant-pos-api"

// Run boots the POS terminal HTTP API with observability, stores, and workflows
// wired. It returns once ctx is cancelled and the server has drained.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	backends, err := OpenBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backends.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	menuMetrics := metrics.New(registry)

	seeder, closeSeeder := buildSeeder(cfg, backends.MenuStore, instruments)
	defer closeSeeder()

	loop := eventloop.Start(ctx)
	defer loop.Close()

	synchronizer := menuapp.NewSynchronizer(
		backends.MenuStore,
		menuapp.WithSeeder(seeder),
		menuapp.WithDispatcher(loop),
		menuapp.WithNamespace(cfg.Namespace),
		menuapp.WithLogger(logger),
		menuapp.WithMetrics(menuMetrics),
	)
	menuService := menuobs.New(
		synchronizer,
		menuobs.WithLogger(logger),
		menuobs.WithTracer(instruments.Tracer("internal.menu.application")),
		menuobs.WithMeter(instruments.Meter("internal.menu.application")),
	)

	provider := identityapp.NewAnonymousProvider(backends.IdentityStore, identityapp.WithLogger(logger))
	terminal := terminalapp.NewTerminal(menuService, terminalapp.WithLogger(logger))
	terminal.Attach(provider)
	defer terminal.Close()

	go signIn(ctx, provider, cfg.DeviceID, logger)

	handlers := posserver.ApiHandleFunctions{
		MenuAPI:    posserver.NewMenuAPI(terminal),
		OrderAPI:   posserver.NewOrderAPI(terminal),
		SessionAPI: posserver.NewSessionAPI(terminal),
		Gatherer:   registry,
	}
	router := posserver.NewRouter(handlers, otelgin.Middleware(serviceName))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("POS API listening", slog.String("addr", server.Addr), slog.String("menu.store", cfg.MenuStore))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("POS API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("POS API shutdown failed", slog.String("error", err.Error()))
		return err
	}
	logger.Info("POS API stopped")
	return nil
}

// signIn retries the anonymous sign-in until it succeeds or ctx ends. The
// terminal stays in the connecting state meanwhile.
func signIn(ctx context.Context, provider *identityapp.AnonymousProvider, deviceID string, logger *slog.Logger) {
	backoff := time.Second
	for {
		identity, err := provider.SignIn(ctx, deviceID)
		if err == nil {
			logger.Info("terminal signed in", slog.String("device.id", identity.DeviceID))
			return
		}
		logger.Warn("sign-in failed, retrying", slog.String("error", err.Error()), slog.Duration("backoff", backoff))
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

// Backends holds the storage a POS process runs against.
type Backends struct {
	MenuStore     menuports.Store
	IdentityStore identityports.Store
	DB            *gorm.DB
	closers       []func()
}

// Close releases every connection opened by OpenBackends.
func (b *Backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

// OpenBackends connects the configured menu store and the identity store.
// Identities live in PostgreSQL whenever a DSN is configured, in memory otherwise.
func OpenBackends(ctx context.Context, cfg Config, logger *slog.Logger) (*Backends, error) {
	b := &Backends{}
	if cfg.PostgresDSN != "" {
		db, cleanup, err := platformpostgres.Open(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.closers = append(b.closers, cleanup)
		if err := migrations.Run(db); err != nil {
			b.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		b.DB = db
		b.IdentityStore = identitypostgres.NewStore(db)
	} else {
		logger.Warn("POSTGRES_DSN not set, identities are kept in memory")
		b.IdentityStore = identitymemory.NewStore()
	}

	switch cfg.MenuStore {
	case StorePostgres:
		b.MenuStore = menupostgres.NewStore(b.DB, cfg.PostgresDSN)
	case StoreRedis:
		client, err := platformredis.New(ctx, platformredis.Config{URL: cfg.RedisURL, PoolSize: cfg.RedisPoolSize})
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		b.closers = append(b.closers, func() { _ = client.Close() })
		b.MenuStore = menuredis.NewStore(client.Client)
	default:
		logger.Warn("no shared menu store configured, menu is kept in memory")
		b.MenuStore = menumemory.NewStore()
	}
	logger.Info("menu store configured", slog.String("menu.store", cfg.MenuStore))
	return b, nil
}

func buildSeeder(cfg Config, store menuports.Store, instruments *platformobservability.Instruments) (menuports.Seeder, func()) {
	logger := instruments.Logger
	inline := menuapp.NewCatalogSeeder(store, cfg.SeedMode,
		menuapp.WithSeedConcurrency(cfg.SeedConcurrency),
		menuapp.WithSeederLogger(logger),
	)
	if !cfg.SharedMenuStore() {
		logger.Info("menu store is process-local, seeding inline")
		return inline, func() {}
	}
	temporalClient, err := platformtemporal.Dial(platformtemporal.Config{
		Address:   cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Disabled:  cfg.TemporalDisabled,
	}, instruments.Tracer("temporal-client"), logger)
	if err != nil {
		logger.Warn("Temporal workflows unavailable, seeding inline", slog.String("error", err.Error()))
		return inline, func() {}
	}
	logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	return menuworkflows.NewTemporalSeeder(temporalClient, cfg.SeedMode), temporalClient.Close
}
