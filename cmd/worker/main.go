package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/restaurant-pos/internal/app/api"
	menuactivities "github.com/Apurer/restaurant-pos/internal/durable/temporal/activities/menu"
	menuworkflows "github.com/Apurer/restaurant-pos/internal/durable/temporal/workflows/menu"
	platformobservability "github.com/Apurer/restaurant-pos/internal/platform/observability"
	platformtemporal "github.com/Apurer/restaurant-pos/internal/platform/temporal"
)

func main() {
	ctx := context.Background()
	const serviceName = "restaurant-pos-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	cfg, err := api.LoadConfig()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if !cfg.SharedMenuStore() {
		logger.Warn("worker seeding an in-memory menu store; API processes will not see these items")
	}

	backends, err := api.OpenBackends(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open menu store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer backends.Close()
	activities := menuactivities.NewActivities(backends.MenuStore)

	temporalClient, err := platformtemporal.Dial(platformtemporal.Config{
		Address:   cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
	}, instruments.Tracer("temporal-worker"), logger)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, menuworkflows.SeedTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(menuworkflows.SeedWorkflow, workflow.RegisterOptions{Name: menuworkflows.SeedWorkflowName})
	w.RegisterActivityWithOptions(activities.SeedItem, activity.RegisterOptions{Name: menuactivities.SeedItemActivityName})

	logger.Info("worker listening", slog.String("taskQueue", menuworkflows.SeedTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
