package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/restaurant-pos/internal/domains/menu/domain"
	"github.com/Apurer/restaurant-pos/internal/domains/menu/ports"
	"github.com/Apurer/restaurant-pos/internal/durable/temporal/sequences"
	menuworkflows "github.com/Apurer/restaurant-pos/internal/durable/temporal/workflows/menu"
)

var _ ports.Seeder = (*TemporalSeeder)(nil)

// TemporalSeeder runs catalog seeding as a Temporal workflow. Concurrent
// requests for the same collection share one workflow run.
type TemporalSeeder struct {
	client    client.Client
	taskQueue string
	mode      ports.SeedMode
	catalog   []domain.Draft
}

// NewTemporalSeeder wires a Temporal client into the seeder.
func NewTemporalSeeder(c client.Client, mode ports.SeedMode) *TemporalSeeder {
	return &TemporalSeeder{
		client:    c,
		taskQueue: menuworkflows.SeedTaskQueue,
		mode:      mode,
		catalog:   domain.DefaultCatalog(),
	}
}

// Seed starts the seeding workflow for path and waits for it to finish.
// Guarded passes never report per-item failures.
func (s *TemporalSeeder) Seed(ctx context.Context, path string) error {
	if s == nil || s.client == nil {
		return errors.New("temporal menu seeder not configured")
	}
	workflowID := buildSeedWorkflowID(path)
	input := menuworkflows.SeedWorkflowInput{
		Path:    path,
		Catalog: s.catalog,
		Guarded: s.mode == ports.SeedGuarded,
		TraceID: workflowTraceID(ctx),
	}
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: s.taskQueue,
	}

	var outcome sequences.MenuSeedOutcome
	run, err := s.client.ExecuteWorkflow(ctx, options, menuworkflows.SeedWorkflowName, input)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return err
		}
		run = s.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	if err := run.Get(ctx, &outcome); err != nil {
		return err
	}
	if input.Guarded || len(outcome.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(outcome.Failures))
	for _, failure := range outcome.Failures {
		errs = append(errs, errors.New(failure))
	}
	return errors.Join(errs...)
}

func buildSeedWorkflowID(path string) string {
	sum := sha256.Sum256([]byte(path))
	return fmt.Sprintf("menu-seed-%s", hex.EncodeToString(sum[:8]))
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
