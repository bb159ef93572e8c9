package menu

import (
	"go.temporal.io/sdk/workflow"

	menudomain "github.com/Apurer/restaurant-pos/internal/domains/menu/domain"
	"github.com/Apurer/restaurant-pos/internal/durable/temporal/sequences"
)

const (
	// SeedWorkflowName is the public identifier for registering the workflow.
	SeedWorkflowName = "menu.workflows.Seed"
	// SeedTaskQueue is the queue consumed by the worker processing seeding workflows.
	SeedTaskQueue = "MENU_SEEDING"
)

// SeedWorkflowInput carries the collection and the catalog to write into it.
type SeedWorkflowInput struct {
	Path    string
	Catalog []menudomain.Draft
	Guarded bool
	TraceID string
}

// SeedWorkflow seeds an empty menu collection with the default catalog.
func SeedWorkflow(ctx workflow.Context, input SeedWorkflowInput) (sequences.MenuSeedOutcome, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("SeedWorkflow started", withTraceID(input.TraceID, "path", input.Path)...)
	outcome, err := sequences.RunMenuSeedSequence(ctx, input.Path, input.Catalog, input.Guarded)
	if err != nil {
		logger.Error("SeedWorkflow failed", withTraceID(input.TraceID, "path", input.Path, "error", err)...)
		return outcome, err
	}
	logger.Info("SeedWorkflow completed", withTraceID(input.TraceID, "path", input.Path, "created", outcome.Created)...)
	return outcome, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
