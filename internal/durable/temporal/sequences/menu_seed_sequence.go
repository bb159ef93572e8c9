package sequences

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	menudomain "github.com/Apurer/restaurant-pos/internal/domains/menu/domain"
	menuactivities "github.com/Apurer/restaurant-pos/internal/durable/temporal/activities/menu"
)

// MenuSeedOutcome summarizes one seeding pass.
type MenuSeedOutcome struct {
	Created  int
	Skipped  int
	Failures []string
}

// RunMenuSeedSequence writes every catalog entry into path. Parallel passes
// start all writes at once; guarded passes write one at a time and skip names
// already present. Writes are not retried since a retried create can duplicate.
func RunMenuSeedSequence(ctx workflow.Context, path string, catalog []menudomain.Draft, guarded bool) (MenuSeedOutcome, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("menu seed sequence started", "path", path, "items", len(catalog), "guarded", guarded)
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})

	var outcome MenuSeedOutcome
	record := func(item menudomain.Draft, result menuactivities.SeedItemResult, err error) {
		switch {
		case err != nil:
			outcome.Failures = append(outcome.Failures, fmt.Sprintf("seed %q: %v", item.Name, err))
		case result.Created:
			outcome.Created++
		default:
			outcome.Skipped++
		}
	}

	if guarded {
		for _, item := range catalog {
			var result menuactivities.SeedItemResult
			err := workflow.ExecuteActivity(ctx, menuactivities.SeedItemActivityName,
				menuactivities.SeedItemInput{Path: path, Item: item, Guarded: true}).Get(ctx, &result)
			record(item, result, err)
		}
	} else {
		futures := make([]workflow.Future, 0, len(catalog))
		for _, item := range catalog {
			futures = append(futures, workflow.ExecuteActivity(ctx, menuactivities.SeedItemActivityName,
				menuactivities.SeedItemInput{Path: path, Item: item}))
		}
		for i, future := range futures {
			var result menuactivities.SeedItemResult
			err := future.Get(ctx, &result)
			record(catalog[i], result, err)
		}
	}

	logger.Info("menu seed sequence completed", "path", path,
		"created", outcome.Created, "skipped", outcome.Skipped, "failed", len(outcome.Failures))
	return outcome, nil
}
