package menu

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	menudomain "github.com/Apurer/restaurant-pos/internal/domains/menu/domain"
	menuactivities "github.com/Apurer/restaurant-pos/internal/durable/temporal/activities/menu"
	"github.com/Apurer/restaurant-pos/internal/durable/temporal/sequences"
)

const seedPath = "users/uid-1/menuItems"

type seedRecorder struct {
	mu       sync.Mutex
	existing map[string]bool
	written  []string
	failOn   string
}

func (r *seedRecorder) SeedItem(_ context.Context, input menuactivities.SeedItemInput) (menuactivities.SeedItemResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if input.Item.Name == r.failOn {
		return menuactivities.SeedItemResult{}, errors.New("unavailable")
	}
	if input.Guarded && r.existing[input.Item.Name] {
		return menuactivities.SeedItemResult{}, nil
	}
	r.written = append(r.written, input.Item.Name)
	return menuactivities.SeedItemResult{Created: true}, nil
}

func runSeed(t *testing.T, rec *seedRecorder, input SeedWorkflowInput) sequences.MenuSeedOutcome {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterActivityWithOptions(rec.SeedItem, activity.RegisterOptions{Name: menuactivities.SeedItemActivityName})

	env.ExecuteWorkflow(SeedWorkflow, input)
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var outcome sequences.MenuSeedOutcome
	require.NoError(t, env.GetWorkflowResult(&outcome))
	return outcome
}

func TestSeedWorkflow_ParallelWritesCatalog(t *testing.T) {
	rec := &seedRecorder{}
	outcome := runSeed(t, rec, SeedWorkflowInput{Path: seedPath, Catalog: menudomain.DefaultCatalog()})

	assert.Equal(t, 17, outcome.Created)
	assert.Zero(t, outcome.Skipped)
	assert.Empty(t, outcome.Failures)
	assert.Len(t, rec.written, 17)
}

func TestSeedWorkflow_GuardedSkipsExisting(t *testing.T) {
	rec := &seedRecorder{existing: map[string]bool{"PILSENER": true}}
	outcome := runSeed(t, rec, SeedWorkflowInput{Path: seedPath, Catalog: menudomain.DefaultCatalog(), Guarded: true})

	assert.Equal(t, 16, outcome.Created)
	assert.Equal(t, 1, outcome.Skipped)
	assert.NotContains(t, rec.written, "PILSENER")
}

func TestSeedWorkflow_CollectsFailures(t *testing.T) {
	rec := &seedRecorder{failOn: "Tea"}
	outcome := runSeed(t, rec, SeedWorkflowInput{
		Path:    seedPath,
		Catalog: []menudomain.Draft{{Name: "Soda", Price: 1}, {Name: "Tea", Price: 1}},
	})

	assert.Equal(t, 1, outcome.Created)
	require.Len(t, outcome.Failures, 1)
	assert.Contains(t, outcome.Failures[0], `seed "Tea"`)
}
