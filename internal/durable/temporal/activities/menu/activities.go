package menu

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	menuapp "github.com/Apurer/restaurant-pos/internal/domains/menu/application"
	menudomain "github.com/Apurer/restaurant-pos/internal/domains/menu/domain"
	menuports "github.com/Apurer/restaurant-pos/internal/domains/menu/ports"
)

// SeedItemActivityName writes one default catalog entry into a collection.
const SeedItemActivityName = "menu.activities.SeedItem"

// SeedItemInput names the collection and the entry to write.
type SeedItemInput struct {
	Path    string
	Item    menudomain.Draft
	Guarded bool
}

// SeedItemResult reports whether a document was written.
type SeedItemResult struct {
	Created bool
}

// Activities groups activities that operate on menu collections.
type Activities struct {
	store menuports.Store
}

// NewActivities wires the menu store into the Temporal activities bundle.
func NewActivities(store menuports.Store) *Activities {
	return &Activities{store: store}
}

// SeedItem writes a single catalog entry, skipping existing names when guarded.
func (a *Activities) SeedItem(ctx context.Context, input SeedItemInput) (SeedItemResult, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.store == nil {
		logger.Error("menu seed activity not initialized", "itemName", input.Item.Name)
		return SeedItemResult{}, errors.New("menu seed activity not initialized")
	}
	created, err := menuapp.SeedItem(ctx, a.store, input.Path, input.Item, input.Guarded)
	if err != nil {
		logger.Error("SeedItem activity failed", "path", input.Path, "itemName", input.Item.Name, "error", err)
		return SeedItemResult{}, err
	}
	logger.Info("SeedItem activity completed", "path", input.Path, "itemName", input.Item.Name, "created", created)
	return SeedItemResult{Created: created}, nil
}
