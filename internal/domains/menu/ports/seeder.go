package ports

import (
	"context"
	"fmt"
	"strings"
)

// SeedMode selects how the default catalog is written into an empty collection.
type SeedMode string

const (
	// SeedParallel writes every catalog item unconditionally and concurrently.
	SeedParallel SeedMode = "parallel"
	// SeedGuarded writes items one by one, skipping names that already exist.
	// Per-item failures are logged and not reported.
	SeedGuarded SeedMode = "guarded"
)

// ParseSeedMode accepts the configured mode, defaulting to SeedParallel.
func ParseSeedMode(raw string) (SeedMode, error) {
	switch SeedMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SeedParallel:
		return SeedParallel, nil
	case SeedGuarded:
		return SeedGuarded, nil
	default:
		return "", fmt.Errorf("unknown seed mode %q", raw)
	}
}

// Seeder populates an empty menu collection with the default catalog.
type Seeder interface {
	Seed(ctx context.Context, path string) error
}
