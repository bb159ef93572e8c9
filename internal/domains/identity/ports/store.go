package ports

import (
	"context"
	"errors"

	"github.com/Apurer/restaurant-pos/internal/domains/identity/domain"
)

var ErrNotFound = errors.New("identity not found")

// Store persists anonymous identities keyed by device.
type Store interface {
	Get(ctx context.Context, deviceID string) (*domain.Identity, error)
	Save(ctx context.Context, identity *domain.Identity) error
	Delete(ctx context.Context, deviceID string) error
}

// Provider reports identity transitions. The listener is invoked with the
// current state on registration once it is known, then on every change; ok is
// false when the identity is lost. The returned func detaches the listener.
type Provider interface {
	OnIdentityChange(listener func(token string, ok bool)) (unsubscribe func())
}
