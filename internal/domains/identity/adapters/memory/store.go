package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/restaurant-pos/internal/domains/identity/domain"
	"github.com/Apurer/restaurant-pos/internal/domains/identity/ports"
)

var _ ports.Store = (*Store)(nil)

// Store is an in-memory identity store.
type Store struct {
	mu         sync.RWMutex
	identities map[string]domain.Identity
}

func NewStore() *Store {
	return &Store{identities: map[string]domain.Identity{}}
}

func (s *Store) Get(_ context.Context, deviceID string) (*domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[strings.TrimSpace(deviceID)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &identity, nil
}

func (s *Store) Save(_ context.Context, identity *domain.Identity) error {
	if identity == nil {
		return errors.New("identity is nil")
	}
	if err := identity.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[identity.DeviceID] = *identity
	return nil
}

func (s *Store) Delete(_ context.Context, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.identities, strings.TrimSpace(deviceID))
	return nil
}

// PurgeInactive removes identities not seen since cutoff and returns how many were removed.
func (s *Store) PurgeInactive(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for device, identity := range s.identities {
		if identity.LastSeenAt.Before(cutoff) {
			delete(s.identities, device)
			removed++
		}
	}
	return removed, nil
}
