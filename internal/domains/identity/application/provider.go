package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/restaurant-pos/internal/domains/identity/domain"
	"github.com/Apurer/restaurant-pos/internal/domains/identity/ports"
)

var (
	ErrInvalidInput = errors.New("invalid identity input")
	ErrStoreFailure = errors.New("identity store failure")
)

var _ ports.Provider = (*AnonymousProvider)(nil)

// AnonymousProvider signs a device in without credentials. Each device keeps
// the same token across sign-ins.
type AnonymousProvider struct {
	store    ports.Store
	now      func() time.Time
	newToken func() string
	logger   *slog.Logger

	mu        sync.Mutex
	resolved  bool
	current   *domain.Identity
	listeners map[uint64]func(string, bool)
	nextID    uint64
}

type Option func(*AnonymousProvider)

func WithClock(now func() time.Time) Option {
	return func(p *AnonymousProvider) {
		if now != nil {
			p.now = now
		}
	}
}

func WithTokenGenerator(next func() string) Option {
	return func(p *AnonymousProvider) {
		if next != nil {
			p.newToken = next
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *AnonymousProvider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func NewAnonymousProvider(store ports.Store, opts ...Option) *AnonymousProvider {
	p := &AnonymousProvider{
		store:     store,
		now:       time.Now,
		newToken:  uuid.NewString,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		listeners: map[uint64]func(string, bool){},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// SignIn resolves the device's identity, issuing one on first use, and
// notifies listeners.
func (p *AnonymousProvider) SignIn(ctx context.Context, deviceID string) (*domain.Identity, error) {
	now := p.now()
	identity, err := p.store.Get(ctx, deviceID)
	switch {
	case errors.Is(err, ports.ErrNotFound):
		identity, err = domain.NewIdentity(deviceID, p.newToken(), now)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		p.logger.LogAttrs(ctx, slog.LevelInfo, "issued anonymous identity", slog.String("device.id", identity.DeviceID))
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	default:
		identity.Touch(now)
	}
	if err := p.store.Save(ctx, identity); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	p.mu.Lock()
	p.resolved = true
	copied := *identity
	p.current = &copied
	listeners := p.snapshotListeners()
	p.mu.Unlock()

	for _, listener := range listeners {
		listener(identity.Token, true)
	}
	return identity, nil
}

// SignOut drops the current identity and notifies listeners. The stored
// identity is kept so the device gets the same token back on its next sign-in.
func (p *AnonymousProvider) SignOut() {
	p.mu.Lock()
	wasSignedIn := p.current != nil
	p.resolved = true
	p.current = nil
	listeners := p.snapshotListeners()
	p.mu.Unlock()

	if !wasSignedIn {
		return
	}
	for _, listener := range listeners {
		listener("", false)
	}
}

// Current returns the signed-in identity, if any.
func (p *AnonymousProvider) Current() (domain.Identity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return domain.Identity{}, false
	}
	return *p.current, true
}

func (p *AnonymousProvider) OnIdentityChange(listener func(token string, ok bool)) func() {
	if listener == nil {
		return func() {}
	}
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.listeners[id] = listener
	resolved, current := p.resolved, p.current
	p.mu.Unlock()

	if resolved {
		if current != nil {
			listener(current.Token, true)
		} else {
			listener("", false)
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.listeners, id)
			p.mu.Unlock()
		})
	}
}

func (p *AnonymousProvider) snapshotListeners() []func(string, bool) {
	listeners := make([]func(string, bool), 0, len(p.listeners))
	for _, l := range p.listeners {
		listeners = append(listeners, l)
	}
	return listeners
}
