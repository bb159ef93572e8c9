package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/Apurer/restaurant-pos/internal/domains/menu/domain"
	"github.com/Apurer/restaurant-pos/internal/domains/menu/ports"
	"github.com/Apurer/restaurant-pos/internal/platform/eventloop"
)

var _ ports.Store = (*Store)(nil)

// Store is an in-memory real-time menu store for development and tests.
// Each feed delivers snapshots on its own goroutine, in write order.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	feeds       map[string]map[uint64]*feed
	nextFeed    uint64
	newID       func() string
}

type collection struct {
	order []string
	docs  map[string]domain.MenuItem
}

func NewStore() *Store {
	return &Store{
		collections: map[string]*collection{},
		feeds:       map[string]map[uint64]*feed{},
		newID:       uuid.NewString,
	}
}

// WithIDGenerator overrides document id generation for deterministic testing.
func (s *Store) WithIDGenerator(next func() string) {
	if next != nil {
		s.newID = next
	}
}

func (s *Store) Subscribe(ctx context.Context, path string, onSnapshot func([]domain.MenuItem), onError func(error)) ports.Unsubscriber {
	f := &feed{
		store:      s,
		path:       path,
		loop:       eventloop.New(),
		onSnapshot: onSnapshot,
		onError:    onError,
	}
	go func() { _ = f.loop.Run(context.Background()) }()

	s.mu.Lock()
	s.nextFeed++
	f.id = s.nextFeed
	if s.feeds[path] == nil {
		s.feeds[path] = map[uint64]*feed{}
	}
	s.feeds[path][f.id] = f
	f.deliver(s.snapshotLocked(path))
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, f.unsubscribe)
	return ports.UnsubscribeFunc(func() {
		stop()
		f.unsubscribe()
	})
}

func (s *Store) Create(_ context.Context, path string, draft domain.Draft) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collections[path]
	if c == nil {
		c = &collection{docs: map[string]domain.MenuItem{}}
		s.collections[path] = c
	}
	id := s.newID()
	c.order = append(c.order, id)
	c.docs[id] = draft.Item(id)
	s.notifyLocked(path)
	return id, nil
}

func (s *Store) Delete(_ context.Context, path, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collections[path]
	if c == nil {
		return nil
	}
	if _, ok := c.docs[id]; !ok {
		return nil
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	s.notifyLocked(path)
	return nil
}

func (s *Store) QueryEqual(_ context.Context, path, field string, value any) ([]domain.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.MenuItem
	for _, item := range s.snapshotLocked(path) {
		ok, err := ports.MatchesField(item, field, value)
		if err != nil {
			return nil, err
		}
		if ok {
			result = append(result, item)
		}
	}
	return result, nil
}

// Snapshot returns the current documents of path in arrival order.
func (s *Store) Snapshot(path string) []domain.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(path)
}

// InjectFeedError terminates every live feed on path with err, simulating a transport failure.
func (s *Store) InjectFeedError(path string, err error) {
	s.mu.Lock()
	feeds := make([]*feed, 0, len(s.feeds[path]))
	for _, f := range s.feeds[path] {
		feeds = append(feeds, f)
	}
	s.mu.Unlock()
	for _, f := range feeds {
		f.fail(err)
	}
}

func (s *Store) snapshotLocked(path string) []domain.MenuItem {
	c := s.collections[path]
	if c == nil {
		return []domain.MenuItem{}
	}
	items := make([]domain.MenuItem, 0, len(c.order))
	for _, id := range c.order {
		items = append(items, c.docs[id])
	}
	return items
}

func (s *Store) notifyLocked(path string) {
	feeds := s.feeds[path]
	if len(feeds) == 0 {
		return
	}
	snapshot := s.snapshotLocked(path)
	for _, f := range feeds {
		f.deliver(domain.CloneItems(snapshot))
	}
}

func (s *Store) removeFeed(f *feed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.feeds[f.path], f.id)
	if len(s.feeds[f.path]) == 0 {
		delete(s.feeds, f.path)
	}
}

type feed struct {
	store      *Store
	path       string
	id         uint64
	loop       *eventloop.Loop
	onSnapshot func([]domain.MenuItem)
	onError    func(error)
	closed     atomic.Bool
	once       sync.Once
}

func (f *feed) deliver(items []domain.MenuItem) {
	f.loop.Post(func() {
		if f.closed.Load() || f.onSnapshot == nil {
			return
		}
		f.onSnapshot(items)
	})
}

func (f *feed) fail(err error) {
	f.loop.Post(func() {
		if f.closed.Load() {
			return
		}
		f.unsubscribe()
		if f.onError != nil {
			f.onError(err)
		}
	})
}

func (f *feed) unsubscribe() {
	f.once.Do(func() {
		f.closed.Store(true)
		f.store.removeFeed(f)
		f.loop.Close()
	})
}
