package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Apurer/restaurant-pos/internal/domains/menu/domain"
	"github.com/Apurer/restaurant-pos/internal/domains/menu/ports"
)

var _ ports.Store = (*Store)(nil)

const keyPrefix = "menu:"

// Store keeps each collection as a hash of documents plus a sorted set
// recording arrival order, and publishes the path on every change. Order
// scores come from a per-collection INCR counter.
type Store struct {
	client *redis.Client
}

// NewStore constructs a Redis-backed menu store.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

type document struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func docsKey(path string) string    { return keyPrefix + path + ":docs" }
func orderKey(path string) string   { return keyPrefix + path + ":order" }
func changesKey(path string) string { return keyPrefix + path + ":changes" }
func seqKey(path string) string     { return keyPrefix + path + ":seq" }

func (s *Store) Create(ctx context.Context, path string, draft domain.Draft) (string, error) {
	if err := s.ensureClient(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	payload, err := json.Marshal(document{Name: draft.Name, Price: draft.Price})
	if err != nil {
		return "", err
	}
	seq, err := s.client.Incr(ctx, seqKey(path)).Result()
	if err != nil {
		return "", err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, docsKey(path), id, payload)
		pipe.ZAdd(ctx, orderKey(path), redis.Z{Score: float64(seq), Member: id})
		pipe.Publish(ctx, changesKey(path), path)
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Delete(ctx context.Context, path, id string) error {
	if err := s.ensureClient(); err != nil {
		return err
	}
	var removed *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.HDel(ctx, docsKey(path), id)
		pipe.ZRem(ctx, orderKey(path), id)
		return nil
	})
	if err != nil {
		return err
	}
	if removed.Val() == 0 {
		return nil
	}
	return s.client.Publish(ctx, changesKey(path), path).Err()
}

func (s *Store) QueryEqual(ctx context.Context, path, field string, value any) ([]domain.MenuItem, error) {
	if field != ports.FieldName && field != ports.FieldPrice {
		return nil, ports.ErrUnsupportedField
	}
	items, err := s.load(ctx, path)
	if err != nil {
		return nil, err
	}
	var result []domain.MenuItem
	for _, item := range items {
		if ok, _ := ports.MatchesField(item, field, value); ok {
			result = append(result, item)
		}
	}
	return result, nil
}

func (s *Store) Subscribe(ctx context.Context, path string, onSnapshot func([]domain.MenuItem), onError func(error)) ports.Unsubscriber {
	ctx, cancel := context.WithCancel(ctx)
	f := &feed{store: s, path: path, onSnapshot: onSnapshot, onError: onError, cancel: cancel}
	go f.run(ctx)
	return ports.UnsubscribeFunc(f.unsubscribe)
}

func (s *Store) load(ctx context.Context, path string) ([]domain.MenuItem, error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}
	ids, err := s.client.ZRange(ctx, orderKey(path), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.MenuItem{}, nil
	}
	values, err := s.client.HMGet(ctx, docsKey(path), ids...).Result()
	if err != nil {
		return nil, err
	}
	items := make([]domain.MenuItem, 0, len(ids))
	for i, raw := range values {
		encoded, ok := raw.(string)
		if !ok {
			continue
		}
		var doc document
		if err := json.Unmarshal([]byte(encoded), &doc); err != nil {
			return nil, fmt.Errorf("decode menu document %s: %w", ids[i], err)
		}
		items = append(items, domain.MenuItem{ID: ids[i], Name: doc.Name, Price: doc.Price})
	}
	return items, nil
}

func (s *Store) ensureClient() error {
	if s == nil || s.client == nil {
		return errors.New("redis menu store not configured")
	}
	return nil
}

type feed struct {
	store      *Store
	path       string
	onSnapshot func([]domain.MenuItem)
	onError    func(error)
	cancel     context.CancelFunc
	closed     atomic.Bool
	once       sync.Once
}

// run subscribes before the initial load so no write between the two is missed.
func (f *feed) run(ctx context.Context) {
	if err := f.store.ensureClient(); err != nil {
		f.fail(err)
		return
	}
	pubsub := f.store.client.Subscribe(ctx, changesKey(f.path))
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() == nil {
			f.fail(fmt.Errorf("subscribe %s: %w", changesKey(f.path), err))
		}
		return
	}
	if !f.reload(ctx) {
		return
	}
	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-messages:
			if !ok {
				f.fail(errors.New("menu change subscription closed"))
				return
			}
			if !f.reload(ctx) {
				return
			}
		}
	}
}

func (f *feed) reload(ctx context.Context) bool {
	items, err := f.store.load(ctx, f.path)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		f.fail(err)
		return false
	}
	if f.closed.Load() {
		return false
	}
	if f.onSnapshot != nil {
		f.onSnapshot(items)
	}
	return true
}

func (f *feed) fail(err error) {
	if f.closed.Load() {
		return
	}
	f.unsubscribe()
	if f.onError != nil {
		f.onError(err)
	}
}

func (f *feed) unsubscribe() {
	f.once.Do(func() {
		f.closed.Store(true)
		f.cancel()
	})
}
