package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/Apurer/restaurant-pos/internal/domains/menu/domain"
	"github.com/Apurer/restaurant-pos/internal/domains/menu/ports"
)

var _ ports.Store = (*Store)(nil)

// ChangeChannel is the LISTEN/NOTIFY channel carrying the path of every changed collection.
const ChangeChannel = "menu_documents_changed"

// Store keeps menu documents in PostgreSQL and streams changes over LISTEN/NOTIFY.
type Store struct {
	db          *gorm.DB
	dsn         string
	newListener func(dsn string) listener
}

// listener is the subset of *pq.Listener used by feeds.
type listener interface {
	Listen(channel string) error
	NotificationChannel() <-chan *pq.Notification
	Close() error
}

// NewStore wires a PostgreSQL-backed menu store. dsn is used for the dedicated
// LISTEN connections; the caller manages the DB lifecycle and runs
// migrations.Run before use.
func NewStore(db *gorm.DB, dsn string) *Store {
	return &Store{db: db, dsn: dsn, newListener: newPQListener}
}

func newPQListener(dsn string) listener {
	return pq.NewListener(dsn, 250*time.Millisecond, 10*time.Second, nil)
}

// documentRecord maps a menu document to a relational row.
type documentRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:36"`
	Path      string    `gorm:"column:path;size:512;index:idx_menu_documents_path_name"`
	Name      string    `gorm:"column:name;index:idx_menu_documents_path_name"`
	Price     float64   `gorm:"column:price"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
}

func (documentRecord) TableName() string { return "menu_documents" }

func (s *Store) Create(ctx context.Context, path string, draft domain.Draft) (string, error) {
	if err := s.ensureDB(); err != nil {
		return "", err
	}
	record := documentRecord{
		ID:    uuid.NewString(),
		Path:  path,
		Name:  draft.Name,
		Price: draft.Price,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return notify(tx, path)
	})
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

func (s *Store) Delete(ctx context.Context, path, id string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("path = ? AND id = ?", path, id).Delete(&documentRecord{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		return notify(tx, path)
	})
}

func (s *Store) QueryEqual(ctx context.Context, path, field string, value any) ([]domain.MenuItem, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	query := s.db.WithContext(ctx).Where("path = ?", path)
	switch field {
	case ports.FieldName:
		name, ok := value.(string)
		if !ok {
			return nil, nil
		}
		query = query.Where("name = ?", name)
	case ports.FieldPrice:
		price, ok := value.(float64)
		if !ok {
			return nil, nil
		}
		query = query.Where("price = ?", price)
	default:
		return nil, ports.ErrUnsupportedField
	}
	var records []documentRecord
	if err := query.Order("created_at, id").Find(&records).Error; err != nil {
		return nil, err
	}
	return toItems(records), nil
}

func (s *Store) Subscribe(ctx context.Context, path string, onSnapshot func([]domain.MenuItem), onError func(error)) ports.Unsubscriber {
	ctx, cancel := context.WithCancel(ctx)
	f := &feed{store: s, path: path, onSnapshot: onSnapshot, onError: onError, cancel: cancel}
	go f.run(ctx)
	return ports.UnsubscribeFunc(f.unsubscribe)
}

func (s *Store) load(ctx context.Context, path string) ([]domain.MenuItem, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var records []documentRecord
	if err := s.db.WithContext(ctx).Where("path = ?", path).Order("created_at, id").Find(&records).Error; err != nil {
		return nil, err
	}
	return toItems(records), nil
}

func (s *Store) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres menu store not configured")
	}
	return nil
}

func notify(tx *gorm.DB, path string) error {
	return tx.Exec("SELECT pg_notify(?, ?)", ChangeChannel, path).Error
}

func toItems(records []documentRecord) []domain.MenuItem {
	items := make([]domain.MenuItem, 0, len(records))
	for _, r := range records {
		items = append(items, domain.MenuItem{ID: r.ID, Name: r.Name, Price: r.Price})
	}
	return items
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

// run listens before the initial load so no write between the two is missed.
func (f *feed) run(ctx context.Context) {
	l := f.store.newListener(f.store.dsn)
	defer l.Close()

	if err := l.Listen(ChangeChannel); err != nil {
		f.fail(fmt.Errorf("listen %s: %w", ChangeChannel, err))
		return
	}
	if !f.reload(ctx) {
		return
	}
	notifications := l.NotificationChannel()
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notifications:
			if !ok {
				f.fail(errors.New("menu change listener closed"))
				return
			}
			// nil signals a reconnect; notifications may have been lost.
			if n != nil && n.Extra != f.path {
				continue
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
