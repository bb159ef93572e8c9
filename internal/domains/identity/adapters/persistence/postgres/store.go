package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/restaurant-pos/internal/domains/identity/domain"
	"github.com/Apurer/restaurant-pos/internal/domains/identity/ports"
)

var _ ports.Store = (*Store)(nil)

// DefaultRetention is how long an unused device identity is kept.
const DefaultRetention = 30 * 24 * time.Hour

// Store persists anonymous identities in PostgreSQL.
type Store struct {
	db *gorm.DB
}

// NewStore wires a PostgreSQL-backed identity store. Caller owns DB lifecycle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

type identityRecord struct {
	DeviceID   string    `gorm:"primaryKey;column:device_id;size:255"`
	Token      string    `gorm:"column:token;size:64;uniqueIndex"`
	IssuedAt   time.Time `gorm:"column:issued_at"`
	LastSeenAt time.Time `gorm:"column:last_seen_at;index"`
}

func (identityRecord) TableName() string { return "device_identities" }

func (s *Store) Get(ctx context.Context, deviceID string) (*domain.Identity, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record identityRecord
	if err := s.db.WithContext(ctx).First(&record, "device_id = ?", strings.TrimSpace(deviceID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Save upserts an identity keyed by device. The token of an existing device is never replaced.
func (s *Store) Save(ctx context.Context, identity *domain.Identity) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if identity == nil {
		return errors.New("identity is nil")
	}
	if err := identity.Validate(); err != nil {
		return err
	}
	record := toRecord(identity)
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "device_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_seen_at"}),
		}).
		Create(&record).Error
}

func (s *Store) Delete(ctx context.Context, deviceID string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil
	}
	return s.db.WithContext(ctx).Delete(&identityRecord{}, "device_id = ?", deviceID).Error
}

// PurgeInactive removes identities not seen since cutoff. Use for housekeeping or cron.
func (s *Store) PurgeInactive(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	result := s.db.WithContext(ctx).Where("last_seen_at < ?", cutoff).Delete(&identityRecord{})
	return result.RowsAffected, result.Error
}

func (s *Store) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres identity store not configured")
	}
	return nil
}

func toRecord(identity *domain.Identity) identityRecord {
	return identityRecord{
		DeviceID:   identity.DeviceID,
		Token:      identity.Token,
		IssuedAt:   identity.IssuedAt,
		LastSeenAt: identity.LastSeenAt,
	}
}

func (r identityRecord) toDomain() *domain.Identity {
	return &domain.Identity{
		DeviceID:   r.DeviceID,
		Token:      r.Token,
		IssuedAt:   r.IssuedAt,
		LastSeenAt: r.LastSeenAt,
	}
}
