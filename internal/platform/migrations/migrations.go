package migrations

import (
	"time"

	"gorm.io/gorm"
)

// Run applies the schema for every bounded context backed by PostgreSQL.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&menuDocumentRecord{},
		&deviceIdentityRecord{},
	)
}

// Menu document schema mirrors the menu Postgres store.
type menuDocumentRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:36"`
	Path      string    `gorm:"column:path;size:512;index:idx_menu_documents_path_name"`
	Name      string    `gorm:"column:name;index:idx_menu_documents_path_name"`
	Price     float64   `gorm:"column:price"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
}

func (menuDocumentRecord) TableName() string { return "menu_documents" }

// Device identity schema mirrors the identity Postgres store.
type deviceIdentityRecord struct {
	DeviceID   string    `gorm:"primaryKey;column:device_id;size:255"`
	Token      string    `gorm:"column:token;size:64;uniqueIndex"`
	IssuedAt   time.Time `gorm:"column:issued_at"`
	LastSeenAt time.Time `gorm:"column:last_seen_at;index"`
}

func (deviceIdentityRecord) TableName() string { return "device_identities" }
