package models

import "time"

// Store is a physical retail location managed through the app.
type Store struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time `gorm:"index"`
	// StoreCode is the human-assigned identifier (e.g. "ST-017"), unique across stores.
	StoreCode     string `gorm:"size:64;not null;uniqueIndex"`
	Name          string `gorm:"size:255;not null"`
	Location      string `gorm:"size:512;not null"`
	ContactNumber string `gorm:"size:64"`
	CreatedByID   *uint  `gorm:"index"` // admin user that registered the store
}
