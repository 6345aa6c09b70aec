package models

import (
	"time"
)

// User is any account that can sign in: administrators, store accounts,
// managers and vendors are all rows here, differentiated by RoleID.
// Store/manager/vendor accounts start unapproved and must be approved by an
// administrator before login succeeds.
type User struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time `gorm:"index"`
	Username       string     `gorm:"size:255;not null;unique"`
	Email          string     `gorm:"size:255;index"`
	HashedPassword []byte     `gorm:"not null"`
	RoleID         *uint      `gorm:"index"`
	Role           Role       `gorm:"foreignKey:RoleID;references:ID"`
	// StoreID links managers and vendors to the store they work for.
	StoreID  *uint `gorm:"index"`
	Store    *Store
	Approved bool `gorm:"default:false;not null"`
	// Password-reset OTP, stored hashed. Empty hash means no reset in flight.
	ResetOTPHash      []byte
	ResetOTPExpiresAt time.Time
	Readings          []WeightReading `gorm:"foreignKey:SubmittedByID"`
}
