package models

import "time"

// WeightReading is one accepted scale reading: either the confirmed output of
// the OCR pipeline or a manual entry. RawText keeps the recognized text that
// produced the value so disputed readings can be reviewed later.
type WeightReading struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	// WeightKg is the resolved reading in kilograms.
	WeightKg float64 `gorm:"not null"`
	ImageURI string  `gorm:"size:512"`
	RawText  string  `gorm:"size:2048"`
	// Source is the recognition strategy that produced the value
	// (remote-service, secondary-service, client-heuristic, simulated, manual).
	Source     string `gorm:"size:32"`
	Confidence int    // 0-100
	// Timestamp is when the reading was taken (client-supplied when available).
	Timestamp     time.Time `gorm:"not null;index"`
	SubmittedByID *uint     `gorm:"index"`
	SubmittedBy   *User     `gorm:"foreignKey:SubmittedByID"`
	StoreID       *uint     `gorm:"index"`
	Store         *Store
}
