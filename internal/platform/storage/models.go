package storage

import "time"

// SessionRecord is the persisted organizer credential. A terminal holds
// at most one row; the fixed primary key makes the upsert trivial.
type SessionRecord struct {
	ID           uint      `gorm:"primaryKey"`
	AccessToken  string    `gorm:"not null"`
	RefreshToken string    `gorm:""`
	Role         string    `gorm:"not null"`
	UserName     string    `gorm:""`
	SavedAt      time.Time `gorm:"not null"`
}

// ScanLog is the on-device audit trail of scan attempts.
type ScanLog struct {
	ID        uint      `gorm:"primaryKey"`
	ScannerID string    `gorm:"index"`
	Outcome   string    `gorm:"not null"`
	Reason    string    `gorm:""`
	OrderCode string    `gorm:"index"`
	ScannedAt time.Time `gorm:"index;not null"`
}
