package models

import "time"

// RefreshToken is one whitelist row. A refresh token is usable only while a
// matching, non-expired row exists; logout and rotation remove rows.
type RefreshToken struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UserID    uint      `gorm:"index;not null"`
	Token     string    `gorm:"size:512;not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"index;not null"`
}
