package models

import "time"

// User model
type User struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Username     string     `gorm:"size:255;not null;unique"`
	Email        string     `gorm:"size:255;not null;unique"`
	PasswordHash string     `gorm:"size:255;not null"`
	StartDay     *time.Time `gorm:"type:date"`
}
