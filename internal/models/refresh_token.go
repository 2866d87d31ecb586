package models

import (
	"time"
)

type RefreshToken struct {
	ID        string    `gorm:"primaryKey;size:500" json:"id"`
	UserID    string    `gorm:"size:500;not null;index" json:"user_id"`
	TokenHash string    `gorm:"uniqueIndex;not null;size:64" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Revoked   bool      `gorm:"default:false" json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}
