package models

import (
	"time"
)

// WeatherForecast is the owner-scoped example resource. Every row belongs to
// exactly one user.
type WeatherForecast struct {
	ID           string     `gorm:"primaryKey;size:500" json:"id"`
	UserID       string     `gorm:"size:500;not null;index" json:"user_id"`
	Date         Date       `gorm:"not null" json:"date"`
	TemperatureC int        `gorm:"not null" json:"temperature_c"`
	Summary      *string    `gorm:"size:100" json:"summary"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}
