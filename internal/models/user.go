package models

import (
	"time"
)

// User is keyed by the identity provider's subject claim.
type User struct {
	ID              string `gorm:"primaryKey;size:191"`
	GenerationsLeft int    `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
