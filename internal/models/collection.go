package models

import (
	"time"
)

// Collection is a named set of flashcards owned by a user. Names are unique
// per user.
type Collection struct {
	ID          uint        `gorm:"primaryKey" json:"-"`
	UserID      string      `gorm:"size:191;not null;uniqueIndex:idx_collections_user_name" json:"-"`
	Name        string      `gorm:"size:200;not null;uniqueIndex:idx_collections_user_name" json:"name"`
	Favorite    bool        `gorm:"not null;default:false" json:"favorite"`
	FavoritedAt *time.Time  `json:"favorited_at"`
	Flashcards  []Flashcard `gorm:"foreignKey:CollectionID;constraint:OnDelete:CASCADE" json:"flashcards,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"-"`
}

type Flashcard struct {
	ID           uint   `gorm:"primaryKey" json:"-"`
	CollectionID uint   `gorm:"not null;index" json:"-"`
	Position     int    `gorm:"not null" json:"-"`
	Front        string `gorm:"type:text;not null" json:"front"`
	Back         string `gorm:"type:text;not null" json:"back"`
}
