package services

import (
	"sort"
	"time"

	"flashcards_go_backend/internal/models"
)

// SortCollections orders favorites first, most recently favorited leading.
// Non-favorites keep their incoming order.
func SortCollections(collections []models.Collection) {
	sort.SliceStable(collections, func(i, j int) bool {
		a, b := collections[i], collections[j]
		if a.Favorite != b.Favorite {
			return a.Favorite
		}
		if !a.Favorite {
			return false
		}
		return favoritedAt(a).After(favoritedAt(b))
	})
}

func favoritedAt(c models.Collection) time.Time {
	if c.FavoritedAt == nil {
		return time.Time{}
	}
	return *c.FavoritedAt
}

// applyFavoriteToggle flips the favorite flag, stamping or clearing the time.
func applyFavoriteToggle(c *models.Collection, now time.Time) {
	c.Favorite = !c.Favorite
	if c.Favorite {
		t := now
		c.FavoritedAt = &t
	} else {
		c.FavoritedAt = nil
	}
}
