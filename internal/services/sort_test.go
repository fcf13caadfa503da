package services

import (
	"testing"
	"time"

	"flashcards_go_backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func at(ms int64) *time.Time {
	t := time.UnixMilli(ms)
	return &t
}

func TestSortCollections(t *testing.T) {
	collections := []models.Collection{
		{Name: "A", Favorite: false},
		{Name: "B", Favorite: true, FavoritedAt: at(100)},
		{Name: "C", Favorite: true, FavoritedAt: at(200)},
	}

	SortCollections(collections)

	assert.Equal(t, []string{"C", "B", "A"}, names(collections))
}

func TestSortCollections_NonFavoritesKeepOrder(t *testing.T) {
	collections := []models.Collection{
		{Name: "first"},
		{Name: "fav", Favorite: true, FavoritedAt: at(5)},
		{Name: "second"},
		{Name: "third"},
	}

	SortCollections(collections)

	assert.Equal(t, []string{"fav", "first", "second", "third"}, names(collections))
}

func TestSortCollections_Empty(t *testing.T) {
	var collections []models.Collection
	assert.NotPanics(t, func() { SortCollections(collections) })
}

func TestApplyFavoriteToggle(t *testing.T) {
	now := time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)
	c := models.Collection{Name: "Algebra"}

	applyFavoriteToggle(&c, now)
	assert.True(t, c.Favorite)
	if assert.NotNil(t, c.FavoritedAt) {
		assert.True(t, now.Equal(*c.FavoritedAt))
	}

	applyFavoriteToggle(&c, now.Add(time.Hour))
	assert.False(t, c.Favorite)
	assert.Nil(t, c.FavoritedAt)
}
