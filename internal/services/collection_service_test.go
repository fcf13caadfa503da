package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "flashcards_go_backend/internal/errors"
	"flashcards_go_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestCollectionService(t *testing.T) *CollectionService {
	t.Helper()
	return NewCollectionService(NewCollectionServiceDB(newTestDB(t)))
}

func cards(pairs ...string) []models.Flashcard {
	out := make([]models.Flashcard, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.Flashcard{Front: pairs[i], Back: pairs[i+1]})
	}
	return out
}

func names(collections []models.Collection) []string {
	out := make([]string, len(collections))
	for i, c := range collections {
		out[i] = c.Name
	}
	return out
}

func TestCollectionService_SaveAndGet(t *testing.T) {
	svc := newTestCollectionService(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, "user-1", "  Algebra ", cards("x+1=2?", "x=1", " 2x=4? ", " x=2 "))
	require.NoError(t, err)
	assert.Equal(t, "Algebra", saved.Name)

	got, err := svc.Get(ctx, "user-1", "Algebra")
	require.NoError(t, err)
	require.Len(t, got.Flashcards, 2)
	assert.Equal(t, "x+1=2?", got.Flashcards[0].Front)
	assert.Equal(t, "2x=4?", got.Flashcards[1].Front)
	assert.Equal(t, "x=2", got.Flashcards[1].Back)
	assert.False(t, got.Favorite)
}

func TestCollectionService_DuplicateName(t *testing.T) {
	svc := newTestCollectionService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, "user-1", "Algebra", cards("q", "a"))
	require.NoError(t, err)

	_, err = svc.Save(ctx, "user-1", "Algebra", cards("q2", "a2"))
	assert.ErrorIs(t, err, apperrors.ErrDuplicateName)

	// Names are scoped per user.
	_, err = svc.Save(ctx, "user-2", "Algebra", cards("q", "a"))
	assert.NoError(t, err)
}

func TestCollectionService_SaveValidation(t *testing.T) {
	svc := newTestCollectionService(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		collection string
		cards      []models.Flashcard
	}{
		{"blank name", "   ", cards("q", "a")},
		{"long name", strings.Repeat("n", 201), cards("q", "a")},
		{"no cards", "Empty", nil},
		{"card without back", "Half", cards("q", " ")},
		{"slash in name", "Bio/Chem", cards("q", "a")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Save(ctx, "user-1", tt.collection, tt.cards)
			assert.ErrorIs(t, err, apperrors.ErrBadRequest)
		})
	}
}

func TestCollectionService_NotFound(t *testing.T) {
	svc := newTestCollectionService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, "user-1", "Missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, "user-1", "Missing"), apperrors.ErrNotFound)

	_, err = svc.ToggleFavorite(ctx, "user-1", "Missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Another user's collection is invisible.
	_, err = svc.Save(ctx, "user-2", "Private", cards("q", "a"))
	require.NoError(t, err)
	_, err = svc.Get(ctx, "user-1", "Private")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCollectionService_DeleteFreesName(t *testing.T) {
	svc := newTestCollectionService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, "user-1", "Algebra", cards("q", "a"))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "user-1", "Algebra"))

	list, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.Save(ctx, "user-1", "Algebra", cards("q", "a"))
	assert.NoError(t, err)
}

func TestCollectionService_ToggleFavoriteOrder(t *testing.T) {
	svc := newTestCollectionService(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		_, err := svc.Save(ctx, "user-1", name, cards("q", "a"))
		require.NoError(t, err)
	}

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base.Add(100 * time.Second) }
	_, err := svc.ToggleFavorite(ctx, "user-1", "B")
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(200 * time.Second) }
	list, err := svc.ToggleFavorite(ctx, "user-1", "C")
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, names(list))
	require.NotNil(t, list[0].FavoritedAt)

	list, err = svc.ToggleFavorite(ctx, "user-1", "C")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C"}, names(list))
	assert.False(t, list[2].Favorite)
	assert.Nil(t, list[2].FavoritedAt)
}

func TestCollectionService_ExportPDF(t *testing.T) {
	svc := newTestCollectionService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, "user-1", "Biology", cards("Cell?", "Basic unit of life"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportPDF(ctx, "user-1", "Biology", &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	assert.ErrorIs(t, svc.ExportPDF(ctx, "user-1", "Chemistry", &buf), apperrors.ErrNotFound)
}

func TestCollectionService_ExportPDFUnprintable(t *testing.T) {
	svc := newTestCollectionService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, "user-1", "Japanese", cards("猫", "cat"))
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.ErrorIs(t, svc.ExportPDF(ctx, "user-1", "Japanese", &buf), apperrors.ErrBadRequest)
	assert.Zero(t, buf.Len())
}

type MockCollectionServiceDB struct {
	mock.Mock
}

func (m *MockCollectionServiceDB) CreateCollectionDB(ctx context.Context, collection *models.Collection) error {
	return m.Called(ctx, collection).Error(0)
}

func (m *MockCollectionServiceDB) ListCollectionsDB(ctx context.Context, userID string) ([]models.Collection, error) {
	args := m.Called(ctx, userID)
	collections, _ := args.Get(0).([]models.Collection)
	return collections, args.Error(1)
}

func (m *MockCollectionServiceDB) GetCollectionDB(ctx context.Context, userID, name string) (*models.Collection, error) {
	args := m.Called(ctx, userID, name)
	collection, _ := args.Get(0).(*models.Collection)
	return collection, args.Error(1)
}

func (m *MockCollectionServiceDB) DeleteCollectionDB(ctx context.Context, userID, name string) error {
	return m.Called(ctx, userID, name).Error(0)
}

func (m *MockCollectionServiceDB) UpdateFavoriteDB(ctx context.Context, collection *models.Collection) error {
	return m.Called(ctx, collection).Error(0)
}

func TestCollectionService_StoreFailure(t *testing.T) {
	db := new(MockCollectionServiceDB)
	db.On("CreateCollectionDB", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	db.On("ListCollectionsDB", mock.Anything, "user-1").Return(nil, errors.New("connection refused"))
	svc := NewCollectionService(db)
	ctx := context.Background()

	_, err := svc.Save(ctx, "user-1", "Algebra", cards("q", "a"))
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)

	_, err = svc.List(ctx, "user-1")
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
}
