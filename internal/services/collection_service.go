package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "flashcards_go_backend/internal/errors"
	"flashcards_go_backend/internal/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const maxCollectionNameLength = 200

type CollectionService struct {
	collectionDB CollectionServiceDB
	now          func() time.Time
}

func NewCollectionService(collectionDB CollectionServiceDB) *CollectionService {
	return &CollectionService{
		collectionDB: collectionDB,
		now:          time.Now,
	}
}

// Save stores a new named collection for the user.
func (s *CollectionService) Save(ctx context.Context, userID, name string, cards []models.Flashcard) (*models.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.New400Error("Please enter a name")
	}
	if utf8.RuneCountInString(name) > maxCollectionNameLength {
		return nil, apperrors.New400Error(fmt.Sprintf("Collection name must be at most %d characters", maxCollectionNameLength))
	}
	// Names are used as a single path segment in /api/collections/:name.
	if strings.ContainsRune(name, '/') {
		return nil, apperrors.New400Error("Collection name must not contain '/'")
	}
	if len(cards) == 0 {
		return nil, apperrors.New400Error("A collection needs at least one flashcard")
	}

	collection := &models.Collection{
		UserID:     userID,
		Name:       name,
		Flashcards: make([]models.Flashcard, 0, len(cards)),
	}
	for i, card := range cards {
		front, back := strings.TrimSpace(card.Front), strings.TrimSpace(card.Back)
		if front == "" || back == "" {
			return nil, apperrors.New400Error(fmt.Sprintf("Flashcard %d needs both a front and a back", i+1))
		}
		collection.Flashcards = append(collection.Flashcards, models.Flashcard{
			Position: i,
			Front:    front,
			Back:     back,
		})
	}

	if err := s.collectionDB.CreateCollectionDB(ctx, collection); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateName) {
			return nil, err
		}
		return nil, storeUnavailable(err)
	}

	zerolog.Ctx(ctx).Info().
		Str("collection", name).
		Int("flashcards", len(collection.Flashcards)).
		Msg("Saved flashcard collection")
	return collection, nil
}

// List returns the user's collections in display order.
func (s *CollectionService) List(ctx context.Context, userID string) ([]models.Collection, error) {
	collections, err := s.collectionDB.ListCollectionsDB(ctx, userID)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	if collections == nil {
		collections = []models.Collection{}
	}
	SortCollections(collections)
	return collections, nil
}

func (s *CollectionService) Get(ctx context.Context, userID, name string) (*models.Collection, error) {
	collection, err := s.collectionDB.GetCollectionDB(ctx, userID, name)
	if err != nil {
		return nil, collectionLookupError(name, err)
	}
	return collection, nil
}

func (s *CollectionService) Delete(ctx context.Context, userID, name string) error {
	if err := s.collectionDB.DeleteCollectionDB(ctx, userID, name); err != nil {
		return collectionLookupError(name, err)
	}
	return nil
}

// ToggleFavorite flips the favorite flag of the named collection and returns
// the re-sorted list.
func (s *CollectionService) ToggleFavorite(ctx context.Context, userID, name string) ([]models.Collection, error) {
	collection, err := s.collectionDB.GetCollectionDB(ctx, userID, name)
	if err != nil {
		return nil, collectionLookupError(name, err)
	}

	applyFavoriteToggle(collection, s.now())
	if err := s.collectionDB.UpdateFavoriteDB(ctx, collection); err != nil {
		return nil, storeUnavailable(err)
	}
	return s.List(ctx, userID)
}

// ExportPDF renders the named collection as a printable PDF.
func (s *CollectionService) ExportPDF(ctx context.Context, userID, name string, w io.Writer) error {
	collection, err := s.Get(ctx, userID, name)
	if err != nil {
		return err
	}
	if !printablePDF(collection) {
		return apperrors.New400Error("Collection contains characters that cannot be printed to PDF")
	}
	if err := WriteCollectionPDF(w, collection); err != nil {
		return apperrors.New500Error(err)
	}
	return nil
}

func collectionLookupError(name string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.New404Error("Flashcard collection not found: " + name)
	}
	return storeUnavailable(err)
}
