package services

import (
	"context"
	"errors"

	apperrors "flashcards_go_backend/internal/errors"
	"flashcards_go_backend/internal/models"

	"gorm.io/gorm"
)

// CollectionServiceDB defines persistence for flashcard collections
type CollectionServiceDB interface {
	CreateCollectionDB(ctx context.Context, collection *models.Collection) error
	ListCollectionsDB(ctx context.Context, userID string) ([]models.Collection, error)
	GetCollectionDB(ctx context.Context, userID, name string) (*models.Collection, error)
	DeleteCollectionDB(ctx context.Context, userID, name string) error
	UpdateFavoriteDB(ctx context.Context, collection *models.Collection) error
}

// DefaultCollectionServiceDB implements CollectionServiceDB with GORM
type DefaultCollectionServiceDB struct {
	db *gorm.DB
}

func NewCollectionServiceDB(db *gorm.DB) CollectionServiceDB {
	return &DefaultCollectionServiceDB{db: db}
}

// CreateCollectionDB writes the collection and its cards in one transaction.
// A name already used by the same user is rejected.
func (s *DefaultCollectionServiceDB) CreateCollectionDB(ctx context.Context, collection *models.Collection) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.Collection{}).
			Where("user_id = ? AND name = ?", collection.UserID, collection.Name).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.NewDuplicateNameError(collection.Name)
		}
		return tx.Create(collection).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.NewDuplicateNameError(collection.Name)
	}
	return err
}

// ListCollectionsDB returns the user's collections in creation order, without cards
func (s *DefaultCollectionServiceDB) ListCollectionsDB(ctx context.Context, userID string) ([]models.Collection, error) {
	var collections []models.Collection
	result := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&collections)
	if result.Error != nil {
		return nil, result.Error
	}
	return collections, nil
}

// GetCollectionDB retrieves a collection and its cards in position order
func (s *DefaultCollectionServiceDB) GetCollectionDB(ctx context.Context, userID, name string) (*models.Collection, error) {
	var collection models.Collection
	result := s.db.WithContext(ctx).
		Preload("Flashcards", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("user_id = ? AND name = ?", userID, name).
		First(&collection)
	if result.Error != nil {
		return nil, result.Error
	}
	return &collection, nil
}

// DeleteCollectionDB deletes a collection and its cards
func (s *DefaultCollectionServiceDB) DeleteCollectionDB(ctx context.Context, userID, name string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var collection models.Collection
		if err := tx.Where("user_id = ? AND name = ?", userID, name).First(&collection).Error; err != nil {
			return err
		}
		if err := tx.Where("collection_id = ?", collection.ID).Delete(&models.Flashcard{}).Error; err != nil {
			return err
		}
		return tx.Delete(&collection).Error
	})
}

func (s *DefaultCollectionServiceDB) UpdateFavoriteDB(ctx context.Context, collection *models.Collection) error {
	return s.db.WithContext(ctx).
		Model(&models.Collection{}).
		Where("id = ?", collection.ID).
		Updates(map[string]interface{}{
			"favorite":     collection.Favorite,
			"favorited_at": collection.FavoritedAt,
		}).Error
}
