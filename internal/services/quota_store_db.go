package services

import (
	"context"
	"time"

	"flashcards_go_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBQuotaStore keeps balances on the users table.
type DBQuotaStore struct {
	db *gorm.DB
}

func NewDBQuotaStore(db *gorm.DB) *DBQuotaStore {
	return &DBQuotaStore{db: db}
}

func (s *DBQuotaStore) GetOrInit(ctx context.Context, userID string, initial int) (int, error) {
	db := s.db.WithContext(ctx)
	if err := ensureUser(db, userID, initial); err != nil {
		return 0, err
	}
	return readBalance(db, userID)
}

func (s *DBQuotaStore) DecrementIfPositive(ctx context.Context, userID string, initial int) (int, bool, error) {
	var (
		remaining int
		ok        bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUser(tx, userID, initial); err != nil {
			return err
		}

		res := tx.Model(&models.User{}).
			Where("id = ? AND generations_left > 0", userID).
			UpdateColumns(map[string]interface{}{
				"generations_left": gorm.Expr("generations_left - 1"),
				"updated_at":       time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		ok = res.RowsAffected == 1

		var err error
		remaining, err = readBalance(tx, userID)
		return err
	})
	if err != nil {
		return 0, false, err
	}
	return remaining, ok, nil
}

func (s *DBQuotaStore) Set(ctx context.Context, userID string, amount int) error {
	user := models.User{ID: userID, GenerationsLeft: amount}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"generations_left": amount,
			"updated_at":       time.Now(),
		}),
	}).Create(&user).Error
}

// ensureUser inserts the default record unless one already exists.
func ensureUser(db *gorm.DB, userID string, initial int) error {
	user := models.User{ID: userID, GenerationsLeft: initial}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error
}

func readBalance(db *gorm.DB, userID string) (int, error) {
	var user models.User
	if err := db.Select("generations_left").Where("id = ?", userID).Take(&user).Error; err != nil {
		return 0, err
	}
	return user.GenerationsLeft, nil
}
