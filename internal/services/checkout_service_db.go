package services

import (
	"context"

	"flashcards_go_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CheckoutServiceDB records which checkout sessions have been applied.
type CheckoutServiceDB interface {
	// RecordPaymentDB inserts the payment unless its session is already
	// recorded. created reports whether this call inserted it.
	RecordPaymentDB(ctx context.Context, payment *models.CheckoutPayment) (created bool, err error)
	DeletePaymentDB(ctx context.Context, sessionID string) error
}

type DefaultCheckoutServiceDB struct {
	db *gorm.DB
}

func NewCheckoutServiceDB(db *gorm.DB) CheckoutServiceDB {
	return &DefaultCheckoutServiceDB{db: db}
}

func (s *DefaultCheckoutServiceDB) RecordPaymentDB(ctx context.Context, payment *models.CheckoutPayment) (bool, error) {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(payment)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (s *DefaultCheckoutServiceDB) DeletePaymentDB(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&models.CheckoutPayment{}).Error
}
