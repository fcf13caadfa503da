package services

import (
	"context"
	"fmt"

	apperrors "flashcards_go_backend/internal/errors"
)

// DefaultGenerations is the allowance a user starts with.
const DefaultGenerations = 3

// QuotaStore persists per-user generation balances. Implementations must make
// DecrementIfPositive a single atomic step against the backing store.
type QuotaStore interface {
	// GetOrInit returns the stored balance, creating it with initial when absent.
	GetOrInit(ctx context.Context, userID string, initial int) (int, error)
	// DecrementIfPositive takes one unit when the balance is above zero.
	// ok is false when nothing was taken; remaining is the balance after the call.
	DecrementIfPositive(ctx context.Context, userID string, initial int) (remaining int, ok bool, err error)
	// Set overwrites the balance, creating the record when absent.
	Set(ctx context.Context, userID string, amount int) error
}

// QuotaLedger tracks how many generations each user has left.
type QuotaLedger struct {
	store   QuotaStore
	initial int
}

func NewQuotaLedger(store QuotaStore, defaultGenerations int) *QuotaLedger {
	return &QuotaLedger{
		store:   store,
		initial: defaultGenerations,
	}
}

// GetRemaining returns the user's balance, initializing a missing record to
// the default allowance.
func (l *QuotaLedger) GetRemaining(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, apperrors.New401Error()
	}
	remaining, err := l.store.GetOrInit(ctx, userID, l.initial)
	if err != nil {
		return 0, storeUnavailable(err)
	}
	return remaining, nil
}

// ConsumeOne spends one generation. It returns the quota exhausted error and
// leaves the balance untouched when nothing is left.
func (l *QuotaLedger) ConsumeOne(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, apperrors.New401Error()
	}
	remaining, ok, err := l.store.DecrementIfPositive(ctx, userID, l.initial)
	if err != nil {
		return 0, storeUnavailable(err)
	}
	if !ok {
		return remaining, apperrors.NewQuotaExhaustedError()
	}
	return remaining, nil
}

// Grant overwrites the balance with amount. It does not add to what is left.
func (l *QuotaLedger) Grant(ctx context.Context, userID string, amount int) (int, error) {
	if userID == "" {
		return 0, apperrors.New401Error()
	}
	if amount < 0 {
		return 0, apperrors.New400Error(fmt.Sprintf("grant amount must not be negative: %d", amount))
	}
	if err := l.store.Set(ctx, userID, amount); err != nil {
		return 0, storeUnavailable(err)
	}
	return amount, nil
}

func storeUnavailable(err error) error {
	return apperrors.NewUpstreamUnavailableError("Document store is unavailable", err)
}
