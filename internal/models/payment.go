package models

import "time"

// CheckoutPayment marks a paid checkout session whose credits were applied.
type CheckoutPayment struct {
	SessionID   string `gorm:"primaryKey;size:255"`
	UserID      string `gorm:"size:191;not null;index"`
	Plan        string `gorm:"size:32"`
	AmountTotal int64
	Credits     int
	AppliedAt   time.Time
}
