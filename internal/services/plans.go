package services

import (
	"context"

	apperrors "flashcards_go_backend/internal/errors"

	"github.com/rs/zerolog"
)

// Plan is a monthly subscription tier sold through Stripe Checkout.
type Plan struct {
	ID          string `json:"id"`
	ProductName string `json:"product_name"`
	Currency    string `json:"currency"`
	UnitAmount  int64  `json:"unit_amount"`
	Credits     int    `json:"credits"`
}

const (
	PlanBasic = "basic"
	PlanPro   = "pro"
)

// Plans is the fixed price table, cheapest first.
var Plans = []Plan{
	{ID: PlanBasic, ProductName: "Basic subscription", Currency: "usd", UnitAmount: 500, Credits: 20},
	{ID: PlanPro, ProductName: "Pro subscription", Currency: "usd", UnitAmount: 1000, Credits: 40},
}

// LookupPlan returns the plan with the given id. Matching is exact.
func LookupPlan(id string) (Plan, error) {
	for _, p := range Plans {
		if p.ID == id {
			return p, nil
		}
	}
	return Plan{}, apperrors.NewInvalidPlanError(id)
}

// planForAmount returns the plan id whose price equals amount, or "".
func planForAmount(amount int64) string {
	for _, p := range Plans {
		if p.UnitAmount == amount {
			return p.ID
		}
	}
	return ""
}

// ResolveCredits maps a paid amount in minor units to the generation credits
// it buys. Unknown amounts grant nothing.
func ResolveCredits(ctx context.Context, amountTotal int64) int {
	for _, p := range Plans {
		if p.UnitAmount == amountTotal {
			return p.Credits
		}
	}
	zerolog.Ctx(ctx).Warn().Int64("amount_total", amountTotal).Msg("Unknown subscription amount")
	return 0
}
