package services

import (
	"context"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
)

// BillingProvider creates and retrieves hosted checkout sessions.
type BillingProvider interface {
	CreateCheckoutSession(ctx context.Context, userID string, plan Plan, returnURL string) (*stripe.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error)
}

type StripeService struct{}

func NewStripeService(secretKey string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{}
}

// CreateCheckoutSession opens a monthly subscription session for plan. The
// customer comes back to returnURL with the session id either way.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, userID string, plan Plan, returnURL string) (*stripe.CheckoutSession, error) {
	resultURL := returnURL + "/result?session_id={CHECKOUT_SESSION_ID}"

	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
		PaymentMethodTypes: stripe.StringSlice([]string{
			"card",
		}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(plan.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(plan.ProductName),
					},
					UnitAmount: stripe.Int64(plan.UnitAmount),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval:      stripe.String(string(stripe.PriceRecurringIntervalMonth)),
						IntervalCount: stripe.Int64(1),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(resultURL),
		CancelURL:         stripe.String(resultURL),
		ClientReferenceID: stripe.String(userID),
		Metadata: map[string]string{
			"plan": plan.ID,
		},
	}

	return session.New(params)
}

func (s *StripeService) GetCheckoutSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
	}
	return session.Get(sessionID, params)
}
