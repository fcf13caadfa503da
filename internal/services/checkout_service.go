package services

import (
	"context"
	"strings"
	"time"

	apperrors "flashcards_go_backend/internal/errors"
	"flashcards_go_backend/internal/models"
	"flashcards_go_backend/internal/utils/metrics"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v79"
)

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type CheckoutConfirmation struct {
	SessionID       string `json:"session_id"`
	AmountTotal     int64  `json:"amount_total"`
	PaymentStatus   string `json:"payment_status"`
	Credits         int    `json:"credits"`
	Applied         bool   `json:"applied"`
	GenerationsLeft int    `json:"generations_left"`
}

type CheckoutService struct {
	billing     BillingProvider
	checkoutDB  CheckoutServiceDB
	ledger      *QuotaLedger
	frontendURL string
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewCheckoutService(billing BillingProvider, checkoutDB CheckoutServiceDB, ledger *QuotaLedger, frontendURL string, m *metrics.Metrics) *CheckoutService {
	return &CheckoutService{
		billing:     billing,
		checkoutDB:  checkoutDB,
		ledger:      ledger,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		metrics:     m,
		now:         time.Now,
	}
}

// CreateCheckout starts a hosted checkout for plan. An unknown plan never
// reaches the billing provider.
func (s *CheckoutService) CreateCheckout(ctx context.Context, userID, planID, returnURL string) (*CheckoutSession, error) {
	if userID == "" {
		return nil, apperrors.New401Error()
	}
	plan, err := LookupPlan(planID)
	if err != nil {
		return nil, err
	}

	returnURL = strings.TrimRight(strings.TrimSpace(returnURL), "/")
	if returnURL == "" {
		returnURL = s.frontendURL
	}

	sess, err := s.billing.CreateCheckoutSession(ctx, userID, plan, returnURL)
	if err != nil {
		return nil, apperrors.NewUpstreamUnavailableError("Failed to create checkout session", err)
	}

	s.metrics.RecordCheckoutSession(plan.ID)
	zerolog.Ctx(ctx).Info().
		Str("plan", plan.ID).
		Str("session_id", sess.ID).
		Msg("Created checkout session")

	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// ConfirmCheckout applies the credits of a paid session to the caller's
// balance. Only sessions opened for the caller are accepted. Each session is
// applied at most once; confirming it again reports the current balance
// without granting.
func (s *CheckoutService) ConfirmCheckout(ctx context.Context, userID, sessionID string) (*CheckoutConfirmation, error) {
	if userID == "" {
		return nil, apperrors.New401Error()
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, apperrors.New400Error("session_id is required")
	}

	logger := zerolog.Ctx(ctx).With().Str("session_id", sessionID).Logger()

	sess, err := s.billing.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, apperrors.NewUpstreamUnavailableError("Failed to retrieve checkout session", err)
	}
	if sess.ClientReferenceID != userID {
		logger.Warn().Msg("Checkout session belongs to another user")
		return nil, apperrors.New403Error()
	}

	confirmation := &CheckoutConfirmation{
		SessionID:     sessionID,
		AmountTotal:   sess.AmountTotal,
		PaymentStatus: string(sess.PaymentStatus),
	}

	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return s.withBalance(ctx, userID, confirmation)
	}

	credits := ResolveCredits(ctx, sess.AmountTotal)
	confirmation.Credits = credits

	plan := sess.Metadata["plan"]
	if plan == "" {
		plan = planForAmount(sess.AmountTotal)
	}

	created, err := s.checkoutDB.RecordPaymentDB(ctx, &models.CheckoutPayment{
		SessionID:   sessionID,
		UserID:      userID,
		Plan:        plan,
		AmountTotal: sess.AmountTotal,
		Credits:     credits,
		AppliedAt:   s.now(),
	})
	if err != nil {
		return nil, storeUnavailable(err)
	}
	if !created {
		logger.Info().Msg("Checkout session already applied")
		return s.withBalance(ctx, userID, confirmation)
	}
	if credits == 0 {
		return s.withBalance(ctx, userID, confirmation)
	}

	remaining, err := s.ledger.Grant(ctx, userID, credits)
	if err != nil {
		if delErr := s.checkoutDB.DeletePaymentDB(ctx, sessionID); delErr != nil {
			logger.Error().Err(delErr).Msg("Failed to release checkout payment after grant failure")
		}
		return nil, err
	}

	s.metrics.RecordCreditsGranted(plan, credits)
	logger.Info().
		Int("credits", credits).
		Str("plan", plan).
		Msg("Applied checkout credits")

	confirmation.Applied = true
	confirmation.GenerationsLeft = remaining
	return confirmation, nil
}

func (s *CheckoutService) withBalance(ctx context.Context, userID string, confirmation *CheckoutConfirmation) (*CheckoutConfirmation, error) {
	remaining, err := s.ledger.GetRemaining(ctx, userID)
	if err != nil {
		return nil, err
	}
	confirmation.GenerationsLeft = remaining
	return confirmation, nil
}
