package services

import (
	"context"
	"errors"
	"fmt"

	apperrors "flashcards_go_backend/internal/errors"
	"flashcards_go_backend/internal/models"
	"flashcards_go_backend/internal/utils/metrics"

	"github.com/rs/zerolog"
)

const (
	OutcomeSuccess        = "success"
	OutcomeQuotaExhausted = "quota_exhausted"
	OutcomeRejected       = "rejected"
	OutcomeUpstreamError  = "upstream_error"
)

type GenerationResult struct {
	Flashcards      []models.Flashcard `json:"flashcards"`
	GenerationsLeft int                `json:"generations_left"`
}

// GenerationService charges one generation for every successful batch of
// flashcards.
type GenerationService struct {
	ledger        *QuotaLedger
	generator     FlashcardGenerator
	maxInputBytes int64
	metrics       *metrics.Metrics
}

func NewGenerationService(ledger *QuotaLedger, generator FlashcardGenerator, maxInputBytes int64, m *metrics.Metrics) *GenerationService {
	return &GenerationService{
		ledger:        ledger,
		generator:     generator,
		maxInputBytes: maxInputBytes,
		metrics:       m,
	}
}

func (s *GenerationService) MaxInputBytes() int64 {
	return s.maxInputBytes
}

// Generate produces flashcards for text. The balance is checked before the
// AI call and charged only once the call has succeeded; a failed call costs
// nothing.
func (s *GenerationService) Generate(ctx context.Context, userID, text string) (*GenerationResult, error) {
	logger := zerolog.Ctx(ctx)

	if s.maxInputBytes > 0 && int64(len(text)) > s.maxInputBytes {
		s.metrics.RecordGeneration(OutcomeRejected)
		return nil, apperrors.New400Error(fmt.Sprintf("Input is too large, the limit is %d bytes", s.maxInputBytes))
	}

	remaining, err := s.ledger.GetRemaining(ctx, userID)
	if err != nil {
		return nil, err
	}
	if remaining <= 0 {
		s.metrics.RecordGeneration(OutcomeQuotaExhausted)
		return nil, apperrors.NewQuotaExhaustedError()
	}

	cards, err := s.generator.Generate(ctx, text)
	if err != nil {
		if errors.Is(err, apperrors.ErrBadRequest) {
			s.metrics.RecordGeneration(OutcomeRejected)
		} else {
			s.metrics.RecordGeneration(OutcomeUpstreamError)
		}
		return nil, err
	}

	remaining, err = s.ledger.ConsumeOne(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrQuotaExhausted) {
			logger.Info().Msg("Balance ran out while generating, discarding flashcards")
			s.metrics.RecordGeneration(OutcomeQuotaExhausted)
		}
		return nil, err
	}

	s.metrics.RecordGeneration(OutcomeSuccess)
	logger.Info().
		Int("flashcards", len(cards)).
		Int("generations_left", remaining).
		Msg("Generated flashcards")

	return &GenerationResult{
		Flashcards:      cards,
		GenerationsLeft: remaining,
	}, nil
}
