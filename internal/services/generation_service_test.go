package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	apperrors "flashcards_go_backend/internal/errors"
	"flashcards_go_backend/internal/models"
	"flashcards_go_backend/internal/utils/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFlashcardGenerator struct {
	mock.Mock
}

func (m *MockFlashcardGenerator) Generate(ctx context.Context, text string) ([]models.Flashcard, error) {
	args := m.Called(ctx, text)
	cards, _ := args.Get(0).([]models.Flashcard)
	return cards, args.Error(1)
}

var sampleCards = []models.Flashcard{
	{Position: 0, Front: "What is 2+2?", Back: "4"},
}

func newTestGenerationService(t *testing.T, gen FlashcardGenerator) (*GenerationService, *QuotaLedger, *metrics.Metrics) {
	t.Helper()
	ledger := NewQuotaLedger(NewDBQuotaStore(newTestDB(t)), DefaultGenerations)
	m := metrics.New(prometheus.NewRegistry())
	return NewGenerationService(ledger, gen, 1024, m), ledger, m
}

func TestGenerationService_ChargesOnSuccess(t *testing.T) {
	gen := new(MockFlashcardGenerator)
	gen.On("Generate", mock.Anything, "arithmetic").Return(sampleCards, nil).Once()
	svc, ledger, m := newTestGenerationService(t, gen)
	ctx := context.Background()

	result, err := svc.Generate(ctx, "user-1", "arithmetic")
	require.NoError(t, err)

	assert.Equal(t, sampleCards, result.Flashcards)
	assert.Equal(t, 2, result.GenerationsLeft)
	remaining, err := ledger.GetRemaining(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues(OutcomeSuccess)))
	gen.AssertExpectations(t)
}

func TestGenerationService_ExhaustedSkipsAI(t *testing.T) {
	gen := new(MockFlashcardGenerator)
	svc, ledger, m := newTestGenerationService(t, gen)
	ctx := context.Background()
	_, err := ledger.Grant(ctx, "user-1", 0)
	require.NoError(t, err)

	_, err = svc.Generate(ctx, "user-1", "arithmetic")
	assert.ErrorIs(t, err, apperrors.ErrQuotaExhausted)

	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues(OutcomeQuotaExhausted)))
}

func TestGenerationService_AIFailureLeavesBalance(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"unavailable", apperrors.NewUpstreamUnavailableError("down", errors.New("timeout"))},
		{"malformed", apperrors.NewUpstreamMalformedError("bad json", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(MockFlashcardGenerator)
			gen.On("Generate", mock.Anything, mock.Anything).Return(nil, tt.err)
			svc, ledger, _ := newTestGenerationService(t, gen)
			ctx := context.Background()

			_, err := svc.Generate(ctx, "user-1", "topic")
			assert.ErrorIs(t, err, tt.err)

			remaining, err := ledger.GetRemaining(ctx, "user-1")
			require.NoError(t, err)
			assert.Equal(t, DefaultGenerations, remaining)
		})
	}
}

func TestGenerationService_LastUnitTakenDuringGeneration(t *testing.T) {
	gen := new(MockFlashcardGenerator)
	svc, ledger, _ := newTestGenerationService(t, gen)
	ctx := context.Background()
	_, err := ledger.Grant(ctx, "user-1", 1)
	require.NoError(t, err)

	// Another request spends the last unit while this one waits on the AI.
	gen.On("Generate", mock.Anything, "topic").Run(func(args mock.Arguments) {
		_, err := ledger.ConsumeOne(ctx, "user-1")
		require.NoError(t, err)
	}).Return(sampleCards, nil)

	result, err := svc.Generate(ctx, "user-1", "topic")
	assert.ErrorIs(t, err, apperrors.ErrQuotaExhausted)
	assert.Nil(t, result)

	remaining, err := ledger.GetRemaining(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

func TestGenerationService_InputTooLarge(t *testing.T) {
	gen := new(MockFlashcardGenerator)
	svc, _, _ := newTestGenerationService(t, gen)

	_, err := svc.Generate(context.Background(), "user-1", strings.Repeat("a", 1025))
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerationService_Unauthenticated(t *testing.T) {
	gen := new(MockFlashcardGenerator)
	svc, _, _ := newTestGenerationService(t, gen)

	_, err := svc.Generate(context.Background(), "", "topic")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}
