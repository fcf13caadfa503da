package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	apperrors "flashcards_go_backend/internal/errors"
	"flashcards_go_backend/internal/models"
	"flashcards_go_backend/internal/utils/metrics"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

const flashcardSystemInstruction = `You are a flashcard creator. Your task is to generate flashcards based on the text you are given. Each flashcard should have a question and an answer. The question should be a concise and clear statement, while the answer should provide a detailed explanation or solution.

Remember, the goal is to facilitate effective learning and retention of information through these flashcards, so provide accurate and informative answers for each flashcard.

Return in the following JSON format:
{
  "flashcards": [
    {
      "front": "Question goes here",
      "back": "Answer goes here"
    }
  ]
}`

// FlashcardModel is the part of *genai.GenerativeModel the generator uses.
type FlashcardModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type FlashcardGenerator interface {
	Generate(ctx context.Context, text string) ([]models.Flashcard, error)
}

// NewGeminiFlashcardModel returns a model configured to answer with the
// flashcards JSON document.
func NewGeminiFlashcardModel(client *genai.Client, name string) *genai.GenerativeModel {
	model := client.GenerativeModel(name)
	model.SystemInstruction = genai.NewUserContent(genai.Text(flashcardSystemInstruction))
	model.ResponseMIMEType = "application/json"
	return model
}

type GeneratorSettings struct {
	RequestTimeout   time.Duration
	FailureThreshold uint32
	CircuitTimeout   time.Duration
}

type GeminiFlashcardGenerator struct {
	model   FlashcardModel
	breaker *gobreaker.CircuitBreaker[*genai.GenerateContentResponse]
	timeout time.Duration
	metrics *metrics.Metrics
}

func NewGeminiFlashcardGenerator(model FlashcardModel, settings GeneratorSettings, m *metrics.Metrics) *GeminiFlashcardGenerator {
	threshold := settings.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	breaker := gobreaker.NewCircuitBreaker[*genai.GenerateContentResponse](gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     settings.CircuitTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A caller going away says nothing about the provider's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &GeminiFlashcardGenerator{
		model:   model,
		breaker: breaker,
		timeout: settings.RequestTimeout,
		metrics: m,
	}
}

type flashcardsResponse struct {
	Flashcards []struct {
		Front string `json:"front"`
		Back  string `json:"back"`
	} `json:"flashcards"`
}

// Generate asks the model for flashcards covering text. Nothing is retried.
func (g *GeminiFlashcardGenerator) Generate(ctx context.Context, text string) ([]models.Flashcard, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.New400Error("Please enter some text to generate flashcards from")
	}

	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	logger := zerolog.Ctx(ctx)
	start := time.Now()
	resp, err := g.breaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.model.GenerateContent(callCtx, genai.Text(text))
	})
	if err != nil {
		status := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			status = "circuit_open"
		}
		g.metrics.RecordAIRequest(status, time.Since(start))
		logger.Error().Err(err).Str("status", status).Msg("Flashcard generation request failed")
		return nil, apperrors.NewUpstreamUnavailableError("Failed to generate flashcards", err)
	}
	g.metrics.RecordAIRequest("ok", time.Since(start))

	cards, err := parseFlashcards(responseText(resp))
	if err != nil {
		logger.Warn().Err(err).Msg("Unexpected response structure from AI model")
		return nil, apperrors.NewUpstreamMalformedError("Invalid response from AI model", err)
	}
	logger.Debug().Int("flashcards", len(cards)).Msg("Generated flashcards")
	return cards, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}

// parseFlashcards decodes the {"flashcards": [...]} document, dropping
// cards that lack a front or a back.
func parseFlashcards(raw string) ([]models.Flashcard, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty response")
	}

	var parsed flashcardsResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, err
	}

	cards := make([]models.Flashcard, 0, len(parsed.Flashcards))
	for _, c := range parsed.Flashcards {
		front, back := strings.TrimSpace(c.Front), strings.TrimSpace(c.Back)
		if front == "" || back == "" {
			continue
		}
		cards = append(cards, models.Flashcard{Position: len(cards), Front: front, Back: back})
	}
	if len(cards) == 0 {
		return nil, errors.New("no flashcards in response")
	}
	return cards, nil
}
