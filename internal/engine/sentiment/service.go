package sentiment

import (
	"context"
	"fmt"

	stderrors "review-rating-engine/internal/common/errors"
	"review-rating-engine/internal/common/logger"
	"review-rating-engine/internal/engine/mistral"
)

// MinTextLength is the shortest review that carries enough signal for
// sentiment analysis.
const MinTextLength = 10

// Gateway is the model call this service depends on.
type Gateway interface {
	AnalyzeSentiment(ctx context.Context, text string) (*mistral.SentimentPayload, error)
}

// Service composes the model gateway and the local heuristic into one
// sentiment result. Once input validation passes, the caller always
// receives a usable result: any gateway failure of any kind degrades to
// the heuristic with fallback_used set.
type Service struct {
	gateway Gateway
	logger  logger.Logger
}

func NewService(gateway Gateway, log logger.Logger) *Service {
	return &Service{
		gateway: gateway,
		logger: log.WithFields(map[string]interface{}{
			"component": "sentiment",
		}),
	}
}

func (s *Service) Analyze(ctx context.Context, text string) (*Result, error) {
	cleaned := cleanText(text)
	if len([]rune(cleaned)) < MinTextLength {
		return nil, stderrors.NewValidationFailedError(
			fmt.Sprintf("review text must contain at least %d characters", MinTextLength))
	}

	payload, err := s.gateway.AnalyzeSentiment(ctx, cleaned)
	if err != nil {
		return s.fallback(cleaned, err), nil
	}

	if err := validateModelPayload(payload); err != nil {
		return s.fallback(cleaned, err), nil
	}

	return &Result{
		Sentiment:          payload.Sentiment,
		Confidence:         payload.Confidence,
		EmotionalIntensity: payload.EmotionalIntensity,
		PositiveIndicators: payload.PositiveIndicators,
		NegativeIndicators: payload.NegativeIndicators,
		KeyThemes:          payload.KeyThemes,
		FallbackUsed:       false,
	}, nil
}

func (s *Service) fallback(text string, cause error) *Result {
	s.logger.WithError(cause).Warn("model sentiment unavailable, using local heuristic", map[string]interface{}{
		"errorCode": string(stderrors.CodeOf(cause)),
	})

	result := AnalyzeLocally(text)
	result.FallbackError = cause.Error()
	return result
}

// validateModelPayload re-checks the payload invariants at the service
// boundary. An invalid payload is treated exactly like a gateway
// failure.
func validateModelPayload(payload *mistral.SentimentPayload) error {
	switch payload.Sentiment {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
	default:
		return stderrors.NewResponsePayloadError(fmt.Sprintf("unknown sentiment %q", payload.Sentiment))
	}
	if payload.Confidence < 0 || payload.Confidence > 1 {
		return stderrors.NewResponsePayloadError(fmt.Sprintf("confidence %v out of [0,1]", payload.Confidence))
	}
	if payload.EmotionalIntensity < 0 || payload.EmotionalIntensity > 1 {
		return stderrors.NewResponsePayloadError(fmt.Sprintf("emotional_intensity %v out of [0,1]", payload.EmotionalIntensity))
	}
	return nil
}
