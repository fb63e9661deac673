// internal/engine/rating/synthesizer.go
package rating

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	stderrors "review-rating-engine/internal/common/errors"
	"review-rating-engine/internal/common/logger"
	"review-rating-engine/internal/engine/mistral"
	"review-rating-engine/internal/engine/sentiment"
)

// ModelGateway is the rating-synthesis model call this engine depends on.
type ModelGateway interface {
	SynthesizeRating(ctx context.Context, payload *mistral.SentimentPayload, questionnaireComposite float64) (*mistral.RatingPayload, error)
}

// Synthesizer combines the sentiment signal and the questionnaire
// composite into one composite rating, cross-checking the model
// estimate against a deterministic local estimate. It never mutates its
// inputs and never raises once they are valid: every model failure
// degrades to the questionnaire composite.
type Synthesizer struct {
	gateway ModelGateway
	logger  logger.Logger
}

// Factor weights for a model-backed rating. The degraded path uses the
// questionnaire alone.
var (
	modelFactors    = Factors{Questionnaire: 0.4, Sentiment: 0.4, Intensity: 0.1, ContentRichness: 0.1}
	degradedFactors = Factors{Questionnaire: 1.0}
)

func NewSynthesizer(gateway ModelGateway, log logger.Logger) *Synthesizer {
	return &Synthesizer{
		gateway: gateway,
		logger: log.WithFields(map[string]interface{}{
			"component": "rating",
		}),
	}
}

// LocalEstimate computes the deterministic rating estimate used to
// cross-check the model: a base value per sentiment category, bumped by
// one when the emotion is strong, blended 60/40 with the questionnaire.
func LocalEstimate(sent *sentiment.Result, questionnaireComposite float64) float64 {
	base := 3.0
	switch sent.Sentiment {
	case sentiment.SentimentPositive:
		base = 4.0
		if sent.EmotionalIntensity > 0.8 {
			base = math.Min(base+1.0, 5.0)
		}
	case sentiment.SentimentNegative:
		base = 2.0
		if sent.EmotionalIntensity > 0.8 {
			base = math.Max(base-1.0, 1.0)
		}
	}

	return round1(0.6*base + 0.4*questionnaireComposite)
}

// Synthesize runs the full synthesis algorithm. The returned rating is
// always usable; FallbackMode marks a degraded result.
func (s *Synthesizer) Synthesize(ctx context.Context, sent *sentiment.Result, questionnaireComposite float64) *CompositeRating {
	localRating := LocalEstimate(sent, questionnaireComposite)

	model, err := s.gateway.SynthesizeRating(ctx, toModelPayload(sent), questionnaireComposite)
	if err != nil {
		return s.degraded(questionnaireComposite, err)
	}
	if model.SuggestedRating < 1 || model.SuggestedRating > 5 {
		return s.degraded(questionnaireComposite,
			stderrors.NewResponsePayloadError(fmt.Sprintf("suggested_rating %v out of [1,5]", model.SuggestedRating)))
	}

	divergence := math.Abs(model.SuggestedRating - localRating)

	if divergence < 1.0 {
		return &CompositeRating{
			ID:               uuid.NewString(),
			SuggestedRating:  model.SuggestedRating,
			Confidence:       model.Confidence,
			Justification:    model.Justification,
			Factors:          modelFactors,
			Divergence:       round1(divergence),
			LocalComparison:  localRating,
			CoherenceScore:   1 - divergence/5,
			SynthesisApplied: false,
			CreatedAt:        time.Now().UTC(),
		}
	}

	modelWeight := 0.7 + 0.3*model.Confidence
	localWeight := 1 - modelWeight
	finalRating := round1(modelWeight*model.SuggestedRating + localWeight*localRating)

	s.logger.Warn("model and local estimates diverge, blending", map[string]interface{}{
		"modelEstimate": model.SuggestedRating,
		"localEstimate": localRating,
		"divergence":    divergence,
		"modelWeight":   modelWeight,
	})

	return &CompositeRating{
		ID:              uuid.NewString(),
		SuggestedRating: finalRating,
		Confidence:      model.Confidence,
		Justification: fmt.Sprintf(
			"Divergence de %.1f entre l'estimation du modèle (%.1f) et l'estimation locale (%.1f), note pondérée appliquée",
			divergence, model.SuggestedRating, localRating),
		Factors:          modelFactors,
		Divergence:       round1(divergence),
		LocalComparison:  localRating,
		CoherenceScore:   1 - divergence/5,
		SynthesisApplied: true,
		ModelWeight:      modelWeight,
		LocalWeight:      localWeight,
		CreatedAt:        time.Now().UTC(),
	}
}

func (s *Synthesizer) degraded(questionnaireComposite float64, cause error) *CompositeRating {
	s.logger.WithError(cause).Warn("model rating unavailable, degraded mode", map[string]interface{}{
		"errorCode": string(stderrors.CodeOf(cause)),
	})

	return &CompositeRating{
		ID:              uuid.NewString(),
		SuggestedRating: round1(questionnaireComposite),
		Confidence:      0.0,
		Justification: fmt.Sprintf(
			"Mode dégradé : note issue du questionnaire uniquement (cause : %s)", cause.Error()),
		Factors:      degradedFactors,
		FallbackMode: true,
		CreatedAt:    time.Now().UTC(),
	}
}

func toModelPayload(sent *sentiment.Result) *mistral.SentimentPayload {
	return &mistral.SentimentPayload{
		Sentiment:          sent.Sentiment,
		Confidence:         sent.Confidence,
		EmotionalIntensity: sent.EmotionalIntensity,
		PositiveIndicators: sent.PositiveIndicators,
		NegativeIndicators: sent.NegativeIndicators,
		KeyThemes:          sent.KeyThemes,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
