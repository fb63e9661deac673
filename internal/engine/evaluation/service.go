// internal/engine/evaluation/service.go
package evaluation

import (
	"context"
	"fmt"
	"strings"
	"time"

	stderrors "review-rating-engine/internal/common/errors"
	"review-rating-engine/internal/common/logger"
	"review-rating-engine/internal/common/metrics"
	"review-rating-engine/internal/common/observability"
	"review-rating-engine/internal/engine/mistral"
	"review-rating-engine/internal/engine/questionnaire"
	"review-rating-engine/internal/engine/rating"
	"review-rating-engine/internal/engine/sentiment"
)

// MinReviewLength is the shortest review a rating can be computed from.
const MinReviewLength = 20

// SentimentAnalyzer is the sentiment side of an evaluation.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, text string) (*sentiment.Result, error)
}

// TitleGateway generates a short display title for a review.
type TitleGateway interface {
	GenerateTitle(ctx context.Context, text string) (string, error)
	CheckCoherence(ctx context.Context, text string, rating float64) (*mistral.CoherencePayload, error)
}

// Service orchestrates one evaluation: questionnaire scoring and
// sentiment analysis run concurrently, then the synthesizer merges both
// signals and any manual adjustment is applied on top.
type Service struct {
	sentiment   SentimentAnalyzer
	synthesizer *rating.Synthesizer
	titles      TitleGateway
	obs         *observability.Observability
	logger      logger.Logger
}

func NewService(analyzer SentimentAnalyzer, synthesizer *rating.Synthesizer, titles TitleGateway, obs *observability.Observability, log logger.Logger) *Service {
	return &Service{
		sentiment:   analyzer,
		synthesizer: synthesizer,
		titles:      titles,
		obs:         obs,
		logger: log.WithFields(map[string]interface{}{
			"component": "evaluation",
		}),
	}
}

func (s *Service) Evaluate(ctx context.Context, req *Request) (*Result, error) {
	started := time.Now()

	if len([]rune(strings.TrimSpace(req.ReviewText))) < MinReviewLength {
		metrics.EvaluationsFailed.WithLabelValues(string(req.Questionnaire.Kind), string(stderrors.ErrCodeValidationFailed)).Inc()
		return nil, stderrors.NewValidationFailedError(
			fmt.Sprintf("review text must contain at least %d characters", MinReviewLength))
	}

	// Sentiment involves a network call, the scorer does not, so the
	// sentiment side runs in its own goroutine while the questionnaire
	// is scored inline.
	type sentimentOutcome struct {
		result *sentiment.Result
		err    error
	}
	sentimentCh := make(chan sentimentOutcome, 1)
	go func() {
		result, err := s.sentiment.Analyze(ctx, req.ReviewText)
		sentimentCh <- sentimentOutcome{result: result, err: err}
	}()

	score, err := s.scoreQuestionnaire(req.Questionnaire)
	if err != nil {
		metrics.EvaluationsFailed.WithLabelValues(string(req.Questionnaire.Kind), string(stderrors.ErrCodeValidationFailed)).Inc()
		return nil, err
	}

	outcome := <-sentimentCh
	if outcome.err != nil {
		metrics.EvaluationsFailed.WithLabelValues(string(req.Questionnaire.Kind), string(stderrors.CodeOf(outcome.err))).Inc()
		return nil, outcome.err
	}
	if ctx.Err() != nil {
		// Caller gave up: discard partial work rather than return a
		// half-populated result.
		return nil, stderrors.NewGatewayTimeoutError("evaluation")
	}

	composite := s.synthesizer.Synthesize(ctx, outcome.result, score.Composite)

	if req.ManualAdjustment != nil {
		adjusted, err := rating.ApplyManualAdjustment(composite, req.ManualAdjustment.Rating, req.ManualAdjustment.Weight)
		if err != nil {
			metrics.EvaluationsFailed.WithLabelValues(string(req.Questionnaire.Kind), string(stderrors.CodeOf(err))).Inc()
			return nil, err
		}
		composite = adjusted
	}

	result := &Result{
		Rating:        composite,
		Sentiment:     outcome.result,
		Questionnaire: score,
		Title:         s.title(ctx, req.ReviewText),
	}

	fallbackLabel := "false"
	status := "completed"
	if composite.FallbackMode {
		fallbackLabel = "true"
		status = "degraded"
	}
	metrics.EvaluationsCompleted.WithLabelValues(string(req.Questionnaire.Kind), fallbackLabel).Inc()
	metrics.EvaluationDuration.WithLabelValues(string(req.Questionnaire.Kind)).Observe(time.Since(started).Seconds())
	if s.obs != nil {
		s.obs.RecordEvaluation(ctx, status)
		s.obs.RecordEvaluationDuration(ctx, time.Since(started), status)
	}

	s.logger.Info("evaluation completed", map[string]interface{}{
		"kind":            string(req.Questionnaire.Kind),
		"suggestedRating": composite.SuggestedRating,
		"fallbackMode":    composite.FallbackMode,
		"duration":        time.Since(started).String(),
	})

	return result, nil
}

// CheckCoherence verifies a proposed rating against the review text.
func (s *Service) CheckCoherence(ctx context.Context, text string, proposedRating float64) (*mistral.CoherencePayload, error) {
	if len([]rune(strings.TrimSpace(text))) < sentiment.MinTextLength {
		return nil, stderrors.NewValidationFailedError(
			fmt.Sprintf("review text must contain at least %d characters", sentiment.MinTextLength))
	}
	if proposedRating < 1 || proposedRating > 5 {
		return nil, stderrors.NewValidationFailedError(
			fmt.Sprintf("rating %v out of [1,5]", proposedRating))
	}

	return s.titles.CheckCoherence(ctx, text, proposedRating)
}

func (s *Service) scoreQuestionnaire(input QuestionnaireInput) (questionnaire.Score, error) {
	switch input.Kind {
	case questionnaire.KindEstablishment:
		return questionnaire.ScoreEstablishment(input.Establishment), nil
	case questionnaire.KindPhysician:
		return questionnaire.ScorePhysician(input.Physician), nil
	default:
		return questionnaire.Score{}, stderrors.NewValidationFailedError(
			fmt.Sprintf("unknown questionnaire kind %q", input.Kind))
	}
}

// title asks the model for a short title, falling back to a truncation
// of the review. A title failure is never fatal to the evaluation.
func (s *Service) title(ctx context.Context, text string) string {
	generated, err := s.titles.GenerateTitle(ctx, text)
	if err == nil {
		return generated
	}

	s.logger.WithError(err).Debug("title generation failed, using truncated text", nil)

	words := strings.Fields(strings.TrimSpace(text))
	if len(words) > 8 {
		return strings.Join(words[:8], " ") + "..."
	}
	return strings.Join(words, " ")
}
