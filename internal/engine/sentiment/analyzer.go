package sentiment

import (
	"math"
	"strings"
)

// Result is the unified sentiment signal handed to the rating engine,
// whether it came from the model or from the local heuristic.
type Result struct {
	Sentiment          string   `json:"sentiment"`
	Confidence         float64  `json:"confidence"`
	EmotionalIntensity float64  `json:"emotional_intensity"`
	PositiveIndicators []string `json:"positive_indicators"`
	NegativeIndicators []string `json:"negative_indicators"`
	KeyThemes          []string `json:"key_themes"`
	FallbackUsed       bool     `json:"fallback_used"`
	FallbackError      string   `json:"fallback_error,omitempty"`
}

// AnalyzeLocally computes a deterministic sentiment estimate from
// keyword counts. No I/O, always available.
//
// score = (positive - negative) / (positive + negative + 1), bounded in
// (-1, 1); above 0.2 reads positive, below -0.2 negative. Confidence is
// fixed at 0.0 so downstream consumers can always tell a heuristic
// result from a model-backed one.
func AnalyzeLocally(text string) *Result {
	lower := strings.ToLower(cleanText(text))

	var positiveCount, negativeCount int
	var positiveHits, negativeHits []string

	for _, keyword := range positiveKeywords {
		if n := strings.Count(lower, keyword); n > 0 {
			positiveCount += n
			positiveHits = append(positiveHits, keyword)
		}
	}
	for _, keyword := range negativeKeywords {
		if n := strings.Count(lower, keyword); n > 0 {
			negativeCount += n
			negativeHits = append(negativeHits, keyword)
		}
	}

	score := float64(positiveCount-negativeCount) / float64(positiveCount+negativeCount+1)

	category := SentimentNeutral
	switch {
	case score > 0.2:
		category = SentimentPositive
	case score < -0.2:
		category = SentimentNegative
	}

	return &Result{
		Sentiment:          category,
		Confidence:         0.0,
		EmotionalIntensity: math.Abs(score),
		PositiveIndicators: positiveHits,
		NegativeIndicators: negativeHits,
		KeyThemes:          extractThemes(lower),
		FallbackUsed:       true,
	}
}
