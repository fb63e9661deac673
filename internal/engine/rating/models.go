// internal/engine/rating/models.go
package rating

import "time"

// Factors documents how a composite rating was derived. The weights are
// persisted with the result and never recomputed after the fact.
type Factors struct {
	Questionnaire   float64 `json:"questionnaire"`
	Sentiment       float64 `json:"sentiment"`
	Intensity       float64 `json:"intensity"`
	ContentRichness float64 `json:"content_richness"`
}

// CompositeRating is the final output of the synthesis engine. It is
// immutable once created: a manual adjustment produces a new
// CompositeRating that references this one through PreviousID.
type CompositeRating struct {
	ID               string    `json:"id"`
	SuggestedRating  float64   `json:"suggested_rating"`
	Confidence       float64   `json:"confidence"`
	Justification    string    `json:"justification"`
	Factors          Factors   `json:"factors"`
	Divergence       float64   `json:"divergence"`
	FallbackMode     bool      `json:"fallback_mode"`
	SynthesisApplied bool      `json:"synthesis_applied"`
	LocalComparison  float64   `json:"local_comparison"`
	CoherenceScore   float64   `json:"coherence_score"`
	ModelWeight      float64   `json:"model_weight,omitempty"`
	LocalWeight      float64   `json:"local_weight,omitempty"`
	PreviousID       string    `json:"previous_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
