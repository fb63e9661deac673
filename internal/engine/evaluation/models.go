// internal/engine/evaluation/models.go
package evaluation

import (
	"review-rating-engine/internal/engine/questionnaire"
	"review-rating-engine/internal/engine/rating"
	"review-rating-engine/internal/engine/sentiment"
)

// Request carries one review evaluation: the free text, one of the two
// questionnaire shapes, and an optional manual adjustment.
type Request struct {
	ReviewText    string             `json:"review_text"`
	Questionnaire QuestionnaireInput `json:"questionnaire"`

	ManualAdjustment *ManualAdjustment `json:"manual_adjustment,omitempty"`
}

// QuestionnaireInput selects and carries one questionnaire shape.
type QuestionnaireInput struct {
	Kind          questionnaire.Kind `json:"kind"`
	Establishment map[string]float64 `json:"establishment,omitempty"`
	Physician     map[string]string  `json:"physician,omitempty"`
}

// ManualAdjustment blends a human-chosen rating into the synthesized one.
type ManualAdjustment struct {
	Rating float64 `json:"rating"`
	Weight float64 `json:"weight"`
}

// Result is everything the UI layer needs to display one evaluation.
type Result struct {
	Rating        *rating.CompositeRating `json:"rating"`
	Sentiment     *sentiment.Result       `json:"sentiment"`
	Questionnaire questionnaire.Score     `json:"questionnaire"`
	Title         string                  `json:"title,omitempty"`
}
