// internal/engine/rating/adjust.go
package rating

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	stderrors "review-rating-engine/internal/common/errors"
)

// ApplyManualAdjustment blends a human-chosen rating into an existing
// composite. The original is kept for audit: the adjustment returns a
// new CompositeRating referencing it through PreviousID.
//
// weight is the share of the manual rating in the blend, in [0,1].
func ApplyManualAdjustment(original *CompositeRating, manualRating, weight float64) (*CompositeRating, error) {
	if manualRating < 1 || manualRating > 5 {
		return nil, stderrors.NewValidationFailedError(
			fmt.Sprintf("manual rating %v out of [1,5]", manualRating))
	}
	if weight < 0 || weight > 1 {
		return nil, stderrors.NewValidationFailedError(
			fmt.Sprintf("manual weight %v out of [0,1]", weight))
	}

	adjusted := round1(weight*manualRating + (1-weight)*original.SuggestedRating)

	return &CompositeRating{
		ID:              uuid.NewString(),
		SuggestedRating: adjusted,
		Confidence:      original.Confidence,
		Justification: fmt.Sprintf(
			"Ajustement manuel : %.1f pondéré à %.0f%% avec la note suggérée %.1f",
			manualRating, weight*100, original.SuggestedRating),
		Factors:          original.Factors,
		Divergence:       original.Divergence,
		FallbackMode:     original.FallbackMode,
		SynthesisApplied: original.SynthesisApplied,
		LocalComparison:  original.LocalComparison,
		CoherenceScore:   original.CoherenceScore,
		PreviousID:       original.ID,
		CreatedAt:        time.Now().UTC(),
	}, nil
}
