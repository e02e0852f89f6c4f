package settlement

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jtrade/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MatchCandidate is a ranked suggestion for linking an unmatched receipt line to
// an order line. Produced by the external scorer; the engine only consumes it.
// ScoreDetail is opaque and passed through for display.
type MatchCandidate struct {
	OrderLineID          uuid.UUID        `json:"order_line_id"`
	MaterialCode         string           `json:"material_code"`
	EffectiveWeightGrams decimal.Decimal  `json:"effective_weight_g"`
	WeightMinGrams       *decimal.Decimal `json:"weight_min_g,omitempty"`
	WeightMaxGrams       *decimal.Decimal `json:"weight_max_g,omitempty"`
	MatchScore           float64          `json:"match_score"`
	ScoreDetail          json.RawMessage  `json:"score_detail,omitempty"`
}

// MatchValidator gates the confirmation of a receipt-line-to-order-line match.
// It only validates; binding the match and creating downstream drafts is the
// caller's business.
type MatchValidator struct{}

// NewMatchValidator creates a match validator.
func NewMatchValidator() *MatchValidator {
	return &MatchValidator{}
}

// Validate checks a proposed weight against the candidate's allowed range and
// returns the effective weight to bind with.
//
// A nil weight is only acceptable for the cash-only material "00", where it
// counts as zero; any other material requires a weight. Cash-only lines are
// exempt from the range check entirely since they have no physical weight concept.
// An absent bound on either side leaves the range unconstrained.
func (v *MatchValidator) Validate(weight *decimal.Decimal, cand MatchCandidate, materialCode string) (decimal.Decimal, error) {
	cashOnly := normalizeMaterialCode(materialCode) == NoneMaterialCode

	if weight == nil {
		if cashOnly {
			return decimal.Zero, nil
		}
		return decimal.Zero, shared.ErrWeightRequired
	}
	if cashOnly {
		return *weight, nil
	}

	if cand.WeightMinGrams != nil && cand.WeightMaxGrams != nil {
		if weight.LessThan(*cand.WeightMinGrams) || weight.GreaterThan(*cand.WeightMaxGrams) {
			return decimal.Zero, shared.ErrWeightOutOfRange
		}
	}
	return *weight, nil
}
