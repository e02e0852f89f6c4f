package settlement

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PricingPolicySnapshot is a point-in-time copy of pricing-policy outputs stored
// alongside a line when it was priced. Read-only input; the live policy may have
// moved on since.
type PricingPolicySnapshot struct {
	PolicyAbsorbDecorTotalKRW decimal.Decimal `json:"policy_absorb_decor_total_krw"`
	ExtraLaborSellKRW         decimal.Decimal `json:"extra_labor_sell_krw"`
	ExtraLaborCostKRW         decimal.Decimal `json:"extra_labor_cost_krw"`
	SellAdjustRate            decimal.Decimal `json:"sell_adjust_rate"`
	SellAdjustKRW             decimal.Decimal `json:"sell_adjust_krw"`
	RoundUnitKRW              decimal.Decimal `json:"round_unit_krw"`
}

// PolicyReconciler compares the normalized decoration adjustments against the
// policy snapshot's declared absorption total and bridges any shortfall with a
// synthetic row, so the visible decoration total never understates the policy
// by more than half a won.
type PolicyReconciler struct{}

// NewPolicyReconciler creates a policy reconciler.
func NewPolicyReconciler() *PolicyReconciler {
	return &PolicyReconciler{}
}

// Apply returns the item list extended with at most one synthetic absorb row,
// plus that row (nil when the list already covered the policy total). The input
// slice is never mutated.
func (r *PolicyReconciler) Apply(items []AdjustmentItem, policy *PricingPolicySnapshot) ([]AdjustmentItem, *AdjustmentItem) {
	if policy == nil {
		return items, nil
	}

	decorAmount := policy.PolicyAbsorbDecorTotalKRW
	if decorAmount.IsNegative() {
		decorAmount = decimal.Zero
	}

	decorSum := decimal.Zero
	decorCount := 0
	for _, item := range items {
		if item.IsDecorationLike() {
			decorSum = decorSum.Add(item.SellKRW)
			decorCount++
		}
	}

	var synthetic *AdjustmentItem
	switch {
	case decorCount == 0 && decorAmount.GreaterThan(decimal.Zero):
		synthetic = r.absorbItem("policy-absorb", AdjustmentPolicyAbsorb, "정책 흡수",
			decorAmount, "정책 장식 흡수 총액")
	case decorCount > 0 && decorAmount.Sub(decorSum).GreaterThan(ReconcileTolerance):
		remainder := decorAmount.Sub(decorSum)
		synthetic = r.absorbItem("policy-absorb-delta", AdjustmentPolicyAbsorbDelta, "정책 흡수 잔액",
			remainder, fmt.Sprintf("정책 흡수 잔액 보정 (정책 %s − 항목합 %s)", decorAmount, decorSum))
	}
	if synthetic == nil {
		return items, nil
	}

	extended := make([]AdjustmentItem, 0, len(items)+1)
	extended = append(extended, items...)
	extended = append(extended, *synthetic)
	return extended, synthetic
}

// absorbItem builds a synthetic policy-absorb row. The absorbed amount has no
// cost side, so the margin equals the sell amount.
func (r *PolicyReconciler) absorbItem(id string, typ AdjustmentType, label string, amount decimal.Decimal, reason string) *AdjustmentItem {
	cost := decimal.Zero
	margin := amount
	return &AdjustmentItem{
		ID:        id,
		Type:      typ,
		Label:     NormalizeDecorationLabel(label),
		SellKRW:   amount,
		CostKRW:   &cost,
		MarginKRW: &margin,
		Source:    SourcePricingPolicy,
		Reason:    reason,
	}
}
