package settlement

import (
	"github.com/shopspring/decimal"
)

// AdjustmentBreakdown is the result of the full adjustment pipeline: the final
// ordered item list, the synthetic reconciliation rows that were appended, and
// the totals callers display or compare downstream. Ephemeral, recomputed per
// view.
type AdjustmentBreakdown struct {
	// Items is the complete ordered list, synthetic rows last.
	Items []AdjustmentItem
	// Reconciliations are only the synthetic rows (policy absorb, snapshot
	// bridge), in the order they were appended.
	Reconciliations []AdjustmentItem
	// SellTotalKRW / CostTotalKRW total every item in Items.
	SellTotalKRW decimal.Decimal
	CostTotalKRW decimal.Decimal
	// VisibleSellKRW totals the everyday breakdown plus the snapshot bridge row;
	// by construction it ties to the prefill snapshot within tolerance.
	VisibleSellKRW decimal.Decimal
}

// AdjustmentPipeline runs the three-way reconciliation over a line's raw
// adjustment blob: normalize, reconcile against the pricing-policy snapshot,
// then reconcile against the line's prefill snapshot. The three steps are
// strictly sequential; each consumes the prior step's output.
type AdjustmentPipeline struct {
	normalizer *AdjustmentNormalizer
	policy     *PolicyReconciler
	snapshot   *SnapshotReconciler
}

// NewAdjustmentPipeline creates the standard pipeline.
func NewAdjustmentPipeline() *AdjustmentPipeline {
	return &AdjustmentPipeline{
		normalizer: NewAdjustmentNormalizer(),
		policy:     NewPolicyReconciler(),
		snapshot:   NewSnapshotReconciler(),
	}
}

// Run executes the pipeline. The policy snapshot may be nil (no policy was
// captured for the line); the prefill snapshot always exists, if only as zeros.
func (p *AdjustmentPipeline) Run(raw []RawAdjustment, policy *PricingPolicySnapshot, snap PrefillSnapshot) AdjustmentBreakdown {
	items := p.normalizer.Normalize(raw)

	items, policyRow := p.policy.Apply(items, policy)
	items, snapshotRow := p.snapshot.Apply(items, snap)

	reconciliations := make([]AdjustmentItem, 0, 2)
	if policyRow != nil {
		reconciliations = append(reconciliations, *policyRow)
	}
	if snapshotRow != nil {
		reconciliations = append(reconciliations, *snapshotRow)
	}

	visible := decimal.Zero
	for _, item := range items {
		if item.Type.CoreVisible() || item.Type == AdjustmentSnapshotReconcile {
			visible = visible.Add(item.SellKRW)
		}
	}

	return AdjustmentBreakdown{
		Items:           items,
		Reconciliations: reconciliations,
		SellTotalKRW:    SumSell(items),
		CostTotalKRW:    SumCost(items),
		VisibleSellKRW:  visible,
	}
}
