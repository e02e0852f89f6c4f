package settlement

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PrefillSnapshot holds the line's own extra-labor totals, captured when the
// line was priced. Cost is optional; older lines never stored one.
type PrefillSnapshot struct {
	ExtraLaborSellKRW decimal.Decimal
	ExtraLaborCostKRW *decimal.Decimal
}

// PrefillSnapshot extracts the snapshot totals carried on the line.
func (l LineItem) PrefillSnapshot() PrefillSnapshot {
	return PrefillSnapshot{
		ExtraLaborSellKRW: l.ExtraLaborSellKRW,
		ExtraLaborCostKRW: l.ExtraLaborCostKRW,
	}
}

// SnapshotReconciler ties the everyday adjustment breakdown back to the line's
// prefill snapshot. When the two drift past tolerance it appends one synthetic
// row carrying exactly the gaps, so the breakdown always sums to the snapshot
// instead of silently drifting.
type SnapshotReconciler struct{}

// NewSnapshotReconciler creates a snapshot reconciler.
func NewSnapshotReconciler() *SnapshotReconciler {
	return &SnapshotReconciler{}
}

// Apply compares the core-visible items against the snapshot and returns the
// extended list plus the synthetic row (nil when within tolerance). Only
// core-visible items count toward the gap: material-master leftovers and the
// policy bridge row would double count.
func (r *SnapshotReconciler) Apply(items []AdjustmentItem, snap PrefillSnapshot) ([]AdjustmentItem, *AdjustmentItem) {
	visibleSell := decimal.Zero
	visibleCost := decimal.Zero
	for _, item := range items {
		if !item.Type.CoreVisible() {
			continue
		}
		visibleSell = visibleSell.Add(item.SellKRW)
		if item.CostKRW != nil {
			visibleCost = visibleCost.Add(*item.CostKRW)
		}
	}

	sellGap := snap.ExtraLaborSellKRW.Sub(visibleSell)

	var costGap *decimal.Decimal
	if snap.ExtraLaborCostKRW != nil {
		gap := snap.ExtraLaborCostKRW.Sub(visibleCost)
		costGap = &gap
	}

	exceeds := sellGap.Abs().GreaterThan(ReconcileTolerance)
	if costGap != nil && costGap.Abs().GreaterThan(ReconcileTolerance) {
		exceeds = true
	}
	if !exceeds {
		return items, nil
	}

	synthetic := &AdjustmentItem{
		ID:      "snapshot-reconcile",
		Type:    AdjustmentSnapshotReconcile,
		Label:   "스냅샷 보정",
		SellKRW: sellGap,
		CostKRW: costGap,
		Source:  SourcePrefillSnapshot,
		Reason:  fmt.Sprintf("스냅샷 공임 %s − 표시 항목합 %s", snap.ExtraLaborSellKRW, visibleSell),
	}

	extended := make([]AdjustmentItem, 0, len(items)+1)
	extended = append(extended, items...)
	extended = append(extended, *synthetic)
	return extended, synthetic
}
