package settlement

import (
	"github.com/shopspring/decimal"
)

// LineAmountCalculator converts a line item into its three-bucket decomposition.
// It is pure and stateless apart from the material table it classifies with, so a
// single instance is safe to share across goroutines.
type LineAmountCalculator struct {
	materials *MaterialTable
}

// NewLineAmountCalculator creates a calculator over the given material table.
// A nil table falls back to the trade default.
func NewLineAmountCalculator(materials *MaterialTable) *LineAmountCalculator {
	if materials == nil {
		materials = DefaultMaterialTable()
	}
	return &LineAmountCalculator{materials: materials}
}

// Materials exposes the classifier table the calculator was built with.
func (c *LineAmountCalculator) Materials() *MaterialTable {
	return c.materials
}

// Decompose computes the decomposition of a forward (non-return) line.
// Decision order, first match wins:
//  1. Repair lines without a material receivable owe no metal; only the repair
//     fee is labor. In AR-aligned mode every repair line books its full cash as
//     labor, because the ledger never splits a material bucket out of a repair.
//  2. Unit-priced lines are an opaque total: no weight, and labor is zero (raw)
//     or the full total (AR-aligned).
//  3. Everything else is weighted: the material bucket receives
//     net_weight × purity factor (× silver adjust for sterling), labor is the
//     line's labor sell amount.
func (c *LineAmountCalculator) Decompose(line LineItem, mode DecompositionMode) LineAmounts {
	if line.IsRepair {
		if mode == ModeARAligned {
			return LineAmounts{
				GoldGrams:   decimal.Zero,
				SilverGrams: decimal.Zero,
				LaborKRW:    line.TotalSellKRW,
				TotalKRW:    line.TotalSellKRW,
			}
		}
		if !c.repairHasMaterialReceivable(line) {
			return LineAmounts{
				GoldGrams:   decimal.Zero,
				SilverGrams: decimal.Zero,
				LaborKRW:    line.RepairFeeKRW,
				TotalKRW:    line.TotalSellKRW,
			}
		}
		// Repair with a real material receivable prices like a normal weighted line.
	}

	if line.IsUnitPricing {
		labor := decimal.Zero
		if mode == ModeARAligned {
			labor = line.TotalSellKRW
		}
		return LineAmounts{
			GoldGrams:   decimal.Zero,
			SilverGrams: decimal.Zero,
			LaborKRW:    labor,
			TotalKRW:    line.TotalSellKRW,
		}
	}

	return c.decomposeWeighted(line)
}

// decomposeWeighted handles the common case: classify the material and put the
// factored weight into exactly one bucket.
func (c *LineAmountCalculator) decomposeWeighted(line LineItem) LineAmounts {
	bucket := c.materials.Classify(line.MaterialCode)

	weighted := line.NetWeightGrams.Mul(bucket.WeightFactor)
	if bucket.Kind == BucketSilver && bucket.SilverAdjustApplies {
		weighted = weighted.Mul(line.EffectiveSilverAdjust())
	}

	amounts := LineAmounts{
		GoldGrams:   decimal.Zero,
		SilverGrams: decimal.Zero,
		LaborKRW:    line.LaborSellKRW,
		TotalKRW:    line.TotalSellKRW,
	}
	switch bucket.Kind {
	case BucketGold:
		amounts.GoldGrams = weighted
	case BucketSilver:
		amounts.SilverGrams = weighted
	case BucketNone:
		// Unknown or cash-only material: weight contributes nothing, the cash
		// total still carries full value.
	}
	return amounts
}

// repairHasMaterialReceivable reports whether a repair line actually owes metal:
// it must carry both a positive material sell amount and a positive net weight.
func (c *LineAmountCalculator) repairHasMaterialReceivable(line LineItem) bool {
	return line.MaterialSellKRW.GreaterThan(decimal.Zero) &&
		line.NetWeightGrams.GreaterThan(decimal.Zero)
}
