package settlement

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReconcileTolerance is the half-unit tolerance (in KRW) shared by every
// reconciliation comparison in the engine.
var ReconcileTolerance = decimal.RequireFromString("0.5")

// DefaultSilverAdjustFactor is applied to sterling-silver weights when the line
// does not carry its own factor.
var DefaultSilverAdjustFactor = decimal.RequireFromString("1.2")

// LineItem is an immutable view of one sold/returned/repaired jewelry line as the
// calling layer fetched it. The engine never mutates a LineItem.
type LineItem struct {
	ID           uuid.UUID
	MaterialCode string
	Qty          int

	NetWeightGrams decimal.Decimal

	LaborSellKRW    decimal.Decimal
	LaborCostKRW    decimal.Decimal
	MaterialSellKRW decimal.Decimal
	TotalSellKRW    decimal.Decimal
	RepairFeeKRW    decimal.Decimal

	IsRepair      bool
	IsReturn      bool
	IsUnitPricing bool

	// SilverAdjustFactor scales sterling-silver weights; zero means "use default".
	SilverAdjustFactor decimal.Decimal

	// ExtraLaborItems is the line's raw ad-hoc adjustment list, loosely structured
	// as captured from the order screen. Parsed by the AdjustmentNormalizer.
	ExtraLaborItems []RawAdjustment

	// ExtraLaborSellKRW / ExtraLaborCostKRW are the line's prefill snapshot totals,
	// stored alongside the line when it was priced. Cost may be absent.
	ExtraLaborSellKRW decimal.Decimal
	ExtraLaborCostKRW *decimal.Decimal
}

// EffectiveSilverAdjust returns the line's silver adjustment factor, falling back
// to the trade default when the line carries none.
func (l LineItem) EffectiveSilverAdjust() decimal.Decimal {
	if l.SilverAdjustFactor.IsZero() {
		return DefaultSilverAdjustFactor
	}
	return l.SilverAdjustFactor
}

// LineAmounts is the canonical three-bucket decomposition of a line: gold grams
// owed, silver grams owed, and cash labor owed, plus the full cash total. For a
// weighted line exactly one of GoldGrams/SilverGrams is non-zero.
type LineAmounts struct {
	GoldGrams   decimal.Decimal `json:"gold_g"`
	SilverGrams decimal.Decimal `json:"silver_g"`
	LaborKRW    decimal.Decimal `json:"labor_krw"`
	TotalKRW    decimal.Decimal `json:"total_krw"`
}

// Add returns the component-wise sum of two decompositions.
func (a LineAmounts) Add(other LineAmounts) LineAmounts {
	return LineAmounts{
		GoldGrams:   a.GoldGrams.Add(other.GoldGrams),
		SilverGrams: a.SilverGrams.Add(other.SilverGrams),
		LaborKRW:    a.LaborKRW.Add(other.LaborKRW),
		TotalKRW:    a.TotalKRW.Add(other.TotalKRW),
	}
}

// Negate returns the decomposition with every magnitude negated. Used for
// return lines, which subtract from the party's position.
func (a LineAmounts) Negate() LineAmounts {
	return LineAmounts{
		GoldGrams:   a.GoldGrams.Neg(),
		SilverGrams: a.SilverGrams.Neg(),
		LaborKRW:    a.LaborKRW.Neg(),
		TotalKRW:    a.TotalKRW.Neg(),
	}
}

// IsZero reports whether all four buckets are zero.
func (a LineAmounts) IsZero() bool {
	return a.GoldGrams.IsZero() && a.SilverGrams.IsZero() &&
		a.LaborKRW.IsZero() && a.TotalKRW.IsZero()
}

// DecompositionMode selects which decomposition semantics apply to repair and
// unit-priced lines.
type DecompositionMode string

const (
	// ModeRaw is the display decomposition: unit-priced lines contribute an opaque
	// total with no labor split, repair lines carry only the repair fee as labor.
	ModeRaw DecompositionMode = "RAW"
	// ModeARAligned matches the source-of-truth ledger, which always books
	// non-metal lines as pure cash labor. Consistency checks must use this mode.
	ModeARAligned DecompositionMode = "AR_ALIGNED"
)

// IsValid checks if the decomposition mode is valid
func (m DecompositionMode) IsValid() bool {
	switch m {
	case ModeRaw, ModeARAligned:
		return true
	}
	return false
}

// String returns the string representation
func (m DecompositionMode) String() string {
	return string(m)
}
