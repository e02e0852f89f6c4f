package settlement

import (
	"github.com/shopspring/decimal"
)

// ReturnLine describes a return taken against a previously sold source line.
// Amounts are always computed on the source line first and then prorated by the
// returned quantity; the engine never prices a return from scratch.
type ReturnLine struct {
	Source    LineItem
	ReturnQty int

	// TotalOverrideKRW is the explicit cash total agreed for the return, when the
	// operator entered one. Nil means "estimate from the source unit total".
	TotalOverrideKRW *decimal.Decimal
}

// CashSplit holds the labor/material ratios used to split a return's cash total.
// The two ratios are normalized to sum to 1.
type CashSplit struct {
	LaborRatio    decimal.Decimal
	MaterialRatio decimal.Decimal
}

// EvenCashSplitRatio is the terminal fallback: half labor, half material.
var evenRatio = decimal.RequireFromString("0.5")

// CashSplitProvider is one link in the ratio fallback chain. A provider either
// produces a usable split or passes (ok=false) to the next link.
type CashSplitProvider interface {
	// Name identifies the provider in reason strings and logs.
	Name() string
	// Split derives the labor/material cash ratios for the given return.
	Split(ret ReturnLine) (CashSplit, bool)
}

// OracleCashSplit derives ratios from the source line's invoice position in the
// source-of-truth ledger. Preferred whenever the oracle view is available.
type OracleCashSplit struct {
	Position *InvoicePosition
}

// Name identifies the provider
func (p OracleCashSplit) Name() string { return "ORACLE_INVOICE_POSITION" }

// Split derives ratios from the oracle invoice position
func (p OracleCashSplit) Split(ReturnLine) (CashSplit, bool) {
	if p.Position == nil || !p.Position.TotalCashDueKRW.GreaterThan(decimal.Zero) {
		return CashSplit{}, false
	}
	return normalizeSplit(p.Position.LaborCashDueKRW, p.Position.MaterialCashDueKRW)
}

// SourceLineCashSplit derives ratios from the source line's own labor/total and
// material/total proportions.
type SourceLineCashSplit struct{}

// Name identifies the provider
func (SourceLineCashSplit) Name() string { return "SOURCE_LINE" }

// Split derives ratios from the source line amounts
func (SourceLineCashSplit) Split(ret ReturnLine) (CashSplit, bool) {
	if !ret.Source.TotalSellKRW.GreaterThan(decimal.Zero) {
		return CashSplit{}, false
	}
	return normalizeSplit(ret.Source.LaborSellKRW, ret.Source.MaterialSellKRW)
}

// EvenCashSplit always answers with a 50/50 split. It terminates the chain.
type EvenCashSplit struct{}

// Name identifies the provider
func (EvenCashSplit) Name() string { return "EVEN_SPLIT" }

// Split always answers half labor, half material
func (EvenCashSplit) Split(ReturnLine) (CashSplit, bool) {
	return CashSplit{LaborRatio: evenRatio, MaterialRatio: evenRatio}, true
}

// normalizeSplit scales a labor/material amount pair so the ratios sum to 1.
// A pair that sums to zero or negative is unusable.
func normalizeSplit(labor, material decimal.Decimal) (CashSplit, bool) {
	sum := labor.Add(material)
	if !sum.GreaterThan(decimal.Zero) {
		return CashSplit{}, false
	}
	return CashSplit{
		LaborRatio:    labor.Div(sum),
		MaterialRatio: material.Div(sum),
	}, true
}

// CashSplitResolver walks an ordered provider chain until one answers. The
// documented order is oracle invoice position, then source-line proportions,
// then an even split.
type CashSplitResolver struct {
	providers []CashSplitProvider
}

// NewCashSplitResolver builds the standard chain. The oracle position may be nil,
// in which case the oracle link passes immediately.
func NewCashSplitResolver(position *InvoicePosition) *CashSplitResolver {
	return &CashSplitResolver{providers: []CashSplitProvider{
		OracleCashSplit{Position: position},
		SourceLineCashSplit{},
		EvenCashSplit{},
	}}
}

// NewCashSplitResolverWithProviders builds a resolver over an explicit chain.
func NewCashSplitResolverWithProviders(providers ...CashSplitProvider) *CashSplitResolver {
	return &CashSplitResolver{providers: providers}
}

// Resolve returns the first usable split along with the name of the provider
// that produced it.
func (r *CashSplitResolver) Resolve(ret ReturnLine) (CashSplit, string) {
	for _, p := range r.providers {
		if split, ok := p.Split(ret); ok {
			return split, p.Name()
		}
	}
	// The chain always ends in EvenCashSplit; reaching here means a caller built
	// a custom chain with no terminal provider.
	return CashSplit{LaborRatio: evenRatio, MaterialRatio: evenRatio}, EvenCashSplit{}.Name()
}

// DecomposeReturn computes the decomposition of a return line. Weights are the
// source line's weights prorated by returned quantity; the cash total is the
// explicit override when present, otherwise unit total × returned quantity; the
// labor share of that total follows the resolved cash split. All magnitudes are
// negated, so a return is the exact negation of the equivalent forward sale.
func (c *LineAmountCalculator) DecomposeReturn(ret ReturnLine, split CashSplit, mode DecompositionMode) LineAmounts {
	if ret.ReturnQty <= 0 || ret.Source.Qty <= 0 {
		return LineAmounts{
			GoldGrams:   decimal.Zero,
			SilverGrams: decimal.Zero,
			LaborKRW:    decimal.Zero,
			TotalKRW:    decimal.Zero,
		}
	}

	total := c.returnCashTotal(ret)

	if ret.Source.IsUnitPricing {
		labor := decimal.Zero
		if mode == ModeARAligned {
			labor = total
		}
		return LineAmounts{
			GoldGrams:   decimal.Zero,
			SilverGrams: decimal.Zero,
			LaborKRW:    labor,
			TotalKRW:    total,
		}.Negate()
	}

	forward := c.Decompose(ret.Source, mode)
	prorate := decimal.NewFromInt(int64(ret.ReturnQty)).Div(decimal.NewFromInt(int64(ret.Source.Qty)))

	return LineAmounts{
		GoldGrams:   forward.GoldGrams.Mul(prorate),
		SilverGrams: forward.SilverGrams.Mul(prorate),
		LaborKRW:    total.Mul(split.LaborRatio),
		TotalKRW:    total,
	}.Negate()
}

// returnCashTotal resolves the return's positive cash total: the explicit
// override when supplied, else the source unit total times the returned quantity.
func (c *LineAmountCalculator) returnCashTotal(ret ReturnLine) decimal.Decimal {
	if ret.TotalOverrideKRW != nil {
		return ret.TotalOverrideKRW.Abs()
	}
	unit := ret.Source.TotalSellKRW.Div(decimal.NewFromInt(int64(ret.Source.Qty)))
	return unit.Mul(decimal.NewFromInt(int64(ret.ReturnQty)))
}
