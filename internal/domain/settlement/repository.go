package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoicePosition is the oracle ledger's per-line view of cash due. Read-only;
// the engine consumes it as a source of truth and never writes it back.
type InvoicePosition struct {
	LineID             uuid.UUID       `json:"line_id"`
	LaborCashDueKRW    decimal.Decimal `json:"labor_cash_due_krw"`
	MaterialCashDueKRW decimal.Decimal `json:"material_cash_due_krw"`
	TotalCashDueKRW    decimal.Decimal `json:"total_cash_due_krw"`
}

// PartyPosition is the oracle ledger's aggregate receivable position for one
// trading party, in all three settlement buckets.
type PartyPosition struct {
	PartyID     uuid.UUID       `json:"party_id"`
	GoldGrams   decimal.Decimal `json:"gold_g"`
	SilverGrams decimal.Decimal `json:"silver_g"`
	LaborKRW    decimal.Decimal `json:"labor_krw"`
	TotalKRW    decimal.Decimal `json:"total_krw"`
	AsOf        time.Time       `json:"as_of"`
}

// Sub returns the bucket-wise difference between two positions, used for
// day-over-day delta reporting.
func (p PartyPosition) Sub(earlier PartyPosition) PartyPosition {
	return PartyPosition{
		PartyID:     p.PartyID,
		GoldGrams:   p.GoldGrams.Sub(earlier.GoldGrams),
		SilverGrams: p.SilverGrams.Sub(earlier.SilverGrams),
		LaborKRW:    p.LaborKRW.Sub(earlier.LaborKRW),
		TotalKRW:    p.TotalKRW.Sub(earlier.TotalKRW),
		AsOf:        p.AsOf,
	}
}

// ReturnRecord links a return line to its source line along with the returned
// quantity and the operator-entered total, if any.
type ReturnRecord struct {
	LineID           uuid.UUID
	SourceLineID     uuid.UUID
	ReturnQty        int
	TotalOverrideKRW *decimal.Decimal
}

// LineReader provides read access to line items and return records. All inputs
// the engine consumes are fetched through readers like this one before the
// computation starts; the engine itself performs no I/O.
type LineReader interface {
	// FindByID finds a line item by ID
	FindByID(ctx context.Context, id uuid.UUID) (*LineItem, error)

	// FindReturnRecord finds the return record for a return line
	FindReturnRecord(ctx context.Context, lineID uuid.UUID) (*ReturnRecord, error)
}

// PolicySnapshotReader provides read access to per-line pricing-policy snapshots.
type PolicySnapshotReader interface {
	// FindByLine finds the policy snapshot associated with a line, or
	// shared.ErrNotFound when none was captured
	FindByLine(ctx context.Context, lineID uuid.UUID) (*PricingPolicySnapshot, error)
}

// LedgerOracle provides read access to the source-of-truth ledger. Any error is
// surfaced to callers as an Unknown consistency verdict, never swallowed.
type LedgerOracle interface {
	// InvoicePosition reads the per-line cash-due view
	InvoicePosition(ctx context.Context, lineID uuid.UUID) (*InvoicePosition, error)

	// PartyPosition reads a party's current aggregate position
	PartyPosition(ctx context.Context, partyID uuid.UUID) (*PartyPosition, error)

	// PartyPositionAsOf reads a party's aggregate position at a point in time
	PartyPositionAsOf(ctx context.Context, partyID uuid.UUID, asOf time.Time) (*PartyPosition, error)
}

// MatchCandidateReader provides the externally scored candidate ranking for an
// unmatched receipt line.
type MatchCandidateReader interface {
	// CandidatesForLine returns ranked candidates, best first
	CandidatesForLine(ctx context.Context, receiptLineID uuid.UUID) ([]MatchCandidate, error)
}

// MatchBinder performs the one-shot binding of a receipt line to an order line
// once validation passed. Downstream draft creation hangs off this write in the
// record store, outside this engine.
type MatchBinder interface {
	// Bind links the receipt line to the order line with the validated weight
	Bind(ctx context.Context, receiptLineID, orderLineID uuid.UUID, weightGrams decimal.Decimal) error
}
