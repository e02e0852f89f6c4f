package settlement

import (
	"github.com/shopspring/decimal"
)

// Consistency is the three-state verdict of a ledger comparison. Unknown means
// the oracle could not be read; callers must display it distinctly from a true
// mismatch rather than assuming either way.
type Consistency string

const (
	ConsistencyConsistent   Consistency = "CONSISTENT"
	ConsistencyInconsistent Consistency = "INCONSISTENT"
	ConsistencyUnknown      Consistency = "UNKNOWN"
)

// IsValid checks if the consistency value is valid
func (c Consistency) IsValid() bool {
	switch c {
	case ConsistencyConsistent, ConsistencyInconsistent, ConsistencyUnknown:
		return true
	}
	return false
}

// String returns the string representation
func (c Consistency) String() string {
	return string(c)
}

// ReconciliationResult compares a locally computed total against the
// source-of-truth ledger. Ephemeral, recomputed on demand; it reports and never
// "fixes" the oracle.
type ReconciliationResult struct {
	TargetKRW   decimal.Decimal `json:"target_value"`
	OracleKRW   decimal.Decimal `json:"oracle_value"`
	DiffKRW     decimal.Decimal `json:"diff"`
	Consistency Consistency     `json:"consistency"`
}

// IsConsistent reports whether the comparison landed within tolerance. An
// Unknown verdict is not consistent.
func (r ReconciliationResult) IsConsistent() bool {
	return r.Consistency == ConsistencyConsistent
}

// LedgerDiffer compares aggregated line totals against oracle values within the
// shared half-won tolerance.
type LedgerDiffer struct{}

// NewLedgerDiffer creates a ledger differ.
func NewLedgerDiffer() *LedgerDiffer {
	return &LedgerDiffer{}
}

// Diff compares a target total against an oracle value.
func (d *LedgerDiffer) Diff(target, oracle decimal.Decimal) ReconciliationResult {
	diff := target.Sub(oracle)
	consistency := ConsistencyConsistent
	if diff.Abs().GreaterThan(ReconcileTolerance) {
		consistency = ConsistencyInconsistent
	}
	return ReconciliationResult{
		TargetKRW:   target,
		OracleKRW:   oracle,
		DiffKRW:     diff,
		Consistency: consistency,
	}
}

// Unknown builds the verdict for an unreadable oracle. The target is preserved
// so callers can still show what the local computation produced.
func (d *LedgerDiffer) Unknown(target decimal.Decimal) ReconciliationResult {
	return ReconciliationResult{
		TargetKRW:   target,
		OracleKRW:   decimal.Zero,
		DiffKRW:     decimal.Zero,
		Consistency: ConsistencyUnknown,
	}
}
