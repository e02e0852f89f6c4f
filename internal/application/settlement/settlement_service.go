package settlement

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jtrade/backend/internal/domain/settlement"
	"github.com/jtrade/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SettlementService orchestrates the pure settlement engine: it fetches the
// inputs a computation needs, runs the engine, and returns plain results. It
// performs no writes.
type SettlementService struct {
	lines    settlement.LineReader
	policies settlement.PolicySnapshotReader
	oracle   settlement.LedgerOracle

	calculator *settlement.LineAmountCalculator
	pipeline   *settlement.AdjustmentPipeline
	differ     *settlement.LedgerDiffer
}

// NewSettlementService creates a new SettlementService. A nil calculator falls
// back to the default material table.
func NewSettlementService(
	lines settlement.LineReader,
	policies settlement.PolicySnapshotReader,
	oracle settlement.LedgerOracle,
	calculator *settlement.LineAmountCalculator,
) *SettlementService {
	if calculator == nil {
		calculator = settlement.NewLineAmountCalculator(nil)
	}
	return &SettlementService{
		lines:      lines,
		policies:   policies,
		oracle:     oracle,
		calculator: calculator,
		pipeline:   settlement.NewAdjustmentPipeline(),
		differ:     settlement.NewLedgerDiffer(),
	}
}

// LineDecompositionResult is the decomposition of one line plus provenance:
// for returns, CashSplitSource names the provider that supplied the cash ratio.
type LineDecompositionResult struct {
	LineID          uuid.UUID                    `json:"line_id"`
	Mode            settlement.DecompositionMode `json:"mode"`
	Amounts         settlement.LineAmounts       `json:"amounts"`
	IsReturn        bool                         `json:"is_return"`
	CashSplitSource string                       `json:"cash_split_source,omitempty"`
}

// DecomposeLine computes the three-bucket decomposition of a line. Return lines
// are priced off their source line with the cash-split fallback chain; the
// oracle invoice position is consulted best-effort and a read failure only
// degrades the chain, it never fails the call.
func (s *SettlementService) DecomposeLine(ctx context.Context, lineID uuid.UUID, mode settlement.DecompositionMode) (*LineDecompositionResult, error) {
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_MODE", fmt.Sprintf("unknown decomposition mode %q", mode))
	}

	line, err := s.lines.FindByID(ctx, lineID)
	if err != nil {
		return nil, fmt.Errorf("failed to get line: %w", err)
	}
	if line == nil {
		return nil, shared.ErrNotFound
	}

	if line.IsReturn {
		return s.decomposeReturn(ctx, line, mode)
	}

	return &LineDecompositionResult{
		LineID:  line.ID,
		Mode:    mode,
		Amounts: s.calculator.Decompose(*line, mode),
	}, nil
}

func (s *SettlementService) decomposeReturn(ctx context.Context, line *settlement.LineItem, mode settlement.DecompositionMode) (*LineDecompositionResult, error) {
	record, err := s.lines.FindReturnRecord(ctx, line.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get return record: %w", err)
	}
	if record == nil {
		return nil, shared.NewDomainError("RETURN_RECORD_NOT_FOUND", "Return line has no return record")
	}

	source, err := s.lines.FindByID(ctx, record.SourceLineID)
	if err != nil {
		return nil, fmt.Errorf("failed to get source line: %w", err)
	}
	if source == nil {
		return nil, shared.NewDomainError("SOURCE_LINE_NOT_FOUND", "Return source line not found")
	}

	// Best effort: an unreadable oracle just drops the first link of the chain.
	var position *settlement.InvoicePosition
	if pos, err := s.oracle.InvoicePosition(ctx, source.ID); err == nil {
		position = pos
	}

	ret := settlement.ReturnLine{
		Source:           *source,
		ReturnQty:        record.ReturnQty,
		TotalOverrideKRW: record.TotalOverrideKRW,
	}
	split, provider := settlement.NewCashSplitResolver(position).Resolve(ret)

	return &LineDecompositionResult{
		LineID:          line.ID,
		Mode:            mode,
		Amounts:         s.calculator.DecomposeReturn(ret, split, mode),
		IsReturn:        true,
		CashSplitSource: provider,
	}, nil
}

// AdjustmentExplainResult is a line's full adjustment breakdown: every item,
// the synthetic reconciliation rows, and the totals.
type AdjustmentExplainResult struct {
	LineID          uuid.UUID                   `json:"line_id"`
	Items           []settlement.AdjustmentItem `json:"items"`
	Reconciliations []settlement.AdjustmentItem `json:"reconciliations"`
	SellTotalKRW    decimal.Decimal             `json:"sell_total_krw"`
	CostTotalKRW    decimal.Decimal             `json:"cost_total_krw"`
	VisibleSellKRW  decimal.Decimal             `json:"visible_sell_krw"`
}

// ExplainAdjustments runs the full adjustment pipeline for a line: normalize the
// raw blob, reconcile against the pricing-policy snapshot, then against the
// line's prefill snapshot. A line without a captured policy snapshot skips the
// policy step.
func (s *SettlementService) ExplainAdjustments(ctx context.Context, lineID uuid.UUID) (*AdjustmentExplainResult, error) {
	line, err := s.lines.FindByID(ctx, lineID)
	if err != nil {
		return nil, fmt.Errorf("failed to get line: %w", err)
	}
	if line == nil {
		return nil, shared.ErrNotFound
	}

	policy, err := s.policies.FindByLine(ctx, lineID)
	if err != nil && !shared.IsNotFound(err) {
		return nil, fmt.Errorf("failed to get policy snapshot: %w", err)
	}

	breakdown := s.pipeline.Run(line.ExtraLaborItems, policy, line.PrefillSnapshot())

	return &AdjustmentExplainResult{
		LineID:          line.ID,
		Items:           breakdown.Items,
		Reconciliations: breakdown.Reconciliations,
		SellTotalKRW:    breakdown.SellTotalKRW,
		CostTotalKRW:    breakdown.CostTotalKRW,
		VisibleSellKRW:  breakdown.VisibleSellKRW,
	}, nil
}

// ConsistencyResult is the verdict of one line's ledger comparison.
type ConsistencyResult struct {
	LineID uuid.UUID                       `json:"line_id"`
	Mode   settlement.DecompositionMode    `json:"mode"`
	Result settlement.ReconciliationResult `json:"result"`
}

// CheckConsistency compares a line's locally computed cash total against the
// oracle ledger. Labor-priced lines compare base labor plus adjustment sells
// against the oracle's labor cash due; unit-priced lines compare the line total
// against the oracle's total cash due. An unreadable oracle yields an Unknown
// verdict, never an assumed answer.
//
// AR-aligned mode is the one that ties to the ledger; raw mode is offered for
// audit displays that want to see the drift a raw reading would produce.
func (s *SettlementService) CheckConsistency(ctx context.Context, lineID uuid.UUID, mode settlement.DecompositionMode) (*ConsistencyResult, error) {
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_MODE", fmt.Sprintf("unknown decomposition mode %q", mode))
	}

	line, err := s.lines.FindByID(ctx, lineID)
	if err != nil {
		return nil, fmt.Errorf("failed to get line: %w", err)
	}
	if line == nil {
		return nil, shared.ErrNotFound
	}

	target := s.targetTotal(ctx, *line, mode)

	position, err := s.oracle.InvoicePosition(ctx, lineID)
	if err != nil || position == nil {
		return &ConsistencyResult{
			LineID: line.ID,
			Mode:   mode,
			Result: s.differ.Unknown(target),
		}, nil
	}

	oracleValue := position.LaborCashDueKRW
	if line.IsUnitPricing {
		oracleValue = position.TotalCashDueKRW
	}

	return &ConsistencyResult{
		LineID: line.ID,
		Mode:   mode,
		Result: s.differ.Diff(target, oracleValue),
	}, nil
}

// targetTotal computes the comparison target: the line's own total for
// unit-priced lines, otherwise base labor plus every explained adjustment sell.
func (s *SettlementService) targetTotal(ctx context.Context, line settlement.LineItem, mode settlement.DecompositionMode) decimal.Decimal {
	if line.IsUnitPricing {
		return line.TotalSellKRW
	}

	amounts := s.calculator.Decompose(line, mode)

	policy, err := s.policies.FindByLine(ctx, line.ID)
	if err != nil {
		policy = nil
	}
	breakdown := s.pipeline.Run(line.ExtraLaborItems, policy, line.PrefillSnapshot())

	return amounts.LaborKRW.Add(breakdown.SellTotalKRW)
}
