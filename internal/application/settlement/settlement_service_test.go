package settlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jtrade/backend/internal/domain/settlement"
	"github.com/jtrade/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockLineReader struct {
	mock.Mock
}

func (m *MockLineReader) FindByID(ctx context.Context, id uuid.UUID) (*settlement.LineItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.LineItem), args.Error(1)
}

func (m *MockLineReader) FindReturnRecord(ctx context.Context, lineID uuid.UUID) (*settlement.ReturnRecord, error) {
	args := m.Called(ctx, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.ReturnRecord), args.Error(1)
}

type MockPolicySnapshotReader struct {
	mock.Mock
}

func (m *MockPolicySnapshotReader) FindByLine(ctx context.Context, lineID uuid.UUID) (*settlement.PricingPolicySnapshot, error) {
	args := m.Called(ctx, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.PricingPolicySnapshot), args.Error(1)
}

type MockLedgerOracle struct {
	mock.Mock
}

func (m *MockLedgerOracle) InvoicePosition(ctx context.Context, lineID uuid.UUID) (*settlement.InvoicePosition, error) {
	args := m.Called(ctx, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.InvoicePosition), args.Error(1)
}

func (m *MockLedgerOracle) PartyPosition(ctx context.Context, partyID uuid.UUID) (*settlement.PartyPosition, error) {
	args := m.Called(ctx, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.PartyPosition), args.Error(1)
}

func (m *MockLedgerOracle) PartyPositionAsOf(ctx context.Context, partyID uuid.UUID, asOf time.Time) (*settlement.PartyPosition, error) {
	args := m.Called(ctx, partyID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.PartyPosition), args.Error(1)
}

// =============================================================================
// Helpers
// =============================================================================

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func fp(f float64) *float64 { return &f }

func newService(lines *MockLineReader, policies *MockPolicySnapshotReader, oracle *MockLedgerOracle) *SettlementService {
	return NewSettlementService(lines, policies, oracle, nil)
}

func goldLine(id uuid.UUID) *settlement.LineItem {
	return &settlement.LineItem{
		ID:              id,
		MaterialCode:    "14",
		Qty:             1,
		NetWeightGrams:  d("10"),
		LaborSellKRW:    d("50000"),
		MaterialSellKRW: d("60000"),
		TotalSellKRW:    d("110000"),
	}
}

// =============================================================================
// DecomposeLine
// =============================================================================

func TestDecomposeLineForwardSale(t *testing.T) {
	lines := new(MockLineReader)
	policies := new(MockPolicySnapshotReader)
	oracle := new(MockLedgerOracle)
	svc := newService(lines, policies, oracle)

	lineID := uuid.New()
	lines.On("FindByID", mock.Anything, lineID).Return(goldLine(lineID), nil)

	result, err := svc.DecomposeLine(context.Background(), lineID, settlement.ModeRaw)

	require.NoError(t, err)
	assert.Equal(t, lineID, result.LineID)
	assert.False(t, result.IsReturn)
	assert.Empty(t, result.CashSplitSource)
	assert.True(t, result.Amounts.GoldGrams.Equal(d("6.435")), "gold_g = %s", result.Amounts.GoldGrams)
	assert.True(t, result.Amounts.LaborKRW.Equal(d("50000")))
	lines.AssertExpectations(t)
}

func TestDecomposeLineInvalidMode(t *testing.T) {
	svc := newService(new(MockLineReader), new(MockPolicySnapshotReader), new(MockLedgerOracle))

	_, err := svc.DecomposeLine(context.Background(), uuid.New(), settlement.DecompositionMode("HYBRID"))

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_MODE", domainErr.Code)
}

func TestDecomposeLineNotFound(t *testing.T) {
	lines := new(MockLineReader)
	svc := newService(lines, new(MockPolicySnapshotReader), new(MockLedgerOracle))

	lineID := uuid.New()
	lines.On("FindByID", mock.Anything, lineID).Return(nil, nil)

	_, err := svc.DecomposeLine(context.Background(), lineID, settlement.ModeRaw)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDecomposeLineReturnUsesOracleSplit(t *testing.T) {
	lines := new(MockLineReader)
	policies := new(MockPolicySnapshotReader)
	oracle := new(MockLedgerOracle)
	svc := newService(lines, policies, oracle)

	returnID := uuid.New()
	sourceID := uuid.New()
	source := goldLine(sourceID)
	source.Qty = 2

	returnLine := &settlement.LineItem{ID: returnID, IsReturn: true}
	record := &settlement.ReturnRecord{LineID: returnID, SourceLineID: sourceID, ReturnQty: 1}

	lines.On("FindByID", mock.Anything, returnID).Return(returnLine, nil)
	lines.On("FindReturnRecord", mock.Anything, returnID).Return(record, nil)
	lines.On("FindByID", mock.Anything, sourceID).Return(source, nil)
	oracle.On("InvoicePosition", mock.Anything, sourceID).Return(&settlement.InvoicePosition{
		LineID:             sourceID,
		LaborCashDueKRW:    d("40000"),
		MaterialCashDueKRW: d("60000"),
		TotalCashDueKRW:    d("100000"),
	}, nil)

	result, err := svc.DecomposeLine(context.Background(), returnID, settlement.ModeRaw)

	require.NoError(t, err)
	assert.True(t, result.IsReturn)
	assert.Equal(t, "ORACLE_INVOICE_POSITION", result.CashSplitSource)
	// Half the source: 10g × 0.6435 / 2 gold, 55,000 total, labor at the 40%
	// oracle ratio, all negated.
	assert.True(t, result.Amounts.GoldGrams.Equal(d("-3.2175")), "gold_g = %s", result.Amounts.GoldGrams)
	assert.True(t, result.Amounts.TotalKRW.Equal(d("-55000")))
	assert.True(t, result.Amounts.LaborKRW.Equal(d("-22000")), "labor_krw = %s", result.Amounts.LaborKRW)
}

func TestDecomposeLineReturnOracleFailureDegradesChain(t *testing.T) {
	lines := new(MockLineReader)
	oracle := new(MockLedgerOracle)
	svc := newService(lines, new(MockPolicySnapshotReader), oracle)

	returnID := uuid.New()
	sourceID := uuid.New()
	source := goldLine(sourceID)

	lines.On("FindByID", mock.Anything, returnID).Return(&settlement.LineItem{ID: returnID, IsReturn: true}, nil)
	lines.On("FindReturnRecord", mock.Anything, returnID).Return(&settlement.ReturnRecord{
		LineID: returnID, SourceLineID: sourceID, ReturnQty: 1,
	}, nil)
	lines.On("FindByID", mock.Anything, sourceID).Return(source, nil)
	oracle.On("InvoicePosition", mock.Anything, sourceID).Return(nil, errors.New("ledger down"))

	result, err := svc.DecomposeLine(context.Background(), returnID, settlement.ModeRaw)

	require.NoError(t, err)
	assert.Equal(t, "SOURCE_LINE", result.CashSplitSource)
}

func TestDecomposeLineReturnWithoutRecordFails(t *testing.T) {
	lines := new(MockLineReader)
	svc := newService(lines, new(MockPolicySnapshotReader), new(MockLedgerOracle))

	returnID := uuid.New()
	lines.On("FindByID", mock.Anything, returnID).Return(&settlement.LineItem{ID: returnID, IsReturn: true}, nil)
	lines.On("FindReturnRecord", mock.Anything, returnID).Return(nil, nil)

	_, err := svc.DecomposeLine(context.Background(), returnID, settlement.ModeRaw)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "RETURN_RECORD_NOT_FOUND", domainErr.Code)
}

// =============================================================================
// ExplainAdjustments
// =============================================================================

func TestExplainAdjustmentsRunsFullPipeline(t *testing.T) {
	lines := new(MockLineReader)
	policies := new(MockPolicySnapshotReader)
	svc := newService(lines, policies, new(MockLedgerOracle))

	lineID := uuid.New()
	line := goldLine(lineID)
	line.ExtraLaborItems = []settlement.RawAdjustment{
		{ID: "a", TypeTag: "STONE_LABOR", Label: "큐빅", Amount: fp(12000)},
	}
	line.ExtraLaborSellKRW = d("15000")

	lines.On("FindByID", mock.Anything, lineID).Return(line, nil)
	policies.On("FindByLine", mock.Anything, lineID).Return(&settlement.PricingPolicySnapshot{
		PolicyAbsorbDecorTotalKRW: d("5000"),
	}, nil)

	result, err := svc.ExplainAdjustments(context.Background(), lineID)

	require.NoError(t, err)
	require.Len(t, result.Items, 3)
	require.Len(t, result.Reconciliations, 2)
	assert.True(t, result.VisibleSellKRW.Equal(d("15000")), "visible = %s", result.VisibleSellKRW)
	assert.True(t, result.SellTotalKRW.Equal(d("20000")), "sell total = %s", result.SellTotalKRW)
}

func TestExplainAdjustmentsWithoutPolicySnapshot(t *testing.T) {
	lines := new(MockLineReader)
	policies := new(MockPolicySnapshotReader)
	svc := newService(lines, policies, new(MockLedgerOracle))

	lineID := uuid.New()
	line := goldLine(lineID)
	line.ExtraLaborItems = []settlement.RawAdjustment{
		{ID: "a", TypeTag: "STONE_LABOR", Amount: fp(12000)},
	}
	line.ExtraLaborSellKRW = d("12000")

	lines.On("FindByID", mock.Anything, lineID).Return(line, nil)
	policies.On("FindByLine", mock.Anything, lineID).Return(nil, shared.ErrNotFound)

	result, err := svc.ExplainAdjustments(context.Background(), lineID)

	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Empty(t, result.Reconciliations)
}

func TestExplainAdjustmentsPolicyReadFailure(t *testing.T) {
	lines := new(MockLineReader)
	policies := new(MockPolicySnapshotReader)
	svc := newService(lines, policies, new(MockLedgerOracle))

	lineID := uuid.New()
	lines.On("FindByID", mock.Anything, lineID).Return(goldLine(lineID), nil)
	policies.On("FindByLine", mock.Anything, lineID).Return(nil, errors.New("db down"))

	_, err := svc.ExplainAdjustments(context.Background(), lineID)
	assert.Error(t, err)
}

// =============================================================================
// CheckConsistency
// =============================================================================

func TestCheckConsistencyLaborPricedLine(t *testing.T) {
	lines := new(MockLineReader)
	policies := new(MockPolicySnapshotReader)
	oracle := new(MockLedgerOracle)
	svc := newService(lines, policies, oracle)

	lineID := uuid.New()
	line := goldLine(lineID)
	line.ExtraLaborItems = []settlement.RawAdjustment{
		{ID: "a", TypeTag: "STONE_LABOR", Amount: fp(12000)},
	}
	line.ExtraLaborSellKRW = d("12000")

	lines.On("FindByID", mock.Anything, lineID).Return(line, nil)
	policies.On("FindByLine", mock.Anything, lineID).Return(nil, shared.ErrNotFound)
	oracle.On("InvoicePosition", mock.Anything, lineID).Return(&settlement.InvoicePosition{
		LineID:          lineID,
		LaborCashDueKRW: d("62000"),
	}, nil)

	result, err := svc.CheckConsistency(context.Background(), lineID, settlement.ModeARAligned)

	require.NoError(t, err)
	// Target 50,000 base labor + 12,000 adjustments against 62,000 due.
	assert.Equal(t, settlement.ConsistencyConsistent, result.Result.Consistency)
	assert.True(t, result.Result.TargetKRW.Equal(d("62000")), "target = %s", result.Result.TargetKRW)
}

func TestCheckConsistencyUnitPricedLineComparesTotals(t *testing.T) {
	lines := new(MockLineReader)
	policies := new(MockPolicySnapshotReader)
	oracle := new(MockLedgerOracle)
	svc := newService(lines, policies, oracle)

	lineID := uuid.New()
	line := &settlement.LineItem{
		ID:            lineID,
		MaterialCode:  "14",
		Qty:           1,
		TotalSellKRW:  d("90000"),
		IsUnitPricing: true,
	}

	lines.On("FindByID", mock.Anything, lineID).Return(line, nil)
	oracle.On("InvoicePosition", mock.Anything, lineID).Return(&settlement.InvoicePosition{
		LineID:          lineID,
		TotalCashDueKRW: d("91000"),
	}, nil)

	result, err := svc.CheckConsistency(context.Background(), lineID, settlement.ModeARAligned)

	require.NoError(t, err)
	assert.Equal(t, settlement.ConsistencyInconsistent, result.Result.Consistency)
	assert.True(t, result.Result.DiffKRW.Equal(d("-1000")))
}

func TestCheckConsistencyOracleUnavailableIsUnknown(t *testing.T) {
	lines := new(MockLineReader)
	policies := new(MockPolicySnapshotReader)
	oracle := new(MockLedgerOracle)
	svc := newService(lines, policies, oracle)

	lineID := uuid.New()
	lines.On("FindByID", mock.Anything, lineID).Return(goldLine(lineID), nil)
	policies.On("FindByLine", mock.Anything, lineID).Return(nil, shared.ErrNotFound)
	oracle.On("InvoicePosition", mock.Anything, lineID).Return(nil, errors.New("ledger down"))

	result, err := svc.CheckConsistency(context.Background(), lineID, settlement.ModeARAligned)

	require.NoError(t, err)
	assert.Equal(t, settlement.ConsistencyUnknown, result.Result.Consistency)
	assert.False(t, result.Result.IsConsistent())
}
