package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jtrade/backend/internal/domain/settlement"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TradeLineModel is the persistence model for a sold/returned/repaired jewelry
// line. The raw adjustment blob is stored verbatim as JSON; the engine parses
// it on read and never writes it back.
type TradeLineModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	MaterialCode   string          `gorm:"type:varchar(10);not null;index"`
	Qty            int             `gorm:"not null"`
	NetWeightGrams decimal.Decimal `gorm:"type:decimal(12,4);not null"`

	LaborSellKRW    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LaborCostKRW    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MaterialSellKRW decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalSellKRW    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RepairFeeKRW    decimal.Decimal `gorm:"type:decimal(18,4);not null"`

	IsRepair      bool `gorm:"not null;default:false"`
	IsReturn      bool `gorm:"not null;default:false;index"`
	IsUnitPricing bool `gorm:"not null;default:false"`

	SilverAdjustFactor decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0"`

	ExtraLaborItems   datatypes.JSON   `gorm:"type:jsonb;default:'[]'"`
	ExtraLaborSellKRW decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	ExtraLaborCostKRW *decimal.Decimal `gorm:"type:decimal(18,4)"`
}

// TableName returns the table name for GORM
func (TradeLineModel) TableName() string {
	return "trade_lines"
}

// ToDomain converts the persistence model to a domain LineItem. A raw
// adjustment blob that fails to parse yields an empty list: a line must never
// fail to price because its ad-hoc blob is corrupt.
func (m *TradeLineModel) ToDomain() *settlement.LineItem {
	var raw []settlement.RawAdjustment
	if len(m.ExtraLaborItems) > 0 {
		if err := json.Unmarshal(m.ExtraLaborItems, &raw); err != nil {
			raw = nil
		}
	}

	return &settlement.LineItem{
		ID:                 m.ID,
		MaterialCode:       m.MaterialCode,
		Qty:                m.Qty,
		NetWeightGrams:     m.NetWeightGrams,
		LaborSellKRW:       m.LaborSellKRW,
		LaborCostKRW:       m.LaborCostKRW,
		MaterialSellKRW:    m.MaterialSellKRW,
		TotalSellKRW:       m.TotalSellKRW,
		RepairFeeKRW:       m.RepairFeeKRW,
		IsRepair:           m.IsRepair,
		IsReturn:           m.IsReturn,
		IsUnitPricing:      m.IsUnitPricing,
		SilverAdjustFactor: m.SilverAdjustFactor,
		ExtraLaborItems:    raw,
		ExtraLaborSellKRW:  m.ExtraLaborSellKRW,
		ExtraLaborCostKRW:  m.ExtraLaborCostKRW,
	}
}

// ReturnRecordModel links a return line to its source line.
type ReturnRecordModel struct {
	LineID           uuid.UUID        `gorm:"type:uuid;primary_key"`
	SourceLineID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	ReturnQty        int              `gorm:"not null"`
	TotalOverrideKRW *decimal.Decimal `gorm:"type:decimal(18,4)"`
	CreatedAt        time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReturnRecordModel) TableName() string {
	return "return_records"
}

// ToDomain converts the persistence model to a domain ReturnRecord.
func (m *ReturnRecordModel) ToDomain() *settlement.ReturnRecord {
	return &settlement.ReturnRecord{
		LineID:           m.LineID,
		SourceLineID:     m.SourceLineID,
		ReturnQty:        m.ReturnQty,
		TotalOverrideKRW: m.TotalOverrideKRW,
	}
}

// PolicySnapshotModel is the point-in-time copy of pricing-policy outputs
// captured when a line was priced.
type PolicySnapshotModel struct {
	LineID    uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`

	PolicyAbsorbDecorTotalKRW decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ExtraLaborSellKRW         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ExtraLaborCostKRW         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SellAdjustRate            decimal.Decimal `gorm:"type:decimal(10,6);not null"`
	SellAdjustKRW             decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RoundUnitKRW              decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (PolicySnapshotModel) TableName() string {
	return "pricing_policy_snapshots"
}

// ToDomain converts the persistence model to a domain PricingPolicySnapshot.
func (m *PolicySnapshotModel) ToDomain() *settlement.PricingPolicySnapshot {
	return &settlement.PricingPolicySnapshot{
		PolicyAbsorbDecorTotalKRW: m.PolicyAbsorbDecorTotalKRW,
		ExtraLaborSellKRW:         m.ExtraLaborSellKRW,
		ExtraLaborCostKRW:         m.ExtraLaborCostKRW,
		SellAdjustRate:            m.SellAdjustRate,
		SellAdjustKRW:             m.SellAdjustKRW,
		RoundUnitKRW:              m.RoundUnitKRW,
	}
}

// InvoicePositionModel is the read-model row mirroring the oracle ledger's
// per-line cash-due view. Populated by the ledger sync, read-only here.
type InvoicePositionModel struct {
	LineID    uuid.UUID `gorm:"type:uuid;primary_key"`
	UpdatedAt time.Time `gorm:"not null"`

	LaborCashDueKRW    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MaterialCashDueKRW decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalCashDueKRW    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (InvoicePositionModel) TableName() string {
	return "invoice_positions"
}

// ToDomain converts the persistence model to a domain InvoicePosition.
func (m *InvoicePositionModel) ToDomain() *settlement.InvoicePosition {
	return &settlement.InvoicePosition{
		LineID:             m.LineID,
		LaborCashDueKRW:    m.LaborCashDueKRW,
		MaterialCashDueKRW: m.MaterialCashDueKRW,
		TotalCashDueKRW:    m.TotalCashDueKRW,
	}
}

// PartyPositionModel is the read-model row for a party's aggregate receivable
// position. One row per party per snapshot time; the latest row is the current
// position.
type PartyPositionModel struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	PartyID uuid.UUID `gorm:"type:uuid;not null;index:idx_party_positions_party_asof,priority:1"`
	AsOf    time.Time `gorm:"not null;index:idx_party_positions_party_asof,priority:2"`

	GoldGrams   decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	SilverGrams decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	LaborKRW    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalKRW    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (PartyPositionModel) TableName() string {
	return "party_positions"
}

// ToDomain converts the persistence model to a domain PartyPosition.
func (m *PartyPositionModel) ToDomain() *settlement.PartyPosition {
	return &settlement.PartyPosition{
		PartyID:     m.PartyID,
		GoldGrams:   m.GoldGrams,
		SilverGrams: m.SilverGrams,
		LaborKRW:    m.LaborKRW,
		TotalKRW:    m.TotalKRW,
		AsOf:        m.AsOf,
	}
}

// MatchCandidateModel is one externally scored suggestion linking an unmatched
// receipt line to an order line. ScoreDetail is opaque JSON for display.
type MatchCandidateModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	ReceiptLineID uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderLineID   uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt     time.Time `gorm:"not null"`

	MaterialCode         string           `gorm:"type:varchar(10);not null"`
	EffectiveWeightGrams decimal.Decimal  `gorm:"type:decimal(12,4);not null"`
	WeightMinGrams       *decimal.Decimal `gorm:"type:decimal(12,4)"`
	WeightMaxGrams       *decimal.Decimal `gorm:"type:decimal(12,4)"`
	MatchScore           float64          `gorm:"not null"`
	ScoreDetail          datatypes.JSON   `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (MatchCandidateModel) TableName() string {
	return "match_candidates"
}

// ToDomain converts the persistence model to a domain MatchCandidate.
func (m *MatchCandidateModel) ToDomain() settlement.MatchCandidate {
	return settlement.MatchCandidate{
		OrderLineID:          m.OrderLineID,
		MaterialCode:         m.MaterialCode,
		EffectiveWeightGrams: m.EffectiveWeightGrams,
		WeightMinGrams:       m.WeightMinGrams,
		WeightMaxGrams:       m.WeightMaxGrams,
		MatchScore:           m.MatchScore,
		ScoreDetail:          json.RawMessage(m.ScoreDetail),
	}
}

// MatchBindingModel records a confirmed receipt-line to order-line match with
// the validated weight. One binding per receipt line.
type MatchBindingModel struct {
	ReceiptLineID uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderLineID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	WeightGrams   decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	CreatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MatchBindingModel) TableName() string {
	return "match_bindings"
}
