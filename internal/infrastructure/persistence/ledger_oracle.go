package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jtrade/backend/internal/domain/settlement"
	"github.com/jtrade/backend/internal/domain/shared"
	"github.com/jtrade/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLedgerOracle implements settlement.LedgerOracle over the synced
// read-model tables. The rows are written by the ledger sync job; this side
// only ever reads them.
type GormLedgerOracle struct {
	db *gorm.DB
}

// NewGormLedgerOracle creates a new GormLedgerOracle
func NewGormLedgerOracle(db *gorm.DB) *GormLedgerOracle {
	return &GormLedgerOracle{db: db}
}

// InvoicePosition reads the per-line cash-due view
func (r *GormLedgerOracle) InvoicePosition(ctx context.Context, lineID uuid.UUID) (*settlement.InvoicePosition, error) {
	var model models.InvoicePositionModel
	if err := r.db.WithContext(ctx).First(&model, "line_id = ?", lineID).Error; err != nil {
		return nil, r.mapReadError(err)
	}
	return model.ToDomain(), nil
}

// PartyPosition reads a party's latest aggregate position snapshot
func (r *GormLedgerOracle) PartyPosition(ctx context.Context, partyID uuid.UUID) (*settlement.PartyPosition, error) {
	var model models.PartyPositionModel
	if err := r.db.WithContext(ctx).
		Where("party_id = ?", partyID).
		Order("as_of DESC").
		First(&model).Error; err != nil {
		return nil, r.mapReadError(err)
	}
	return model.ToDomain(), nil
}

// PartyPositionAsOf reads the latest position snapshot at or before asOf
func (r *GormLedgerOracle) PartyPositionAsOf(ctx context.Context, partyID uuid.UUID, asOf time.Time) (*settlement.PartyPosition, error) {
	var model models.PartyPositionModel
	if err := r.db.WithContext(ctx).
		Where("party_id = ? AND as_of <= ?", partyID, asOf).
		Order("as_of DESC").
		First(&model).Error; err != nil {
		return nil, r.mapReadError(err)
	}
	return model.ToDomain(), nil
}

// mapReadError classifies oracle read failures. A missing row is NOT_FOUND;
// anything else means the synced ledger view itself could not be read, which
// callers must surface distinctly from other failures.
func (r *GormLedgerOracle) mapReadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return shared.ErrOracleUnavailable
}
