package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jtrade/backend/internal/domain/settlement"
	"github.com/jtrade/backend/internal/domain/shared"
	"github.com/jtrade/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLineRepository implements settlement.LineReader using GORM
type GormLineRepository struct {
	db *gorm.DB
}

// NewGormLineRepository creates a new GormLineRepository
func NewGormLineRepository(db *gorm.DB) *GormLineRepository {
	return &GormLineRepository{db: db}
}

// FindByID finds a line item by its ID
func (r *GormLineRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.LineItem, error) {
	var model models.TradeLineModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindReturnRecord finds the return record for a return line
func (r *GormLineRepository) FindReturnRecord(ctx context.Context, lineID uuid.UUID) (*settlement.ReturnRecord, error) {
	var model models.ReturnRecordModel
	if err := r.db.WithContext(ctx).First(&model, "line_id = ?", lineID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
