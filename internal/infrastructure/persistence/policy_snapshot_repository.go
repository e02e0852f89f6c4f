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

// GormPolicySnapshotRepository implements settlement.PolicySnapshotReader using GORM
type GormPolicySnapshotRepository struct {
	db *gorm.DB
}

// NewGormPolicySnapshotRepository creates a new GormPolicySnapshotRepository
func NewGormPolicySnapshotRepository(db *gorm.DB) *GormPolicySnapshotRepository {
	return &GormPolicySnapshotRepository{db: db}
}

// FindByLine finds the pricing-policy snapshot captured for a line. Lines priced
// before snapshotting existed have no row; callers treat that as a soft miss.
func (r *GormPolicySnapshotRepository) FindByLine(ctx context.Context, lineID uuid.UUID) (*settlement.PricingPolicySnapshot, error) {
	var model models.PolicySnapshotModel
	if err := r.db.WithContext(ctx).First(&model, "line_id = ?", lineID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
