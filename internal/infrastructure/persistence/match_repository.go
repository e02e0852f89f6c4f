package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jtrade/backend/internal/domain/settlement"
	"github.com/jtrade/backend/internal/domain/shared"
	"github.com/jtrade/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormMatchRepository implements settlement.MatchCandidateReader and
// settlement.MatchBinder using GORM
type GormMatchRepository struct {
	db *gorm.DB
}

// NewGormMatchRepository creates a new GormMatchRepository
func NewGormMatchRepository(db *gorm.DB) *GormMatchRepository {
	return &GormMatchRepository{db: db}
}

// CandidatesForLine returns the scored candidates for a receipt line, best first
func (r *GormMatchRepository) CandidatesForLine(ctx context.Context, receiptLineID uuid.UUID) ([]settlement.MatchCandidate, error) {
	var rows []models.MatchCandidateModel
	if err := r.db.WithContext(ctx).
		Where("receipt_line_id = ?", receiptLineID).
		Order("match_score DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	candidates := make([]settlement.MatchCandidate, 0, len(rows))
	for i := range rows {
		candidates = append(candidates, rows[i].ToDomain())
	}
	return candidates, nil
}

// Bind links a receipt line to an order line with the validated weight. The
// binding is one-shot: a receipt line that already has a binding stays bound
// and the caller gets ErrAlreadyMatched.
func (r *GormMatchRepository) Bind(ctx context.Context, receiptLineID, orderLineID uuid.UUID, weightGrams decimal.Decimal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.MatchBindingModel
		err := tx.First(&existing, "receipt_line_id = ?", receiptLineID).Error
		if err == nil {
			return shared.ErrAlreadyMatched
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		binding := models.MatchBindingModel{
			ReceiptLineID: receiptLineID,
			OrderLineID:   orderLineID,
			WeightGrams:   weightGrams,
			CreatedAt:     time.Now(),
		}
		return tx.Create(&binding).Error
	})
}
