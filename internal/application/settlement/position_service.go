package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jtrade/backend/internal/domain/settlement"
	"github.com/jtrade/backend/internal/domain/shared"
)

// PositionService serves per-party aggregate receivable positions out of the
// oracle ledger, current and as-of, plus day-over-day deltas. Read-only; the
// oracle is wrapped in a read-through cache at the infrastructure layer.
type PositionService struct {
	oracle settlement.LedgerOracle
}

// NewPositionService creates a new PositionService.
func NewPositionService(oracle settlement.LedgerOracle) *PositionService {
	return &PositionService{oracle: oracle}
}

// PartyPosition returns the party's current aggregate position in all three
// settlement buckets.
func (s *PositionService) PartyPosition(ctx context.Context, partyID uuid.UUID) (*settlement.PartyPosition, error) {
	position, err := s.oracle.PartyPosition(ctx, partyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get party position: %w", err)
	}
	if position == nil {
		return nil, shared.ErrNotFound
	}
	return position, nil
}

// PartyPositionDeltaResult carries the two endpoint positions and their
// bucket-wise difference.
type PartyPositionDeltaResult struct {
	Current  settlement.PartyPosition `json:"current"`
	Baseline settlement.PartyPosition `json:"baseline"`
	Delta    settlement.PartyPosition `json:"delta"`
}

// PartyPositionDelta returns how the party's position moved since the given
// point in time, bucket by bucket.
func (s *PositionService) PartyPositionDelta(ctx context.Context, partyID uuid.UUID, since time.Time) (*PartyPositionDeltaResult, error) {
	current, err := s.oracle.PartyPosition(ctx, partyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get current party position: %w", err)
	}
	if current == nil {
		return nil, shared.ErrNotFound
	}

	baseline, err := s.oracle.PartyPositionAsOf(ctx, partyID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get baseline party position: %w", err)
	}
	if baseline == nil {
		return nil, shared.ErrNotFound
	}

	return &PartyPositionDeltaResult{
		Current:  *current,
		Baseline: *baseline,
		Delta:    current.Sub(*baseline),
	}, nil
}
