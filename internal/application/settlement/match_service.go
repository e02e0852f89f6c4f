package settlement

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jtrade/backend/internal/domain/settlement"
	"github.com/jtrade/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MatchService gates and performs the binding of unmatched receipt lines to
// order lines. The bind through MatchBinder is the only write this system
// performs; downstream shipment/ledger draft creation hangs off it externally.
type MatchService struct {
	candidates settlement.MatchCandidateReader
	binder     settlement.MatchBinder
	validator  *settlement.MatchValidator
}

// NewMatchService creates a new MatchService.
func NewMatchService(candidates settlement.MatchCandidateReader, binder settlement.MatchBinder) *MatchService {
	return &MatchService{
		candidates: candidates,
		binder:     binder,
		validator:  settlement.NewMatchValidator(),
	}
}

// ListCandidates returns the scorer's ranked candidates for a receipt line,
// best first. ScoreDetail is opaque and passed through for display.
func (s *MatchService) ListCandidates(ctx context.Context, receiptLineID uuid.UUID) ([]settlement.MatchCandidate, error) {
	candidates, err := s.candidates.CandidatesForLine(ctx, receiptLineID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match candidates: %w", err)
	}
	return candidates, nil
}

// ConfirmMatchRequest asks to bind a receipt line to one of its candidates.
// WeightGrams is the operator-entered weight; nil is only valid for the
// cash-only material.
type ConfirmMatchRequest struct {
	ReceiptLineID uuid.UUID
	OrderLineID   uuid.UUID
	MaterialCode  string
	WeightGrams   *decimal.Decimal
}

// ConfirmMatchResult reports the bound pair and the effective weight recorded.
type ConfirmMatchResult struct {
	ReceiptLineID uuid.UUID       `json:"receipt_line_id"`
	OrderLineID   uuid.UUID       `json:"order_line_id"`
	WeightGrams   decimal.Decimal `json:"weight_g"`
}

// ValidateMatch runs the full confirmation gate for a requested (candidate,
// weight) pair without binding anything: the order line must be among the
// scorer's current candidates and the weight must pass the candidate's range
// check. Returns the effective weight that a confirm would record.
func (s *MatchService) ValidateMatch(ctx context.Context, req ConfirmMatchRequest) (*ConfirmMatchResult, error) {
	candidates, err := s.candidates.CandidatesForLine(ctx, req.ReceiptLineID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match candidates: %w", err)
	}

	candidate, found := findCandidate(candidates, req.OrderLineID)
	if !found {
		return nil, shared.NewDomainError("CANDIDATE_NOT_FOUND", "Order line is not a candidate for this receipt line")
	}

	weight, err := s.validator.Validate(req.WeightGrams, candidate, req.MaterialCode)
	if err != nil {
		return nil, err
	}

	return &ConfirmMatchResult{
		ReceiptLineID: req.ReceiptLineID,
		OrderLineID:   req.OrderLineID,
		WeightGrams:   weight,
	}, nil
}

// Confirm validates the requested (candidate, weight) pair and performs the
// one-shot bind. Validation errors reject the request with no partial state
// created.
func (s *MatchService) Confirm(ctx context.Context, req ConfirmMatchRequest) (*ConfirmMatchResult, error) {
	result, err := s.ValidateMatch(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.binder.Bind(ctx, req.ReceiptLineID, req.OrderLineID, result.WeightGrams); err != nil {
		return nil, fmt.Errorf("failed to bind match: %w", err)
	}

	return result, nil
}

func findCandidate(candidates []settlement.MatchCandidate, orderLineID uuid.UUID) (settlement.MatchCandidate, bool) {
	for _, c := range candidates {
		if c.OrderLineID == orderLineID {
			return c, true
		}
	}
	return settlement.MatchCandidate{}, false
}
