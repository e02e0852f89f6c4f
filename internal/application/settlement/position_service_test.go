package settlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jtrade/backend/internal/domain/settlement"
	"github.com/jtrade/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPartyPositionReadsOracle(t *testing.T) {
	oracle := new(MockLedgerOracle)
	svc := NewPositionService(oracle)

	partyID := uuid.New()
	position := &settlement.PartyPosition{
		PartyID:   partyID,
		GoldGrams: d("120.5"),
		LaborKRW:  d("3400000"),
		TotalKRW:  d("12000000"),
		AsOf:      time.Now(),
	}
	oracle.On("PartyPosition", mock.Anything, partyID).Return(position, nil)

	got, err := svc.PartyPosition(context.Background(), partyID)

	require.NoError(t, err)
	assert.Equal(t, position, got)
}

func TestPartyPositionNotFound(t *testing.T) {
	oracle := new(MockLedgerOracle)
	svc := NewPositionService(oracle)

	partyID := uuid.New()
	oracle.On("PartyPosition", mock.Anything, partyID).Return(nil, nil)

	_, err := svc.PartyPosition(context.Background(), partyID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPartyPositionDelta(t *testing.T) {
	oracle := new(MockLedgerOracle)
	svc := NewPositionService(oracle)

	partyID := uuid.New()
	since := time.Now().AddDate(0, 0, -1)

	current := &settlement.PartyPosition{
		PartyID:     partyID,
		GoldGrams:   d("100"),
		SilverGrams: d("40"),
		LaborKRW:    d("2000000"),
		TotalKRW:    d("9000000"),
	}
	baseline := &settlement.PartyPosition{
		PartyID:     partyID,
		GoldGrams:   d("90"),
		SilverGrams: d("45"),
		LaborKRW:    d("1800000"),
		TotalKRW:    d("8500000"),
	}

	oracle.On("PartyPosition", mock.Anything, partyID).Return(current, nil)
	oracle.On("PartyPositionAsOf", mock.Anything, partyID, since).Return(baseline, nil)

	got, err := svc.PartyPositionDelta(context.Background(), partyID, since)

	require.NoError(t, err)
	assert.True(t, got.Delta.GoldGrams.Equal(d("10")))
	assert.True(t, got.Delta.SilverGrams.Equal(d("-5")))
	assert.True(t, got.Delta.LaborKRW.Equal(d("200000")))
	assert.True(t, got.Delta.TotalKRW.Equal(d("500000")))
}

func TestPartyPositionDeltaBaselineFailure(t *testing.T) {
	oracle := new(MockLedgerOracle)
	svc := NewPositionService(oracle)

	partyID := uuid.New()
	since := time.Now().AddDate(0, 0, -1)

	oracle.On("PartyPosition", mock.Anything, partyID).Return(&settlement.PartyPosition{PartyID: partyID}, nil)
	oracle.On("PartyPositionAsOf", mock.Anything, partyID, since).Return(nil, errors.New("ledger down"))

	_, err := svc.PartyPositionDelta(context.Background(), partyID, since)
	assert.Error(t, err)
}
