package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jtrade/backend/internal/domain/settlement"
)

// Constants for position cache configuration
const (
	defaultPositionTTL       = 30 * time.Second
	defaultPositionKeyPrefix = "position:party:"
)

// PositionCache stores party-position snapshots for a short TTL so the
// dashboard does not hammer the ledger read model on every refresh.
type PositionCache interface {
	// Get returns the cached position, or (nil, nil) on a miss
	Get(ctx context.Context, partyID uuid.UUID) (*settlement.PartyPosition, error)

	// Set stores a position for the configured TTL
	Set(ctx context.Context, pos *settlement.PartyPosition) error

	// Invalidate drops a party's cached position
	Invalidate(ctx context.Context, partyID uuid.UUID) error

	// Close releases cache resources
	Close() error
}

// CachedLedgerOracle decorates a settlement.LedgerOracle with a read-through
// cache on PartyPosition. Per-line reads and as-of reads bypass the cache: the
// former feed decomposition and must be fresh, the latter are historical and
// rare.
type CachedLedgerOracle struct {
	inner settlement.LedgerOracle
	cache PositionCache
}

// NewCachedLedgerOracle wraps an oracle with a position cache
func NewCachedLedgerOracle(inner settlement.LedgerOracle, cache PositionCache) *CachedLedgerOracle {
	return &CachedLedgerOracle{inner: inner, cache: cache}
}

// InvoicePosition reads the per-line cash-due view, uncached
func (o *CachedLedgerOracle) InvoicePosition(ctx context.Context, lineID uuid.UUID) (*settlement.InvoicePosition, error) {
	return o.inner.InvoicePosition(ctx, lineID)
}

// PartyPosition reads a party's current position through the cache. Cache
// failures degrade to a direct read; they never fail the call.
func (o *CachedLedgerOracle) PartyPosition(ctx context.Context, partyID uuid.UUID) (*settlement.PartyPosition, error) {
	if cached, err := o.cache.Get(ctx, partyID); err == nil && cached != nil {
		return cached, nil
	}

	pos, err := o.inner.PartyPosition(ctx, partyID)
	if err != nil {
		return nil, err
	}

	_ = o.cache.Set(ctx, pos)
	return pos, nil
}

// PartyPositionAsOf reads a historical position snapshot, uncached
func (o *CachedLedgerOracle) PartyPositionAsOf(ctx context.Context, partyID uuid.UUID, asOf time.Time) (*settlement.PartyPosition, error) {
	return o.inner.PartyPositionAsOf(ctx, partyID, asOf)
}

// Ensure CachedLedgerOracle implements LedgerOracle
var _ settlement.LedgerOracle = (*CachedLedgerOracle)(nil)
