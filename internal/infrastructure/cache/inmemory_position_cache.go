package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jtrade/backend/internal/domain/settlement"
)

// InMemoryPositionCache implements PositionCache using in-process storage.
// Suitable for single-instance deployments and tests.
type InMemoryPositionCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*positionEntry
	ttl     time.Duration
}

type positionEntry struct {
	pos       settlement.PartyPosition
	expiresAt time.Time
}

func (e *positionEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// NewInMemoryPositionCache creates a new in-memory position cache
func NewInMemoryPositionCache(ttl time.Duration) *InMemoryPositionCache {
	if ttl <= 0 {
		ttl = defaultPositionTTL
	}
	return &InMemoryPositionCache{
		entries: make(map[uuid.UUID]*positionEntry),
		ttl:     ttl,
	}
}

// Get returns the cached position, or (nil, nil) on a miss
func (c *InMemoryPositionCache) Get(_ context.Context, partyID uuid.UUID) (*settlement.PartyPosition, error) {
	c.mu.RLock()
	entry, ok := c.entries[partyID]
	c.mu.RUnlock()

	if !ok || entry.isExpired() {
		return nil, nil
	}
	pos := entry.pos
	return &pos, nil
}

// Set stores a position for the configured TTL
func (c *InMemoryPositionCache) Set(_ context.Context, pos *settlement.PartyPosition) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[pos.PartyID] = &positionEntry{
		pos:       *pos,
		expiresAt: time.Now().Add(c.ttl),
	}
	return nil
}

// Invalidate drops a party's cached position
func (c *InMemoryPositionCache) Invalidate(_ context.Context, partyID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, partyID)
	return nil
}

// Close releases cache resources
func (c *InMemoryPositionCache) Close() error {
	return nil
}

// Ensure InMemoryPositionCache implements PositionCache
var _ PositionCache = (*InMemoryPositionCache)(nil)
