package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed event IDs so redelivered events
// are handled exactly once
type IdempotencyStore interface {
	// MarkProcessed marks an event as processed with a TTL. Returns true
	// if the event was newly marked, false if already processed.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed checks if an event has already been processed
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// Close releases store resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a processed event ID is remembered; after this the
	// same event ID would be processed again
	TTL time.Duration

	// Enabled toggles idempotency checking
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
