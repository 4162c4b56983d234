package domain

import (
	"context"
	"time"
)

// SessionTTL is the fixed lifetime of a session token, counted from
// issuance. Tokens are not refreshed on use.
const SessionTTL = 24 * time.Hour

// SessionRepository owns the token→userId mapping. No other component may
// mutate it.
type SessionRepository interface {
	// Set stores the mapping with the given TTL.
	Set(ctx context.Context, token, userID string, ttl time.Duration) error
	// Get returns the owning user id, or ErrNotFound when the token is
	// absent or expired.
	Get(ctx context.Context, token string) (string, error)
	// Delete removes the mapping. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error
}
