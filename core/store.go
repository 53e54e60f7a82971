package core

import "context"

// SessionStore persists pipeline session records. Implementations must be
// safe for concurrent use and must hand out records the caller can mutate
// freely, i.e. defensive deep copies in both directions.
//
// Get reports absence through the boolean rather than an error so callers can
// distinguish "no such session" from a real persistence failure.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*Session, bool, error)
	Put(ctx context.Context, session *Session) error
	// Delete removes the record. Deleting an unknown session is a no-op.
	Delete(ctx context.Context, sessionID string) error
}
