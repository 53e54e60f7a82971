package session

import (
	"context"

	"github.com/hupe1980/docflow/core"
)

// CachedStore layers a volatile in-memory cache over a durable SessionStore.
// Reads are served from the cache when possible; a miss falls through to the
// durable layer and populates the cache. Writes update the cache first and
// then write through to the durable layer, so when the durable write fails
// the cached record is still current. Callers may treat it as authoritative
// and regain durability on the next successful write.
type CachedStore struct {
	cache   *InMemoryStore
	durable core.SessionStore
}

// NewCachedStore wraps durable with a fresh in-memory cache.
func NewCachedStore(durable core.SessionStore) *CachedStore {
	return &CachedStore{
		cache:   NewInMemoryStore(),
		durable: durable,
	}
}

// Get returns the cached session when present, otherwise loads it from the
// durable layer and caches the result.
func (s *CachedStore) Get(ctx context.Context, sessionID string) (*core.Session, bool, error) {
	if sess, ok, err := s.cache.Get(ctx, sessionID); err == nil && ok {
		return sess, true, nil
	}
	sess, ok, err := s.durable.Get(ctx, sessionID)
	if err != nil || !ok {
		return nil, false, err
	}
	if err := s.cache.Put(ctx, sess); err != nil {
		return nil, false, err
	}
	return sess, true, nil
}

// Put updates the cache unconditionally, then writes through to the durable
// layer. A durable failure is returned to the caller but does not roll back
// the cache.
func (s *CachedStore) Put(ctx context.Context, session *core.Session) error {
	if err := s.cache.Put(ctx, session); err != nil {
		return err
	}
	return s.durable.Put(ctx, session)
}

// Delete removes the session from both layers.
func (s *CachedStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.cache.Delete(ctx, sessionID); err != nil {
		return err
	}
	return s.durable.Delete(ctx, sessionID)
}
