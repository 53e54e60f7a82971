package pipeline

import "sync"

// sessionLocks hands out one mutex per session id so mutating operations on
// the same session serialize while distinct sessions proceed concurrently.
// Entries are created lazily on first use.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire blocks until the session's mutex is held and returns the matching
// unlock function. The mutex a waiter blocked on may have been dropped from
// the registry by forget in the meantime; holding it then serializes against
// nothing, because the next caller mints a fresh entry for the id. acquire
// therefore revalidates the registry after locking and starts over unless
// the mutex it holds is still the registered one.
func (l *sessionLocks) acquire(sessionID string) func() {
	for {
		l.mu.Lock()
		m, ok := l.locks[sessionID]
		if !ok {
			m = &sync.Mutex{}
			l.locks[sessionID] = m
		}
		l.mu.Unlock()

		m.Lock()

		l.mu.Lock()
		registered := l.locks[sessionID] == m
		l.mu.Unlock()
		if registered {
			return m.Unlock
		}
		m.Unlock()
	}
}

// forget drops the entry of a session that no longer exists. A caller racing
// a cleanup may recreate the entry (and with it the session); waiters still
// blocked on the dropped mutex revalidate in acquire, so they serialize on
// whatever entry the id maps to next.
func (l *sessionLocks) forget(sessionID string) {
	l.mu.Lock()
	delete(l.locks, sessionID)
	l.mu.Unlock()
}
