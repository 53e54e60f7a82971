// Package session houses concrete implementations of the core.SessionStore.
// The interface itself (and the Session record) live in the core package to
// centralize domain contracts. Keeping only implementations here prevents
// higher level packages (pipeline, providers) from depending on concrete
// storage.
//
// Three backends are provided: a volatile InMemoryStore, a durable FileStore
// keeping one JSON document per session, and a CachedStore layering the two
// so reads are served from memory while every write reaches the durable
// layer. Additional backends (Redis, Postgres, Firestore, etc.) can be added
// without changing any calling code; only the wiring layer decides which
// implementation to instantiate.
package session
