// Package pipeline contains the Controller, the orchestration core of
// DocFlow. The Controller advances each session through the document
// generation state machine (engagement -> information_gathering -> synthesis
// -> complete), persists the session record after every mutating operation,
// retries failed phases up to a configurable cap and projects read-only
// status snapshots for pollers.
//
// The Controller owns no domain logic itself: requirement gathering, data
// enrichment and document synthesis are delegated to the capability
// providers defined in core. Mutating operations on the same session are
// serialized; distinct sessions proceed concurrently.
package pipeline
