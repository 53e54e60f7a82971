package testutil

import (
	"time"

	"github.com/hupe1980/docflow/core"
)

// SessionBuilder helps construct session records with fluent chaining for
// tests. Example:
//
//	sess := NewSessionBuilder("sess-1").
//		Phase(core.PhaseSynthesis).
//		Message(core.RoleUser, "hello").
//		Spec(map[string]any{"title": "Quarterly review"}).
//		Build()
type SessionBuilder struct {
	id         string
	phase      core.Phase
	transcript []core.Message
	spec       map[string]any
	enrichment *core.EnrichmentArtifacts
	synthesis  *core.SynthesisResult
	errMsg     string
	retryCount int
	completion int
	created    time.Time
	updated    time.Time
}

// NewSessionBuilder creates a builder for a session with the given id. Use
// the chainable methods then call Build. Fresh builders produce a record in
// the engagement phase with fixed timestamps so equality assertions stay
// deterministic.
func NewSessionBuilder(id string) *SessionBuilder {
	ts := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	return &SessionBuilder{
		id:      id,
		phase:   core.PhaseEngagement,
		created: ts,
		updated: ts,
	}
}

// Phase sets the phase of the resulting session (chainable).
func (b *SessionBuilder) Phase(p core.Phase) *SessionBuilder {
	b.phase = p
	return b
}

// Message appends a transcript entry stamped with the builder's updated time
// (chainable).
func (b *SessionBuilder) Message(role, content string) *SessionBuilder {
	b.transcript = append(b.transcript, core.Message{Role: role, Content: content, Timestamp: b.updated})
	return b
}

// Spec sets the requirement spec (chainable).
func (b *SessionBuilder) Spec(spec map[string]any) *SessionBuilder {
	b.spec = spec
	return b
}

// Enrichment sets the enrichment artifacts (chainable).
func (b *SessionBuilder) Enrichment(tableManifest, fieldMappings map[string]any) *SessionBuilder {
	b.enrichment = &core.EnrichmentArtifacts{TableManifest: tableManifest, FieldMappings: fieldMappings}
	return b
}

// Synthesis sets the synthesis artifact (chainable).
func (b *SessionBuilder) Synthesis(res *core.SynthesisResult) *SessionBuilder {
	b.synthesis = res
	return b
}

// Error sets the recorded failure description (chainable).
func (b *SessionBuilder) Error(msg string) *SessionBuilder {
	b.errMsg = msg
	return b
}

// RetryCount sets the per-phase retry counter (chainable).
func (b *SessionBuilder) RetryCount(n int) *SessionBuilder {
	b.retryCount = n
	return b
}

// Completion sets the completion percentage (chainable).
func (b *SessionBuilder) Completion(pct int) *SessionBuilder {
	b.completion = pct
	return b
}

// Timestamps overrides the created/updated times (chainable).
func (b *SessionBuilder) Timestamps(created, updated time.Time) *SessionBuilder {
	b.created = created
	b.updated = updated
	return b
}

// Build returns the assembled *core.Session.
func (b *SessionBuilder) Build() *core.Session {
	s := core.NewSession(b.id)
	s.Phase = b.phase
	s.Transcript = append(s.Transcript, b.transcript...)
	s.RequirementSpec = b.spec
	s.Enrichment = b.enrichment
	s.Synthesis = b.synthesis
	s.Error = b.errMsg
	s.RetryCount = b.retryCount
	s.CompletionPercentage = b.completion
	s.Created = b.created
	s.Updated = b.updated
	return s
}
