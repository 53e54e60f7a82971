package core

import (
	"time"

	"github.com/google/uuid"
)

// NewSessionID returns a fresh globally unique session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// EnrichmentArtifacts carries the outputs of the information-gathering stage:
// the manifest of prepared tables and the field mappings derived from the
// requirement spec.
type EnrichmentArtifacts struct {
	TableManifest map[string]any `json:"table_manifest"`
	FieldMappings map[string]any `json:"field_mappings"`
}

// Session is the per-pipeline record. It is a plain serializable value;
// stores hand out deep copies (see Clone) and the controller serializes all
// mutations per session, so the struct itself carries no locking.
//
// Contract:
//   - ID is immutable after creation
//   - Transcript is append-only
//   - RequirementSpec is nil until engagement completes
//   - Error holds the most recent failure and is cleared by the next
//     successful attempt
//   - RetryCount resets to zero on every committed transition to a
//     different phase
//   - CompletionPercentage only advances when a transition commits; within
//     engagement it tracks the provider-reported progress
type Session struct {
	ID                   string               `json:"session_id"`
	Phase                Phase                `json:"phase"`
	Transcript           []Message            `json:"transcript"`
	RequirementSpec      map[string]any       `json:"requirement_spec,omitempty"`
	Enrichment           *EnrichmentArtifacts `json:"enrichment_artifacts,omitempty"`
	Synthesis            *SynthesisResult     `json:"synthesis_artifact,omitempty"`
	Error                string               `json:"error,omitempty"`
	RetryCount           int                  `json:"retry_count"`
	CompletionPercentage int                  `json:"completion_percentage"`
	Created              time.Time            `json:"created"`
	Updated              time.Time            `json:"updated"`
}

// NewSession creates a session record in the engagement phase.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Phase:      PhaseEngagement,
		Transcript: []Message{},
		Created:    now,
		Updated:    now,
	}
}

// AppendMessage adds a transcript entry and bumps the Updated timestamp.
func (s *Session) AppendMessage(role, content string) {
	now := time.Now()
	s.Transcript = append(s.Transcript, Message{Role: role, Content: content, Timestamp: now})
	s.Updated = now
}

// MessageCount returns the number of transcript entries.
func (s *Session) MessageCount() int {
	return len(s.Transcript)
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	clone := *s
	clone.Transcript = make([]Message, len(s.Transcript))
	copy(clone.Transcript, s.Transcript)
	clone.RequirementSpec = cloneMap(s.RequirementSpec)
	if s.Enrichment != nil {
		clone.Enrichment = &EnrichmentArtifacts{
			TableManifest: cloneMap(s.Enrichment.TableManifest),
			FieldMappings: cloneMap(s.Enrichment.FieldMappings),
		}
	}
	if s.Synthesis != nil {
		syn := *s.Synthesis
		syn.QAResults = cloneMap(s.Synthesis.QAResults)
		clone.Synthesis = &syn
	}
	return &clone
}

// cloneMap deep-copies a JSON-shaped map (nested maps, slices and scalars).
func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
