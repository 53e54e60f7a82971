package core

import "context"

// EngagementResult is the outcome of one conversational turn.
type EngagementResult struct {
	Reply    string `json:"reply"`
	Complete bool   `json:"complete"`
}

// EnrichmentResult is the outcome of a data enrichment run.
type EnrichmentResult struct {
	Status        string         `json:"status"`
	TableManifest map[string]any `json:"table_manifest"`
	FieldMappings map[string]any `json:"field_mappings"`
}

// SynthesisResult describes a generated document.
type SynthesisResult struct {
	Status       string         `json:"status"`
	OutputPath   string         `json:"output_path"`
	SlideCount   int            `json:"slide_count"`
	InsightCount int            `json:"insight_count"`
	QAResults    map[string]any `json:"qa_results,omitempty"`
}

// EngagementProvider gathers document requirements conversationally. The
// provider owns the dialogue strategy; the orchestrator only relays messages
// and reads completion signals.
//
// Implementations must:
//   - Respect context cancellation on every call
//   - Keep per-session conversation state keyed by session ID
//   - Report a spec through FinalSpec only once requirements are complete
//     (the boolean distinguishes "not yet" from an empty spec)
type EngagementProvider interface {
	// Process relays one user message and returns the assistant reply plus
	// the completion signal for this turn.
	Process(ctx context.Context, sessionID, text string) (*EngagementResult, error)
	// IsComplete reports whether requirement gathering has finished.
	IsComplete(ctx context.Context, sessionID string) (bool, error)
	// CompletionPercentage estimates gathering progress in the range 0..100.
	CompletionPercentage(ctx context.Context, sessionID string) (int, error)
	// FinalSpec returns the gathered requirement spec once available.
	FinalSpec(ctx context.Context, sessionID string) (map[string]any, bool, error)
}

// EnrichmentProvider prepares the data a document will be generated from.
// outputDir is the session-scoped directory the provider writes its artifact
// files into; it is always passed explicitly so concurrent sessions can never
// observe each other's output locations.
type EnrichmentProvider interface {
	Run(ctx context.Context, spec map[string]any, outputDir string) (*EnrichmentResult, error)
}

// SynthesisProvider generates the final document from the requirement spec
// and the enrichment outputs. outputDir follows the same explicit-location
// rule as EnrichmentProvider.Run.
type SynthesisProvider interface {
	Generate(ctx context.Context, spec, tableManifest, fieldMappings map[string]any, outputDir string) (*SynthesisResult, error)
}
