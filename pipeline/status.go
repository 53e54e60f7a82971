package pipeline

import (
	"context"

	"github.com/hupe1980/docflow/core"
)

// PhaseNotStarted is the synthetic phase reported for session ids that have
// no record yet. It is a projection-only value and never stored.
const PhaseNotStarted = "not_started"

// Status is a flat, read-only projection of a session record, shaped for
// pollers that render progress without understanding the full record.
type Status struct {
	SessionID            string `json:"session_id"`
	Phase                string `json:"phase"`
	CompletionPercentage int    `json:"completion_percentage"`
	MessageCount         int    `json:"message_count"`
	HasSpec              bool   `json:"has_spec"`
	HasEnrichment        bool   `json:"has_enrichment"`
	HasArtifact          bool   `json:"has_artifact"`
	Error                string `json:"error,omitempty"`
}

// Status returns the current projection for a session. Unknown ids yield a
// not_started snapshot rather than an error so clients can poll before the
// first message arrives. The method never writes: polling cannot alter
// pipeline state.
func (c *Controller) Status(ctx context.Context, sessionID string) (*Status, error) {
	rec, found, err := c.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !found {
		return &Status{SessionID: sessionID, Phase: PhaseNotStarted}, nil
	}

	st := &Status{
		SessionID:            rec.ID,
		Phase:                string(rec.Phase),
		CompletionPercentage: rec.CompletionPercentage,
		MessageCount:         rec.MessageCount(),
		HasSpec:              rec.RequirementSpec != nil,
		HasEnrichment:        rec.Enrichment != nil,
		HasArtifact:          rec.Synthesis != nil,
		Error:                rec.Error,
	}

	// During engagement the provider knows the live progress more precisely
	// than the last committed record.
	if rec.Phase == core.PhaseEngagement {
		if pct, err := c.engagement.CompletionPercentage(ctx, sessionID); err == nil {
			st.CompletionPercentage = scaleEngagementPct(pct)
		}
	}

	return st, nil
}

// scaleEngagementPct maps the provider's 0..100 progress estimate into the
// engagement band (0..33) of the overall completion percentage.
func scaleEngagementPct(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return completionEngagementDone
	}
	return pct * completionEngagementDone / 100
}
