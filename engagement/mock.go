package engagement

import (
	"context"
	"sync"

	"github.com/hupe1980/docflow/core"
)

// MockOptions configures the scripted provider.
type MockOptions struct {
	// CompleteAfter is the number of user turns after which the mock
	// declares requirement gathering complete.
	CompleteAfter int
	// Spec is the requirement spec served once complete.
	Spec map[string]any
	// Replies are cycled through for intermediate turns.
	Replies []string
	// FinalReply is returned on the completing turn.
	FinalReply string
}

// MockEngagement is a deterministic in-memory EngagementProvider for tests,
// examples and offline development. It completes after a fixed number of
// user turns and then serves a canned requirement spec. Individual methods
// can be overridden through the *Fn fields.
type MockEngagement struct {
	mu    sync.Mutex
	turns map[string]int

	completeAfter int
	spec          map[string]any
	replies       []string
	finalReply    string

	// Optional overrides, invoked instead of the scripted behavior when set.
	ProcessFn              func(ctx context.Context, sessionID, text string) (*core.EngagementResult, error)
	IsCompleteFn           func(ctx context.Context, sessionID string) (bool, error)
	CompletionPercentageFn func(ctx context.Context, sessionID string) (int, error)
	FinalSpecFn            func(ctx context.Context, sessionID string) (map[string]any, bool, error)
}

// NewMockEngagement constructs the scripted provider with optional overrides.
func NewMockEngagement(optFns ...func(o *MockOptions)) *MockEngagement {
	opts := MockOptions{
		CompleteAfter: 3,
		Spec: map[string]any{
			"title":    "Quarterly business review",
			"audience": "executive team",
			"sections": []any{"revenue", "pipeline", "risks"},
		},
		Replies: []string{
			"Got it. What data should the document focus on?",
			"Understood. Anything else the document must cover?",
		},
		FinalReply: "I have everything I need to draft the document.",
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &MockEngagement{
		turns:         map[string]int{},
		completeAfter: opts.CompleteAfter,
		spec:          opts.Spec,
		replies:       opts.Replies,
		finalReply:    opts.FinalReply,
	}
}

// Process counts the turn and replies from the script, declaring completion
// once the configured number of turns is reached.
func (m *MockEngagement) Process(ctx context.Context, sessionID, text string) (*core.EngagementResult, error) {
	if m.ProcessFn != nil {
		return m.ProcessFn(ctx, sessionID, text)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns[sessionID]++
	turn := m.turns[sessionID]

	if turn >= m.completeAfter {
		return &core.EngagementResult{Reply: m.finalReply, Complete: true}, nil
	}
	reply := "Noted."
	if len(m.replies) > 0 {
		reply = m.replies[(turn-1)%len(m.replies)]
	}
	return &core.EngagementResult{Reply: reply, Complete: false}, nil
}

// IsComplete reports whether the session reached the scripted turn budget.
func (m *MockEngagement) IsComplete(ctx context.Context, sessionID string) (bool, error) {
	if m.IsCompleteFn != nil {
		return m.IsCompleteFn(ctx, sessionID)
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.turns[sessionID] >= m.completeAfter, nil
}

// CompletionPercentage reports progress proportional to the turns taken.
func (m *MockEngagement) CompletionPercentage(ctx context.Context, sessionID string) (int, error) {
	if m.CompletionPercentageFn != nil {
		return m.CompletionPercentageFn(ctx, sessionID)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.completeAfter <= 0 {
		return 100, nil
	}
	pct := m.turns[sessionID] * 100 / m.completeAfter
	if pct > 100 {
		pct = 100
	}
	return pct, nil
}

// FinalSpec serves the canned spec once the session is complete.
func (m *MockEngagement) FinalSpec(ctx context.Context, sessionID string) (map[string]any, bool, error) {
	if m.FinalSpecFn != nil {
		return m.FinalSpecFn(ctx, sessionID)
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.turns[sessionID] < m.completeAfter {
		return nil, false, nil
	}
	return m.spec, true, nil
}

// Turns returns how many user turns the session has taken so far.
func (m *MockEngagement) Turns(sessionID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.turns[sessionID]
}
