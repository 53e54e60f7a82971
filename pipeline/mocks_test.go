package pipeline

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/hupe1980/docflow/artifact"
	"github.com/hupe1980/docflow/core"
	"github.com/hupe1980/docflow/session"
)

// MockEngagementProvider for scripting conversation turns.
type MockEngagementProvider struct {
	mock.Mock
}

func (m *MockEngagementProvider) Process(ctx context.Context, sessionID, text string) (*core.EngagementResult, error) {
	args := m.Called(ctx, sessionID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.EngagementResult), args.Error(1)
}

func (m *MockEngagementProvider) IsComplete(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEngagementProvider) CompletionPercentage(ctx context.Context, sessionID string) (int, error) {
	args := m.Called(ctx, sessionID)
	return args.Int(0), args.Error(1)
}

func (m *MockEngagementProvider) FinalSpec(ctx context.Context, sessionID string) (map[string]any, bool, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(map[string]any), args.Bool(1), args.Error(2)
}

// MockEnrichmentProvider for scripting the information gathering phase.
type MockEnrichmentProvider struct {
	mock.Mock
}

func (m *MockEnrichmentProvider) Run(ctx context.Context, spec map[string]any, outputDir string) (*core.EnrichmentResult, error) {
	args := m.Called(ctx, spec, outputDir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.EnrichmentResult), args.Error(1)
}

// MockSynthesisProvider for scripting the document generation phase.
type MockSynthesisProvider struct {
	mock.Mock
}

func (m *MockSynthesisProvider) Generate(ctx context.Context, spec, tableManifest, fieldMappings map[string]any, outputDir string) (*core.SynthesisResult, error) {
	args := m.Called(ctx, spec, tableManifest, fieldMappings, outputDir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.SynthesisResult), args.Error(1)
}

// Interface compliance (compile-time assertions)
var (
	_ core.EngagementProvider = (*MockEngagementProvider)(nil)
	_ core.EnrichmentProvider = (*MockEnrichmentProvider)(nil)
	_ core.SynthesisProvider  = (*MockSynthesisProvider)(nil)
)

// putSnapshot captures the shape of one committed record so tests can assert
// on intermediate persistence.
type putSnapshot struct {
	phase         core.Phase
	retryCount    int
	completion    int
	hasSpec       bool
	hasEnrichment bool
	hasSynthesis  bool
	errMsg        string
}

// spyStore wraps an in-memory store and records every commit.
type spyStore struct {
	inner core.SessionStore

	mu   sync.Mutex
	puts []putSnapshot
}

func newSpyStore() *spyStore {
	return &spyStore{inner: session.NewInMemoryStore()}
}

func (s *spyStore) Get(ctx context.Context, sessionID string) (*core.Session, bool, error) {
	return s.inner.Get(ctx, sessionID)
}

func (s *spyStore) Put(ctx context.Context, sess *core.Session) error {
	s.mu.Lock()
	s.puts = append(s.puts, putSnapshot{
		phase:         sess.Phase,
		retryCount:    sess.RetryCount,
		completion:    sess.CompletionPercentage,
		hasSpec:       sess.RequirementSpec != nil,
		hasEnrichment: sess.Enrichment != nil,
		hasSynthesis:  sess.Synthesis != nil,
		errMsg:        sess.Error,
	})
	s.mu.Unlock()
	return s.inner.Put(ctx, sess)
}

func (s *spyStore) Delete(ctx context.Context, sessionID string) error {
	return s.inner.Delete(ctx, sessionID)
}

func (s *spyStore) snapshots() []putSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]putSnapshot(nil), s.puts...)
}

func (s *spyStore) putCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.puts)
}

// newTestController wires mocks into a Controller with fast retries and a
// throwaway artifact root.
func newTestController(
	t *testing.T,
	eng core.EngagementProvider,
	enr core.EnrichmentProvider,
	syn core.SynthesisProvider,
	store core.SessionStore,
) (*Controller, *artifact.Layout) {
	t.Helper()

	layout := artifact.NewLayout(t.TempDir())
	ctrl := New(eng, enr, syn, func(o *Options) {
		o.SessionStore = store
		o.Artifacts = layout
		o.RetryBackoff = 0
	})
	return ctrl, layout
}
