package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/docflow/core"
	"github.com/hupe1980/docflow/internal/testutil"
)

func TestStatus_UnknownSession(t *testing.T) {
	ctrl, _ := newTestController(t, &MockEngagementProvider{}, &MockEnrichmentProvider{}, &MockSynthesisProvider{}, newSpyStore())

	st, err := ctrl.Status(context.Background(), "never-seen")
	require.NoError(t, err)

	assert.Equal(t, "never-seen", st.SessionID)
	assert.Equal(t, PhaseNotStarted, st.Phase)
	assert.Zero(t, st.CompletionPercentage)
	assert.Zero(t, st.MessageCount)
	assert.False(t, st.HasSpec)
	assert.Empty(t, st.Error)
}

func TestStatus_LiveEngagementProgress(t *testing.T) {
	ctx := context.Background()
	eng := &MockEngagementProvider{}
	store := newSpyStore()
	ctrl, _ := newTestController(t, eng, &MockEnrichmentProvider{}, &MockSynthesisProvider{}, store)

	require.NoError(t, store.Put(ctx, testutil.NewSessionBuilder("sess-1").
		Message(core.RoleUser, "I need a deck").
		Message(core.RoleAssistant, "What should it cover?").
		Completion(5).
		Build()))

	eng.On("CompletionPercentage", mock.Anything, "sess-1").Return(50, nil)

	st, err := ctrl.Status(ctx, "sess-1")
	require.NoError(t, err)

	assert.Equal(t, string(core.PhaseEngagement), st.Phase)
	assert.Equal(t, 16, st.CompletionPercentage, "live progress beats the committed 5")
	assert.Equal(t, 2, st.MessageCount)
}

func TestStatus_ReflectsRecordFields(t *testing.T) {
	ctx := context.Background()
	store := newSpyStore()
	ctrl, _ := newTestController(t, &MockEngagementProvider{}, &MockEnrichmentProvider{}, &MockSynthesisProvider{}, store)

	require.NoError(t, store.Put(ctx, testutil.NewSessionBuilder("sess-1").
		Phase(core.PhaseComplete).
		Spec(map[string]any{"title": "Quarterly business review"}).
		Enrichment(map[string]any{"tables": []any{}}, map[string]any{}).
		Synthesis(&core.SynthesisResult{Status: "success", OutputPath: "/tmp/deck.json", SlideCount: 4}).
		Completion(100).
		Build()))

	st, err := ctrl.Status(ctx, "sess-1")
	require.NoError(t, err)

	assert.Equal(t, string(core.PhaseComplete), st.Phase)
	assert.Equal(t, 100, st.CompletionPercentage)
	assert.True(t, st.HasSpec)
	assert.True(t, st.HasEnrichment)
	assert.True(t, st.HasArtifact)

	failed := testutil.NewSessionBuilder("sess-2").
		Phase(core.PhaseFailed).
		Error("enrichment adapter error: warehouse unavailable").
		RetryCount(3).
		Build()
	require.NoError(t, store.Put(ctx, failed))

	st, err = ctrl.Status(ctx, "sess-2")
	require.NoError(t, err)
	assert.Equal(t, string(core.PhaseFailed), st.Phase)
	assert.Contains(t, st.Error, "warehouse unavailable")
}

func TestStatus_NeverWrites(t *testing.T) {
	ctx := context.Background()
	eng := &MockEngagementProvider{}
	store := newSpyStore()
	ctrl, _ := newTestController(t, eng, &MockEnrichmentProvider{}, &MockSynthesisProvider{}, store)

	require.NoError(t, store.Put(ctx, testutil.NewSessionBuilder("sess-1").Build()))
	eng.On("CompletionPercentage", mock.Anything, "sess-1").Return(10, nil)
	before := store.putCount()

	for i := 0; i < 5; i++ {
		_, err := ctrl.Status(ctx, "sess-1")
		require.NoError(t, err)
		_, err = ctrl.Status(ctx, "never-seen")
		require.NoError(t, err)
	}

	assert.Equal(t, before, store.putCount(), "polling must not alter state")
}

func TestScaleEngagementPct(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{name: "negative clamps to zero", in: -5, want: 0},
		{name: "zero", in: 0, want: 0},
		{name: "half", in: 50, want: 16},
		{name: "full maps to band edge", in: 100, want: 33},
		{name: "overflow clamps to band edge", in: 150, want: 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scaleEngagementPct(tt.in))
		})
	}
}
