package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/docflow/core"
	"github.com/hupe1980/docflow/internal/testutil"
	"github.com/hupe1980/docflow/logging"
)

func newTestCoordinator(cap int) *retryCoordinator {
	return &retryCoordinator{cap: cap, backoff: 0, logger: logging.NoOpLogger{}}
}

func TestRetryCoordinator_SuccessNeedsNoCommit(t *testing.T) {
	r := newTestCoordinator(3)
	rec := testutil.NewSessionBuilder("sess-1").Error("stale failure").Build()

	persists := 0
	err := r.run(context.Background(), rec, func() { persists++ }, func() error { return nil })

	require.NoError(t, err)
	assert.Empty(t, rec.Error, "success clears the recorded failure")
	assert.Zero(t, rec.RetryCount)
	assert.Zero(t, persists, "the caller owns the success commit")
}

func TestRetryCoordinator_PersistsEveryFailure(t *testing.T) {
	r := newTestCoordinator(3)
	rec := testutil.NewSessionBuilder("sess-1").Build()

	attempts, persists := 0, 0
	err := r.run(context.Background(), rec, func() { persists++ }, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("boom")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 2, rec.RetryCount)
	assert.Equal(t, 2, persists)
	assert.Empty(t, rec.Error)
	assert.Equal(t, core.PhaseEngagement, rec.Phase)
}

func TestRetryCoordinator_ExhaustionForcesFailed(t *testing.T) {
	r := newTestCoordinator(3)
	rec := testutil.NewSessionBuilder("sess-1").Build()

	attempts, persists := 0, 0
	err := r.run(context.Background(), rec, func() { persists++ }, func() error {
		attempts++
		return errors.New("boom")
	})

	var exhausted *core.RetryExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, core.PhaseEngagement, exhausted.Phase)
	assert.Equal(t, 3, exhausted.Attempts)

	assert.Equal(t, 3, attempts, "the adapter is dispatched exactly cap times")
	assert.Equal(t, 3, persists)
	assert.Equal(t, core.PhaseFailed, rec.Phase)
	assert.Equal(t, 3, rec.RetryCount)
	assert.Equal(t, "boom", rec.Error, "the record keeps the last real failure")
}

func TestRetryCoordinator_SpentBudgetBlocksDispatch(t *testing.T) {
	r := newTestCoordinator(3)
	rec := testutil.NewSessionBuilder("sess-1").RetryCount(3).Build()

	attempts, persists := 0, 0
	err := r.run(context.Background(), rec, func() { persists++ }, func() error {
		attempts++
		return nil
	})

	var exhausted *core.RetryExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Zero(t, attempts, "a session beyond the cap never reaches the adapter")
	assert.Equal(t, 1, persists)
	assert.Equal(t, core.PhaseFailed, rec.Phase)
	assert.Contains(t, rec.Error, "failed after 3 attempts")
}

func TestRetryCoordinator_PreconditionCountedOnce(t *testing.T) {
	r := newTestCoordinator(3)
	rec := testutil.NewSessionBuilder("sess-1").Build()

	attempts := 0
	err := r.run(context.Background(), rec, func() {}, func() error {
		attempts++
		return &core.PreconditionError{Phase: core.PhaseSynthesis, Reason: "enrichment artifacts missing"}
	})

	var precondition *core.PreconditionError
	require.ErrorAs(t, err, &precondition)
	assert.Equal(t, 1, attempts, "retrying cannot satisfy a precondition")
	assert.Equal(t, 1, rec.RetryCount)
	assert.Equal(t, core.PhaseEngagement, rec.Phase)
	assert.Contains(t, rec.Error, "enrichment artifacts missing")
}
