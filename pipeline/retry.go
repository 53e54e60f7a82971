package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/docflow/core"
	"github.com/hupe1980/docflow/logging"
)

// retryCoordinator applies the bounded retry policy around phase handler
// attempts. It owns the retry bookkeeping on the session record: the error
// field, the per-phase retry counter and the forced move into the failed
// phase once the budget is spent.
type retryCoordinator struct {
	cap     int
	backoff time.Duration
	logger  logging.Logger
}

// run dispatches attempt until it succeeds or the session's retry budget is
// exhausted. Every failure is committed via persist before the next dispatch
// so a process dying mid-loop never forgets attempts already made. A success
// clears the record's error field; the retry counter is only reset by a
// committed phase transition.
//
// Precondition failures are recorded once and never re-dispatched: waiting
// in-process cannot make a missing predecessor output appear. Cancellation
// during backoff is accounted like any other failure.
func (r *retryCoordinator) run(ctx context.Context, rec *core.Session, persist func(), attempt func() error) error {
	if rec.RetryCount >= r.cap {
		// Budget already spent, typically a record resumed after a crash.
		// Force the terminal phase without giving the adapter another try.
		exhausted := &core.RetryExhaustedError{Phase: rec.Phase, Attempts: rec.RetryCount}
		rec.Error = exhausted.Error()
		rec.Phase = core.PhaseFailed
		persist()
		return exhausted
	}

	for {
		err := attempt()
		if err == nil {
			rec.Error = ""
			return nil
		}

		rec.Error = err.Error()
		rec.RetryCount++
		r.logger.Warn("phase %s attempt %d/%d failed session_id=%s: %v", rec.Phase, rec.RetryCount, r.cap, rec.ID, err)

		if rec.RetryCount >= r.cap {
			exhausted := &core.RetryExhaustedError{Phase: rec.Phase, Attempts: rec.RetryCount}
			r.logger.Error("retry budget exhausted session_id=%s phase=%s", rec.ID, rec.Phase)
			rec.Phase = core.PhaseFailed
			persist()
			return exhausted
		}

		persist()

		var precondition *core.PreconditionError
		if errors.As(err, &precondition) {
			return err
		}

		if waitErr := r.wait(ctx, rec.RetryCount); waitErr != nil {
			rec.Error = waitErr.Error()
			rec.RetryCount++
			if rec.RetryCount >= r.cap {
				rec.Phase = core.PhaseFailed
			}
			persist()
			return waitErr
		}
	}
}

// wait sleeps for the linear backoff of the given attempt, honoring ctx.
func (r *retryCoordinator) wait(ctx context.Context, attempt int) error {
	if r.backoff <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(time.Duration(attempt) * r.backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
