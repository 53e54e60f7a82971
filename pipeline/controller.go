package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hupe1980/docflow/artifact"
	"github.com/hupe1980/docflow/core"
	"github.com/hupe1980/docflow/logging"
	"github.com/hupe1980/docflow/session"
)

// Defaults applied by New when no override is supplied.
const (
	DefaultDataDir      = "./session_data"
	DefaultRetryCap     = 3
	DefaultRetryBackoff = time.Second
)

// Completion milestones committed alongside phase transitions.
const (
	completionEngagementDone = 33
	completionEnrichmentDone = 66
	completionSynthesisDone  = 100
)

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// SessionStore persists session records. Defaults to an in-memory store;
	// production setups typically layer a durable store underneath (see the
	// session package).
	SessionStore core.SessionStore
	// Artifacts locates the per-session working directories on disk.
	Artifacts *artifact.Layout
	// RetryCap bounds failed attempts per phase before the session is forced
	// into the failed phase.
	RetryCap int
	// RetryBackoff is the linear per-attempt delay between in-process
	// retries. Zero disables waiting.
	RetryBackoff time.Duration
	// Logger receives orchestration diagnostics. Defaults to NoOp.
	Logger logging.Logger
}

// Controller drives sessions through the document generation pipeline. It
// relays conversation turns to the engagement provider, executes the
// enrichment and synthesis phases, enforces the phase transition table,
// applies the bounded retry policy and keeps every mutation persisted.
//
// Public methods are safe for concurrent use. Mutations on one session are
// serialized behind a per-session lock; sessions never contend with each
// other.
type Controller struct {
	engagement core.EngagementProvider
	enrichment core.EnrichmentProvider
	synthesis  core.SynthesisProvider

	store     core.SessionStore
	artifacts *artifact.Layout
	retry     *retryCoordinator
	logger    logging.Logger
	locks     *sessionLocks
}

// New constructs a Controller around the three capability providers with
// optional overrides.
func New(
	engagementProvider core.EngagementProvider,
	enrichmentProvider core.EnrichmentProvider,
	synthesisProvider core.SynthesisProvider,
	optFns ...func(o *Options),
) *Controller {
	opts := Options{
		SessionStore: session.NewInMemoryStore(),
		Artifacts:    artifact.NewLayout(DefaultDataDir),
		RetryCap:     DefaultRetryCap,
		RetryBackoff: DefaultRetryBackoff,
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Controller{
		engagement: engagementProvider,
		enrichment: enrichmentProvider,
		synthesis:  synthesisProvider,
		store:      opts.SessionStore,
		artifacts:  opts.Artifacts,
		retry:      &retryCoordinator{cap: opts.RetryCap, backoff: opts.RetryBackoff, logger: opts.Logger},
		logger:     opts.Logger,
		locks:      newSessionLocks(),
	}
}

// ProcessMessage relays one user message into a session's engagement
// conversation. Unknown session ids create a fresh record. The user message
// is appended exactly once regardless of retries; the reply of a failed
// attempt is discarded. On the turn the provider reports completion, the
// final requirement spec is fetched and the session moves to
// information_gathering in the same commit.
//
// Messages for terminal sessions are acknowledged without effect, as are
// messages arriving while the pipeline is already past engagement. Adapter
// failures land on the returned record, not in the error return.
func (c *Controller) ProcessMessage(ctx context.Context, sessionID, text string) (*core.Session, error) {
	unlock := c.locks.acquire(sessionID)
	defer unlock()

	rec, found, err := c.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !found {
		rec = core.NewSession(sessionID)
		c.logger.Info("created session session_id=%s", sessionID)
	}

	if rec.Phase.Terminal() {
		c.logger.Debug("dropping message for terminal session session_id=%s phase=%s", sessionID, rec.Phase)
		return rec, nil
	}
	if rec.Phase != core.PhaseEngagement {
		c.logger.Debug("dropping message for session past engagement session_id=%s phase=%s", sessionID, rec.Phase)
		return rec, nil
	}

	rec.AppendMessage(core.RoleUser, text)

	var (
		turn      *core.EngagementResult
		finalSpec map[string]any
	)
	err = c.retry.run(ctx, rec, func() { c.persist(ctx, rec) }, func() error {
		res, err := c.engagement.Process(ctx, sessionID, text)
		if err != nil {
			return &core.AdapterError{Capability: "engagement", Err: err}
		}
		if !res.Complete {
			turn, finalSpec = res, nil
			return nil
		}
		spec, ok, err := c.engagement.FinalSpec(ctx, sessionID)
		if err != nil {
			return &core.AdapterError{Capability: "engagement", Err: err}
		}
		if !ok {
			return &core.AdapterError{Capability: "engagement", Err: errors.New("completion reported without a final spec")}
		}
		turn, finalSpec = res, spec
		return nil
	})
	if err != nil {
		return rec, nil
	}

	rec.AppendMessage(core.RoleAssistant, turn.Reply)

	if finalSpec == nil {
		// Still gathering: track the provider's live progress within the
		// engagement band. The estimate may move backwards here; committed
		// milestones never do.
		if pct, err := c.engagement.CompletionPercentage(ctx, sessionID); err == nil {
			rec.CompletionPercentage = scaleEngagementPct(pct)
		}
		c.persist(ctx, rec)
		return rec, nil
	}

	rec.RequirementSpec = finalSpec
	c.stashTranscript(sessionID, rec)
	if err := c.transition(ctx, rec, core.PhaseInformationGathering, completionEngagementDone); err != nil {
		return rec, err
	}
	c.logger.Info("engagement complete session_id=%s messages=%d", sessionID, rec.MessageCount())
	return rec, nil
}

// ContinuePipeline advances a session with a completed engagement through
// enrichment and synthesis. Both phases execute sequentially within one
// call, with the record committed between them, so a crash after enrichment
// resumes cleanly in the synthesis phase. Invoking it on a session already
// in synthesis skips straight to document generation.
//
// Entering with the session still in engagement first consults the provider:
// a conversation that actually finished (but whose transition commit was
// lost) is recovered, while a genuinely unfinished one records a
// precondition failure. Adapter failures land on the returned record; the
// error return is reserved for operational problems such as an unknown
// session id or an unreadable store.
func (c *Controller) ContinuePipeline(ctx context.Context, sessionID string) (*core.Session, error) {
	unlock := c.locks.acquire(sessionID)
	defer unlock()

	rec, found, err := c.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}

	if rec.Phase.Terminal() {
		c.logger.Debug("ignoring continue for terminal session session_id=%s phase=%s", sessionID, rec.Phase)
		return rec, nil
	}

	if rec.Phase == core.PhaseEngagement && !c.leaveEngagement(ctx, rec) {
		return rec, nil
	}

	if rec.Phase == core.PhaseInformationGathering && !c.runEnrichment(ctx, rec) {
		return rec, nil
	}

	if rec.Phase == core.PhaseSynthesis && !c.runSynthesis(ctx, rec) {
		return rec, nil
	}

	return rec, nil
}

// Session returns a copy of the stored record without side effects.
func (c *Controller) Session(ctx context.Context, sessionID string) (*core.Session, bool, error) {
	return c.store.Get(ctx, sessionID)
}

// Cleanup removes a session's record and its on-disk artifacts. It is
// idempotent: cleaning an unknown session is a no-op.
func (c *Controller) Cleanup(ctx context.Context, sessionID string) error {
	unlock := c.locks.acquire(sessionID)
	defer unlock()

	if err := c.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	if err := c.artifacts.Remove(sessionID); err != nil {
		return err
	}
	c.locks.forget(sessionID)
	c.logger.Info("cleaned up session session_id=%s", sessionID)
	return nil
}

// leaveEngagement moves a session out of the engagement phase once the
// provider confirms the conversation finished. It recovers records whose
// transition commit was lost (typically a crash between the provider call
// and the store write). A genuinely unfinished conversation is a
// precondition failure, not grounds for retry-looping.
func (c *Controller) leaveEngagement(ctx context.Context, rec *core.Session) bool {
	err := c.retry.run(ctx, rec, func() { c.persist(ctx, rec) }, func() error {
		if rec.RequirementSpec != nil {
			return nil
		}
		complete, err := c.engagement.IsComplete(ctx, rec.ID)
		if err != nil {
			return &core.AdapterError{Capability: "engagement", Err: err}
		}
		if !complete {
			return &core.PreconditionError{Phase: core.PhaseInformationGathering, Reason: "requirement gathering has not completed"}
		}
		spec, ok, err := c.engagement.FinalSpec(ctx, rec.ID)
		if err != nil {
			return &core.AdapterError{Capability: "engagement", Err: err}
		}
		if !ok {
			return &core.PreconditionError{Phase: core.PhaseInformationGathering, Reason: "engagement reported complete without a final spec"}
		}
		rec.RequirementSpec = spec
		return nil
	})
	if err != nil {
		return false
	}
	if err := c.transition(ctx, rec, core.PhaseInformationGathering, completionEngagementDone); err != nil {
		c.logger.Error("refusing transition session_id=%s: %v", rec.ID, err)
		return false
	}
	c.logger.Info("recovered completed engagement session_id=%s", rec.ID)
	return true
}

// runEnrichment executes the information gathering phase: it stages the
// requirement spec into the session's enrichment directory, invokes the
// provider and folds the resulting artifacts back into the record. Providers
// may augment the staged spec file; the on-disk version wins afterwards.
func (c *Controller) runEnrichment(ctx context.Context, rec *core.Session) bool {
	var (
		dir    string
		result *core.EnrichmentResult
	)
	err := c.retry.run(ctx, rec, func() { c.persist(ctx, rec) }, func() error {
		if rec.RequirementSpec == nil {
			return &core.PreconditionError{Phase: core.PhaseInformationGathering, Reason: "requirement spec missing"}
		}
		d, err := c.artifacts.EnsureStageDir(rec.ID, artifact.StageEnrichment)
		if err != nil {
			return &core.AdapterError{Capability: "enrichment", Err: err}
		}
		if err := artifact.WriteSpec(d, rec.RequirementSpec); err != nil {
			return &core.AdapterError{Capability: "enrichment", Err: err}
		}
		res, err := c.enrichment.Run(ctx, rec.RequirementSpec, d)
		if err != nil {
			return &core.AdapterError{Capability: "enrichment", Err: err}
		}
		dir, result = d, res
		return nil
	})
	if err != nil {
		return false
	}

	if spec, err := artifact.LoadSpec(dir); err == nil {
		rec.RequirementSpec = spec
	}
	rec.Enrichment = &core.EnrichmentArtifacts{
		TableManifest: result.TableManifest,
		FieldMappings: result.FieldMappings,
	}
	if rec.Enrichment.TableManifest == nil {
		if manifest, err := artifact.LoadManifest(dir); err == nil {
			rec.Enrichment.TableManifest = manifest
		}
	}
	if rec.Enrichment.FieldMappings == nil {
		if mappings, err := artifact.LoadMappings(dir); err == nil {
			rec.Enrichment.FieldMappings = mappings
		}
	}

	if err := c.transition(ctx, rec, core.PhaseSynthesis, completionEnrichmentDone); err != nil {
		c.logger.Error("refusing transition session_id=%s: %v", rec.ID, err)
		return false
	}
	return true
}

// runSynthesis executes the document generation phase. The provider's
// reported output path must exist on disk before the call counts as a
// success; a document that was never written is treated like any other
// adapter failure.
func (c *Controller) runSynthesis(ctx context.Context, rec *core.Session) bool {
	var result *core.SynthesisResult
	err := c.retry.run(ctx, rec, func() { c.persist(ctx, rec) }, func() error {
		if rec.RequirementSpec == nil {
			return &core.PreconditionError{Phase: core.PhaseSynthesis, Reason: "requirement spec missing"}
		}
		if rec.Enrichment == nil {
			return &core.PreconditionError{Phase: core.PhaseSynthesis, Reason: "enrichment artifacts missing"}
		}
		dir, err := c.artifacts.EnsureStageDir(rec.ID, artifact.StageSynthesis)
		if err != nil {
			return &core.AdapterError{Capability: "synthesis", Err: err}
		}
		res, err := c.synthesis.Generate(ctx, rec.RequirementSpec, rec.Enrichment.TableManifest, rec.Enrichment.FieldMappings, dir)
		if err != nil {
			return &core.AdapterError{Capability: "synthesis", Err: err}
		}
		if res.OutputPath == "" {
			return &core.AdapterError{Capability: "synthesis", Err: errors.New("no output path reported")}
		}
		if _, err := os.Stat(res.OutputPath); err != nil {
			return &core.AdapterError{Capability: "synthesis", Err: fmt.Errorf("reported output %s is not readable: %w", res.OutputPath, err)}
		}
		result = res
		return nil
	})
	if err != nil {
		return false
	}

	rec.Synthesis = result
	if err := c.transition(ctx, rec, core.PhaseComplete, completionSynthesisDone); err != nil {
		c.logger.Error("refusing transition session_id=%s: %v", rec.ID, err)
		return false
	}
	c.logger.Info("document generated session_id=%s path=%s slides=%d", rec.ID, result.OutputPath, result.SlideCount)
	return true
}

// transition commits a phase change plus its associated fields in one write.
// The retry budget is per phase, so the counter resets on a real move. The
// committed completion percentage never decreases.
func (c *Controller) transition(ctx context.Context, rec *core.Session, to core.Phase, completion int) error {
	if err := core.ValidateTransition(rec.Phase, to); err != nil {
		return err
	}
	c.logger.Info("phase transition session_id=%s %s -> %s", rec.ID, rec.Phase, to)
	if rec.Phase != to {
		rec.RetryCount = 0
	}
	rec.Phase = to
	if completion > rec.CompletionPercentage {
		rec.CompletionPercentage = completion
	}
	rec.Error = ""
	c.persist(ctx, rec)
	return nil
}

// persist commits the record, stamping Updated. Durable write failures are
// absorbed after logging: the cached record stays authoritative and
// durability returns with the next successful write.
func (c *Controller) persist(ctx context.Context, rec *core.Session) {
	rec.Updated = time.Now()
	if err := c.store.Put(ctx, rec); err != nil {
		c.logger.Error("failed to persist session session_id=%s: %v", rec.ID, err)
	}
}

// stashTranscript writes the conversation transcript into the engagement
// stage directory. Failures are logged only; the record itself already
// carries the transcript.
func (c *Controller) stashTranscript(sessionID string, rec *core.Session) {
	dir, err := c.artifacts.EnsureStageDir(sessionID, artifact.StageEngagement)
	if err == nil {
		err = artifact.WriteTranscript(dir, rec.Transcript)
	}
	if err != nil {
		c.logger.Warn("failed to stash transcript session_id=%s: %v", sessionID, err)
	}
}
