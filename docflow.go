// Package docflow provides a high-level façade over the document generation
// pipeline (requirement engagement, data enrichment, document synthesis) and
// its services (session persistence, artifact layout & logging). Most
// applications interact with this package by:
//  1. Creating a DocFlow via New() (optionally overriding providers or stores)
//  2. Relaying user messages with ProcessMessage until requirements complete
//  3. Calling ContinuePipeline to run enrichment and synthesis
//  4. Polling Status for progress and calling Cleanup when done
//
// The façade delegates orchestration to pipeline.Controller while keeping
// setup and usage ergonomics concise. All defaults are safe for local
// development and testing: session records persist as JSON files under
// DataDir behind a write-through cache, and the capability providers default
// to the local implementations. Production deployments typically supply a
// live engagement provider and a structured logger.
package docflow

import (
	"context"
	"time"

	"github.com/hupe1980/docflow/artifact"
	"github.com/hupe1980/docflow/core"
	"github.com/hupe1980/docflow/engagement"
	"github.com/hupe1980/docflow/enrichment"
	"github.com/hupe1980/docflow/logging"
	"github.com/hupe1980/docflow/pipeline"
	"github.com/hupe1980/docflow/session"
	"github.com/hupe1980/docflow/synthesis"
)

// Options configures the DocFlow instance.
type Options struct {
	// DataDir holds the session records and the per-session stage artifacts.
	DataDir string

	// Capability providers. Unset providers fall back to the local
	// implementations: a deterministic mock engagement, the SpecEnricher and
	// the DeckBuilder.
	Engagement core.EngagementProvider
	Enrichment core.EnrichmentProvider
	Synthesis  core.SynthesisProvider

	// SessionStore persists session records. Defaults to a file store under
	// DataDir fronted by a write-through cache.
	SessionStore core.SessionStore

	// RetryCap bounds failed attempts per phase before a session is forced
	// into the failed phase.
	RetryCap int

	// RetryBackoff is the linear per-attempt delay between in-process
	// retries. Zero disables waiting.
	RetryBackoff time.Duration

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// DocFlow is the high-level façade aggregating the pipeline controller and
// its services.
type DocFlow struct {
	opts       Options
	controller *pipeline.Controller
}

// New creates a new DocFlow instance with optional overrides. Any unset
// service is initialized with its local default.
func New(optFns ...func(o *Options)) *DocFlow {
	opts := Options{
		DataDir:      pipeline.DefaultDataDir,
		RetryCap:     pipeline.DefaultRetryCap,
		RetryBackoff: pipeline.DefaultRetryBackoff,
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Engagement == nil {
		opts.Engagement = engagement.NewMockEngagement()
	}
	if opts.Enrichment == nil {
		opts.Enrichment = enrichment.NewSpecEnricher()
	}
	if opts.Synthesis == nil {
		opts.Synthesis = synthesis.NewDeckBuilder()
	}
	if opts.SessionStore == nil {
		opts.SessionStore = session.NewCachedStore(session.NewFileStore(opts.DataDir))
	}

	controller := pipeline.New(opts.Engagement, opts.Enrichment, opts.Synthesis, func(o *pipeline.Options) {
		o.SessionStore = opts.SessionStore
		o.Artifacts = artifact.NewLayout(opts.DataDir)
		o.RetryCap = opts.RetryCap
		o.RetryBackoff = opts.RetryBackoff
		o.Logger = opts.Logger
	})

	return &DocFlow{opts: opts, controller: controller}
}

// ProcessMessage relays one user message into a session's requirement
// conversation, creating the session on first contact. The returned record
// reflects the state committed for this turn.
func (d *DocFlow) ProcessMessage(ctx context.Context, sessionID, text string) (*core.Session, error) {
	return d.controller.ProcessMessage(ctx, sessionID, text)
}

// ContinuePipeline advances a session with completed requirements through
// enrichment and synthesis.
func (d *DocFlow) ContinuePipeline(ctx context.Context, sessionID string) (*core.Session, error) {
	return d.controller.ContinuePipeline(ctx, sessionID)
}

// Status projects a session's progress without mutating it. Unknown ids
// report the not_started phase.
func (d *DocFlow) Status(ctx context.Context, sessionID string) (*pipeline.Status, error) {
	return d.controller.Status(ctx, sessionID)
}

// Session returns a copy of the stored session record.
func (d *DocFlow) Session(ctx context.Context, sessionID string) (*core.Session, bool, error) {
	return d.controller.Session(ctx, sessionID)
}

// Cleanup removes a session's record and artifacts. Unknown sessions are a
// no-op.
func (d *DocFlow) Cleanup(ctx context.Context, sessionID string) error {
	return d.controller.Cleanup(ctx, sessionID)
}

// NewSessionID returns a fresh unique session id.
func NewSessionID() string {
	return core.NewSessionID()
}
