package essayist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/RBrouq/agentic-system/capability"
	"github.com/RBrouq/agentic-system/store"
)

// DefaultMaxPlanRevisions bounds how many times reviewer feedback may send
// the plan back for another pass before the current plan is kept as-is.
const DefaultMaxPlanRevisions = 3

// Driver runs the essay workflow: it loads or creates the session record,
// merges the caller's input into it, advances the phase machine until it
// halts at a checkpoint or finishes, and persists the result. One Driver is
// safe for concurrent use as long as its store is.
type Driver struct {
	store            store.Store
	generator        capability.Generator
	searcher         capability.Searcher
	logger           Logger
	metrics          *Metrics
	maxPlanRevisions int
	middleware       []Middleware
	stageMiddleware  []StageMiddleware
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithGenerator sets the text generator backing every LLM stage.
func WithGenerator(g capability.Generator) DriverOption {
	return func(d *Driver) {
		if g != nil {
			d.generator = g
		}
	}
}

// WithSearcher sets the research searcher.
func WithSearcher(s capability.Searcher) DriverOption {
	return func(d *Driver) {
		if s != nil {
			d.searcher = s
		}
	}
}

// WithLogger sets a custom logger for the driver.
func WithLogger(logger Logger) DriverOption {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMetrics attaches a metrics set; stage durations are only recorded
// when MetricsStageMiddleware is installed as well.
func WithMetrics(m *Metrics) DriverOption {
	return func(d *Driver) {
		d.metrics = m
	}
}

// WithMaxPlanRevisions overrides the plan revision budget.
func WithMaxPlanRevisions(n int) DriverOption {
	return func(d *Driver) {
		if n >= 0 {
			d.maxPlanRevisions = n
		}
	}
}

// WithMiddleware appends run-level middleware. Middleware is applied in
// reverse order so the first added is the outermost wrapper.
func WithMiddleware(mw ...Middleware) DriverOption {
	return func(d *Driver) {
		d.middleware = append(d.middleware, mw...)
	}
}

// WithStageMiddleware appends middleware around every stage body.
func WithStageMiddleware(mw ...StageMiddleware) DriverOption {
	return func(d *Driver) {
		d.stageMiddleware = append(d.stageMiddleware, mw...)
	}
}

// NewDriver creates a Driver over the given session store. Without options
// it runs with a no-op logger, an unavailable generator and no searcher;
// real deployments install capabilities via WithGenerator and WithSearcher.
func NewDriver(s store.Store, opts ...DriverOption) *Driver {
	d := &Driver{
		store:            s,
		generator:        capability.UnavailableGenerator{},
		searcher:         capability.NoSearcher{},
		logger:           NewDefaultLogger(),
		maxPlanRevisions: DefaultMaxPlanRevisions,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Use appends run-level middleware after construction.
func (d *Driver) Use(mw ...Middleware) {
	d.middleware = append(d.middleware, mw...)
}

// UseStage appends stage middleware after construction.
func (d *Driver) UseStage(mw ...StageMiddleware) {
	d.stageMiddleware = append(d.stageMiddleware, mw...)
}

// Run advances a session by one invocation and returns a snapshot of its
// record. A request without a session id starts a fresh session; one with
// an id resumes (an unknown id also starts fresh, under that id). The
// returned record either waits at a checkpoint (Halted) or is finished
// (Done).
//
// The record is persisted only when the machine parks or finishes. When a
// stage fails hard the error is returned as a *PhaseError and the store
// keeps the snapshot from before this invocation, so the call can simply be
// retried.
func (d *Driver) Run(ctx context.Context, req Request) (*store.Record, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		d.countRun(store.ModeUnknown, outcomeRejected)
		return nil, err
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	rec, err := store.LoadOrCreate(ctx, d.store, sessionID)
	if err != nil {
		return nil, err
	}
	if rec.Done() {
		// Finished sessions are immutable; replay the result.
		d.logger.Debug("Session %s is already done, returning stored result", sessionID)
		d.countRun(rec.Mode, outcomeNoop)
		return rec, nil
	}
	if rec.Phase == store.PhaseNotStarted && req.UserInput == "" {
		d.countRun(store.ModeUnknown, outcomeRejected)
		return nil, &ValidationError{Field: "user_input", Reason: fmt.Sprintf("session %s has no stored request; a new session needs a non-empty prompt", sessionID)}
	}

	call := &callState{}
	d.merge(rec, req, call)

	runner := d.machineRunner(call)
	for i := len(d.middleware) - 1; i >= 0; i-- {
		runner = d.middleware[i](runner)
	}
	if err := runner(ctx, rec, d.logger); err != nil {
		d.countRun(rec.Mode, outcomeFailed)
		return nil, err
	}

	rec.UpdatedAt = time.Now().UTC()
	if err := d.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("persisting session %s: %w", sessionID, err)
	}
	if rec.Halted() {
		d.logger.Info("Session %s halted at %s (phase %s)", sessionID, rec.PendingCheckpoint, rec.Phase)
		d.countRun(rec.Mode, outcomeHalted)
		d.countHalt(rec.PendingCheckpoint)
	} else {
		d.logger.Info("Session %s completed", sessionID)
		d.countRun(rec.Mode, outcomeCompleted)
	}
	return rec, nil
}

// merge folds one invocation's input into the record. The original request
// is written once; skip flags are taken from every call; human fields are
// merged only when present. When the session waits at a checkpoint, fields
// addressed to an earlier gate are stale echoes of input that was already
// acted on, and are dropped.
func (d *Driver) merge(rec *store.Record, req Request, call *callState) {
	if rec.OriginalRequest == "" {
		rec.OriginalRequest = req.UserInput
	}
	rec.SkipClarification = req.SkipClarification
	rec.SkipPlanReview = req.SkipPlanReview
	rec.SkipDraftReview = req.SkipDraftReview

	pending := checkpointRank[rec.PendingCheckpoint]
	fresh := func(rank int, field string) bool {
		if pending == 0 || rank >= pending {
			return true
		}
		d.logger.Debug("Session %s: ignoring stale %s while waiting at %s", rec.SessionID, field, rec.PendingCheckpoint)
		return false
	}

	if req.ClarificationAnswers != "" && fresh(1, "clarification_answers") {
		rec.ClarificationAnswers = req.ClarificationAnswers
	}
	if req.PlanFeedback != "" && fresh(2, "plan_feedback") {
		rec.PlanFeedback = req.PlanFeedback
		call.planFeedbackSeen = true
	}
	if req.DraftFeedback != "" && fresh(3, "draft_feedback_human") {
		rec.DraftFeedback = req.DraftFeedback
		call.draftFeedbackSeen = true
	}
	if req.DraftApproved != nil && fresh(3, "draft_approved") {
		approved := *req.DraftApproved
		rec.DraftApproved = &approved
		call.draftDecisionSeen = true
	}
	// Final feedback has no gate of its own; the finalize phase consumes
	// whatever is present when it runs.
	if req.FinalFeedback != "" {
		rec.FinalFeedback = req.FinalFeedback
	}
}

// machineRunner adapts the phase machine to the middleware-visible runner
// shape, closing over this call's supplied-input markers.
func (d *Driver) machineRunner(call *callState) RunnerFunc {
	return func(ctx context.Context, rec *store.Record, logger Logger) error {
		return d.runMachine(ctx, rec, call, logger)
	}
}

// runMachine advances the record phase by phase until a gate halts it or a
// terminal phase is reached. It mutates the record but never persists it;
// that is Run's job.
func (d *Driver) runMachine(ctx context.Context, rec *store.Record, call *callState, logger Logger) error {
	phase, runBody := startPoint(rec)
	rec.PendingCheckpoint = store.CheckpointNone

	sc := &StageContext{
		Record:           rec,
		Generator:        d.generator,
		Searcher:         d.searcher,
		Logger:           logger,
		metrics:          d.metrics,
		maxPlanRevisions: d.maxPlanRevisions,
	}
	stageFn := d.stageRunner()

	for {
		call.steps++
		if call.steps > maxMachineSteps {
			return fmt.Errorf("session %s: phase machine exceeded %d steps at %s", rec.SessionID, maxMachineSteps, phase)
		}
		if runBody {
			if err := stageFn(ctx, phase, sc); err != nil {
				return &PhaseError{Phase: phase, Err: err}
			}
		}
		runBody = true

		if cp, halt := gateHalts(phase, rec, call); halt {
			rec.Phase = phase
			rec.PendingCheckpoint = cp
			return nil
		}

		next := transition(phase, rec)
		logger.Debug("Session %s: %s -> %s", rec.SessionID, phase, next)
		if next == store.PhaseDone {
			rec.Phase = store.PhaseDone
			rec.PendingCheckpoint = store.CheckpointNone
			return nil
		}
		phase = next
	}
}

// stageRunner builds the stage dispatch function with stage middleware
// applied, first added outermost.
func (d *Driver) stageRunner() StageRunnerFunc {
	fn := func(ctx context.Context, phase store.Phase, sc *StageContext) error {
		stage, ok := stages[phase]
		if !ok {
			return fmt.Errorf("no stage registered for phase %s", phase)
		}
		return stage(ctx, sc)
	}
	for i := len(d.stageMiddleware) - 1; i >= 0; i-- {
		fn = d.stageMiddleware[i](fn)
	}
	return fn
}

func (d *Driver) countRun(mode store.Mode, outcome string) {
	if d.metrics == nil {
		return
	}
	label := string(mode)
	if label == "" {
		label = "unknown"
	}
	d.metrics.RunsTotal.WithLabelValues(label, outcome).Inc()
}

func (d *Driver) countHalt(cp store.Checkpoint) {
	if d.metrics == nil {
		return
	}
	d.metrics.CheckpointHalts.WithLabelValues(string(cp)).Inc()
}
