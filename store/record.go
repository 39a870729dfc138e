package store

import (
	"fmt"
	"time"
)

// Mode is the classified intent of a session.
type Mode string

const (
	// ModeUnknown means classification has not happened yet.
	ModeUnknown Mode = ""
	// ModeEssay runs the full outline/research/draft pipeline.
	ModeEssay Mode = "essay"
	// ModeOpenQuestion answers directly without the essay pipeline.
	ModeOpenQuestion Mode = "open_question"
)

// Phase identifies a state of the workflow machine. A persisted record
// always carries the phase execution should enter next, so resuming a
// session is a table lookup rather than a replay of earlier phases.
type Phase string

const (
	PhaseNotStarted   Phase = "not_started"
	PhaseClassify     Phase = "classify"
	PhaseAnalyze      Phase = "analyze"
	PhasePlan         Phase = "plan"
	PhasePlanReview   Phase = "plan_review"
	PhaseResearch     Phase = "research"
	PhaseDraft        Phase = "draft"
	PhaseCritic       Phase = "critic"
	PhaseSave         Phase = "save"
	PhaseFinalize     Phase = "finalize"
	PhaseOpenQuestion Phase = "open_question"
	PhaseDone         Phase = "done"
)

// Valid reports whether p is one of the known workflow phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseNotStarted, PhaseClassify, PhaseAnalyze, PhasePlan, PhasePlanReview,
		PhaseResearch, PhaseDraft, PhaseCritic, PhaseSave, PhaseFinalize,
		PhaseOpenQuestion, PhaseDone:
		return true
	}
	return false
}

// Terminal reports whether the workflow has nothing left to execute.
func (p Phase) Terminal() bool {
	return p == PhaseDone
}

// Checkpoint names a human review gate. CheckpointNone means the session is
// not waiting on anybody.
type Checkpoint string

const (
	CheckpointNone       Checkpoint = "none"
	CheckpointAnalysis   Checkpoint = "after_analysis"
	CheckpointPlanReview Checkpoint = "after_plan_review"
	CheckpointCritic     Checkpoint = "after_critic"
)

// Valid reports whether c is one of the known checkpoints.
func (c Checkpoint) Valid() bool {
	switch c {
	case CheckpointNone, CheckpointAnalysis, CheckpointPlanReview, CheckpointCritic:
		return true
	}
	return false
}

// Record is the complete persisted state of one writing session. Every field
// the stages produce lives here; a snapshot of it is what an invocation
// returns to the caller. JSON tags define the stored wire format.
type Record struct {
	SessionID       string `json:"session_id"`
	Mode            Mode   `json:"mode,omitempty"`
	OriginalRequest string `json:"original_request"`

	Topic                  string   `json:"topic,omitempty"`
	Instructions           string   `json:"instructions,omitempty"`
	ClarificationQuestions []string `json:"clarification_questions,omitempty"`
	ClarificationAnswers   string   `json:"clarification_answers,omitempty"`
	ClarificationsUsed     bool     `json:"clarifications_used,omitempty"`

	Plan          string `json:"plan,omitempty"`
	PlanFeedback  string `json:"plan_feedback,omitempty"`
	PlanValidated bool   `json:"plan_validated,omitempty"`
	PlanRevisions int    `json:"plan_revisions,omitempty"`

	ResearchNotes string `json:"research_notes,omitempty"`

	Draft         string `json:"draft,omitempty"`
	DraftFeedback string `json:"draft_feedback_human,omitempty"`
	DraftApproved *bool  `json:"draft_approved,omitempty"`
	Critique      string `json:"critique,omitempty"`

	Saved         bool   `json:"saved,omitempty"`
	FinalDraft    string `json:"final_draft,omitempty"`
	FinalFeedback string `json:"final_feedback,omitempty"`
	FinalApproved bool   `json:"final_approved,omitempty"`

	Answer string `json:"answer,omitempty"`

	SkipClarification bool `json:"skip_clarification,omitempty"`
	SkipPlanReview    bool `json:"skip_plan_review,omitempty"`
	SkipDraftReview   bool `json:"skip_draft_review,omitempty"`

	Phase             Phase      `json:"phase"`
	PendingCheckpoint Checkpoint `json:"pending_checkpoint"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRecord returns a fresh record for a session that has not run yet.
func NewRecord(sessionID string) *Record {
	now := time.Now().UTC()
	return &Record{
		SessionID:         sessionID,
		Phase:             PhaseNotStarted,
		PendingCheckpoint: CheckpointNone,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Clone returns a deep copy of the record. Stores clone on both load and
// save so no caller can mutate a persisted snapshot through a shared
// pointer.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	if r.ClarificationQuestions != nil {
		c.ClarificationQuestions = append([]string(nil), r.ClarificationQuestions...)
	}
	if r.DraftApproved != nil {
		v := *r.DraftApproved
		c.DraftApproved = &v
	}
	return &c
}

// Halted reports whether the session is parked at a human review gate.
func (r *Record) Halted() bool {
	return r.PendingCheckpoint != CheckpointNone
}

// Done reports whether the session reached a terminal phase.
func (r *Record) Done() bool {
	return r.Phase.Terminal()
}

// Validate checks the structural invariants a record must satisfy before it
// may be persisted.
func (r *Record) Validate() error {
	if r.SessionID == "" {
		return fmt.Errorf("%w: empty session id", ErrInvalidRecord)
	}
	if !r.Phase.Valid() {
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidRecord, r.Phase)
	}
	if !r.PendingCheckpoint.Valid() {
		return fmt.Errorf("%w: unknown checkpoint %q", ErrInvalidRecord, r.PendingCheckpoint)
	}
	if r.PendingCheckpoint == CheckpointNone && !r.Phase.Terminal() && r.Phase != PhaseNotStarted {
		return fmt.Errorf("%w: phase %q persisted without a pending checkpoint", ErrInvalidRecord, r.Phase)
	}
	if r.PendingCheckpoint != CheckpointNone && (r.Phase.Terminal() || r.Phase == PhaseNotStarted) {
		return fmt.Errorf("%w: phase %q cannot hold checkpoint %q", ErrInvalidRecord, r.Phase, r.PendingCheckpoint)
	}
	return nil
}
