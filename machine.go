package essayist

import (
	"github.com/RBrouq/agentic-system/store"
)

// maxMachineSteps bounds one invocation of the phase machine. The graph is
// small and its only cycles are feedback revisions, so hitting this means a
// routing bug rather than a long essay.
const maxMachineSteps = 50

// callState tracks what the current invocation supplied. Feedback fields
// are consumed from the record when a stage folds them in, so the gates
// also need to know they arrived during this call.
type callState struct {
	planFeedbackSeen  bool
	draftFeedbackSeen bool
	draftDecisionSeen bool
	steps             int
}

// linear successors; phases with conditional routing are handled in
// transition.
var successors = map[store.Phase]store.Phase{
	store.PhaseAnalyze:      store.PhasePlan,
	store.PhasePlan:         store.PhasePlanReview,
	store.PhaseResearch:     store.PhaseDraft,
	store.PhaseDraft:        store.PhaseCritic,
	store.PhaseSave:         store.PhaseFinalize,
	store.PhaseFinalize:     store.PhaseDone,
	store.PhaseOpenQuestion: store.PhaseDone,
}

// checkpoints names the gate guarding each review phase.
var checkpoints = map[store.Phase]store.Checkpoint{
	store.PhaseAnalyze:    store.CheckpointAnalysis,
	store.PhasePlanReview: store.CheckpointPlanReview,
	store.PhaseCritic:     store.CheckpointCritic,
}

// checkpointRank orders the gates along the pipeline. Human input aimed at
// a gate the session already passed is stale.
var checkpointRank = map[store.Checkpoint]int{
	store.CheckpointAnalysis:   1,
	store.CheckpointPlanReview: 2,
	store.CheckpointCritic:     3,
}

// transition returns the phase that follows phase for this record.
func transition(phase store.Phase, rec *store.Record) store.Phase {
	switch phase {
	case store.PhaseClassify:
		if rec.Mode == store.ModeOpenQuestion {
			return store.PhaseOpenQuestion
		}
		return store.PhaseAnalyze
	case store.PhasePlanReview:
		// Unconsumed feedback sends the plan back for one revision pass.
		if rec.PlanFeedback != "" {
			return store.PhasePlan
		}
		return store.PhaseResearch
	case store.PhaseCritic:
		if rec.DraftFeedback != "" {
			return store.PhaseDraft
		}
		return store.PhaseSave
	default:
		if next, ok := successors[phase]; ok {
			return next
		}
		return store.PhaseDone
	}
}

// gateHalts decides whether the session parks at phase's checkpoint. A gate
// passes when its skip flag is set, when the human field it waits for is in
// the record, or when that field arrived in this call (it may already have
// been consumed by a revision stage). The clarification gate also passes
// when the analysis produced nothing to ask.
func gateHalts(phase store.Phase, rec *store.Record, call *callState) (store.Checkpoint, bool) {
	cp, ok := checkpoints[phase]
	if !ok {
		return store.CheckpointNone, false
	}
	switch phase {
	case store.PhaseAnalyze:
		if rec.SkipClarification || rec.ClarificationAnswers != "" || len(rec.ClarificationQuestions) == 0 {
			return store.CheckpointNone, false
		}
	case store.PhasePlanReview:
		if rec.SkipPlanReview || rec.PlanFeedback != "" || call.planFeedbackSeen {
			return store.CheckpointNone, false
		}
	case store.PhaseCritic:
		if rec.SkipDraftReview || rec.DraftApproved != nil || rec.DraftFeedback != "" ||
			call.draftFeedbackSeen || call.draftDecisionSeen {
			return store.CheckpointNone, false
		}
	}
	return cp, true
}

// startPoint returns the phase an invocation enters at and whether that
// phase's stage body should run. A fresh session starts at classification.
// A halted session re-enters at its gate: the review body is pure
// bookkeeping and safe to repeat, while generation stages must not
// re-execute work the checkpoint already froze.
func startPoint(rec *store.Record) (store.Phase, bool) {
	if rec.Phase == store.PhaseNotStarted {
		return store.PhaseClassify, true
	}
	return rec.Phase, rec.Phase == store.PhasePlanReview
}
