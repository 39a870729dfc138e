package essayist

import (
	"context"
	"fmt"
	"strings"

	"github.com/RBrouq/agentic-system/capability"
	"github.com/RBrouq/agentic-system/store"
)

// NoResearchNote is stored as the research notes when both web search and
// model synthesis failed. The writer still proceeds; the marker tells it
// (and any later reader) that no sources back the draft.
const NoResearchNote = "No research notes available: web search and model synthesis both failed."

// synthesizedNote is appended to research notes produced without live web
// sources, so drafts built on them carry the caveat forward.
const synthesizedNote = "[Note: web search was unavailable; these notes were synthesized from model knowledge and may be incomplete or outdated.]"

// StageContext is what a stage invocation sees: the working record plus the
// capabilities and limits the driver was built with. Stages mutate the
// record in place; the driver decides when it is persisted.
type StageContext struct {
	Record    *store.Record
	Generator capability.Generator
	Searcher  capability.Searcher
	Logger    Logger

	metrics          *Metrics
	maxPlanRevisions int
}

// degraded records that a stage fell back to reduced output because a
// capability failed. Soft-failure stages call this instead of returning the
// error.
func (sc *StageContext) degraded(phase store.Phase, err error) {
	sc.Logger.Warn("Session %s: %s degraded, continuing without it: %v", sc.Record.SessionID, phase, err)
	if sc.metrics != nil {
		sc.metrics.CapabilityFallbacks.WithLabelValues(string(phase)).Inc()
	}
}

type stageFunc func(ctx context.Context, sc *StageContext) error

// stages maps each phase to its body. Terminal and pseudo phases have no
// entry; the machine never dispatches them.
var stages = map[store.Phase]stageFunc{
	store.PhaseClassify:     stageClassify,
	store.PhaseAnalyze:      stageAnalyze,
	store.PhasePlan:         stagePlan,
	store.PhasePlanReview:   stagePlanReview,
	store.PhaseResearch:     stageResearch,
	store.PhaseDraft:        stageDraft,
	store.PhaseCritic:       stageCritic,
	store.PhaseSave:         stageSave,
	store.PhaseFinalize:     stageFinalize,
	store.PhaseOpenQuestion: stageOpenQuestion,
}

// stageClassify decides whether the request wants a full essay or a direct
// answer. Classification happens once per session; a failure here is fatal
// because every later phase depends on the mode.
func stageClassify(ctx context.Context, sc *StageContext) error {
	rec := sc.Record
	if rec.Mode != store.ModeUnknown {
		sc.Logger.Debug("Session %s already classified as %s", rec.SessionID, rec.Mode)
		return nil
	}
	reply, err := sc.Generator.Generate(ctx, PersonaClassifier, rec.OriginalRequest)
	if err != nil {
		return fmt.Errorf("classifying request: %w", err)
	}
	switch reply := strings.ToLower(strings.TrimSpace(reply)); {
	case strings.Contains(reply, "essay"):
		rec.Mode = store.ModeEssay
	case strings.Contains(reply, "open"):
		rec.Mode = store.ModeOpenQuestion
	default:
		// Ambiguous classification leans toward the richer pipeline.
		sc.Logger.Warn("Session %s: unrecognized classification %q, treating as essay", rec.SessionID, reply)
		rec.Mode = store.ModeEssay
	}
	sc.Logger.Info("Session %s classified as %s", rec.SessionID, rec.Mode)
	return nil
}

// stageAnalyze extracts the topic, writing instructions and clarification
// questions from the request. The analyst failing is survivable: the raw
// request becomes the topic and no questions are asked.
func stageAnalyze(ctx context.Context, sc *StageContext) error {
	rec := sc.Record
	analysis, err := sc.Generator.Generate(ctx, PersonaAnalyst, rec.OriginalRequest)
	if err != nil {
		sc.degraded(store.PhaseAnalyze, err)
		rec.Topic = strings.TrimSpace(rec.OriginalRequest)
		rec.Instructions = ""
		rec.ClarificationQuestions = nil
		return nil
	}
	topic, instructions, questions := parseAnalysis(analysis)
	if topic == "" {
		topic = strings.TrimSpace(rec.OriginalRequest)
	}
	rec.Topic = topic
	rec.Instructions = instructions
	rec.ClarificationQuestions = questions
	sc.Logger.Debug("Session %s analyzed: topic=%q questions=%d", rec.SessionID, rec.Topic, len(questions))
	return nil
}

// stagePlan produces the essay outline. When reviewer feedback is waiting
// and a plan already exists this is a revision pass: the feedback is folded
// into the existing plan and consumed so the review gate does not loop on
// it.
func stagePlan(ctx context.Context, sc *StageContext) error {
	rec := sc.Record
	if rec.PlanFeedback != "" && rec.Plan != "" {
		revised, err := sc.Generator.Generate(ctx, PersonaPlanReviser, planRevisionPrompt(rec))
		if err != nil {
			return fmt.Errorf("revising plan: %w", err)
		}
		rec.Plan = revised
		rec.PlanRevisions++
		rec.PlanFeedback = ""
		sc.Logger.Info("Session %s: plan revised (revision %d)", rec.SessionID, rec.PlanRevisions)
		return nil
	}
	plan, err := sc.Generator.Generate(ctx, PersonaPlanner, planPrompt(rec))
	if err != nil {
		return fmt.Errorf("planning essay: %w", err)
	}
	rec.Plan = plan
	return nil
}

// stagePlanReview is the bookkeeping half of plan review; the human half is
// the checkpoint gate that follows it. Once the revision budget is spent,
// remaining feedback is dropped and the current plan stands.
func stagePlanReview(_ context.Context, sc *StageContext) error {
	rec := sc.Record
	if rec.PlanFeedback != "" && rec.PlanRevisions >= sc.maxPlanRevisions {
		sc.Logger.Warn("Session %s: plan revision limit (%d) reached, keeping current plan", rec.SessionID, sc.maxPlanRevisions)
		rec.PlanFeedback = ""
	}
	rec.PlanValidated = true
	return nil
}

// stageResearch gathers notes for the draft. Research never fails the
// session: a dead searcher just leaves a marker explaining that the draft
// has no sources behind it.
func stageResearch(ctx context.Context, sc *StageContext) error {
	rec := sc.Record
	rec.ClarificationsUsed = strings.TrimSpace(rec.ClarificationAnswers) != ""
	query := researchQuery(rec)
	snippets, err := sc.Searcher.Search(ctx, query)
	if err != nil {
		sc.degraded(store.PhaseResearch, err)
		rec.ResearchNotes = NoResearchNote
		return nil
	}
	rec.ResearchNotes = formatResearchNotes(query, snippets)
	sc.Logger.Debug("Session %s researched: %d snippets", rec.SessionID, len(snippets))
	return nil
}

// formatResearchNotes renders search results into the notes block the
// writer consumes. Notes synthesized without web access are labelled so the
// caveat survives into later phases.
func formatResearchNotes(query string, snippets []capability.Snippet) string {
	synthesized := true
	for _, s := range snippets {
		if s.Source == capability.SourceWeb {
			synthesized = false
			break
		}
	}
	var b strings.Builder
	if synthesized {
		b.WriteString("Model-synthesized research notes:\n\n")
	} else {
		b.WriteString("Web research results:\n\n")
	}
	fmt.Fprintf(&b, "Query: %s\n\n", query)
	for _, s := range snippets {
		switch {
		case s.Title != "" && s.URL != "":
			fmt.Fprintf(&b, "- %s (%s)\n  %s\n", s.Title, s.URL, s.Content)
		case s.Title != "":
			fmt.Fprintf(&b, "- %s\n  %s\n", s.Title, s.Content)
		default:
			fmt.Fprintf(&b, "- %s\n", s.Content)
		}
	}
	if synthesized {
		b.WriteString("\n" + synthesizedNote)
	}
	return strings.TrimRight(b.String(), "\n")
}

// stageDraft writes (or rewrites) the essay. Pending reviewer feedback is
// folded into the prompt and then consumed, so each round of feedback buys
// exactly one rewrite.
func stageDraft(ctx context.Context, sc *StageContext) error {
	rec := sc.Record
	draft, err := sc.Generator.Generate(ctx, PersonaWriter, draftPrompt(rec))
	if err != nil {
		return fmt.Errorf("writing draft: %w", err)
	}
	rec.Draft = draft
	rec.DraftFeedback = ""
	return nil
}

// stageCritic reviews the draft. The critique is advisory: when the critic
// is unavailable the draft simply goes to the human without one.
func stageCritic(ctx context.Context, sc *StageContext) error {
	rec := sc.Record
	critique, err := sc.Generator.Generate(ctx, PersonaCritic, critiquePrompt(rec))
	if err != nil {
		sc.degraded(store.PhaseCritic, err)
		rec.Critique = ""
		return nil
	}
	rec.Critique = critique
	return nil
}

// stageSave marks the accepted draft as the frozen intermediate result.
// The driver persists the whole record at every halt, so this is a status
// flip rather than an extra write.
func stageSave(_ context.Context, sc *StageContext) error {
	sc.Record.Saved = true
	sc.Logger.Info("Session %s: draft accepted and saved", sc.Record.SessionID)
	return nil
}

// stageFinalize produces the deliverable. With final feedback present the
// polisher applies it; a polisher failure falls back to shipping the
// accepted draft unchanged.
func stageFinalize(ctx context.Context, sc *StageContext) error {
	rec := sc.Record
	if rec.FinalFeedback != "" {
		polished, err := sc.Generator.Generate(ctx, PersonaPolisher, polishPrompt(rec))
		if err != nil {
			sc.degraded(store.PhaseFinalize, err)
			rec.FinalDraft = rec.Draft
		} else {
			rec.FinalDraft = polished
		}
	} else {
		rec.FinalDraft = rec.Draft
	}
	rec.FinalApproved = true
	rec.Answer = rec.FinalDraft
	return nil
}

// stageOpenQuestion answers a non-essay request directly, bypassing the
// whole essay pipeline and every checkpoint.
func stageOpenQuestion(ctx context.Context, sc *StageContext) error {
	rec := sc.Record
	answer, err := sc.Generator.Generate(ctx, PersonaAssistant, rec.OriginalRequest)
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}
	rec.Answer = answer
	return nil
}
