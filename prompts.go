package essayist

import (
	"fmt"
	"strings"

	"github.com/RBrouq/agentic-system/store"
)

// Personas are the system prompts of each generating stage. They are
// exported so callers scripting a StaticGenerator can key canned replies by
// stage.
const (
	PersonaClassifier = "You are an intent classifier for an essay assistant.\n" +
		"Decide if the user wants: (1) an ESSAY, or (2) a simple OPEN_QUESTION answer.\n" +
		"Return exactly one word: 'essay' or 'open_question'."

	PersonaAnalyst = "You are an assistant that extracts a clean essay TOPIC and INSTRUCTIONS " +
		"(tone, length, audience, constraints) from a user request.\n" +
		"You also propose clarification questions for the human.\n\n" +
		"Return the result as:\n" +
		"TOPIC: ...\n" +
		"INSTRUCTIONS: ...\n" +
		"CLARIFICATION_QUESTIONS:\n" +
		"- ...\n- ...\n- ..."

	PersonaPlanner = "You are an expert essay planner. " +
		"Create a clear bullet-point OUTLINE for the essay.\n" +
		"Use 3-6 main sections with short explanations."

	PersonaPlanReviser = "You are helping to revise an outline based on HUMAN FEEDBACK.\n" +
		"Improve the plan accordingly, while keeping it clear and structured."

	PersonaResearcher = "You are a research assistant. Based on the topic, outline, and any clarifications, " +
		"produce a short set of research notes (facts, arguments, references). " +
		"Do NOT write the full essay, just notes."

	PersonaWriter = "You are a senior essay writer. Write a coherent essay following the outline.\n" +
		"If there is a previous version, improve it; otherwise, draft from scratch.\n" +
		"If there is HUMAN FEEDBACK on the draft, use it to guide your improvements.\n" +
		"Aim for clarity, structure, and good academic style."

	PersonaCritic = "You are an essay critic. Evaluate the draft against the topic and instructions.\n" +
		"1) List strengths and weaknesses.\n" +
		"2) Give a quality score between 0 and 10."

	PersonaPolisher = "You are improving an essay based on critic comments and HUMAN FINAL FEEDBACK.\n" +
		"Apply the requested changes while keeping quality high."

	PersonaAssistant = "You are a helpful assistant. Answer the user question directly.\n" +
		"If the user asks for an essay-like answer, you can write a short structured reply, " +
		"but do NOT overcomplicate it."
)

func planPrompt(rec *store.Record) string {
	return fmt.Sprintf("Topic: %s\nInstructions: %s\n\nCreate the outline.",
		rec.Topic, rec.Instructions)
}

func planRevisionPrompt(rec *store.Record) string {
	return fmt.Sprintf("CURRENT PLAN:\n%s\n\nHUMAN FEEDBACK:\n%s\n\nReturn the revised plan.",
		rec.Plan, rec.PlanFeedback)
}

func researchQuery(rec *store.Record) string {
	return fmt.Sprintf("Essay topic: %s. Use this outline to guide research: %s. "+
		"Take into account these clarifications from the human (if any): %s",
		rec.Topic, rec.Plan, rec.ClarificationAnswers)
}

func draftPrompt(rec *store.Record) string {
	return fmt.Sprintf("Topic: %s\nInstructions: %s\n\nOutline:\n%s\n\nResearch notes:\n%s\n\n"+
		"Previous draft (if any):\n%s\n\nHuman feedback on draft (if any):\n%s",
		rec.Topic, rec.Instructions, rec.Plan, rec.ResearchNotes, rec.Draft, rec.DraftFeedback)
}

func critiquePrompt(rec *store.Record) string {
	return fmt.Sprintf("Topic: %s\nInstructions: %s\n\nDraft:\n%s",
		rec.Topic, rec.Instructions, rec.Draft)
}

func polishPrompt(rec *store.Record) string {
	return fmt.Sprintf("Original draft:\n%s\n\nCritique:\n%s\n\nHuman final feedback:\n%s\n\n"+
		"Produce the final improved essay.",
		rec.Draft, rec.Critique, rec.FinalFeedback)
}

// parseAnalysis splits the analyst's sectioned reply into topic,
// instructions, and clarification questions. Instructions may span several
// lines; questions are one bullet per line with any leading markers
// stripped.
func parseAnalysis(analysis string) (topic, instructions string, questions []string) {
	var section string
	for _, line := range strings.Split(analysis, "\n") {
		upper := strings.ToUpper(strings.TrimSpace(line))
		switch {
		case strings.HasPrefix(upper, "TOPIC:"):
			section = "topic"
			topic = strings.TrimSpace(line[strings.Index(line, ":")+1:])
		case strings.HasPrefix(upper, "INSTRUCTIONS:"):
			section = "instructions"
			instructions = strings.TrimSpace(line[strings.Index(line, ":")+1:])
		case strings.HasPrefix(upper, "CLARIFICATION_QUESTIONS"):
			section = "clarifications"
		default:
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			switch section {
			case "instructions":
				if instructions == "" {
					instructions = trimmed
				} else {
					instructions += " " + trimmed
				}
			case "clarifications":
				q := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(trimmed, "- "), "* "))
				if q != "" {
					questions = append(questions, q)
				}
			}
		}
	}
	return topic, instructions, questions
}
