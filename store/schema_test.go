package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSchemaCoversWireFields(t *testing.T) {
	doc, err := RecordSchemaJSON()
	require.NoError(t, err)

	for _, field := range []string{
		"session_id", "mode", "original_request", "topic", "instructions",
		"clarification_questions", "clarification_answers", "plan",
		"plan_feedback", "plan_validated", "research_notes", "draft",
		"draft_feedback_human", "draft_approved", "critique", "saved",
		"final_draft", "final_feedback", "final_approved", "answer",
		"skip_clarification", "skip_plan_review", "skip_draft_review",
		"phase", "pending_checkpoint",
	} {
		assert.Contains(t, doc, `"`+field+`"`, "schema should describe %s", field)
	}
}

func TestRecordSchemaForbidsUnknownProperties(t *testing.T) {
	schema := RecordSchema()
	require.NotNil(t, schema)
	require.NotNil(t, schema.AdditionalProperties)
	assert.Contains(t, mustJSON(t), `"additionalProperties":false`)
}

func mustJSON(t *testing.T) string {
	t.Helper()
	doc, err := RecordSchemaJSON()
	require.NoError(t, err)
	return doc
}
