package essayist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestNormalizeTrims(t *testing.T) {
	req := Request{
		UserInput:            "  write about bees  ",
		ClarificationAnswers: "\tParis\n",
		PlanFeedback:         " shorter ",
		DraftFeedback:        " punchier ",
		FinalFeedback:        " sign it ",
	}.Normalize()

	assert.Equal(t, "write about bees", req.UserInput)
	assert.Equal(t, "Paris", req.ClarificationAnswers)
	assert.Equal(t, "shorter", req.PlanFeedback)
	assert.Equal(t, "punchier", req.DraftFeedback)
	assert.Equal(t, "sign it", req.FinalFeedback)
}

func TestRequestValidate(t *testing.T) {
	err := Request{}.Validate()
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "user_input", vErr.Field)
	assert.Contains(t, vErr.Error(), "non-empty prompt")

	// A whitespace prompt normalizes to empty and fails the same way.
	err = Request{UserInput: "   "}.Normalize().Validate()
	assert.ErrorAs(t, err, &vErr)

	// Resume calls identify the session instead of carrying a prompt.
	assert.NoError(t, Request{SessionID: "essay-42"}.Validate())
	assert.NoError(t, Request{UserInput: "write about bees"}.Validate())
}

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest([]byte(`{
		"user_input": "write about bees",
		"session_id": "essay-42",
		"clarification_answers": "Paris",
		"plan_feedback": "shorter",
		"draft_feedback_human": "punchier",
		"draft_approved": true,
		"final_feedback": "sign it",
		"skip_clarification": true,
		"skip_plan_review": true,
		"skip_draft_review": true
	}`))
	require.NoError(t, err)

	assert.Equal(t, "write about bees", req.UserInput)
	assert.Equal(t, "essay-42", req.SessionID)
	assert.Equal(t, "Paris", req.ClarificationAnswers)
	assert.Equal(t, "shorter", req.PlanFeedback)
	assert.Equal(t, "punchier", req.DraftFeedback)
	require.NotNil(t, req.DraftApproved)
	assert.True(t, *req.DraftApproved)
	assert.Equal(t, "sign it", req.FinalFeedback)
	assert.True(t, req.SkipClarification)
	assert.True(t, req.SkipPlanReview)
	assert.True(t, req.SkipDraftReview)
}

func TestParseRequestAbsentApprovalStaysNil(t *testing.T) {
	req, err := ParseRequest([]byte(`{"user_input": "write about bees"}`))
	require.NoError(t, err)
	assert.Nil(t, req.DraftApproved, "absent approval is not the same as false")
}

func TestParseRequestRejectsUnknownFields(t *testing.T) {
	_, err := ParseRequest([]byte(`{"user_input": "write about bees", "draft_feedback": "typo"}`))
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "draft_feedback", vErr.Field)
	assert.Equal(t, "unknown field", vErr.Reason)
}

func TestParseRequestRejectsMalformedJSON(t *testing.T) {
	_, err := ParseRequest([]byte(`{"user_input":`))
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "request", vErr.Field)
}
