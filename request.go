package essayist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Request is one invocation of the workflow. UserInput starts a session;
// SessionID resumes one; the remaining fields carry the human's answers to
// whichever checkpoint the session is waiting on, plus the per-call skip
// flags.
//
// Human fields are merged by presence: an absent field never clears what a
// previous call supplied.
type Request struct {
	UserInput string `json:"user_input" validate:"required_without=SessionID"`
	SessionID string `json:"session_id,omitempty"`

	ClarificationAnswers string `json:"clarification_answers,omitempty"`
	PlanFeedback         string `json:"plan_feedback,omitempty"`
	DraftFeedback        string `json:"draft_feedback_human,omitempty"`
	DraftApproved        *bool  `json:"draft_approved,omitempty"`
	FinalFeedback        string `json:"final_feedback,omitempty"`

	SkipClarification bool `json:"skip_clarification,omitempty"`
	SkipPlanReview    bool `json:"skip_plan_review,omitempty"`
	SkipDraftReview   bool `json:"skip_draft_review,omitempty"`
}

var validate = validator.New()

// Normalize trims surrounding whitespace from the free-text fields so a
// prompt of spaces does not count as input.
func (r Request) Normalize() Request {
	r.UserInput = strings.TrimSpace(r.UserInput)
	r.ClarificationAnswers = strings.TrimSpace(r.ClarificationAnswers)
	r.PlanFeedback = strings.TrimSpace(r.PlanFeedback)
	r.DraftFeedback = strings.TrimSpace(r.DraftFeedback)
	r.FinalFeedback = strings.TrimSpace(r.FinalFeedback)
	return r
}

// Validate checks the request before the driver touches any session state.
func (r Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			if first.Field() == "UserInput" {
				return &ValidationError{Field: "user_input", Reason: "a new session needs a non-empty prompt"}
			}
			return &ValidationError{
				Field:  strings.ToLower(first.Field()),
				Reason: fmt.Sprintf("failed %q rule", first.Tag()),
			}
		}
		return &ValidationError{Field: "request", Reason: err.Error()}
	}
	return nil
}

// ParseRequest decodes a JSON request, rejecting unknown keys instead of
// silently dropping them. A misspelled field name would otherwise read as
// "the human supplied nothing" and leave a session stuck at its checkpoint.
func ParseRequest(data []byte) (Request, error) {
	var req Request
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if field, ok := unknownField(err); ok {
			return Request{}, &ValidationError{Field: field, Reason: "unknown field"}
		}
		return Request{}, &ValidationError{Field: "request", Reason: err.Error()}
	}
	return req, nil
}

// unknownField extracts the offending key from encoding/json's unknown
// field error.
func unknownField(err error) (string, bool) {
	const marker = "unknown field "
	msg := err.Error()
	i := strings.Index(msg, marker)
	if i < 0 {
		return "", false
	}
	return strings.Trim(msg[i+len(marker):], `"`), true
}
