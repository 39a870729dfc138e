package essayist

import (
	"fmt"

	"github.com/RBrouq/agentic-system/store"
)

// ValidationError reports a request the driver refused to run. It never
// reaches the session store; the caller fixes the input and retries.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

// PhaseError reports which workflow phase an invocation died in. The wrapped
// error is usually a *capability.Error; the session store still holds the
// snapshot from before the failed phase, so the session can be resumed once
// the capability recovers.
type PhaseError struct {
	Phase store.Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("phase %s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}
