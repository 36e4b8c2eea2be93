package assessments

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnknownAgent = errors.New("unknown agent")
)

// AnalysisError wraps an agent failure with the agent that produced it.
// It stays inside the service boundary: HTTP callers see the failed
// status and message on the assessment record instead.
type AnalysisError struct {
	AgentKey string
	Err      error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("agent %s: %v", e.AgentKey, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }
