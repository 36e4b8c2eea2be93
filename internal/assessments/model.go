package assessments

import (
	"time"

	"agents-backend/internal/engine"
)

const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Assessment represents one agent run requested by a user.
type Assessment struct {
	ID           string         `json:"id"`
	AgentKey     string         `json:"agentKey"`
	UserID       string         `json:"userId"`
	Company      string         `json:"company"`
	Status       string         `json:"status"`
	Input        engine.Input   `json:"input,omitempty"`
	Report       *engine.Report `json:"report,omitempty"`
	ErrorMessage *string        `json:"error,omitempty"`
	StartedAt    *time.Time     `json:"startedAt,omitempty"`
	CompletedAt  *time.Time     `json:"completedAt,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}
