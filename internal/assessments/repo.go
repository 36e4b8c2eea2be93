package assessments

import (
	"context"
	"time"

	"agents-backend/internal/engine"
)

// Repo defines persistence operations for assessments.
type Repo interface {
	Create(ctx context.Context, assessment Assessment) error
	GetByID(ctx context.Context, assessmentID string) (Assessment, error)
	UpdateStatus(ctx context.Context, assessmentID, status string, report *engine.Report, errorMessage *string, startedAt, completedAt *time.Time) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Assessment, error)
}
