package assessments

import (
	"context"
	"sort"
	"sync"
	"time"

	"agents-backend/internal/engine"
)

// MemoryRepo stores assessments in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]Assessment
	byUser map[string][]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]Assessment),
		byUser: make(map[string][]string),
	}
}

// Create stores the assessment.
func (r *MemoryRepo) Create(ctx context.Context, assessment Assessment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[assessment.ID] = assessment
	r.byUser[assessment.UserID] = append(r.byUser[assessment.UserID], assessment.ID)
	return nil
}

// GetByID returns an assessment by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, assessmentID string) (Assessment, error) {
	if err := ctx.Err(); err != nil {
		return Assessment{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	assessment, ok := r.byID[assessmentID]
	if !ok {
		return Assessment{}, ErrNotFound
	}
	return assessment, nil
}

// UpdateStatus updates status, report and error fields plus timestamps.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, assessmentID, status string, report *engine.Report, errorMessage *string, startedAt, completedAt *time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	assessment, ok := r.byID[assessmentID]
	if !ok {
		return ErrNotFound
	}
	assessment.Status = status
	if report != nil {
		assessment.Report = report
	}
	if errorMessage != nil {
		assessment.ErrorMessage = errorMessage
	}
	if startedAt != nil {
		assessment.StartedAt = startedAt
	} else if status == StatusProcessing && assessment.StartedAt == nil {
		now := time.Now().UTC()
		assessment.StartedAt = &now
	}
	if completedAt != nil {
		assessment.CompletedAt = completedAt
	} else if (status == StatusCompleted || status == StatusFailed) && assessment.CompletedAt == nil {
		now := time.Now().UTC()
		assessment.CompletedAt = &now
	}
	assessment.UpdatedAt = time.Now().UTC()
	r.byID[assessmentID] = assessment
	return nil
}

// ListByUser returns assessments for a user, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	ids := r.byUser[userID]
	out := make([]Assessment, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.byID[id])
	}
	r.mu.RUnlock()

	if len(out) == 0 || offset >= len(out) {
		return []Assessment{}, nil
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

var _ Repo = (*MemoryRepo)(nil)
