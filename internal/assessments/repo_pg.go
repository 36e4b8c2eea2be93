package assessments

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"agents-backend/internal/engine"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new assessment.
func (r *PGRepo) Create(ctx context.Context, assessment Assessment) error {
	const query = `
INSERT INTO assessments (id, agent_key, user_id, company, status, input, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	inputPayload, err := marshalJSONB(assessment.Input)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		assessment.ID,
		assessment.AgentKey,
		assessment.UserID,
		assessment.Company,
		assessment.Status,
		inputPayload,
		assessment.CreatedAt,
	)
	return err
}

// GetByID returns an assessment by ID.
func (r *PGRepo) GetByID(ctx context.Context, assessmentID string) (Assessment, error) {
	const query = `
SELECT id, agent_key, user_id, company, status, input, report, error_message,
       started_at, completed_at, created_at, updated_at
FROM assessments
WHERE id = $1
LIMIT 1`

	row := r.DB.QueryRowContext(ctx, query, assessmentID)
	a, err := scanAssessment(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Assessment{}, ErrNotFound
		}
		return Assessment{}, err
	}
	return a, nil
}

// UpdateStatus updates status, report and error fields plus timestamps.
func (r *PGRepo) UpdateStatus(ctx context.Context, assessmentID, status string, report *engine.Report, errorMessage *string, startedAt, completedAt *time.Time) error {
	const query = `
UPDATE assessments
SET status = $1,
    report = COALESCE($2::jsonb, report),
    error_message = COALESCE($3::text, error_message),
    started_at = CASE
        WHEN $4::timestamptz IS NOT NULL THEN $4::timestamptz
        WHEN $1 = 'processing' AND started_at IS NULL THEN now()
        ELSE started_at
    END,
    completed_at = CASE
        WHEN $5::timestamptz IS NOT NULL THEN $5::timestamptz
        WHEN ($1 = 'completed' OR $1 = 'failed') AND completed_at IS NULL THEN now()
        ELSE completed_at
    END,
    updated_at = now()
WHERE id = $6::uuid`

	var payload any
	if report != nil {
		data, err := json.Marshal(report)
		if err != nil {
			return err
		}
		payload = data
	}

	res, err := r.DB.ExecContext(ctx, query, status, payload, errorMessage, startedAt, completedAt, assessmentID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser lists assessments for a user ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Assessment, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	const query = `
SELECT id, agent_key, user_id, company, status, input, report, error_message,
       started_at, completed_at, created_at, updated_at
FROM assessments
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Assessment
	for rows.Next() {
		a, err := scanAssessment(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)

func scanAssessment(scan func(dest ...any) error) (Assessment, error) {
	var a Assessment
	var input sql.NullString
	var report sql.NullString
	var errorMessage sql.NullString
	var startedAt sql.NullTime
	var completedAt sql.NullTime
	if err := scan(
		&a.ID,
		&a.AgentKey,
		&a.UserID,
		&a.Company,
		&a.Status,
		&input,
		&report,
		&errorMessage,
		&startedAt,
		&completedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return Assessment{}, err
	}
	if input.Valid {
		a.Input = engine.Input{}
		if err := json.Unmarshal([]byte(input.String), &a.Input); err != nil {
			a.Input = nil
		}
	}
	if report.Valid {
		var rep engine.Report
		if err := json.Unmarshal([]byte(report.String), &rep); err == nil {
			a.Report = &rep
		}
	}
	if errorMessage.Valid {
		a.ErrorMessage = &errorMessage.String
	}
	if startedAt.Valid {
		a.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		a.CompletedAt = &completedAt.Time
	}
	return a, nil
}

func marshalJSONB(value any) ([]byte, error) {
	if value == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(value)
}
