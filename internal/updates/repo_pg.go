package updates

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new log entry.
func (r *PGRepo) Create(ctx context.Context, entry UpdateLog) error {
	const query = `
INSERT INTO update_log (id, job_number, outcome, update_text, error_message, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.ExecContext(ctx, query,
		entry.ID,
		entry.JobNumber,
		entry.Outcome,
		entry.UpdateText,
		entry.ErrorMessage,
		entry.CreatedAt,
	)
	return err
}

// ListByJob returns entries for a job, newest first.
func (r *PGRepo) ListByJob(ctx context.Context, jobNumber string, limit int) ([]UpdateLog, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
SELECT id, job_number, outcome, update_text, error_message, created_at
FROM update_log
WHERE job_number = $1
ORDER BY created_at DESC
LIMIT $2`
	rows, err := r.DB.QueryContext(ctx, query, jobNumber, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UpdateLog
	for rows.Next() {
		var entry UpdateLog
		var updateText sql.NullString
		var errorMessage sql.NullString
		if err := rows.Scan(&entry.ID, &entry.JobNumber, &entry.Outcome, &updateText, &errorMessage, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.UpdateText = updateText.String
		entry.ErrorMessage = errorMessage.String
		out = append(out, entry)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
