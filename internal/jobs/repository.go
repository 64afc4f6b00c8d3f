package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/philipcowcer-eng/LoadBalance/internal/db"
)

// Repository persists jobs in the jobs and dead_letter_jobs tables.
// Timestamps are unix milliseconds.
type Repository struct {
	db  *db.DB
	now func() time.Time
}

func NewRepository(d *db.DB) *Repository { return &Repository{db: d, now: time.Now} }

type jobRow struct {
	ID          int64          `db:"id"`
	Type        string         `db:"type"`
	Payload     string         `db:"payload"`
	Status      string         `db:"status"`
	RetryCount  int            `db:"retry_count"`
	MaxRetries  int            `db:"max_retries"`
	LastError   sql.NullString `db:"last_error"`
	ScheduledAt int64          `db:"scheduled_at"`
	CreatedAt   int64          `db:"created_at"`
	UpdatedAt   int64          `db:"updated_at"`
}

func (r jobRow) job() *Job {
	return &Job{
		ID:          r.ID,
		Type:        r.Type,
		Payload:     json.RawMessage(r.Payload),
		Status:      r.Status,
		RetryCount:  r.RetryCount,
		MaxRetries:  r.MaxRetries,
		LastError:   r.LastError.String,
		ScheduledAt: time.UnixMilli(r.ScheduledAt),
		CreatedAt:   time.UnixMilli(r.CreatedAt),
		UpdatedAt:   time.UnixMilli(r.UpdatedAt),
	}
}

const jobCols = `id, type, payload, status, retry_count, max_retries, last_error, scheduled_at, created_at, updated_at`

// Enqueue inserts a job into the jobs table and returns the new ID
func (r *Repository) Enqueue(ctx context.Context, j *Job) (int64, error) {
	if j.MaxRetries == 0 {
		j.MaxRetries = 3
	}
	if len(j.Payload) == 0 {
		j.Payload = json.RawMessage(`{}`)
	}
	now := r.now().UTC()
	if j.ScheduledAt.IsZero() {
		j.ScheduledAt = now
	}
	res, err := r.db.Exec(ctx,
		`INSERT INTO jobs (type, payload, status, retry_count, max_retries, scheduled_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		j.Type, string(j.Payload), StatusQueued, j.RetryCount, j.MaxRetries, j.ScheduledAt.UnixMilli(), now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("enqueue failed: %w", err)
	}
	return res.LastInsertId()
}

// FetchNext claims the oldest due job by marking it running. It returns
// nil when nothing is due.
func (r *Repository) FetchNext(ctx context.Context) (*Job, error) {
	now := r.now().UTC().UnixMilli()
	var row jobRow
	err := sqlx.GetContext(ctx, r.db.X(), &row, `UPDATE jobs SET status = ?, updated_at = ?
		WHERE id = (
			SELECT id FROM jobs WHERE status IN (?, ?) AND scheduled_at <= ?
			ORDER BY scheduled_at, id LIMIT 1
		)
		RETURNING `+jobCols, StatusRunning, now, StatusQueued, StatusRetry, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch next job: %w", err)
	}
	return row.job(), nil
}

// UpdateJob stores status, retry count, schedule and last error.
func (r *Repository) UpdateJob(ctx context.Context, j *Job) error {
	var lastErr any
	if j.LastError != "" {
		lastErr = j.LastError
	}
	_, err := r.db.Exec(ctx, `UPDATE jobs SET status = ?, retry_count = ?, scheduled_at = ?, last_error = ?, updated_at = ? WHERE id = ?`,
		j.Status, j.RetryCount, j.ScheduledAt.UTC().UnixMilli(), lastErr, r.now().UTC().UnixMilli(), j.ID)
	return err
}

// Get returns a job by id, or nil when it no longer exists.
func (r *Repository) Get(ctx context.Context, id int64) (*Job, error) {
	var row jobRow
	err := sqlx.GetContext(ctx, r.db.X(), &row, `SELECT `+jobCols+` FROM jobs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.job(), nil
}

// Pending counts jobs of typ that have not finished.
func (r *Repository) Pending(ctx context.Context, typ string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db.X(), &n, `SELECT count(*) FROM jobs WHERE type = ? AND status IN (?, ?, ?)`,
		typ, StatusQueued, StatusRunning, StatusRetry)
	return n, err
}

// RequeueRunning returns jobs stuck in the running state to the queue. A job
// is only running while a worker of this process holds it, so any running
// row seen before the workers start was abandoned.
func (r *Repository) RequeueRunning(ctx context.Context) (int64, error) {
	res, err := r.db.Exec(ctx, `UPDATE jobs SET status = ?, updated_at = ? WHERE status = ?`,
		StatusQueued, r.now().UTC().UnixMilli(), StatusRunning)
	if err != nil {
		return 0, fmt.Errorf("requeue running jobs: %w", err)
	}
	return res.RowsAffected()
}

// DeleteDone removes finished jobs of typ.
func (r *Repository) DeleteDone(ctx context.Context, typ string) (int64, error) {
	res, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE type = ? AND status = ?`, typ, StatusDone)
	if err != nil {
		return 0, fmt.Errorf("delete finished jobs: %w", err)
	}
	return res.RowsAffected()
}

// DeadLetter is a job that exhausted its retries.
type DeadLetter struct {
	ID         int64          `db:"id"`
	JobID      int64          `db:"job_id"`
	Type       string         `db:"type"`
	Payload    string         `db:"payload"`
	LastError  sql.NullString `db:"last_error"`
	RetryCount int            `db:"retry_count"`
	FailedAt   int64          `db:"failed_at"`
}

func (r *Repository) DeadLetters(ctx context.Context) ([]DeadLetter, error) {
	var out []DeadLetter
	err := sqlx.SelectContext(ctx, r.db.X(), &out, `SELECT id, job_id, type, payload, last_error, retry_count, failed_at FROM dead_letter_jobs ORDER BY id`)
	return out, err
}

// MoveToDeadLetter moves a job to dead_letter_jobs and deletes the original
func (r *Repository) MoveToDeadLetter(ctx context.Context, j *Job) error {
	return r.db.InTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO dead_letter_jobs (job_id, type, payload, last_error, retry_count, failed_at) VALUES (?, ?, ?, ?, ?, ?)`,
			j.ID, j.Type, string(j.Payload), j.LastError, j.RetryCount, r.now().UTC().UnixMilli()); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, j.ID)
		return err
	})
}
