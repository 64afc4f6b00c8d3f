package sqlite

import (
	"context"
	"fmt"

	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
)

const ridCols = `id, project_id, type, description, severity, owner, status, previous_type, created_at, updated_at`

func (r *SQLiteRepo) CreateRid(ctx context.Context, e *models.RidLogEntry) error {
	if e == nil {
		return fmt.Errorf("rid entry is nil")
	}
	e.ID = newID(e.ID)
	ts := now()
	e.CreatedAt, e.UpdatedAt = ts, ts
	_, err := r.q.ExecContext(ctx, `INSERT INTO project_rid_logs (`+ridCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ProjectID, e.Type, e.Description, e.Severity, e.Owner, e.Status, e.PreviousType, e.CreatedAt, e.UpdatedAt)
	return err
}

func (r *SQLiteRepo) GetRid(ctx context.Context, id string) (*models.RidLogEntry, error) {
	return getOne[models.RidLogEntry](ctx, r.q, `SELECT `+ridCols+` FROM project_rid_logs WHERE id = ?`, id)
}

// ListRidByProject returns the project's entries newest first.
func (r *SQLiteRepo) ListRidByProject(ctx context.Context, projectID string) ([]models.RidLogEntry, error) {
	return list[models.RidLogEntry](ctx, r.q, `SELECT `+ridCols+` FROM project_rid_logs WHERE project_id = ? ORDER BY created_at DESC, rowid DESC`, projectID)
}

func (r *SQLiteRepo) UpdateRid(ctx context.Context, e *models.RidLogEntry) error {
	if e == nil {
		return fmt.Errorf("rid entry is nil")
	}
	e.UpdatedAt = now()
	_, err := r.q.ExecContext(ctx, `UPDATE project_rid_logs SET type = ?, description = ?, severity = ?, owner = ?, status = ?, previous_type = ?, updated_at = ? WHERE id = ?`,
		e.Type, e.Description, e.Severity, e.Owner, e.Status, e.PreviousType, e.UpdatedAt, e.ID)
	return err
}

func (r *SQLiteRepo) DeleteRid(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM project_rid_logs WHERE id = ?`, id)
	return err
}
