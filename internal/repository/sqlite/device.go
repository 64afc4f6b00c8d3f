package sqlite

import (
	"context"
	"fmt"

	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
)

const deviceCols = `id, project_id, device_type, current_qty, proposed_qty, created_at`

func (r *SQLiteRepo) CreateDevice(ctx context.Context, d *models.ProjectDevice) error {
	if d == nil {
		return fmt.Errorf("device is nil")
	}
	d.ID = newID(d.ID)
	d.CreatedAt = now()
	_, err := r.q.ExecContext(ctx, `INSERT INTO project_devices (`+deviceCols+`) VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.ProjectID, d.DeviceType, d.CurrentQty, d.ProposedQty, d.CreatedAt)
	return err
}

func (r *SQLiteRepo) GetDevice(ctx context.Context, id string) (*models.ProjectDevice, error) {
	return getOne[models.ProjectDevice](ctx, r.q, `SELECT `+deviceCols+` FROM project_devices WHERE id = ?`, id)
}

func (r *SQLiteRepo) ListDevices(ctx context.Context) ([]models.ProjectDevice, error) {
	return list[models.ProjectDevice](ctx, r.q, `SELECT `+deviceCols+` FROM project_devices ORDER BY rowid`)
}

func (r *SQLiteRepo) ListDevicesByProject(ctx context.Context, projectID string) ([]models.ProjectDevice, error) {
	return list[models.ProjectDevice](ctx, r.q, `SELECT `+deviceCols+` FROM project_devices WHERE project_id = ? ORDER BY rowid`, projectID)
}

func (r *SQLiteRepo) UpdateDevice(ctx context.Context, d *models.ProjectDevice) error {
	if d == nil {
		return fmt.Errorf("device is nil")
	}
	_, err := r.q.ExecContext(ctx, `UPDATE project_devices SET device_type = ?, current_qty = ?, proposed_qty = ? WHERE id = ?`,
		d.DeviceType, d.CurrentQty, d.ProposedQty, d.ID)
	return err
}

func (r *SQLiteRepo) DeleteDevice(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM project_devices WHERE id = ?`, id)
	return err
}
