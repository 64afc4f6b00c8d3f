package sqlite

import (
	"context"
	"fmt"

	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
)

const allocationCols = `id, engineer_id, project_id, category, day, hours, feedback_status`

func (r *SQLiteRepo) CreateAllocation(ctx context.Context, a *models.Allocation) error {
	if a == nil {
		return fmt.Errorf("allocation is nil")
	}
	a.ID = newID(a.ID)
	_, err := r.q.ExecContext(ctx, `INSERT INTO allocations (`+allocationCols+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.EngineerID, a.ProjectID, a.Category, a.Day, a.Hours, a.FeedbackStatus)
	return err
}

func (r *SQLiteRepo) GetAllocation(ctx context.Context, id string) (*models.Allocation, error) {
	return getOne[models.Allocation](ctx, r.q, `SELECT `+allocationCols+` FROM allocations WHERE id = ?`, id)
}

func (r *SQLiteRepo) ListAllocations(ctx context.Context) ([]models.Allocation, error) {
	return list[models.Allocation](ctx, r.q, `SELECT `+allocationCols+` FROM allocations ORDER BY rowid`)
}

func (r *SQLiteRepo) ListAllocationsByProject(ctx context.Context, projectID string) ([]models.Allocation, error) {
	return list[models.Allocation](ctx, r.q, `SELECT `+allocationCols+` FROM allocations WHERE project_id = ? ORDER BY rowid`, projectID)
}

func (r *SQLiteRepo) ListAllocationsByEngineer(ctx context.Context, engineerID string) ([]models.Allocation, error) {
	return list[models.Allocation](ctx, r.q, `SELECT `+allocationCols+` FROM allocations WHERE engineer_id = ? ORDER BY rowid`, engineerID)
}

func (r *SQLiteRepo) UpdateAllocation(ctx context.Context, a *models.Allocation) error {
	if a == nil {
		return fmt.Errorf("allocation is nil")
	}
	_, err := r.q.ExecContext(ctx, `UPDATE allocations SET engineer_id = ?, project_id = ?, category = ?, day = ?, hours = ?, feedback_status = ? WHERE id = ?`,
		a.EngineerID, a.ProjectID, a.Category, a.Day, a.Hours, a.FeedbackStatus, a.ID)
	return err
}

func (r *SQLiteRepo) DeleteAllocation(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM allocations WHERE id = ?`, id)
	return err
}

// DeleteAllocationsByEngineer removes every allocation held by the engineer
// and reports how many rows went away.
func (r *SQLiteRepo) DeleteAllocationsByEngineer(ctx context.Context, engineerID string) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM allocations WHERE engineer_id = ?`, engineerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
