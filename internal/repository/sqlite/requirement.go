package sqlite

import (
	"context"
	"fmt"

	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
)

const requirementCols = `id, project_id, role, hours_per_week, duration_weeks, created_at`

func (r *SQLiteRepo) CreateRequirement(ctx context.Context, req *models.ResourcingRequirement) error {
	if req == nil {
		return fmt.Errorf("requirement is nil")
	}
	req.ID = newID(req.ID)
	req.CreatedAt = now()
	_, err := r.q.ExecContext(ctx, `INSERT INTO resourcing_requirements (`+requirementCols+`) VALUES (?, ?, ?, ?, ?, ?)`,
		req.ID, req.ProjectID, req.Role, req.HoursPerWeek, req.DurationWeeks, req.CreatedAt)
	return err
}

func (r *SQLiteRepo) GetRequirement(ctx context.Context, id string) (*models.ResourcingRequirement, error) {
	return getOne[models.ResourcingRequirement](ctx, r.q, `SELECT `+requirementCols+` FROM resourcing_requirements WHERE id = ?`, id)
}

func (r *SQLiteRepo) ListRequirements(ctx context.Context) ([]models.ResourcingRequirement, error) {
	return list[models.ResourcingRequirement](ctx, r.q, `SELECT `+requirementCols+` FROM resourcing_requirements ORDER BY rowid`)
}

func (r *SQLiteRepo) ListRequirementsByProject(ctx context.Context, projectID string) ([]models.ResourcingRequirement, error) {
	return list[models.ResourcingRequirement](ctx, r.q, `SELECT `+requirementCols+` FROM resourcing_requirements WHERE project_id = ? ORDER BY rowid`, projectID)
}

func (r *SQLiteRepo) UpdateRequirement(ctx context.Context, req *models.ResourcingRequirement) error {
	if req == nil {
		return fmt.Errorf("requirement is nil")
	}
	_, err := r.q.ExecContext(ctx, `UPDATE resourcing_requirements SET role = ?, hours_per_week = ?, duration_weeks = ? WHERE id = ?`,
		req.Role, req.HoursPerWeek, req.DurationWeeks, req.ID)
	return err
}

func (r *SQLiteRepo) DeleteRequirement(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM resourcing_requirements WHERE id = ?`, id)
	return err
}
