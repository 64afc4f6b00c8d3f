package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
)

const projectCols = `id, name, project_number, project_site, priority, status, owner_id, manager_id,
	rag_status, rag_reason, percent_complete, business_justification, start_date, target_end_date,
	workflow_status, project_type, size, fiscal_year, device_count, device_type,
	latest_status_update, status_updated_at, created_at, updated_at`

func (r *SQLiteRepo) CreateProject(ctx context.Context, p *models.Project) error {
	if p == nil {
		return fmt.Errorf("project is nil")
	}
	p.ID = newID(p.ID)
	ts := now()
	p.CreatedAt, p.UpdatedAt = ts, ts
	_, err := sqlx.NamedExecContext(ctx, r.q, `INSERT INTO projects (`+projectCols+`) VALUES (
		:id, :name, :project_number, :project_site, :priority, :status, :owner_id, :manager_id,
		:rag_status, :rag_reason, :percent_complete, :business_justification, :start_date, :target_end_date,
		:workflow_status, :project_type, :size, :fiscal_year, :device_count, :device_type,
		:latest_status_update, :status_updated_at, :created_at, :updated_at)`, p)
	return err
}

func (r *SQLiteRepo) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return getOne[models.Project](ctx, r.q, `SELECT `+projectCols+` FROM projects WHERE id = ?`, id)
}

func (r *SQLiteRepo) GetProjectByName(ctx context.Context, name string) (*models.Project, error) {
	return getOne[models.Project](ctx, r.q, `SELECT `+projectCols+` FROM projects WHERE name = ? ORDER BY rowid LIMIT 1`, name)
}

func (r *SQLiteRepo) ListProjects(ctx context.Context) ([]models.Project, error) {
	return list[models.Project](ctx, r.q, `SELECT `+projectCols+` FROM projects ORDER BY rowid`)
}

// UpdateProject overwrites every mutable column and bumps updated_at.
func (r *SQLiteRepo) UpdateProject(ctx context.Context, p *models.Project) error {
	if p == nil {
		return fmt.Errorf("project is nil")
	}
	p.UpdatedAt = now()
	_, err := sqlx.NamedExecContext(ctx, r.q, `UPDATE projects SET
		name = :name, project_number = :project_number, project_site = :project_site,
		priority = :priority, status = :status, owner_id = :owner_id, manager_id = :manager_id,
		rag_status = :rag_status, rag_reason = :rag_reason, percent_complete = :percent_complete,
		business_justification = :business_justification, start_date = :start_date,
		target_end_date = :target_end_date, workflow_status = :workflow_status,
		project_type = :project_type, size = :size, fiscal_year = :fiscal_year,
		device_count = :device_count, device_type = :device_type,
		latest_status_update = :latest_status_update, status_updated_at = :status_updated_at,
		updated_at = :updated_at
		WHERE id = :id`, p)
	return err
}
