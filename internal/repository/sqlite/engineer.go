package sqlite

import (
	"context"
	"fmt"

	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
)

const engineerCols = `id, name, role, total_capacity, ktlo_tax`

func (r *SQLiteRepo) CreateEngineer(ctx context.Context, e *models.Engineer) error {
	if e == nil {
		return fmt.Errorf("engineer is nil")
	}
	e.ID = newID(e.ID)
	_, err := r.q.ExecContext(ctx, `INSERT INTO engineers (id, name, role, total_capacity, ktlo_tax) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Role, e.TotalCapacity, e.KtloTax)
	return err
}

func (r *SQLiteRepo) GetEngineer(ctx context.Context, id string) (*models.Engineer, error) {
	return getOne[models.Engineer](ctx, r.q, `SELECT `+engineerCols+` FROM engineers WHERE id = ?`, id)
}

// GetEngineerByName returns the first engineer with an exactly matching name.
func (r *SQLiteRepo) GetEngineerByName(ctx context.Context, name string) (*models.Engineer, error) {
	return getOne[models.Engineer](ctx, r.q, `SELECT `+engineerCols+` FROM engineers WHERE name = ? ORDER BY rowid LIMIT 1`, name)
}

func (r *SQLiteRepo) ListEngineers(ctx context.Context) ([]models.Engineer, error) {
	return list[models.Engineer](ctx, r.q, `SELECT `+engineerCols+` FROM engineers ORDER BY rowid`)
}

func (r *SQLiteRepo) UpdateEngineer(ctx context.Context, e *models.Engineer) error {
	if e == nil {
		return fmt.Errorf("engineer is nil")
	}
	_, err := r.q.ExecContext(ctx, `UPDATE engineers SET name = ?, role = ?, total_capacity = ?, ktlo_tax = ? WHERE id = ?`,
		e.Name, e.Role, e.TotalCapacity, e.KtloTax, e.ID)
	return err
}

func (r *SQLiteRepo) DeleteEngineer(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM engineers WHERE id = ?`, id)
	return err
}
