package sqlite

import (
	"context"
	"fmt"

	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
)

// AppendImpact inserts an impact entry. A zero Date is stamped with now.
func (r *SQLiteRepo) AppendImpact(ctx context.Context, e *models.ImpactLogEntry) error {
	if e == nil {
		return fmt.Errorf("impact entry is nil")
	}
	e.ID = newID(e.ID)
	if e.Date == 0 {
		e.Date = now()
	}
	_, err := r.q.ExecContext(ctx, `INSERT INTO impact_logs (id, project_id, date, event, reason) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.ProjectID, e.Date, e.Event, e.Reason)
	return err
}

// ListImpactByProject returns entries newest first; entries sharing a
// timestamp come back in reverse insertion order.
func (r *SQLiteRepo) ListImpactByProject(ctx context.Context, projectID string) ([]models.ImpactLogEntry, error) {
	return list[models.ImpactLogEntry](ctx, r.q, `SELECT id, project_id, date, event, reason FROM impact_logs WHERE project_id = ? ORDER BY date DESC, rowid DESC`, projectID)
}
