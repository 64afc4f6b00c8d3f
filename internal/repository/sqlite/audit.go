package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
)

func (r *SQLiteRepo) AppendAudit(ctx context.Context, e *models.AuditLogEntry) error {
	if e == nil {
		return fmt.Errorf("audit entry is nil")
	}
	e.ID = newID(e.ID)
	if e.Timestamp == 0 {
		e.Timestamp = now()
	}
	_, err := r.q.ExecContext(ctx, `INSERT INTO audit_logs (id, timestamp, user_id, username, action, resource_type, resource_id, details, ip_address) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Timestamp, e.UserID, e.Username, e.Action, e.ResourceType, e.ResourceID, e.Details, e.IPAddress)
	return err
}

// ListAudit returns entries newest first. A non-positive limit means no limit.
func (r *SQLiteRepo) ListAudit(ctx context.Context, f models.AuditFilter) ([]models.AuditLogEntry, error) {
	var b strings.Builder
	b.WriteString(`SELECT id, timestamp, user_id, username, action, resource_type, resource_id, details, ip_address FROM audit_logs`)
	args := []any{}
	if f.ResourceType != "" {
		b.WriteString(` WHERE resource_type = ?`)
		args = append(args, f.ResourceType)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = -1
	}
	b.WriteString(` ORDER BY timestamp DESC, rowid DESC LIMIT ? OFFSET ?`)
	args = append(args, limit, max(f.Offset, 0))
	return list[models.AuditLogEntry](ctx, r.q, b.String(), args...)
}
