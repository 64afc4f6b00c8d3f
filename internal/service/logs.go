package service

import (
	"context"

	"github.com/philipcowcer-eng/LoadBalance/internal/audit"
	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
)

// DefaultAuditLimit applies when a listing does not ask for a page size.
const DefaultAuditLimit = 100

// ListImpact returns a project's impact log, newest first.
func (s *Service) ListImpact(ctx context.Context, projectID string) ([]models.ImpactLogEntry, error) {
	if _, err := s.requireProject(ctx, s.store, projectID); err != nil {
		return nil, err
	}
	return s.store.ListImpactByProject(ctx, projectID)
}

// ListAudit pages through the audit trail, newest first.
func (s *Service) ListAudit(ctx context.Context, f models.AuditFilter) ([]models.AuditLogEntry, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultAuditLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.store.ListAudit(ctx, f)
}

// Authorize checks that ctx carries an authenticated actor holding one of
// roles. With no roles any authenticated actor passes.
func Authorize(ctx context.Context, roles ...models.UserRole) error {
	actor, ok := audit.ActorFromContext(ctx)
	if !ok {
		return ErrUnauthorized
	}
	if len(roles) == 0 {
		return nil
	}
	for _, r := range roles {
		if actor.Role == r {
			return nil
		}
	}
	return ErrForbidden
}
