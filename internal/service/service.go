// Package service orchestrates every mutation of the staffing data: it
// validates input and references, writes the entity together with its
// impact log entry in one transaction, then records the audit trail.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/philipcowcer-eng/LoadBalance/internal/audit"
	"github.com/philipcowcer-eng/LoadBalance/internal/metrics"
	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
	"github.com/philipcowcer-eng/LoadBalance/pkg/repository"
)

// Resource types used in audit entries.
const (
	ResourceEngineer    = "engineer"
	ResourceProject     = "project"
	ResourceAllocation  = "allocation"
	ResourceRequirement = "requirement"
	ResourceDevice      = "device"
	ResourceRid         = "rid_log"
	ResourceUser        = "user"
)

type Service struct {
	store    repository.Store
	recorder *audit.Recorder
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time
	hashCost int
}

func New(store repository.Store, recorder *audit.Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = audit.NewRecorder(store, logger)
	}
	return &Service{
		store:    store,
		recorder: recorder,
		logger:   logger,
		validate: newValidator(),
		now:      time.Now,
		hashCost: bcrypt.DefaultCost,
	}
}

// impact appends an entry inside tx under a savepoint. A failed append is
// rolled back on its own, logged and counted; tx stays usable.
func (s *Service) impact(ctx context.Context, tx repository.Store, projectID, event, reason string) {
	entry := &models.ImpactLogEntry{
		ProjectID: projectID,
		Date:      s.now().UTC().UnixMilli(),
		Event:     event,
		Reason:    &reason,
	}
	err := tx.Savepoint(ctx, "impact_log", func() error {
		return tx.AppendImpact(ctx, entry)
	})
	if err != nil {
		metrics.AuditWriteFailures.WithLabelValues("impact").Inc()
		s.logger.Error("impact log write failed", "project_id", projectID, "event", event, "error", err)
	}
}

// record counts a committed mutation and writes its audit entry.
func (s *Service) record(ctx context.Context, action, resourceType, resourceID string, details map[string]any, before, after any) {
	metrics.Mutations.WithLabelValues(resourceType, action).Inc()
	s.recorder.Record(ctx, audit.Entry{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		Before:       before,
		After:        after,
	})
}

func changeDetails(changes []audit.Change) map[string]any {
	if len(changes) == 0 {
		return nil
	}
	out := make([]string, len(changes))
	for i, c := range changes {
		out[i] = c.String()
	}
	return map[string]any{"changes": out}
}

func (s *Service) requireProject(ctx context.Context, tx repository.Store, id string) (*models.Project, error) {
	p, err := tx.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, notFound("Project")
	}
	return p, nil
}

func (s *Service) requireEngineer(ctx context.Context, tx repository.Store, id string) (*models.Engineer, error) {
	e, err := tx.GetEngineer(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, notFound("Engineer")
	}
	return e, nil
}

func hasChange(changes []audit.Change, field string) bool {
	for _, c := range changes {
		if c.Field == field {
			return true
		}
	}
	return false
}

func orDefault[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
