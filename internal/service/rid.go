package service

import (
	"context"
	"encoding/json"

	"github.com/philipcowcer-eng/LoadBalance/internal/audit"
	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
	"github.com/philipcowcer-eng/LoadBalance/pkg/repository"
)

var (
	ridPatchFields = []string{"type", "description", "severity", "owner", "status"}
	ridNonNull     = []string{"type", "description", "status"}
)

func (s *Service) ListRid(ctx context.Context, projectID string) ([]models.RidLogEntry, error) {
	if _, err := s.requireProject(ctx, s.store, projectID); err != nil {
		return nil, err
	}
	return s.store.ListRidByProject(ctx, projectID)
}

func (s *Service) AddRid(ctx context.Context, projectID string, in RidInput) (*models.RidLogEntry, error) {
	severity := orDefault(in.Severity, models.SeverityMedium)
	e := models.RidLogEntry{
		ProjectID:   projectID,
		Type:        in.Type,
		Description: in.Description,
		Severity:    &severity,
		Owner:       in.Owner,
		Status:      orDefault(in.Status, models.RidOpen),
	}
	if err := s.check(e); err != nil {
		return nil, err
	}
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := s.requireProject(ctx, tx, projectID); err != nil {
			return err
		}
		if err := tx.CreateRid(ctx, &e); err != nil {
			return err
		}
		s.impact(ctx, tx, projectID, audit.Event(audit.RidAdded, string(e.Type)), audit.Truncate(e.Description, 100))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, "create", ResourceRid, e.ID, map[string]any{"project_id": projectID, "type": e.Type}, nil, nil)
	return &e, nil
}

// PatchRid updates a RID entry. A type change keeps the old type in
// previous_type and is logged as a promotion.
func (s *Service) PatchRid(ctx context.Context, id string, patch map[string]json.RawMessage) (*models.RidLogEntry, error) {
	if err := restrictPatch(patch, ridPatchFields...); err != nil {
		return nil, err
	}
	if err := rejectNulls(patch, ridNonNull...); err != nil {
		return nil, err
	}

	var before, after models.RidLogEntry
	var changes []audit.Change
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		cur, err := tx.GetRid(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return notFound("RID entry")
		}
		before, after = *cur, *cur
		if changes, err = audit.Diff(cur, patch); err != nil {
			return patchError(err)
		}
		if len(changes) == 0 {
			return nil
		}
		if err := audit.Apply(cur, patch, &after); err != nil {
			return patchError(err)
		}
		if err := s.check(after); err != nil {
			return err
		}

		event := audit.Event(audit.RidUpdated, string(after.Type))
		if hasChange(changes, "type") {
			prev := before.Type
			after.PreviousType = &prev
			event = audit.Promotion(before.Type, after.Type)
		}
		if err := tx.UpdateRid(ctx, &after); err != nil {
			return err
		}
		s.impact(ctx, tx, after.ProjectID, event, audit.Reason(changes))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		s.record(ctx, "update", ResourceRid, id, changeDetails(changes), before, after)
	}
	return &after, nil
}

func (s *Service) DeleteRid(ctx context.Context, id string) error {
	var gone models.RidLogEntry
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		cur, err := tx.GetRid(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return notFound("RID entry")
		}
		gone = *cur
		if err := tx.DeleteRid(ctx, id); err != nil {
			return err
		}
		s.impact(ctx, tx, cur.ProjectID, audit.Event(audit.RidDeleted, string(cur.Type)), audit.Truncate(cur.Description, 100))
		return nil
	})
	if err != nil {
		return err
	}
	s.record(ctx, "delete", ResourceRid, id, map[string]any{"project_id": gone.ProjectID, "type": gone.Type}, nil, nil)
	return nil
}
