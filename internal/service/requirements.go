package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/philipcowcer-eng/LoadBalance/internal/audit"
	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
	"github.com/philipcowcer-eng/LoadBalance/pkg/repository"
)

var requirementPatchFields = []string{"role", "hours_per_week", "duration_weeks"}

func (s *Service) ListAllRequirements(ctx context.Context) ([]models.ResourcingRequirement, error) {
	return s.store.ListRequirements(ctx)
}

func (s *Service) ListRequirements(ctx context.Context, projectID string) ([]models.ResourcingRequirement, error) {
	if _, err := s.requireProject(ctx, s.store, projectID); err != nil {
		return nil, err
	}
	return s.store.ListRequirementsByProject(ctx, projectID)
}

func (s *Service) AddRequirement(ctx context.Context, projectID string, in RequirementInput) (*models.ResourcingRequirement, error) {
	r := models.ResourcingRequirement{
		ProjectID:     projectID,
		Role:          in.Role,
		HoursPerWeek:  in.HoursPerWeek,
		DurationWeeks: in.DurationWeeks,
	}
	if err := s.check(r); err != nil {
		return nil, err
	}
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := s.requireProject(ctx, tx, projectID); err != nil {
			return err
		}
		if err := tx.CreateRequirement(ctx, &r); err != nil {
			return err
		}
		reason := fmt.Sprintf("Hours per week: %d", r.HoursPerWeek)
		if r.DurationWeeks != nil {
			reason += fmt.Sprintf(", Duration: %d weeks", *r.DurationWeeks)
		}
		s.impact(ctx, tx, projectID, audit.Event(audit.RequirementAdded, r.Role), reason)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, "create", ResourceRequirement, r.ID, map[string]any{"project_id": projectID, "role": r.Role, "hours_per_week": r.HoursPerWeek}, nil, nil)
	return &r, nil
}

func (s *Service) PatchRequirement(ctx context.Context, id string, patch map[string]json.RawMessage) (*models.ResourcingRequirement, error) {
	if err := restrictPatch(patch, requirementPatchFields...); err != nil {
		return nil, err
	}
	if err := rejectNulls(patch, "role", "hours_per_week"); err != nil {
		return nil, err
	}

	var before, after models.ResourcingRequirement
	var changes []audit.Change
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		cur, err := tx.GetRequirement(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return notFound("Requirement")
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
		if err := tx.UpdateRequirement(ctx, &after); err != nil {
			return err
		}
		s.impact(ctx, tx, after.ProjectID, audit.Event(audit.RequirementUpdated, after.Role), audit.Reason(changes))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		s.record(ctx, "update", ResourceRequirement, id, changeDetails(changes), before, after)
	}
	return &after, nil
}

func (s *Service) DeleteRequirement(ctx context.Context, id string) error {
	var gone models.ResourcingRequirement
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		cur, err := tx.GetRequirement(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return notFound("Requirement")
		}
		gone = *cur
		if err := tx.DeleteRequirement(ctx, id); err != nil {
			return err
		}
		s.impact(ctx, tx, cur.ProjectID, audit.Event(audit.RequirementRemoved, cur.Role),
			fmt.Sprintf("Requirement of %dh/week removed", cur.HoursPerWeek))
		return nil
	})
	if err != nil {
		return err
	}
	s.record(ctx, "delete", ResourceRequirement, id, map[string]any{"project_id": gone.ProjectID, "role": gone.Role}, nil, nil)
	return nil
}
