package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/philipcowcer-eng/LoadBalance/internal/audit"
	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
	"github.com/philipcowcer-eng/LoadBalance/pkg/repository"
)

var (
	allocationPatchFields = []string{"hours_per_week", "hours", "category", "day", "feedback_status"}
	allocationNonNull     = allocationPatchFields
)

func (s *Service) ListAllocations(ctx context.Context) ([]models.Allocation, error) {
	return s.store.ListAllocations(ctx)
}

func (s *Service) ListProjectAllocations(ctx context.Context, projectID string) ([]models.Allocation, error) {
	if _, err := s.requireProject(ctx, s.store, projectID); err != nil {
		return nil, err
	}
	return s.store.ListAllocationsByProject(ctx, projectID)
}

func engineerName(e *models.Engineer) string {
	if e == nil {
		return "Unassigned"
	}
	return e.Name
}

// AddProjectAllocation assigns an engineer to a project as Project Work
// hours booked on Monday.
func (s *Service) AddProjectAllocation(ctx context.Context, projectID string, in ProjectAllocationInput) (*models.Allocation, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	a := models.Allocation{
		EngineerID:     in.EngineerID,
		ProjectID:      projectID,
		Category:       models.CategoryProjectWork,
		Day:            models.Mon,
		Hours:          in.HoursPerWeek,
		FeedbackStatus: models.FeedbackNone,
	}
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := s.requireProject(ctx, tx, projectID); err != nil {
			return err
		}
		eng, err := s.requireEngineer(ctx, tx, in.EngineerID)
		if err != nil {
			return err
		}
		if err := tx.CreateAllocation(ctx, &a); err != nil {
			return err
		}
		role := string(eng.Role)
		if in.Role != nil && *in.Role != "" {
			role = *in.Role
		}
		s.impact(ctx, tx, projectID, audit.Event(audit.AllocationAdded, eng.Name), fmt.Sprintf("Role: %s, Hours: %d", role, a.Hours))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, "create", ResourceAllocation, a.ID, map[string]any{"project_id": projectID, "engineer_id": a.EngineerID, "hours": a.Hours}, nil, nil)
	return &a, nil
}

// CreateAllocation stores a fully specified allocation.
func (s *Service) CreateAllocation(ctx context.Context, in AllocationInput) (*models.Allocation, error) {
	a := models.Allocation{
		EngineerID:     in.EngineerID,
		ProjectID:      in.ProjectID,
		Category:       in.Category,
		Day:            in.Day,
		Hours:          in.Hours,
		FeedbackStatus: orDefault(in.FeedbackStatus, models.FeedbackNone),
	}
	if err := s.check(a); err != nil {
		return nil, err
	}
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := s.requireProject(ctx, tx, a.ProjectID); err != nil {
			return err
		}
		eng, err := s.requireEngineer(ctx, tx, a.EngineerID)
		if err != nil {
			return err
		}
		if err := tx.CreateAllocation(ctx, &a); err != nil {
			return err
		}
		s.impact(ctx, tx, a.ProjectID, audit.Event(audit.AllocationAdded, eng.Name),
			fmt.Sprintf("Category: %s, Day: %s, Hours: %d", a.Category, a.Day, a.Hours))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, "create", ResourceAllocation, a.ID, map[string]any{"project_id": a.ProjectID, "engineer_id": a.EngineerID, "hours": a.Hours}, nil, nil)
	return &a, nil
}

// PatchAllocation updates hours, category, day or feedback status.
// hours_per_week is accepted as the name for hours and must be 2 to 40.
func (s *Service) PatchAllocation(ctx context.Context, id string, patch map[string]json.RawMessage) (*models.Allocation, error) {
	if err := restrictPatch(patch, allocationPatchFields...); err != nil {
		return nil, err
	}
	if err := rejectNulls(patch, allocationNonNull...); err != nil {
		return nil, err
	}
	patch, err := normalizeHours(patch)
	if err != nil {
		return nil, err
	}

	var before, after models.Allocation
	var changes []audit.Change
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		cur, err := tx.GetAllocation(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return notFound("Allocation")
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
		if err := tx.UpdateAllocation(ctx, &after); err != nil {
			return err
		}
		eng, err := tx.GetEngineer(ctx, after.EngineerID)
		if err != nil {
			return err
		}
		s.impact(ctx, tx, after.ProjectID, audit.Event(audit.AllocationUpdated, engineerName(eng)), allocationReason(changes))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		s.record(ctx, "update", ResourceAllocation, id, changeDetails(changes), before, after)
	}
	return &after, nil
}

// normalizeHours folds hours_per_week into hours and bounds it to 2..40.
func normalizeHours(patch map[string]json.RawMessage) (map[string]json.RawMessage, error) {
	raw, ok := patch["hours_per_week"]
	if !ok {
		raw, ok = patch["hours"]
	}
	if !ok {
		return patch, nil
	}
	var h int
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, invalid("hours_per_week", "must be an integer")
	}
	if h < 2 || h > 40 {
		return nil, invalid("hours_per_week", "must be between 2 and 40")
	}
	out := make(map[string]json.RawMessage, len(patch))
	for k, v := range patch {
		if k != "hours_per_week" {
			out[k] = v
		}
	}
	out["hours"] = raw
	return out, nil
}

func allocationReason(changes []audit.Change) string {
	parts := make([]string, len(changes))
	for i, c := range changes {
		if c.Field == "hours" {
			parts[i] = fmt.Sprintf("Hours changed: %sh → %sh", audit.Render(c.Old), audit.Render(c.New))
			continue
		}
		parts[i] = c.String()
	}
	return strings.Join(parts, "; ")
}

// DeleteAllocation removes the allocation and notes the released hours on
// its project.
func (s *Service) DeleteAllocation(ctx context.Context, id string) error {
	var gone models.Allocation
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		cur, err := tx.GetAllocation(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return notFound("Allocation")
		}
		gone = *cur
		eng, err := tx.GetEngineer(ctx, cur.EngineerID)
		if err != nil {
			return err
		}
		if err := tx.DeleteAllocation(ctx, id); err != nil {
			return err
		}
		s.impact(ctx, tx, cur.ProjectID, audit.Event(audit.ResourceRemoved, engineerName(eng)),
			fmt.Sprintf("Allocation of %dh/week removed", cur.Hours))
		return nil
	})
	if err != nil {
		return err
	}
	s.record(ctx, "delete", ResourceAllocation, id, map[string]any{"project_id": gone.ProjectID, "engineer_id": gone.EngineerID, "hours": gone.Hours}, nil, nil)
	return nil
}
