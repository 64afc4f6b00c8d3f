package service

import (
	"context"
	"encoding/json"

	"github.com/philipcowcer-eng/LoadBalance/internal/audit"
	"github.com/philipcowcer-eng/LoadBalance/internal/staffing"
	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
	"github.com/philipcowcer-eng/LoadBalance/pkg/repository"
)

// ProjectDetail is a project with its staffing report computed at read time.
type ProjectDetail struct {
	models.Project
	staffing.Report
}

var (
	// projectReplaceFields are overwritten by a full replace.
	projectReplaceFields = []string{
		"name", "project_number", "project_site", "priority", "status", "owner_id", "manager_id",
		"rag_status", "rag_reason", "percent_complete", "business_justification", "start_date",
		"target_end_date", "workflow_status", "project_type", "size", "fiscal_year",
		"device_count", "device_type",
	}
	projectPatchFields = append(append([]string{}, projectReplaceFields...), "latest_status_update")
	projectNonNull     = []string{"name", "priority", "status", "rag_status", "percent_complete", "workflow_status", "device_count"}
)

func (s *Service) ListProjects(ctx context.Context) ([]ProjectDetail, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	reqs, err := s.store.ListRequirements(ctx)
	if err != nil {
		return nil, err
	}
	allocs, err := s.store.ListAllocations(ctx)
	if err != nil {
		return nil, err
	}
	engineers, err := s.store.ListEngineers(ctx)
	if err != nil {
		return nil, err
	}

	reqsBy := map[string][]models.ResourcingRequirement{}
	for _, r := range reqs {
		reqsBy[r.ProjectID] = append(reqsBy[r.ProjectID], r)
	}
	allocsBy := map[string][]models.Allocation{}
	for _, a := range allocs {
		allocsBy[a.ProjectID] = append(allocsBy[a.ProjectID], a)
	}
	index := staffing.Index(engineers)

	out := make([]ProjectDetail, len(projects))
	for i, p := range projects {
		out[i] = ProjectDetail{Project: p, Report: staffing.Compute(reqsBy[p.ID], allocsBy[p.ID], index)}
	}
	return out, nil
}

func (s *Service) GetProject(ctx context.Context, id string) (*ProjectDetail, error) {
	p, err := s.requireProject(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	reqs, err := s.store.ListRequirementsByProject(ctx, id)
	if err != nil {
		return nil, err
	}
	allocs, err := s.store.ListAllocationsByProject(ctx, id)
	if err != nil {
		return nil, err
	}
	engineers, err := s.store.ListEngineers(ctx)
	if err != nil {
		return nil, err
	}
	return &ProjectDetail{Project: *p, Report: staffing.Compute(reqs, allocs, staffing.Index(engineers))}, nil
}

func (in ProjectInput) project() models.Project {
	return models.Project{
		Name:                  in.Name,
		ProjectNumber:         in.ProjectNumber,
		ProjectSite:           in.ProjectSite,
		Priority:              in.Priority,
		Status:                orDefault(in.Status, models.ProjectHealthy),
		OwnerID:               in.OwnerID,
		ManagerID:             in.ManagerID,
		RagStatus:             orDefault(in.RagStatus, models.RagGreen),
		RagReason:             in.RagReason,
		PercentComplete:       orDefault(in.PercentComplete, 0),
		BusinessJustification: in.BusinessJustification,
		StartDate:             in.StartDate,
		TargetEndDate:         in.TargetEndDate,
		WorkflowStatus:        orDefault(in.WorkflowStatus, models.WorkflowDraft),
		ProjectType:           in.ProjectType,
		Size:                  in.Size,
		FiscalYear:            in.FiscalYear,
		DeviceCount:           orDefault(in.DeviceCount, 0),
		DeviceType:            in.DeviceType,
	}
}

// checkProjectRefs verifies that owner and manager, when set, exist.
func (s *Service) checkProjectRefs(ctx context.Context, tx repository.Store, p *models.Project) error {
	for _, ref := range []*string{p.OwnerID, p.ManagerID} {
		if ref == nil {
			continue
		}
		if _, err := s.requireEngineer(ctx, tx, *ref); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) CreateProject(ctx context.Context, in ProjectInput) (*ProjectDetail, error) {
	p := in.project()
	if err := s.check(p); err != nil {
		return nil, err
	}
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if err := s.checkProjectRefs(ctx, tx, &p); err != nil {
			return err
		}
		return tx.CreateProject(ctx, &p)
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, "create", ResourceProject, p.ID, map[string]any{"name": p.Name, "priority": p.Priority}, nil, nil)
	return s.GetProject(ctx, p.ID)
}

// ReplaceProject overwrites every user-editable field. The status update
// text is left alone. A replace is audited but not added to the impact log.
func (s *Service) ReplaceProject(ctx context.Context, id string, in ProjectInput) (*ProjectDetail, error) {
	full := asPatch(in.project())
	patch := make(map[string]json.RawMessage, len(projectReplaceFields))
	for _, f := range projectReplaceFields {
		patch[f] = full[f]
	}
	return s.updateProject(ctx, id, patch, false)
}

// PatchProject updates only the fields present in patch, keyed by JSON
// field name. A null value clears a nullable field.
func (s *Service) PatchProject(ctx context.Context, id string, patch map[string]json.RawMessage) (*ProjectDetail, error) {
	if err := restrictPatch(patch, projectPatchFields...); err != nil {
		return nil, err
	}
	if err := rejectNulls(patch, projectNonNull...); err != nil {
		return nil, err
	}
	return s.updateProject(ctx, id, patch, true)
}

func (s *Service) updateProject(ctx context.Context, id string, patch map[string]json.RawMessage, logImpact bool) (*ProjectDetail, error) {
	var before, after models.Project
	var changes []audit.Change
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		cur, err := s.requireProject(ctx, tx, id)
		if err != nil {
			return err
		}
		before = *cur
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
		if err := s.checkProjectRefs(ctx, tx, &after); err != nil {
			return err
		}
		if hasChange(changes, "latest_status_update") {
			ts := s.now().UTC().UnixMilli()
			after.StatusUpdatedAt = &ts
		}
		if err := tx.UpdateProject(ctx, &after); err != nil {
			return err
		}
		if logImpact {
			s.impact(ctx, tx, id, audit.ProjectUpdated, audit.Reason(changes))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		s.record(ctx, "update", ResourceProject, id, changeDetails(changes), before, after)
	}
	return s.GetProject(ctx, id)
}
