package service

import (
	"context"
	"encoding/json"

	"github.com/philipcowcer-eng/LoadBalance/internal/audit"
	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
	"github.com/philipcowcer-eng/LoadBalance/pkg/repository"
)

const releasedReason = "Resource removed from system; all associated allocations cleared."

// EngineerDetail is an engineer with its derived capacity.
type EngineerDetail struct {
	models.Engineer
	EffectiveCapacity int `json:"effective_capacity"`
}

func engineerDetail(e models.Engineer) EngineerDetail {
	return EngineerDetail{Engineer: e, EffectiveCapacity: e.EffectiveCapacity()}
}

func (s *Service) ListEngineers(ctx context.Context) ([]EngineerDetail, error) {
	es, err := s.store.ListEngineers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]EngineerDetail, len(es))
	for i, e := range es {
		out[i] = engineerDetail(e)
	}
	return out, nil
}

func (s *Service) GetEngineer(ctx context.Context, id string) (*EngineerDetail, error) {
	e, err := s.requireEngineer(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	d := engineerDetail(*e)
	return &d, nil
}

func (s *Service) ListEngineerAllocations(ctx context.Context, id string) ([]models.Allocation, error) {
	if _, err := s.requireEngineer(ctx, s.store, id); err != nil {
		return nil, err
	}
	return s.store.ListAllocationsByEngineer(ctx, id)
}

func (in EngineerInput) engineer() models.Engineer {
	return models.Engineer{
		Name:          in.Name,
		Role:          in.Role,
		TotalCapacity: orDefault(in.TotalCapacity, 40),
		KtloTax:       orDefault(in.KtloTax, 0),
	}
}

func (s *Service) CreateEngineer(ctx context.Context, in EngineerInput) (*EngineerDetail, error) {
	e := in.engineer()
	if err := s.check(e); err != nil {
		return nil, err
	}
	if err := s.store.CreateEngineer(ctx, &e); err != nil {
		return nil, err
	}
	s.record(ctx, "create", ResourceEngineer, e.ID, map[string]any{"name": e.Name, "role": e.Role}, nil, nil)
	d := engineerDetail(e)
	return &d, nil
}

// ReplaceEngineer overwrites every field of the engineer.
func (s *Service) ReplaceEngineer(ctx context.Context, id string, in EngineerInput) (*EngineerDetail, error) {
	next := in.engineer()
	next.ID = id
	if err := s.check(next); err != nil {
		return nil, err
	}

	var before models.Engineer
	var changes []audit.Change
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		cur, err := s.requireEngineer(ctx, tx, id)
		if err != nil {
			return err
		}
		before = *cur
		changes, err = audit.Diff(cur, asPatch(next))
		if err != nil {
			return err
		}
		return tx.UpdateEngineer(ctx, &next)
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, "update", ResourceEngineer, id, changeDetails(changes), before, next)
	d := engineerDetail(next)
	return &d, nil
}

// DeleteEngineer removes the engineer and every allocation it holds. Each
// project that lost an allocation gets one Resource Released entry.
func (s *Service) DeleteEngineer(ctx context.Context, id string) (string, error) {
	var name string
	var released int
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		e, err := s.requireEngineer(ctx, tx, id)
		if err != nil {
			return err
		}
		name = e.Name

		allocs, err := tx.ListAllocationsByEngineer(ctx, id)
		if err != nil {
			return err
		}
		var projects []string
		seen := map[string]bool{}
		for _, a := range allocs {
			if !seen[a.ProjectID] {
				seen[a.ProjectID] = true
				projects = append(projects, a.ProjectID)
			}
		}

		n, err := tx.DeleteAllocationsByEngineer(ctx, id)
		if err != nil {
			return err
		}
		released = int(n)
		if err := tx.DeleteEngineer(ctx, id); err != nil {
			return err
		}
		for _, pid := range projects {
			s.impact(ctx, tx, pid, audit.Event(audit.ResourceReleased, name), releasedReason)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	s.record(ctx, "delete", ResourceEngineer, id, map[string]any{"name": name, "allocations_released": released}, nil, nil)
	return name, nil
}

// asPatch turns a full entity into a patch covering all of its fields.
func asPatch(v any) map[string]json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	m := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}
