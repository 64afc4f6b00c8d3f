package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/philipcowcer-eng/LoadBalance/internal/audit"
	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
	"github.com/philipcowcer-eng/LoadBalance/pkg/repository"
)

var devicePatchFields = []string{"device_type", "current_qty", "proposed_qty"}

// DeviceDetail is a device volume entry with its derived net change.
type DeviceDetail struct {
	models.ProjectDevice
	NetChange int `json:"net_change"`
}

func deviceDetail(d models.ProjectDevice) DeviceDetail {
	return DeviceDetail{ProjectDevice: d, NetChange: d.NetChange()}
}

func (s *Service) ListAllDevices(ctx context.Context) ([]DeviceDetail, error) {
	ds, err := s.store.ListDevices(ctx)
	if err != nil {
		return nil, err
	}
	return deviceDetails(ds), nil
}

func (s *Service) ListDevices(ctx context.Context, projectID string) ([]DeviceDetail, error) {
	if _, err := s.requireProject(ctx, s.store, projectID); err != nil {
		return nil, err
	}
	ds, err := s.store.ListDevicesByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return deviceDetails(ds), nil
}

func deviceDetails(ds []models.ProjectDevice) []DeviceDetail {
	out := make([]DeviceDetail, len(ds))
	for i, d := range ds {
		out[i] = deviceDetail(d)
	}
	return out
}

func (s *Service) AddDevice(ctx context.Context, projectID string, in DeviceInput) (*DeviceDetail, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	d := models.ProjectDevice{
		ProjectID:   projectID,
		DeviceType:  in.DeviceType,
		CurrentQty:  orDefault(in.CurrentQty, 0),
		ProposedQty: *in.ProposedQty,
	}
	if err := s.check(d); err != nil {
		return nil, err
	}
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := s.requireProject(ctx, tx, projectID); err != nil {
			return err
		}
		if err := tx.CreateDevice(ctx, &d); err != nil {
			return err
		}
		s.impact(ctx, tx, projectID, audit.Event(audit.DeviceAdded, d.DeviceType),
			fmt.Sprintf("Current: %d, Proposed: %d, Net: %s", d.CurrentQty, d.ProposedQty, audit.Signed(d.NetChange())))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, "create", ResourceDevice, d.ID, map[string]any{"project_id": projectID, "device_type": d.DeviceType}, nil, nil)
	out := deviceDetail(d)
	return &out, nil
}

func (s *Service) PatchDevice(ctx context.Context, id string, patch map[string]json.RawMessage) (*DeviceDetail, error) {
	if err := restrictPatch(patch, devicePatchFields...); err != nil {
		return nil, err
	}
	if err := rejectNulls(patch, devicePatchFields...); err != nil {
		return nil, err
	}

	var before, after models.ProjectDevice
	var changes []audit.Change
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		cur, err := tx.GetDevice(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return notFound("Device")
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
		if err := tx.UpdateDevice(ctx, &after); err != nil {
			return err
		}
		s.impact(ctx, tx, after.ProjectID, audit.Event(audit.DeviceUpdated, after.DeviceType), audit.Reason(changes))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		s.record(ctx, "update", ResourceDevice, id, changeDetails(changes), before, after)
	}
	out := deviceDetail(after)
	return &out, nil
}

func (s *Service) DeleteDevice(ctx context.Context, id string) error {
	var gone models.ProjectDevice
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		cur, err := tx.GetDevice(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return notFound("Device")
		}
		gone = *cur
		if err := tx.DeleteDevice(ctx, id); err != nil {
			return err
		}
		s.impact(ctx, tx, cur.ProjectID, audit.Event(audit.DeviceRemoved, cur.DeviceType),
			fmt.Sprintf("Removed volume entry of %d units", cur.ProposedQty))
		return nil
	})
	if err != nil {
		return err
	}
	s.record(ctx, "delete", ResourceDevice, id, map[string]any{"project_id": gone.ProjectID, "device_type": gone.DeviceType}, nil, nil)
	return nil
}
