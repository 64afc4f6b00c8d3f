package api

import (
	"net/http"

	"github.com/philipcowcer-eng/LoadBalance/internal/service"
)

// ResourcesHandler serves allocations, requirements, devices and RID
// entries addressed by their own id.
type ResourcesHandler struct {
	svc *service.Service
}

func NewResourcesHandler(svc *service.Service) *ResourcesHandler {
	return &ResourcesHandler{svc: svc}
}

func (h *ResourcesHandler) ListAllocations(w http.ResponseWriter, r *http.Request) {
	allocs, err := h.svc.ListAllocations(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, allocs, http.StatusOK)
}

func (h *ResourcesHandler) CreateAllocation(w http.ResponseWriter, r *http.Request) {
	var in service.AllocationInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.svc.CreateAllocation(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, a, http.StatusCreated)
}

func (h *ResourcesHandler) PatchAllocation(w http.ResponseWriter, r *http.Request) {
	patch, err := decodePatch(r, allocationPatch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.svc.PatchAllocation(r.Context(), pathID(r), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, a, http.StatusOK)
}

func (h *ResourcesHandler) DeleteAllocation(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAllocation(r.Context(), pathID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, messageResponse{Message: "Allocation removed"}, http.StatusOK)
}

func (h *ResourcesHandler) ListRequirements(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.svc.ListAllRequirements(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, reqs, http.StatusOK)
}

func (h *ResourcesHandler) PatchRequirement(w http.ResponseWriter, r *http.Request) {
	patch, err := decodePatch(r, requirementPatch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req, err := h.svc.PatchRequirement(r.Context(), pathID(r), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, req, http.StatusOK)
}

func (h *ResourcesHandler) DeleteRequirement(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteRequirement(r.Context(), pathID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, messageResponse{Message: "Resourcing requirement deleted"}, http.StatusOK)
}

func (h *ResourcesHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.svc.ListAllDevices(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, devices, http.StatusOK)
}

func (h *ResourcesHandler) PatchDevice(w http.ResponseWriter, r *http.Request) {
	patch, err := decodePatch(r, devicePatch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := h.svc.PatchDevice(r.Context(), pathID(r), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, d, http.StatusOK)
}

func (h *ResourcesHandler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteDevice(r.Context(), pathID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, messageResponse{Message: "Device entry removed"}, http.StatusOK)
}

func (h *ResourcesHandler) PatchRid(w http.ResponseWriter, r *http.Request) {
	patch, err := decodePatch(r, ridPatch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	e, err := h.svc.PatchRid(r.Context(), pathID(r), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, e, http.StatusOK)
}

func (h *ResourcesHandler) DeleteRid(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteRid(r.Context(), pathID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, messageResponse{Message: "RID entry deleted"}, http.StatusOK)
}
