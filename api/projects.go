package api

import (
	"net/http"

	"github.com/philipcowcer-eng/LoadBalance/internal/service"
)

// ProjectsHandler serves projects and the resources nested under them.
type ProjectsHandler struct {
	svc *service.Service
}

func NewProjectsHandler(svc *service.Service) *ProjectsHandler {
	return &ProjectsHandler{svc: svc}
}

func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.svc.ListProjects(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, projects, http.StatusOK)
}

func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProject(r.Context(), pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, p, http.StatusOK)
}

func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.ProjectInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.svc.CreateProject(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, p, http.StatusCreated)
}

func (h *ProjectsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var in service.ProjectInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.svc.ReplaceProject(r.Context(), pathID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, p, http.StatusOK)
}

func (h *ProjectsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	patch, err := decodePatch(r, projectPatch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.svc.PatchProject(r.Context(), pathID(r), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, p, http.StatusOK)
}

func (h *ProjectsHandler) Allocations(w http.ResponseWriter, r *http.Request) {
	allocs, err := h.svc.ListProjectAllocations(r.Context(), pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, allocs, http.StatusOK)
}

func (h *ProjectsHandler) AddAllocation(w http.ResponseWriter, r *http.Request) {
	var in service.ProjectAllocationInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.svc.AddProjectAllocation(r.Context(), pathID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, a, http.StatusCreated)
}

func (h *ProjectsHandler) Requirements(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.svc.ListRequirements(r.Context(), pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, reqs, http.StatusOK)
}

func (h *ProjectsHandler) AddRequirement(w http.ResponseWriter, r *http.Request) {
	var in service.RequirementInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	req, err := h.svc.AddRequirement(r.Context(), pathID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, req, http.StatusCreated)
}

func (h *ProjectsHandler) Devices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.svc.ListDevices(r.Context(), pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, devices, http.StatusOK)
}

func (h *ProjectsHandler) AddDevice(w http.ResponseWriter, r *http.Request) {
	var in service.DeviceInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	d, err := h.svc.AddDevice(r.Context(), pathID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, d, http.StatusCreated)
}

func (h *ProjectsHandler) Rid(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ListRid(r.Context(), pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, entries, http.StatusOK)
}

func (h *ProjectsHandler) AddRid(w http.ResponseWriter, r *http.Request) {
	var in service.RidInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := h.svc.AddRid(r.Context(), pathID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, e, http.StatusCreated)
}

func (h *ProjectsHandler) Impact(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ListImpact(r.Context(), pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, entries, http.StatusOK)
}
