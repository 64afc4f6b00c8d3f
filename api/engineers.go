package api

import (
	"fmt"
	"net/http"

	"github.com/philipcowcer-eng/LoadBalance/internal/service"
)

type messageResponse struct {
	Message string `json:"message"`
}

type EngineersHandler struct {
	svc *service.Service
}

func NewEngineersHandler(svc *service.Service) *EngineersHandler {
	return &EngineersHandler{svc: svc}
}

func (h *EngineersHandler) List(w http.ResponseWriter, r *http.Request) {
	engineers, err := h.svc.ListEngineers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, engineers, http.StatusOK)
}

func (h *EngineersHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.GetEngineer(r.Context(), pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, e, http.StatusOK)
}

func (h *EngineersHandler) Allocations(w http.ResponseWriter, r *http.Request) {
	allocs, err := h.svc.ListEngineerAllocations(r.Context(), pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, allocs, http.StatusOK)
}

func (h *EngineersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.EngineerInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := h.svc.CreateEngineer(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, e, http.StatusCreated)
}

func (h *EngineersHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var in service.EngineerInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := h.svc.ReplaceEngineer(r.Context(), pathID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, e, http.StatusOK)
}

func (h *EngineersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name, err := h.svc.DeleteEngineer(r.Context(), pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, messageResponse{Message: fmt.Sprintf("Engineer %s deleted and allocations released.", name)}, http.StatusOK)
}
