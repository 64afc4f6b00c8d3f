package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/philipcowcer-eng/LoadBalance/internal/csvio"
	"github.com/philipcowcer-eng/LoadBalance/internal/service"
	"github.com/philipcowcer-eng/LoadBalance/internal/snapshot"
	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
)

// maxUploadBytes bounds CSV imports.
const maxUploadBytes = 10 << 20

// AdminHandler serves the audit trail, data transfer and snapshots.
type AdminHandler struct {
	svc       *service.Service
	snapshots *snapshot.Manager
}

func NewAdminHandler(svc *service.Service, snapshots *snapshot.Manager) *AdminHandler {
	return &AdminHandler{svc: svc, snapshots: snapshots}
}

func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &service.ValidationError{Field: key, Message: "must be an integer"}
	}
	return n, nil
}

func (h *AdminHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries, err := h.svc.ListAudit(r.Context(), models.AuditFilter{
		ResourceType: r.URL.Query().Get("resource_type"),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, entries, http.StatusOK)
}

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.WriteHeader(http.StatusOK)
}

// Export streams one entity kind as CSV.
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]
	data, err := h.svc.ExportData(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var write func(io.Writer) error
	switch kind {
	case "engineers":
		write = func(out io.Writer) error { return csvio.WriteEngineers(out, data.Engineers) }
	case "projects":
		write = func(out io.Writer) error { return csvio.WriteProjects(out, data.Projects) }
	case "allocations":
		write = func(out io.Writer) error { return csvio.WriteAllocations(out, data.Allocations, data.Names) }
	default:
		writeDetail(w, http.StatusNotFound, "Export not found")
		return
	}

	attachment(w, "text/csv", kind+".csv")
	if err := write(w); err != nil {
		logger.Error("export csv", slog.String("kind", kind), slog.Any("err", err))
	}
}

func (h *AdminHandler) Workbook(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ExportData(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	attachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "staffing.xlsx")
	if err := csvio.WriteWorkbook(w, data); err != nil {
		logger.Error("export workbook", slog.Any("err", err))
	}
}

// upload returns the CSV payload from a multipart "file" field or, for any
// other content type, the raw body.
func upload(w http.ResponseWriter, r *http.Request) (io.ReadCloser, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(mt, "multipart/") {
		return r.Body, nil
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, &service.ValidationError{Field: "file", Message: "is required"}
		}
		return nil, &service.ValidationError{Field: "file", Message: err.Error()}
	}
	return f, nil
}

func (h *AdminHandler) Import(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]
	var run func(io.Reader) (*service.ImportResult, error)
	switch kind {
	case "engineers":
		run = func(in io.Reader) (*service.ImportResult, error) { return h.svc.ImportEngineers(r.Context(), in) }
	case "projects":
		run = func(in io.Reader) (*service.ImportResult, error) { return h.svc.ImportProjects(r.Context(), in) }
	default:
		writeDetail(w, http.StatusNotFound, "Import not found")
		return
	}

	body, err := upload(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer body.Close()

	res, err := run(body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, res, http.StatusOK)
}

type snapshotCreated struct {
	Message  string        `json:"message"`
	Snapshot snapshot.Info `json:"snapshot"`
}

type snapshotRestored struct {
	Message    string `json:"message"`
	SafetyCopy string `json:"safety_copy"`
}

func (h *AdminHandler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	info, err := h.snapshots.Create(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, snapshotCreated{Message: "Snapshot created", Snapshot: info}, http.StatusCreated)
}

func (h *AdminHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	infos, err := h.snapshots.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, infos, http.StatusOK)
}

func (h *AdminHandler) RestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	safety, err := h.snapshots.Restore(r.Context(), mux.Vars(r)["filename"])
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		writeDetail(w, http.StatusNotFound, "Snapshot not found")
		return
	case errors.Is(err, snapshot.ErrInvalidName):
		writeDetail(w, http.StatusBadRequest, "Invalid snapshot name")
		return
	case err != nil:
		writeError(w, r, err)
		return
	}
	writeJSON(w, snapshotRestored{Message: "Database restored successfully", SafetyCopy: safety}, http.StatusOK)
}
