package api_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/philipcowcer-eng/LoadBalance/internal/service"
	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
)

type idBody struct {
	ID string `json:"id"`
}

type detailBody struct {
	Detail string `json:"detail"`
	Field  string `json:"field"`
}

func TestStaffingFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/engineers", "", map[string]any{"name": "Ada", "role": "Network Engineer"})
	expectStatus(t, w, http.StatusCreated)
	eng := decode[service.EngineerDetail](t, w)
	if eng.EffectiveCapacity != 40 {
		t.Fatalf("expected default effective capacity 40, got %d", eng.EffectiveCapacity)
	}

	w = s.do(t, http.MethodPost, "/api/projects", "", map[string]any{"name": "Core refresh", "priority": "P1-Critical"})
	expectStatus(t, w, http.StatusCreated)
	proj := decode[idBody](t, w)

	w = s.do(t, http.MethodPost, "/api/projects/"+proj.ID+"/requirements", "", map[string]any{"role": "Network Engineer", "hours_per_week": 20})
	expectStatus(t, w, http.StatusCreated)

	w = s.do(t, http.MethodPost, "/api/projects/"+proj.ID+"/allocations", "", map[string]any{"engineer_id": eng.ID, "hours_per_week": 20})
	expectStatus(t, w, http.StatusCreated)
	alloc := decode[models.Allocation](t, w)
	if alloc.Category != models.CategoryProjectWork || alloc.Day != models.Mon || alloc.Hours != 20 {
		t.Fatalf("unexpected allocation %+v", alloc)
	}

	w = s.do(t, http.MethodGet, "/api/projects/"+proj.ID, "", nil)
	expectStatus(t, w, http.StatusOK)
	detail := decode[service.ProjectDetail](t, w)
	if !detail.IsFullyStaffed || detail.TotalRequired != 20 || detail.TotalAllocated != 20 {
		t.Fatalf("expected fully staffed project, got %+v", detail.Report)
	}

	w = s.do(t, http.MethodPatch, "/api/allocations/"+alloc.ID, "", map[string]any{"hours_per_week": 10})
	expectStatus(t, w, http.StatusOK)

	w = s.do(t, http.MethodGet, "/api/projects/"+proj.ID+"/impact-log", "", nil)
	expectStatus(t, w, http.StatusOK)
	impact := decode[[]models.ImpactLogEntry](t, w)
	if len(impact) != 3 {
		t.Fatalf("expected 3 impact entries, got %d", len(impact))
	}
	if impact[0].Reason == nil || *impact[0].Reason != "Hours changed: 20h → 10h" {
		t.Fatalf("unexpected newest impact entry %+v", impact[0])
	}

	w = s.do(t, http.MethodDelete, "/api/engineers/"+eng.ID, "", nil)
	expectStatus(t, w, http.StatusOK)
	if msg := decode[struct {
		Message string `json:"message"`
	}](t, w).Message; msg != "Engineer Ada deleted and allocations released." {
		t.Fatalf("unexpected delete message %q", msg)
	}

	w = s.do(t, http.MethodGet, "/api/allocations", "", nil)
	expectStatus(t, w, http.StatusOK)
	if allocs := decode[[]models.Allocation](t, w); len(allocs) != 0 {
		t.Fatalf("expected allocations released, got %d", len(allocs))
	}
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/projects", "", map[string]any{"name": "Edge", "priority": "P2-Strategic"})
	expectStatus(t, w, http.StatusCreated)
	proj := decode[idBody](t, w)

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantDetail string
		wantField  string
	}{
		{name: "UnknownProject", method: http.MethodGet, path: "/api/projects/missing", wantStatus: http.StatusNotFound, wantDetail: "Project not found"},
		{name: "UnknownEngineer", method: http.MethodDelete, path: "/api/engineers/missing", wantStatus: http.StatusNotFound, wantDetail: "Engineer not found"},
		{name: "PatchOutOfRange", method: http.MethodPatch, path: "/api/projects/" + proj.ID, body: map[string]any{"percent_complete": 150}, wantStatus: http.StatusBadRequest, wantField: "percent_complete"},
		{name: "PatchWrongType", method: http.MethodPatch, path: "/api/projects/" + proj.ID, body: map[string]any{"percent_complete": "half"}, wantStatus: http.StatusBadRequest, wantField: "percent_complete"},
		{name: "PatchNull", method: http.MethodPatch, path: "/api/projects/" + proj.ID, body: `{"name": null}`, wantStatus: http.StatusBadRequest, wantField: "name"},
		{name: "PatchReadOnly", method: http.MethodPatch, path: "/api/projects/" + proj.ID, body: map[string]any{"id": "other"}, wantStatus: http.StatusBadRequest, wantField: "id"},
		{name: "PatchMalformed", method: http.MethodPatch, path: "/api/projects/" + proj.ID, body: `{"name":`, wantStatus: http.StatusBadRequest},
		{name: "AllocationHours", method: http.MethodPost, path: "/api/projects/" + proj.ID + "/allocations", body: map[string]any{"engineer_id": "x", "hours_per_week": 1}, wantStatus: http.StatusBadRequest, wantField: "hours_per_week"},
		{name: "EmptyPatch", method: http.MethodPatch, path: "/api/projects/" + proj.ID, body: "", wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, "", tt.body)
			expectStatus(t, w, tt.wantStatus)
			if tt.wantStatus == http.StatusOK {
				return
			}
			d := decode[detailBody](t, w)
			if tt.wantDetail != "" && d.Detail != tt.wantDetail {
				t.Fatalf("expected detail %q, got %q", tt.wantDetail, d.Detail)
			}
			if tt.wantField != "" && d.Field != tt.wantField {
				t.Fatalf("expected field %q, got %q (%s)", tt.wantField, d.Field, d.Detail)
			}
		})
	}
}

func TestRidLifecycle(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/projects", "", map[string]any{"name": "Campus", "priority": "P3-Standard"})
	expectStatus(t, w, http.StatusCreated)
	proj := decode[idBody](t, w)

	w = s.do(t, http.MethodPost, "/api/projects/"+proj.ID+"/rid-log", "", map[string]any{
		"type": "Risk", "description": "Vendor lead time may slip two weeks",
	})
	expectStatus(t, w, http.StatusCreated)
	rid := decode[models.RidLogEntry](t, w)
	if rid.Status != models.RidOpen {
		t.Fatalf("expected default status Open, got %q", rid.Status)
	}

	w = s.do(t, http.MethodPatch, "/api/rid-log/"+rid.ID, "", map[string]any{"type": "Issue"})
	expectStatus(t, w, http.StatusOK)
	rid = decode[models.RidLogEntry](t, w)
	if rid.PreviousType == nil || *rid.PreviousType != models.RidRisk {
		t.Fatalf("expected previous type Risk, got %v", rid.PreviousType)
	}

	expectStatus(t, s.do(t, http.MethodDelete, "/api/rid-log/"+rid.ID, "", nil), http.StatusOK)
	expectStatus(t, s.do(t, http.MethodDelete, "/api/rid-log/"+rid.ID, "", nil), http.StatusNotFound)
}

func TestDevicesAndRequirementsRoutes(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/projects", "", map[string]any{"name": "WAN", "priority": "P4-Low"})
	expectStatus(t, w, http.StatusCreated)
	proj := decode[idBody](t, w)

	w = s.do(t, http.MethodPost, "/api/projects/"+proj.ID+"/devices", "", map[string]any{"device_type": "Switch", "current_qty": 10, "proposed_qty": 4})
	expectStatus(t, w, http.StatusCreated)
	dev := decode[service.DeviceDetail](t, w)
	if dev.NetChange != -6 {
		t.Fatalf("expected net change -6, got %d", dev.NetChange)
	}

	w = s.do(t, http.MethodPatch, "/api/devices/"+dev.ID, "", map[string]any{"proposed_qty": 12})
	expectStatus(t, w, http.StatusOK)
	if dev = decode[service.DeviceDetail](t, w); dev.NetChange != 2 {
		t.Fatalf("expected net change 2, got %d", dev.NetChange)
	}

	w = s.do(t, http.MethodGet, "/api/devices", "", nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[[]service.DeviceDetail](t, w); len(got) != 1 {
		t.Fatalf("expected 1 device, got %d", len(got))
	}
	expectStatus(t, s.do(t, http.MethodDelete, "/api/devices/"+dev.ID, "", nil), http.StatusOK)

	w = s.do(t, http.MethodPost, "/api/projects/"+proj.ID+"/requirements", "", map[string]any{"role": "Architect", "hours_per_week": 8})
	expectStatus(t, w, http.StatusCreated)
	req := decode[idBody](t, w)

	w = s.do(t, http.MethodPatch, "/api/requirements/"+req.ID, "", map[string]any{"duration_weeks": 6})
	expectStatus(t, w, http.StatusOK)

	w = s.do(t, http.MethodGet, "/api/requirements", "", nil)
	expectStatus(t, w, http.StatusOK)
	reqs := decode[[]models.ResourcingRequirement](t, w)
	if len(reqs) != 1 || reqs[0].DurationWeeks == nil || *reqs[0].DurationWeeks != 6 {
		t.Fatalf("unexpected requirements %+v", reqs)
	}
	expectStatus(t, s.do(t, http.MethodDelete, "/api/requirements/"+req.ID, "", nil), http.StatusOK)
}

func TestAuditLogAccess(t *testing.T) {
	s := newTestServer(t)
	admin := s.register(t, "root", models.UserAdmin)
	manager := s.register(t, "rm", models.UserResourceManager)
	engineer := s.register(t, "eng", models.UserEngineer)

	w := s.do(t, http.MethodPost, "/api/engineers", manager, map[string]any{"name": "Grace", "role": "Architect"})
	expectStatus(t, w, http.StatusCreated)

	expectStatus(t, s.do(t, http.MethodGet, "/api/audit/logs", "", nil), http.StatusUnauthorized)
	expectStatus(t, s.do(t, http.MethodGet, "/api/audit/logs", engineer, nil), http.StatusForbidden)
	expectStatus(t, s.do(t, http.MethodGet, "/api/audit/logs?limit=abc", admin, nil), http.StatusBadRequest)

	w = s.do(t, http.MethodGet, "/api/audit/logs?resource_type=engineer", manager, nil)
	expectStatus(t, w, http.StatusOK)
	entries := decode[[]models.AuditLogEntry](t, w)
	if len(entries) != 1 {
		t.Fatalf("expected 1 engineer audit entry, got %d", len(entries))
	}
	if entries[0].Username != "rm" || entries[0].Action != "create" {
		t.Fatalf("unexpected audit entry %+v", entries[0])
	}
	if entries[0].IPAddress == nil || *entries[0].IPAddress != "192.0.2.1" {
		t.Fatalf("expected client ip recorded, got %v", entries[0].IPAddress)
	}
}

func TestExportAndImport(t *testing.T) {
	s := newTestServer(t)
	admin := s.register(t, "root", models.UserAdmin)

	csvBody := "name,role,total_capacity,ktlo_tax\nLin,Wireless Engineer,32,4\nMo,Nope,x,\n"

	expectStatus(t, s.do(t, http.MethodPost, "/api/import/engineers", "", csvBody), http.StatusUnauthorized)

	req := httptest.NewRequest(http.MethodPost, "/api/import/engineers", strings.NewReader(csvBody))
	req.Header.Set("Content-Type", "text/csv")
	req.Header.Set("Authorization", "Bearer "+admin)
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	expectStatus(t, w, http.StatusOK)
	res := decode[service.ImportResult](t, w)
	if res.Imported != 2 || res.Skipped != 0 {
		t.Fatalf("unexpected import result %+v", res)
	}

	// The same rows again through a multipart upload are all duplicates.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "engineers.csv")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = fw.Write([]byte(csvBody))
	mw.Close()
	req = httptest.NewRequest(http.MethodPost, "/api/import/engineers", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+admin)
	w = httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	expectStatus(t, w, http.StatusOK)
	res = decode[service.ImportResult](t, w)
	if res.Imported != 0 || res.Skipped != 2 || len(res.Errors) != 2 {
		t.Fatalf("unexpected duplicate import result %+v", res)
	}

	w = s.do(t, http.MethodGet, "/api/export/engineers.csv", "", nil)
	expectStatus(t, w, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Lin,Wireless Engineer,32,4") || !strings.Contains(body, "Mo,Network Engineer,40,0") {
		t.Fatalf("unexpected export:\n%s", body)
	}

	w = s.do(t, http.MethodGet, "/api/export/workbook.xlsx", "", nil)
	expectStatus(t, w, http.StatusOK)
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Fatalf("workbook is not a zip archive")
	}

	expectStatus(t, s.do(t, http.MethodGet, "/api/export/users.csv", "", nil), http.StatusNotFound)
}

func TestSnapshotRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := s.register(t, "root", models.UserAdmin)
	engineer := s.register(t, "eng", models.UserEngineer)

	expectStatus(t, s.do(t, http.MethodPost, "/api/snapshots/create", engineer, nil), http.StatusForbidden)

	w := s.do(t, http.MethodPost, "/api/engineers", "", map[string]any{"name": "Kept", "role": "Architect"})
	expectStatus(t, w, http.StatusCreated)

	w = s.do(t, http.MethodPost, "/api/snapshots/create", admin, nil)
	expectStatus(t, w, http.StatusCreated)
	created := decode[struct {
		Snapshot struct {
			Filename string `json:"filename"`
		} `json:"snapshot"`
	}](t, w)
	if !strings.HasPrefix(created.Snapshot.Filename, "snapshot_") {
		t.Fatalf("unexpected snapshot name %q", created.Snapshot.Filename)
	}

	w = s.do(t, http.MethodPost, "/api/engineers", "", map[string]any{"name": "Dropped", "role": "Architect"})
	expectStatus(t, w, http.StatusCreated)

	w = s.do(t, http.MethodPost, "/api/snapshots/restore/"+created.Snapshot.Filename, admin, nil)
	expectStatus(t, w, http.StatusOK)
	restored := decode[struct {
		SafetyCopy string `json:"safety_copy"`
	}](t, w)
	if !strings.HasPrefix(restored.SafetyCopy, "pre_restore_safety_") {
		t.Fatalf("unexpected safety copy %q", restored.SafetyCopy)
	}

	w = s.do(t, http.MethodGet, "/api/engineers", "", nil)
	expectStatus(t, w, http.StatusOK)
	if engs := decode[[]service.EngineerDetail](t, w); len(engs) != 1 || engs[0].Name != "Kept" {
		t.Fatalf("expected only the snapshotted engineer, got %+v", engs)
	}

	w = s.do(t, http.MethodGet, "/api/snapshots", admin, nil)
	expectStatus(t, w, http.StatusOK)
	if list := decode[[]map[string]any](t, w); len(list) != 2 {
		t.Fatalf("expected snapshot and safety copy, got %d", len(list))
	}

	expectStatus(t, s.do(t, http.MethodPost, "/api/snapshots/restore/snapshot_19990101_000000.db", admin, nil), http.StatusNotFound)
	expectStatus(t, s.do(t, http.MethodPost, "/api/snapshots/restore/notes.txt", admin, nil), http.StatusBadRequest)
}

func TestPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected allow-origin header, got %q", got)
	}

	expectStatus(t, s.do(t, http.MethodGet, "/api/nothing-here", "", nil), http.StatusNotFound)
}
