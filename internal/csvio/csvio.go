// Package csvio reads engineers and projects from CSV and writes entity
// listings as CSV or as an XLSX workbook.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
)

const (
	// FirstDataRow is the spreadsheet row number of the first record after
	// the header.
	FirstDataRow = 2
	// justificationLimit caps imported business justifications.
	justificationLimit = 500
	// exportJustificationLimit caps business justifications in CSV exports.
	exportJustificationLimit = 200
)

// RowError reports a rejected input row.
type RowError struct {
	Row     int
	Message string
}

func (e RowError) String() string {
	return fmt.Sprintf("Row %d: %s", e.Row, e.Message)
}

// EngineerRow is a parsed engineer with its source row number.
type EngineerRow struct {
	Row      int
	Engineer models.Engineer
}

// ProjectRow is a parsed project with its source row number.
type ProjectRow struct {
	Row     int
	Project models.Project
}

type record struct {
	row    int
	fields map[string]string
}

func readRecords(r io.Reader) ([]record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	var out []record
	for row := FirstDataRow; ; row++ {
		values, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}
		rec := record{row: row, fields: make(map[string]string, len(header))}
		for i, h := range header {
			if i < len(values) {
				rec.fields[h] = values[i]
			}
		}
		out = append(out, rec)
	}
}

// get returns the trimmed value of col, or def when the column is absent.
func (r record) get(col, def string) string {
	v, ok := r.fields[col]
	if !ok {
		return def
	}
	return strings.TrimSpace(v)
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

// ReadEngineers parses engineer rows with columns name, role,
// total_capacity and ktlo_tax. Unknown roles fall back to Network Engineer
// and unparseable numbers to 40 and 0. Rows without a name are rejected.
func ReadEngineers(r io.Reader) ([]EngineerRow, []RowError, error) {
	recs, err := readRecords(r)
	if err != nil {
		return nil, nil, err
	}
	var rows []EngineerRow
	var rejected []RowError
	for _, rec := range recs {
		name := rec.get("name", "")
		if name == "" {
			rejected = append(rejected, RowError{Row: rec.row, Message: "Missing name (skipped)"})
			continue
		}
		role := models.Role(rec.get("role", string(models.RoleNetworkEngineer)))
		if !role.Valid() {
			role = models.RoleNetworkEngineer
		}
		rows = append(rows, EngineerRow{Row: rec.row, Engineer: models.Engineer{
			Name:          name,
			Role:          role,
			TotalCapacity: atoiOr(rec.get("total_capacity", "40"), 40),
			KtloTax:       atoiOr(rec.get("ktlo_tax", "0"), 0),
		}})
	}
	return rows, rejected, nil
}

// ReadProjects parses project rows with columns name, priority,
// workflow_status, start_date, target_end_date and business_justification.
// Unknown priorities fall back to P2-Strategic, unknown workflow statuses to
// Draft, and unparseable dates are dropped.
func ReadProjects(r io.Reader) ([]ProjectRow, []RowError, error) {
	recs, err := readRecords(r)
	if err != nil {
		return nil, nil, err
	}
	var rows []ProjectRow
	var rejected []RowError
	for _, rec := range recs {
		name := rec.get("name", "")
		if name == "" {
			rejected = append(rejected, RowError{Row: rec.row, Message: "Missing name (skipped)"})
			continue
		}
		priority := models.Priority(rec.get("priority", string(models.PriorityStrategic)))
		if !priority.Valid() {
			priority = models.PriorityStrategic
		}
		workflow := models.WorkflowStatus(rec.get("workflow_status", string(models.WorkflowDraft)))
		if !workflow.Valid() {
			workflow = models.WorkflowDraft
		}
		p := models.Project{
			Name:           name,
			Priority:       priority,
			Status:         models.ProjectHealthy,
			RagStatus:      models.RagGreen,
			WorkflowStatus: workflow,
			StartDate:      parseDate(rec.get("start_date", "")),
			TargetEndDate:  parseDate(rec.get("target_end_date", "")),
		}
		if bj, ok := rec.fields["business_justification"]; ok {
			bj = truncate(bj, justificationLimit)
			p.BusinessJustification = &bj
		}
		rows = append(rows, ProjectRow{Row: rec.row, Project: p})
	}
	return rows, rejected, nil
}

// parseDate accepts a calendar date, optionally followed by a time, and
// returns it normalized to YYYY-MM-DD.
func parseDate(s string) *string {
	if s == "" {
		return nil
	}
	for _, layout := range []string{models.DateLayout, "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d := t.Format(models.DateLayout)
			return &d
		}
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var (
	engineerHeader   = []string{"id", "name", "role", "total_capacity", "ktlo_tax"}
	projectHeader    = []string{"id", "name", "project_number", "priority", "workflow_status", "status", "start_date", "target_end_date", "business_justification"}
	allocationHeader = []string{"id", "engineer_id", "engineer_name", "project_id", "project_name", "day", "hours", "category"}
)

func engineerRecord(e models.Engineer) []string {
	return []string{e.ID, e.Name, string(e.Role), strconv.Itoa(e.TotalCapacity), strconv.Itoa(e.KtloTax)}
}

func projectRecord(p models.Project) []string {
	bj := strings.ReplaceAll(deref(p.BusinessJustification), "\n", " ")
	return []string{
		p.ID, p.Name, deref(p.ProjectNumber), string(p.Priority), string(p.WorkflowStatus),
		string(p.Status), deref(p.StartDate), deref(p.TargetEndDate), truncate(bj, exportJustificationLimit),
	}
}

// Names maps entity ids to display names for allocation exports.
type Names struct {
	Engineers map[string]string
	Projects  map[string]string
}

func lookup(m map[string]string, id string) string {
	if n, ok := m[id]; ok {
		return n
	}
	return "Unknown"
}

func allocationRecord(a models.Allocation, names Names) []string {
	return []string{
		a.ID, a.EngineerID, lookup(names.Engineers, a.EngineerID), a.ProjectID, lookup(names.Projects, a.ProjectID),
		string(a.Day), strconv.Itoa(a.Hours), string(a.Category),
	}
}

func writeAll(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func WriteEngineers(w io.Writer, engineers []models.Engineer) error {
	rows := make([][]string, len(engineers))
	for i, e := range engineers {
		rows[i] = engineerRecord(e)
	}
	return writeAll(w, engineerHeader, rows)
}

// WriteProjects writes projects with business justifications flattened to
// one line and cut to 200 characters.
func WriteProjects(w io.Writer, projects []models.Project) error {
	rows := make([][]string, len(projects))
	for i, p := range projects {
		rows[i] = projectRecord(p)
	}
	return writeAll(w, projectHeader, rows)
}

// WriteAllocations writes allocations with engineer and project names
// resolved through names; unresolved ids are written as "Unknown".
func WriteAllocations(w io.Writer, allocations []models.Allocation, names Names) error {
	rows := make([][]string, len(allocations))
	for i, a := range allocations {
		rows[i] = allocationRecord(a, names)
	}
	return writeAll(w, allocationHeader, rows)
}
