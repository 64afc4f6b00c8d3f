package service

import (
	"context"
	"fmt"
	"io"

	"github.com/philipcowcer-eng/LoadBalance/internal/csvio"
	"github.com/philipcowcer-eng/LoadBalance/pkg/repository"
)

// maxImportErrors caps the row errors reported back from an import.
const maxImportErrors = 20

// ImportResult summarizes a CSV import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

func (r *ImportResult) reject(row int, format string, args ...any) {
	r.Skipped++
	if len(r.Errors) < maxImportErrors {
		r.Errors = append(r.Errors, csvio.RowError{Row: row, Message: fmt.Sprintf(format, args...)}.String())
	}
}

func newImportResult(rejected []csvio.RowError) *ImportResult {
	res := &ImportResult{Errors: []string{}}
	for _, e := range rejected {
		res.reject(e.Row, "%s", e.Message)
	}
	return res
}

// ImportEngineers creates an engineer per CSV row. Rows whose name already
// exists, in the store or earlier in the file, are skipped.
func (s *Service) ImportEngineers(ctx context.Context, r io.Reader) (*ImportResult, error) {
	rows, rejected, err := csvio.ReadEngineers(r)
	if err != nil {
		return nil, invalid("file", "unreadable CSV: %v", err)
	}
	res := newImportResult(rejected)
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		seen := map[string]bool{}
		for _, row := range rows {
			e := row.Engineer
			if seen[e.Name] {
				res.reject(row.Row, "Engineer '%s' already exists (skipped)", e.Name)
				continue
			}
			existing, err := tx.GetEngineerByName(ctx, e.Name)
			if err != nil {
				return err
			}
			if existing != nil {
				res.reject(row.Row, "Engineer '%s' already exists (skipped)", e.Name)
				continue
			}
			if err := s.check(e); err != nil {
				res.reject(row.Row, "%v", err)
				continue
			}
			err = tx.Savepoint(ctx, "import_row", func() error {
				return tx.CreateEngineer(ctx, &e)
			})
			if err != nil {
				res.reject(row.Row, "%v", err)
				continue
			}
			seen[e.Name] = true
			res.Imported++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, "import", ResourceEngineer, "", map[string]any{"imported": res.Imported, "skipped": res.Skipped}, nil, nil)
	return res, nil
}

// ImportProjects creates a project per CSV row, skipping duplicate names.
func (s *Service) ImportProjects(ctx context.Context, r io.Reader) (*ImportResult, error) {
	rows, rejected, err := csvio.ReadProjects(r)
	if err != nil {
		return nil, invalid("file", "unreadable CSV: %v", err)
	}
	res := newImportResult(rejected)
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		seen := map[string]bool{}
		for _, row := range rows {
			p := row.Project
			if seen[p.Name] {
				res.reject(row.Row, "Project '%s' already exists (skipped)", p.Name)
				continue
			}
			existing, err := tx.GetProjectByName(ctx, p.Name)
			if err != nil {
				return err
			}
			if existing != nil {
				res.reject(row.Row, "Project '%s' already exists (skipped)", p.Name)
				continue
			}
			if err := s.check(p); err != nil {
				res.reject(row.Row, "%v", err)
				continue
			}
			err = tx.Savepoint(ctx, "import_row", func() error {
				return tx.CreateProject(ctx, &p)
			})
			if err != nil {
				res.reject(row.Row, "%v", err)
				continue
			}
			seen[p.Name] = true
			res.Imported++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, "import", ResourceProject, "", map[string]any{"imported": res.Imported, "skipped": res.Skipped}, nil, nil)
	return res, nil
}

// ExportData loads everything an export needs, with names resolved for
// allocation rows.
func (s *Service) ExportData(ctx context.Context) (csvio.Dataset, error) {
	var data csvio.Dataset
	var err error
	if data.Engineers, err = s.store.ListEngineers(ctx); err != nil {
		return data, fmt.Errorf("list engineers: %w", err)
	}
	if data.Projects, err = s.store.ListProjects(ctx); err != nil {
		return data, fmt.Errorf("list projects: %w", err)
	}
	if data.Allocations, err = s.store.ListAllocations(ctx); err != nil {
		return data, fmt.Errorf("list allocations: %w", err)
	}
	data.Names = csvio.Names{
		Engineers: make(map[string]string, len(data.Engineers)),
		Projects:  make(map[string]string, len(data.Projects)),
	}
	for _, e := range data.Engineers {
		data.Names.Engineers[e.ID] = e.Name
	}
	for _, p := range data.Projects {
		data.Names.Projects[p.ID] = p.Name
	}
	return data, nil
}
