package csvio

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
)

// Dataset is everything exported into a workbook.
type Dataset struct {
	Engineers   []models.Engineer
	Projects    []models.Project
	Allocations []models.Allocation
	Names       Names
}

// WriteWorkbook writes one sheet per entity kind using the CSV column
// layouts.
func WriteWorkbook(w io.Writer, data Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{"Engineers", engineerHeader, nil},
		{"Projects", projectHeader, nil},
		{"Allocations", allocationHeader, nil},
	}
	for _, e := range data.Engineers {
		sheets[0].rows = append(sheets[0].rows, engineerRecord(e))
	}
	for _, p := range data.Projects {
		sheets[1].rows = append(sheets[1].rows, projectRecord(p))
	}
	for _, a := range data.Allocations {
		sheets[2].rows = append(sheets[2].rows, allocationRecord(a, data.Names))
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("new sheet %s: %w", s.name, err)
		}
		if err := writeSheetRow(f, s.name, 1, s.header); err != nil {
			return err
		}
		for r, row := range s.rows {
			if err := writeSheetRow(f, s.name, r+2, row); err != nil {
				return err
			}
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheetRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
