// Package export writes run results as JSON, CSV and XLSX files and as
// terminal tables.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/dyluth/prdflow/internal/config"
	"github.com/dyluth/prdflow/pkg/assign"
)

// Document is the exported shape of a run.
type Document struct {
	Epics       []string          `json:"epics"`
	UserStories []string          `json:"user_stories"`
	Assignments assign.Assignment `json:"assignments"`
}

// Column headers shared by the CSV and XLSX writers.
const (
	HeaderStory    = "User Story"
	HeaderEngineer = "Assigned Engineer"
)

// WriteAll writes doc as <prefix>.<format> for each format and returns the
// paths written, in format order.
func WriteAll(prefix string, formats []string, doc *Document) ([]string, error) {
	var written []string
	for _, f := range formats {
		path := prefix + "." + f
		var err error
		switch f {
		case config.FormatJSON:
			err = WriteJSON(path, doc)
		case config.FormatCSV:
			err = WriteCSV(path, doc.Assignments)
		case config.FormatXLSX:
			err = WriteXLSX(path, doc)
		default:
			err = fmt.Errorf("unsupported output format: %s", f)
		}
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(path string, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal output document: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes one row per assignment under a header row.
func WriteCSV(path string, assignments assign.Assignment) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{HeaderStory, HeaderEngineer}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, p := range assignments {
		if err := w.Write([]string{p.Story, p.Engineer}); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return f.Close()
}

// Sheet names in the XLSX workbook.
const (
	SheetEpics       = "Epics"
	SheetStories     = "User Stories"
	SheetAssignments = "Assignments"
)

// WriteXLSX writes a workbook with Epics, User Stories and Assignments sheets.
func WriteXLSX(path string, doc *Document) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetEpics); err != nil {
		return fmt.Errorf("failed to name epics sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetStories); err != nil {
		return fmt.Errorf("failed to add stories sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetAssignments); err != nil {
		return fmt.Errorf("failed to add assignments sheet: %w", err)
	}

	epicRows := [][]interface{}{{"Epics"}}
	for _, e := range doc.Epics {
		epicRows = append(epicRows, []interface{}{e})
	}
	storyRows := [][]interface{}{{"User Stories"}}
	for _, s := range doc.UserStories {
		storyRows = append(storyRows, []interface{}{s})
	}
	assignmentRows := [][]interface{}{{HeaderStory, HeaderEngineer}}
	for _, p := range doc.Assignments {
		assignmentRows = append(assignmentRows, []interface{}{p.Story, p.Engineer})
	}

	for sheet, rows := range map[string][][]interface{}{
		SheetEpics:       epicRows,
		SheetStories:     storyRows,
		SheetAssignments: assignmentRows,
	} {
		if err := writeRows(f, sheet, rows); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
