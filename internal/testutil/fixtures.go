// Package testutil generates PDF and workbook fixtures for package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
)

// WritePDF writes a PDF with one page per entry of pages. Every line is
// placed in its own cell; a nil or empty entry produces a blank page.
func WritePDF(t testing.TB, dir, name string, pages [][]string) string {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.SetFont("Helvetica", "", 11)

	for _, lines := range pages {
		doc.AddPage()
		for _, line := range lines {
			doc.Cell(0, 8, line+" ")
			doc.Ln(8)
		}
	}

	path := filepath.Join(dir, name)
	if err := doc.OutputFileAndClose(path); err != nil {
		t.Fatalf("failed to write PDF fixture %s: %v", name, err)
	}
	return path
}

// WriteCorruptPDF writes a file with a .pdf extension that no parser accepts
func WriteCorruptPDF(t testing.TB, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("%PDF-1.4\nthis is not really a pdf\n"), 0o644); err != nil {
		t.Fatalf("failed to write corrupt PDF fixture %s: %v", name, err)
	}
	return path
}

// Sheet is a named sheet with its rows for WriteWorkbook
type Sheet struct {
	Name string
	Rows [][]interface{}
}

// WriteWorkbook writes an xlsx file containing sheets in order
func WriteWorkbook(t testing.TB, dir, name string, sheets []Sheet) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				t.Fatalf("failed to rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			t.Fatalf("failed to add sheet %s: %v", sheet.Name, err)
		}

		for r, row := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("bad cell coordinates: %v", err)
			}
			if err := f.SetSheetRow(sheet.Name, cell, &row); err != nil {
				t.Fatalf("failed to write row: %v", err)
			}
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save workbook fixture %s: %v", name, err)
	}
	return path
}

// ReadSheet returns all rows of a sheet in an xlsx file
func ReadSheet(t testing.TB, path, sheet string) [][]string {
	t.Helper()

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to open workbook %s: %v", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("failed to read sheet %s: %v", sheet, err)
	}
	return rows
}

// SheetList returns the sheet names of an xlsx file in order
func SheetList(t testing.TB, path string) []string {
	t.Helper()

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to open workbook %s: %v", path, err)
	}
	defer f.Close()

	return f.GetSheetList()
}
