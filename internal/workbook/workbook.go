// Package workbook clones the sheet structure of a template workbook and
// writes the populated output workbook.
package workbook

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// MaxSheetNameLength is the longest sheet name the xlsx format accepts
const MaxSheetNameLength = 31

const defaultSheet = "Sheet1"

// Sheet is a header row plus data rows destined for one worksheet
type Sheet struct {
	Name    string
	Columns []string
	Rows    [][]interface{}
}

// SafeSheetName truncates name to MaxSheetNameLength characters. Distinct
// long names sharing a prefix collapse to the same sheet.
func SafeSheetName(name string) string {
	runes := []rune(name)
	if len(runes) <= MaxSheetNameLength {
		return name
	}
	return string(runes[:MaxSheetNameLength])
}

// Builder reads templates and writes output workbooks
type Builder struct {
	logger *zap.Logger
}

// NewBuilder creates a workbook builder
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger}
}

// CloneTemplate returns one empty sheet per template sheet, keeping the
// template's sheet order and header row.
func (b *Builder) CloneTemplate(path string) ([]Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	clones := make([]Sheet, 0, len(names))
	for _, name := range names {
		header, err := headerRow(f, name)
		if err != nil {
			b.logger.Warn("Template sheet unreadable, cloning without columns",
				zap.String("sheet", name), zap.Error(err))
			header = nil
		}
		clones = append(clones, Sheet{Name: name, Columns: headerColumns(header)})
	}

	b.logger.Debug("Cloned template", zap.String("path", path), zap.Int("sheets", len(clones)))
	return clones, nil
}

// headerRow streams sheet and returns its first non-blank row, or nil when
// every row is blank. Rows below the header are never read.
func headerRow(f *excelize.File, sheet string) ([]string, error) {
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		cells, err := rows.Columns()
		if err != nil {
			return nil, err
		}
		if !isBlank(cells) {
			return cells, nil
		}
	}
	return nil, rows.Error()
}

// headerColumns names the header cells. Blank cells become
// "Unnamed: <index>" and repeated names get a ".<n>" suffix.
func headerColumns(row []string) []string {
	if isBlank(row) {
		return nil
	}

	columns := make([]string, len(row))
	seen := make(map[string]int, len(row))
	for i, cell := range row {
		name := strings.TrimSpace(cell)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		columns[i] = name
	}
	return columns
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Layout orders sheets for writing: names are truncated, and a later sheet
// whose name matches an earlier one (case-insensitively, as Excel compares
// names) replaces it in place.
func Layout(sheets ...[]Sheet) []Sheet {
	var ordered []Sheet
	index := make(map[string]int)

	for _, group := range sheets {
		for _, sheet := range group {
			sheet.Name = SafeSheetName(sheet.Name)
			key := strings.ToLower(sheet.Name)
			if i, ok := index[key]; ok {
				ordered[i] = sheet
				continue
			}
			index[key] = len(ordered)
			ordered = append(ordered, sheet)
		}
	}
	return ordered
}

// Write saves clones followed by the standard sheets to path. Standard
// sheets take precedence over clones of the same name.
func (b *Builder) Write(path string, clones []Sheet, standard []Sheet) error {
	sheets := Layout(clones, standard)
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if sheet.Name != defaultSheet {
				if err := f.SetSheetName(defaultSheet, sheet.Name); err != nil {
					return fmt.Errorf("failed to name sheet %q: %w", sheet.Name, err)
				}
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", sheet.Name, err)
		}

		if err := writeSheet(f, sheet); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	b.logger.Debug("Wrote workbook", zap.String("path", path), zap.Int("sheets", len(sheets)))
	return nil
}

func writeSheet(f *excelize.File, sheet Sheet) error {
	row := 1
	if len(sheet.Columns) > 0 {
		if err := f.SetSheetRow(sheet.Name, "A1", &sheet.Columns); err != nil {
			return fmt.Errorf("failed to write header of %q: %w", sheet.Name, err)
		}
		row++
	}

	for _, values := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", row, sheet.Name, err)
		}
		row++
	}
	return nil
}
