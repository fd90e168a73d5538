package records

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/a3tai/tender-ai-tagger/internal/extraction"
	"github.com/a3tai/tender-ai-tagger/internal/pdf"
	"github.com/a3tai/tender-ai-tagger/internal/rules"
	"github.com/a3tai/tender-ai-tagger/internal/workbook"
)

const (
	// Day, month and year separated by '-', '/' or '.', with a 2 to 4 digit year
	datePattern  = `(\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4})`
	labelPattern = `(Corrigendum|Addendum|Amendment)`
)

var canonicalLabels = map[string]string{
	"corrigendum": "Corrigendum",
	"addendum":    "Addendum",
	"amendment":   "Amendment",
}

// PageReader turns a document path into its pages
type PageReader interface {
	ReadPages(path string) []pdf.Page
}

// AmendmentRecord is one row of the AmendmentTracker sheet
type AmendmentRecord struct {
	Type     string `json:"amendment_type"`
	FileName string `json:"file_name"`
	Date     string `json:"date"`
	Notes    string `json:"notes"`
	Pages    int    `json:"pages"`
}

// AmendmentProcessor detects the type and date of amendment documents
type AmendmentProcessor struct {
	reader PageReader
	engine *extraction.Engine
	logger *zap.Logger
}

// NewAmendmentProcessor creates a processor reading documents through reader
func NewAmendmentProcessor(reader PageReader, engine *extraction.Engine, logger *zap.Logger) *AmendmentProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmendmentProcessor{reader: reader, engine: engine, logger: logger}
}

// Process reads each document in order and returns one record per path,
// including documents that could not be read
func (p *AmendmentProcessor) Process(paths []string) []AmendmentRecord {
	records := make([]AmendmentRecord, 0, len(paths))
	for _, path := range paths {
		pages := p.reader.ReadPages(path)
		records = append(records, p.Detect(filepath.Base(path), pages))
	}
	return records
}

// Detect looks for the first date-like token and the first amendment label
// independently; either is left empty when absent
func (p *AmendmentProcessor) Detect(fileName string, pages []pdf.Page) AmendmentRecord {
	record := AmendmentRecord{FileName: fileName, Pages: len(pages)}

	date, err := p.engine.FirstCapture(pages, datePattern, rules.IgnoreCase)
	if err != nil {
		p.logger.Warn("Date detection failed", zap.String("file", fileName), zap.Error(err))
	}
	record.Date = date

	label, err := p.engine.FirstCapture(pages, labelPattern, rules.IgnoreCase)
	if err != nil {
		p.logger.Warn("Label detection failed", zap.String("file", fileName), zap.Error(err))
	}
	record.Type = canonicalLabels[strings.ToLower(label)]

	p.logger.Debug("Amendment detected",
		zap.String("file", fileName), zap.String("type", record.Type),
		zap.String("date", record.Date), zap.Int("pages", record.Pages))
	return record
}

// AmendmentSheet lays out amendment records in input order
func AmendmentSheet(records []AmendmentRecord) workbook.Sheet {
	sheet := workbook.Sheet{Name: SheetAmendments, Columns: AmendmentColumns}
	for _, r := range records {
		sheet.Rows = append(sheet.Rows, []interface{}{r.Type, r.FileName, r.Date, r.Notes, r.Pages})
	}
	return sheet
}
