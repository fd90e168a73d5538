package records

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/tender-ai-tagger/internal/extraction"
	"github.com/a3tai/tender-ai-tagger/internal/pdf"
	"github.com/a3tai/tender-ai-tagger/internal/testutil"
)

type stubReader map[string][]pdf.Page

func (s stubReader) ReadPages(path string) []pdf.Page {
	return s[path]
}

func TestAmendmentProcessor_Detect(t *testing.T) {
	p := NewAmendmentProcessor(stubReader{}, extraction.NewEngine(nil), nil)

	tests := []struct {
		name     string
		pages    []pdf.Page
		wantType string
		wantDate string
	}{
		{
			name:     "addendum with slash date",
			pages:    []pdf.Page{{Number: 1, Text: "ADDENDUM No. 2 dated 12/05/2024 to RfS"}},
			wantType: "Addendum",
			wantDate: "12/05/2024",
		},
		{
			name:     "corrigendum with dotted two digit year",
			pages:    []pdf.Page{{Number: 1, Text: ""}, {Number: 2, Text: "corrigendum issued on 3.7.24"}},
			wantType: "Corrigendum",
			wantDate: "3.7.24",
		},
		{
			name:     "label and date on different pages",
			pages:    []pdf.Page{{Number: 1, Text: "Date: 01-02-2025"}, {Number: 2, Text: "Amendment to clause 4"}},
			wantType: "Amendment",
			wantDate: "01-02-2025",
		},
		{
			name:     "first label wins",
			pages:    []pdf.Page{{Number: 1, Text: "This Amendment supersedes the earlier Corrigendum"}},
			wantType: "Amendment",
		},
		{
			name:  "nothing found",
			pages: []pdf.Page{{Number: 1, Text: "Minutes of pre-bid meeting"}},
		},
		{
			name: "no pages",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := p.Detect("corr.pdf", tt.pages)
			assert.Equal(t, tt.wantType, record.Type)
			assert.Equal(t, tt.wantDate, record.Date)
			assert.Equal(t, "corr.pdf", record.FileName)
			assert.Equal(t, len(tt.pages), record.Pages)
			assert.Empty(t, record.Notes)
		})
	}
}

func TestAmendmentProcessor_Process(t *testing.T) {
	reader := stubReader{
		"/in/a/corr-1.pdf": {{Number: 1, Text: "Corrigendum 1 dated 12/05/2024"}, {Number: 2}},
		"/in/b/add-2.pdf":  {{Number: 1, Text: "Addendum"}},
	}
	p := NewAmendmentProcessor(reader, extraction.NewEngine(nil), nil)

	records := p.Process([]string{"/in/a/corr-1.pdf", "/in/missing.pdf", "/in/b/add-2.pdf"})
	require.Len(t, records, 3)

	assert.Equal(t, AmendmentRecord{Type: "Corrigendum", FileName: "corr-1.pdf", Date: "12/05/2024", Pages: 2}, records[0])
	assert.Equal(t, AmendmentRecord{FileName: "missing.pdf"}, records[1])
	assert.Equal(t, AmendmentRecord{Type: "Addendum", FileName: "add-2.pdf", Pages: 1}, records[2])

	sheet := AmendmentSheet(records)
	assert.Equal(t, SheetAmendments, sheet.Name)
	assert.Equal(t, AmendmentColumns, sheet.Columns)
	assert.Equal(t, []interface{}{"Corrigendum", "corr-1.pdf", "12/05/2024", "", 2}, sheet.Rows[0])
}

func TestAmendmentProcessor_RealDocument(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WritePDF(t, dir, "addendum-2.pdf", [][]string{
		{"Solar Energy Corporation of India"},
		{"ADDENDUM No. 2", "Dated: 12/05/2024"},
	})

	reader := pdf.NewReader(10*1024*1024, nil)
	p := NewAmendmentProcessor(reader, extraction.NewEngine(nil), nil)

	records := p.Process([]string{path, filepath.Join(dir, "absent.pdf")})
	require.Len(t, records, 2)

	assert.Equal(t, "Addendum", records[0].Type)
	assert.Equal(t, "12/05/2024", records[0].Date)
	assert.Equal(t, "addendum-2.pdf", records[0].FileName)
	assert.Equal(t, 2, records[0].Pages)

	assert.Equal(t, AmendmentRecord{FileName: "absent.pdf"}, records[1])
}
