package pdf

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/a3tai/tender-ai-tagger/internal/testutil"
)

func newObservedReader(maxFileSize int64) (*Reader, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewReader(maxFileSize, zap.New(core)), logs
}

func TestReader_ReadPages(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WritePDF(t, dir, "rfs.pdf", [][]string{
		{"Request for Selection", "Rated Capacity: 250 MW"},
		nil,
		{"Bid Due Date 15/07/2024"},
	})

	reader, logs := newObservedReader(10 * 1024 * 1024)
	pages := reader.ReadPages(path)

	require.Len(t, pages, 3)
	for i, page := range pages {
		assert.Equal(t, i+1, page.Number)
	}
	assert.Contains(t, pages[0].Text, "Rated Capacity: 250 MW")
	assert.Empty(t, strings.TrimSpace(pages[1].Text))
	assert.Contains(t, pages[2].Text, "15/07/2024")
	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestReader_ReadPages_Failures(t *testing.T) {
	dir := t.TempDir()

	txtPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("not a pdf"), 0o644))

	emptyPath := filepath.Join(dir, "empty.pdf")
	require.NoError(t, os.WriteFile(emptyPath, nil, 0o644))

	dirPath := filepath.Join(dir, "folder.pdf")
	require.NoError(t, os.Mkdir(dirPath, 0o755))

	largePath := filepath.Join(dir, "large.pdf")
	require.NoError(t, os.WriteFile(largePath, make([]byte, 2048), 0o644))

	corruptPath := testutil.WriteCorruptPDF(t, dir, "corrupt.pdf")

	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: filepath.Join(dir, "missing.pdf")},
		{name: "empty path", path: ""},
		{name: "text file", path: txtPath},
		{name: "empty file", path: emptyPath},
		{name: "directory", path: dirPath},
		{name: "too large", path: largePath},
		{name: "corrupt content", path: corruptPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, logs := newObservedReader(1024)

			var pages []Page
			assert.NotPanics(t, func() {
				pages = reader.ReadPages(tt.path)
			})
			assert.Empty(t, pages)
			assert.Equal(t, 1, logs.FilterMessage("Error reading PDF").Len())
		})
	}
}

func TestReader_ReadPages_AnyFileName(t *testing.T) {
	dir := t.TempDir()
	pages := [][]string{{"Request for Selection"}, {"Rated Capacity: 250 MW"}}

	for _, name := range []string{"rfs.pdf", "RfS_SECI_2024.pdf.download", "RfS_SECI_2024"} {
		t.Run(name, func(t *testing.T) {
			path := testutil.WritePDF(t, dir, name, pages)

			reader, logs := newObservedReader(10 * 1024 * 1024)
			got := reader.ReadPages(path)

			require.Len(t, got, 2)
			assert.Contains(t, got[1].Text, "250 MW")
			assert.Zero(t, logs.FilterMessage("Error reading PDF").Len())
		})
	}
}

func TestReader_ReadPages_PageCountFallback(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WritePDF(t, dir, "v2.pdf", [][]string{{"a"}, {"b"}, {"c"}})

	// A PDF 2.0 header is refused by ledongthuc/pdf but parsed by pdfcpu.
	// Both headers have the same length so the xref offsets stay valid.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "%PDF-1."))
	copy(data, "%PDF-2.0")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	reader, logs := newObservedReader(10 * 1024 * 1024)
	pages := reader.ReadPages(path)

	assert.Equal(t, EmptyPages(3), pages)
	assert.Equal(t, 1, logs.FilterMessage("PDF text unavailable, keeping empty pages").Len())
	assert.Zero(t, logs.FilterMessage("Error reading PDF").Len())
}

func TestReader_CountPages(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WritePDF(t, dir, "four.pdf", [][]string{{"a"}, {"b"}, {"c"}, {"d"}})

	reader := NewReader(10*1024*1024, nil)
	count, err := reader.countPages(path)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	_, err = reader.countPages(testutil.WriteCorruptPDF(t, dir, "bad.pdf"))
	require.Error(t, err)

	var readErr *ReadError
	require.True(t, errors.As(err, &readErr))
	assert.Equal(t, BackendPDFCPU, readErr.Backend)
	assert.Equal(t, "page_count", readErr.Op)
}

func TestReadError(t *testing.T) {
	inner := errors.New("bad xref")

	err := &ReadError{Backend: BackendLedongthuc, Op: "page_text", Path: "rfs.pdf", Page: 7, Err: inner}
	assert.Contains(t, err.Error(), "ledongthuc")
	assert.Contains(t, err.Error(), "page 7")
	assert.ErrorIs(t, err, inner)

	noPage := &ReadError{Backend: BackendPDFCPU, Op: "open", Path: "rfs.pdf", Err: inner}
	assert.NotContains(t, noPage.Error(), "page ")
}

func TestEmptyPages(t *testing.T) {
	pages := EmptyPages(3)
	require.Len(t, pages, 3)
	assert.Equal(t, Page{Number: 1}, pages[0])
	assert.Equal(t, Page{Number: 3}, pages[2])
	assert.Empty(t, EmptyPages(0))
}
