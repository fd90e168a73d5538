package pdf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"
)

// Reader turns PDF files into page sequences. Text comes from ledongthuc/pdf;
// when that backend cannot open a file, pdfcpu is asked for the page count so
// callers still see one (empty) page per physical page.
type Reader struct {
	validator *Validator
	logger    *zap.Logger
}

// NewReader creates a new PDF reader with the specified constraints
func NewReader(maxFileSize int64, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	// pdfcpu would otherwise create a configuration directory under $HOME
	api.DisableConfigDir()

	return &Reader{
		validator: NewValidator(maxFileSize),
		logger:    logger,
	}
}

// ReadPages returns one Page per document page, numbered from 1. It never
// fails: an unreadable document is logged and yields no pages, and a page
// whose text cannot be extracted yields an empty string.
func (r *Reader) ReadPages(path string) []Page {
	log := r.logger.With(zap.String("file", filepath.Base(path)))

	if err := r.validator.ValidateFile(path); err != nil {
		log.Warn("Error reading PDF", zap.Error(err))
		return nil
	}

	pages, err := r.readText(path)
	if err == nil {
		log.Debug("Read PDF", zap.Int("pages", len(pages)))
		return pages
	}

	count, countErr := r.countPages(path)
	if countErr != nil {
		log.Warn("Error reading PDF", zap.Error(err), zap.NamedError("fallback_error", countErr))
		return nil
	}

	log.Warn("PDF text unavailable, keeping empty pages", zap.Error(err), zap.Int("pages", count))
	return EmptyPages(count)
}

// readText extracts the plain text of every page with ledongthuc/pdf
func (r *Reader) readText(path string) (pages []Page, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pages = nil
			err = &ReadError{Backend: BackendLedongthuc, Op: "open", Path: path, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	f, pdfReader, err := pdf.Open(path)
	if err != nil {
		return nil, &ReadError{Backend: BackendLedongthuc, Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	total := pdfReader.NumPage()
	pages = make([]Page, 0, total)
	for pageNum := 1; pageNum <= total; pageNum++ {
		text, err := r.pageText(pdfReader, path, pageNum)
		if err != nil {
			// Keep the page so numbering and page counts stay accurate
			r.logger.Warn("Page text extraction failed",
				zap.String("file", filepath.Base(path)), zap.Int("page", pageNum), zap.Error(err))
		}
		pages = append(pages, Page{Number: pageNum, Text: text})
	}

	return pages, nil
}

// pageText extracts one page, converting decoder panics into errors
func (r *Reader) pageText(pdfReader *pdf.Reader, path string, pageNum int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = &ReadError{Backend: BackendLedongthuc, Op: "page_text", Path: path, Page: pageNum, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	page := pdfReader.Page(pageNum)
	if page.V.IsNull() {
		return "", nil
	}

	content, err := page.GetPlainText(nil)
	if err != nil {
		return "", &ReadError{Backend: BackendLedongthuc, Op: "page_text", Path: path, Page: pageNum, Err: err}
	}

	return content, nil
}

// countPages parses the document structure with pdfcpu in relaxed mode
func (r *Reader) countPages(path string) (count int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			count = 0
			err = &ReadError{Backend: BackendPDFCPU, Op: "page_count", Path: path, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	file, err := os.Open(path)
	if err != nil {
		return 0, &ReadError{Backend: BackendPDFCPU, Op: "page_count", Path: path, Err: fmt.Errorf("failed to open file: %w", err)}
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return 0, &ReadError{Backend: BackendPDFCPU, Op: "page_count", Path: path, Err: fmt.Errorf("failed to read PDF context: %w", err)}
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return 0, &ReadError{Backend: BackendPDFCPU, Op: "page_count", Path: path, Err: fmt.Errorf("failed to ensure page count: %w", err)}
	}

	return ctx.PageCount, nil
}
