package pdf

import "fmt"

// Page is the extracted text of one document page. Number is 1-indexed and
// Text is empty when the page yielded no text.
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Backend identifies the PDF library that produced an error
type Backend string

const (
	BackendLedongthuc Backend = "ledongthuc"
	BackendPDFCPU     Backend = "pdfcpu"
)

// ReadError wraps a failure from one of the PDF backends with the operation
// and location it happened at
type ReadError struct {
	Backend Backend `json:"backend"`
	Op      string  `json:"operation"`
	Path    string  `json:"path"`
	Page    int     `json:"page,omitempty"`
	Err     error   `json:"error"`
}

func (e *ReadError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("PDF %s backend error in %s (%s page %d): %v", e.Backend, e.Op, e.Path, e.Page, e.Err)
	}
	return fmt.Sprintf("PDF %s backend error in %s (%s): %v", e.Backend, e.Op, e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// EmptyPages returns count pages numbered from 1 with no text
func EmptyPages(count int) []Page {
	pages := make([]Page, count)
	for i := range pages {
		pages[i] = Page{Number: i + 1}
	}
	return pages
}
