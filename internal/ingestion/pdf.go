package ingestion

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PDFReader returns the plain text of each page of a PDF, in page order.
// Pages without extractable text are returned as empty strings.
type PDFReader interface {
	Pages(path string) ([]string, error)
}

// PlainTextReader extracts page text with ledongthuc/pdf
type PlainTextReader struct{}

// Pages implements PDFReader
func (PlainTextReader) Pages(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer func() { _ = f.Close() }()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			// a page that cannot be decoded counts as a page without text
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// PageCount returns the number of pages reported by pdfcpu
func PageCount(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return api.PageCount(bytes.NewReader(data), nil)
}
