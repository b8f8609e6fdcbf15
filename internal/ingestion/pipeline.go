// Package ingestion extracts and normalizes the raw text of an input CV.
package ingestion

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"
)

// MinContentChars is the shortest text accepted for downstream stages
const MinContentChars = 50

// Supported formats
const (
	FormatPDF  = "pdf"
	FormatText = "txt"
)

// Pipeline turns a document path into cleaned text.
type Pipeline struct {
	pdf      PDFReader
	minChars int
	log      logrus.FieldLogger
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithPDFReader replaces the default PDF reader
func WithPDFReader(r PDFReader) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.pdf = r
		}
	}
}

// WithLogger sets the logger
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// WithMinChars overrides MinContentChars
func WithMinChars(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.minChars = n
		}
	}
}

// NewPipeline creates a pipeline using PlainTextReader for PDFs
func NewPipeline(opts ...Option) *Pipeline {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	p := &Pipeline{
		pdf:      PlainTextReader{},
		minChars: MinContentChars,
		log:      discard,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Extract returns the cleaned text of the document at path
func (p *Pipeline) Extract(ctx context.Context, path string) (string, error) {
	text, _, err := p.ExtractWithMetadata(ctx, path)
	return text, err
}

// ExtractWithMetadata returns the cleaned text and a description of the document.
// PDFs are read page by page and pages without text are skipped. Text files
// are decoded as UTF-8 when valid and as Latin-1 otherwise.
func (p *Pipeline) ExtractWithMetadata(ctx context.Context, path string) (string, *Metadata, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	var (
		text   string
		format string
		pages  int
		empty  int
		latin1 bool
		err    error
	)

	switch ext {
	case ".pdf":
		format = FormatPDF
		text, pages, empty, err = p.readPDF(path)
	case ".txt":
		format = FormatText
		text, latin1, err = readText(path)
	default:
		return "", nil, &UnsupportedFormatError{Path: path, Extension: ext}
	}
	if err != nil {
		return "", nil, err
	}

	cleaned := CleanText(text)
	chars := utf8.RuneCountInString(cleaned)
	if chars < p.minChars {
		return "", nil, &EmptyContentError{Path: path, Chars: chars, Min: p.minChars}
	}

	meta := NewMetadata(path, format, cleaned)
	meta.Pages = pages
	meta.EmptyPages = empty
	meta.Latin1 = latin1

	p.log.WithFields(logrus.Fields{
		"path":        path,
		"format":      format,
		"chars":       chars,
		"pages":       pages,
		"empty_pages": empty,
	}).Debug("document extracted")

	return cleaned, meta, nil
}

func (p *Pipeline) readPDF(path string) (string, int, int, error) {
	if err := checkFile(path); err != nil {
		return "", 0, 0, err
	}

	if count, err := PageCount(path); err != nil {
		p.log.WithField("path", path).WithError(err).Warn("pdf validation failed, attempting text extraction anyway")
	} else {
		p.log.WithFields(logrus.Fields{"path": path, "pages": count}).Debug("pdf validated")
	}

	pages, err := p.pdf.Pages(path)
	if err != nil {
		return "", 0, 0, &ReadError{Path: path, Message: "failed to extract text from", Cause: err}
	}

	var parts []string
	empty := 0
	for _, page := range pages {
		if strings.TrimSpace(page) == "" {
			empty++
			continue
		}
		parts = append(parts, page)
	}
	return strings.Join(parts, "\n"), len(pages), empty, nil
}

func readText(path string) (string, bool, error) {
	if err := checkFile(path); err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, &ReadError{Path: path, Message: "failed to read", Cause: err}
	}
	if utf8.Valid(data) {
		return string(data), false, nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", false, &ReadError{Path: path, Message: "failed to decode", Cause: err}
	}
	return string(decoded), true, nil
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &ReadError{Path: path, Message: "file not found:", Cause: err}
		}
		return &ReadError{Path: path, Message: "failed to stat", Cause: err}
	}
	if info.IsDir() {
		return &ReadError{Path: path, Message: "path is a directory:"}
	}
	return nil
}
