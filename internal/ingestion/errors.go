package ingestion

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed errors below
var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrEmptyContent      = errors.New("document has too little text")
)

// UnsupportedFormatError is returned for extensions other than .pdf and .txt
type UnsupportedFormatError struct {
	Path      string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Extension == "" {
		return fmt.Sprintf("%s: %s has no extension", ErrUnsupportedFormat, e.Path)
	}
	return fmt.Sprintf("%s: %s", ErrUnsupportedFormat, e.Extension)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// EmptyContentError is returned when extracted text is shorter than the minimum
type EmptyContentError struct {
	Path  string
	Chars int
	Min   int
}

func (e *EmptyContentError) Error() string {
	return fmt.Sprintf("%s: %s yielded %d characters, need at least %d", ErrEmptyContent, e.Path, e.Chars, e.Min)
}

func (e *EmptyContentError) Is(target error) bool {
	return target == ErrEmptyContent
}

// ReadError represents a failure to open or decode the document
type ReadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ReadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v", e.Message, e.Path, e.Cause)
	}
	return fmt.Sprintf("%s %s", e.Message, e.Path)
}

func (e *ReadError) Unwrap() error {
	return e.Cause
}
