// Package extraction turns raw CV text into a types.StructuredProfile.
package extraction

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/cv-analyzer/internal/llm"
	"github.com/jonathan/cv-analyzer/internal/schemas"
	"github.com/jonathan/cv-analyzer/internal/types"
)

// ParseError is returned when the model output is not a valid profile
type ParseError = llm.ParseError

// ErrParse is matched by every ParseError
var ErrParse = llm.ErrParse

// ErrEmptyInput is returned when there is no text to structure
var ErrEmptyInput = errors.New("raw CV text is empty")

// Extractor structures CV text with one model call
type Extractor struct {
	gen llm.Generator
	log logrus.FieldLogger
}

// New creates an extractor. A nil logger discards output.
func New(gen llm.Generator, log logrus.FieldLogger) *Extractor {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Extractor{gen: gen, log: log}
}

// Structure prompts the model with rawText and the profile schema, then
// strips code fences, validates and decodes the reply. A reply that does not
// decode is not retried; the *ParseError carries it for diagnostics.
func (e *Extractor) Structure(ctx context.Context, rawText string) (*types.StructuredProfile, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, ErrEmptyInput
	}

	prompt := llm.BuildExtractionPrompt(llm.CVProfileSchema(), rawText)
	raw, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	profile, err := llm.DecodeJSON[types.StructuredProfile](raw, schemas.ValidateProfile)
	if err != nil {
		e.log.WithError(err).WithField("raw_chars", len(raw)).Warn("profile extraction returned unparseable output")
		return nil, err
	}

	profile.Normalize()
	e.log.WithFields(logrus.Fields{
		"name":       profile.DisplayName(),
		"skills":     len(profile.Skills),
		"experience": len(profile.Experience),
		"education":  len(profile.Education),
	}).Debug("profile extracted")
	return &profile, nil
}

// DisplayName returns the profile's name for file naming, or "User"
func DisplayName(p *types.StructuredProfile) string {
	return p.DisplayName()
}
