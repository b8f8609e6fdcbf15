// Package analysis generates role requirements and compares a CV against them.
package analysis

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/cv-analyzer/internal/llm"
	"github.com/jonathan/cv-analyzer/internal/prompts"
	"github.com/jonathan/cv-analyzer/internal/schemas"
	"github.com/jonathan/cv-analyzer/internal/types"
)

const promptFile = "analysis.json"

// Input errors
var (
	ErrEmptyRole         = errors.New("role title is required")
	ErrEmptyRequirements = errors.New("job requirements are empty")
	ErrEmptyCV           = errors.New("CV text is empty")
)

// Analyzer runs the two gap analysis calls
type Analyzer struct {
	gen llm.Generator
	log logrus.FieldLogger
}

// New creates an analyzer. A nil logger discards output.
func New(gen llm.Generator, log logrus.FieldLogger) *Analyzer {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Analyzer{gen: gen, log: log}
}

// Requirements asks the model for a free-text requirement description of roleTitle.
// The reply is stored verbatim apart from surrounding whitespace.
func (a *Analyzer) Requirements(ctx context.Context, roleTitle string) (string, error) {
	roleTitle = strings.TrimSpace(roleTitle)
	if roleTitle == "" {
		return "", ErrEmptyRole
	}

	prompt, err := prompts.Render(promptFile, "job-requirements", map[string]string{
		"RoleTitle": roleTitle,
	})
	if err != nil {
		return "", err
	}

	text, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	a.log.WithFields(logrus.Fields{"role": roleTitle, "chars": len(text)}).Debug("requirements generated")
	return text, nil
}

// Compare asks the model to partition the CV's skills against requirements.
// Whether two skills match is left entirely to the model.
func (a *Analyzer) Compare(ctx context.Context, requirements, cvText string) (*types.SkillGapReport, error) {
	if strings.TrimSpace(requirements) == "" {
		return nil, ErrEmptyRequirements
	}
	if strings.TrimSpace(cvText) == "" {
		return nil, ErrEmptyCV
	}

	prompt, err := prompts.Render(promptFile, "skill-gap", map[string]string{
		"JobRequirements": requirements,
		"CVText":          cvText,
	})
	if err != nil {
		return nil, err
	}

	raw, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	report, err := llm.DecodeJSON[types.SkillGapReport](raw, schemas.ValidateGapReport)
	if err != nil {
		a.log.WithError(err).Warn("gap analysis returned unparseable output")
		return nil, err
	}
	report.Normalize()
	report.Summary = strings.TrimSpace(report.Summary)
	report.MatchingSkills = cleanList(report.MatchingSkills)
	report.MissingSkills = cleanList(report.MissingSkills)

	a.log.WithFields(logrus.Fields{
		"matching": len(report.MatchingSkills),
		"missing":  len(report.MissingSkills),
	}).Debug("gap analysis complete")
	return &report, nil
}

// cleanList trims entries and drops blanks, keeping order
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
