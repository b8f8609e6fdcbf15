package roadmap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/cv-analyzer/internal/llm"
	"github.com/jonathan/cv-analyzer/internal/prompts"
	"github.com/jonathan/cv-analyzer/internal/schemas"
	"github.com/jonathan/cv-analyzer/internal/types"
)

// DefaultOutputFile is where the CLI writes the roadmap.
const DefaultOutputFile = "upskilling_roadmap.json"

// Synthesizer turns skills and search links into a structured roadmap.
type Synthesizer struct {
	gen llm.Generator
	log logrus.FieldLogger
}

// NewSynthesizer creates a synthesizer. A nil logger discards output.
func NewSynthesizer(gen llm.Generator, log logrus.FieldLogger) *Synthesizer {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Synthesizer{gen: gen, log: log}
}

// Synthesize makes one gateway call and parses the roadmap it returns.
// Output that is not a valid roadmap fails with an llm.ParseError.
func (s *Synthesizer) Synthesize(ctx context.Context, skills []string, search map[string][]string) (*types.Roadmap, error) {
	skills = CleanSkills(skills)
	if len(skills) == 0 {
		return nil, ErrNoSkills
	}

	skillJSON, err := json.Marshal(skills)
	if err != nil {
		return nil, fmt.Errorf("failed to encode skills: %w", err)
	}
	if search == nil {
		search = map[string][]string{}
	}
	searchJSON, err := json.Marshal(search)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search data: %w", err)
	}

	prompt, err := prompts.Render("roadmap.json", "synthesize-roadmap", map[string]string{
		"Skills":     string(skillJSON),
		"SearchData": string(searchJSON),
	})
	if err != nil {
		return nil, err
	}

	raw, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	roadmap, err := llm.DecodeJSON[types.Roadmap](raw, schemas.ValidateRoadmap)
	if err != nil {
		s.log.WithError(err).Warn("roadmap synthesis returned unparseable output")
		return nil, err
	}
	roadmap.Title = strings.TrimSpace(roadmap.Title)
	for i := range roadmap.Modules {
		if roadmap.Modules[i].Resources == nil {
			roadmap.Modules[i].Resources = []string{}
		}
	}

	s.log.WithFields(logrus.Fields{"title": roadmap.Title, "modules": len(roadmap.Modules)}).Debug("roadmap synthesized")
	return &roadmap, nil
}

// Save writes roadmap as indented JSON to path and returns the absolute path.
func Save(roadmap *types.Roadmap, path string) (string, error) {
	if roadmap == nil {
		return "", fmt.Errorf("no roadmap to save")
	}
	if path == "" {
		path = DefaultOutputFile
	}
	data, err := json.MarshalIndent(roadmap, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to encode roadmap: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create roadmap directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write roadmap: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}
