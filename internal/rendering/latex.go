package rendering

import (
	"embed"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/jonathan/cv-analyzer/internal/types"
)

//go:embed templates/*.tex templates/*.tmpl
var templateFS embed.FS

// CVRenderer merges a profile into a named template
type CVRenderer interface {
	RenderCV(profile *types.StructuredProfile, templateName string) (string, error)
}

// TemplateData is the escaped view of a profile handed to a LaTeX template
type TemplateData struct {
	Name       string
	Contact    []string
	Summary    string
	Skills     []string
	Experience []ExperienceSection
	Education  []types.Education
	Projects   []types.Project
	Leadership []types.Leadership
}

// ExperienceSection represents one role with escaped bullets
type ExperienceSection struct {
	Company  string
	Role     string
	Duration string
	Location string
	Bullets  []string
}

// LaTeXRenderer renders the bundled CV templates.
type LaTeXRenderer struct {
	mu    sync.Mutex
	cache map[string]*template.Template
}

// NewLaTeXRenderer creates a renderer over the embedded templates.
func NewLaTeXRenderer() *LaTeXRenderer {
	return &LaTeXRenderer{cache: make(map[string]*template.Template)}
}

// RenderCV renders profile with the template identified by templateName.
// Every text field is escaped before it reaches the template.
func (r *LaTeXRenderer) RenderCV(profile *types.StructuredProfile, templateName string) (string, error) {
	name, err := ResolveTemplate(templateName)
	if err != nil {
		return "", err
	}
	if profile == nil {
		return "", &RenderError{Message: "no profile to render"}
	}

	tmpl, err := r.template(name)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, buildTemplateData(profile)); err != nil {
		return "", &TemplateError{
			Message: fmt.Sprintf("failed to execute template %s", name),
			Cause:   err,
		}
	}
	return out.String(), nil
}

func (r *LaTeXRenderer) template(name string) (*template.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tmpl, ok := r.cache[name]; ok {
		return tmpl, nil
	}
	content, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		return nil, &TemplateError{
			Message: fmt.Sprintf("template file not found: %s", name),
			Cause:   err,
		}
	}
	tmpl, err := parseTemplate(name, string(content))
	if err != nil {
		return nil, err
	}
	r.cache[name] = tmpl
	return tmpl, nil
}

// parseTemplate parses LaTeX source using [[ ]] actions so braces stay literal
func parseTemplate(name, content string) (*template.Template, error) {
	tmpl, err := template.New(name).Delims("[[", "]]").Funcs(template.FuncMap{
		"escape": EscapeLaTeX,
		"join":   strings.Join,
	}).Parse(content)
	if err != nil {
		return nil, &TemplateError{
			Message: "failed to parse template",
			Cause:   err,
		}
	}
	return tmpl, nil
}

func buildTemplateData(p *types.StructuredProfile) *TemplateData {
	info := p.PersonalInfo
	data := &TemplateData{
		Name:    EscapeLaTeX(p.DisplayName()),
		Contact: EscapeAll([]string{info.Location, info.Phone, info.Email, info.LinkedIn, info.GitHub}),
		Summary: EscapeLaTeX(strings.TrimSpace(p.Summary)),
		Skills:  EscapeAll(p.Skills),
	}

	for _, e := range p.Experience {
		data.Experience = append(data.Experience, ExperienceSection{
			Company:  EscapeLaTeX(e.Company),
			Role:     EscapeLaTeX(e.Role),
			Duration: EscapeLaTeX(e.Duration),
			Location: EscapeLaTeX(e.Location),
			Bullets:  EscapeAll(e.Bullets),
		})
	}
	for _, e := range p.Education {
		data.Education = append(data.Education, types.Education{
			Degree:      EscapeLaTeX(e.Degree),
			Institution: EscapeLaTeX(e.Institution),
			Year:        EscapeLaTeX(e.Year),
			Details:     EscapeLaTeX(e.Details),
		})
	}
	for _, pr := range p.Projects {
		data.Projects = append(data.Projects, types.Project{
			Name:        EscapeLaTeX(pr.Name),
			Description: EscapeLaTeX(pr.Description),
		})
	}
	for _, l := range p.Leadership {
		data.Leadership = append(data.Leadership, types.Leadership{
			Role:        EscapeLaTeX(l.Role),
			Description: EscapeLaTeX(l.Description),
		})
	}
	return data
}

// SaveCV writes rendered LaTeX to dir as <SafeName>_<template>_Optimized.tex
// and returns the written path.
func SaveCV(content, userName, templateName, dir string) (string, error) {
	name, err := ResolveTemplate(templateName)
	if err != nil {
		return "", err
	}
	return writeArtifact(dir, CVFileName(userName, name), []byte(content))
}
