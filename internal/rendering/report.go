package rendering

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/jonathan/cv-analyzer/internal/types"
)

// ReportRenderer writes a skill gap report artifact into dir and returns its path
type ReportRenderer interface {
	RenderReport(ctx context.Context, roleTitle string, report *types.SkillGapReport, dir string) (string, error)
}

// ReportData is the Latin-1 safe view of a gap report
type ReportData struct {
	RoleTitle      string
	Summary        string
	MatchingSkills []string
	MissingSkills  []string
}

// NewReportData prepares report for rendering. A missing summary reads "N/A".
func NewReportData(roleTitle string, report *types.SkillGapReport) *ReportData {
	data := &ReportData{RoleTitle: Latin1Safe(strings.TrimSpace(roleTitle)), Summary: "N/A"}
	if report == nil {
		return data
	}
	if s := strings.TrimSpace(report.Summary); s != "" {
		data.Summary = Latin1Safe(s)
	}
	for _, s := range report.MatchingSkills {
		data.MatchingSkills = append(data.MatchingSkills, Latin1Safe(s))
	}
	for _, s := range report.MissingSkills {
		data.MissingSkills = append(data.MissingSkills, Latin1Safe(s))
	}
	return data
}

// TextReportRenderer writes Skill_Report_<Title>.txt
type TextReportRenderer struct{}

// RenderReport implements ReportRenderer
func (TextReportRenderer) RenderReport(_ context.Context, roleTitle string, report *types.SkillGapReport, dir string) (string, error) {
	if report == nil {
		return "", &RenderError{Message: "no gap report to render"}
	}
	content, err := RenderReportText(roleTitle, report)
	if err != nil {
		return "", err
	}
	return writeArtifact(dir, ReportFileName(roleTitle, ".txt"), []byte(content))
}

// RenderReportText renders the plain text report body.
func RenderReportText(roleTitle string, report *types.SkillGapReport) (string, error) {
	tmpl, err := loadReportTemplate("report.txt.tmpl")
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, NewReportData(roleTitle, report)); err != nil {
		return "", &TemplateError{Message: "failed to execute report template", Cause: err}
	}
	return buf.String(), nil
}

// RenderReportHTML renders the report as an HTML page for PDF printing.
func RenderReportHTML(roleTitle string, report *types.SkillGapReport) (string, error) {
	content, err := templateFS.ReadFile("templates/report.html.tmpl")
	if err != nil {
		return "", &TemplateError{Message: "report template not found", Cause: err}
	}
	tmpl, err := htmltemplate.New("report").Parse(string(content))
	if err != nil {
		return "", &TemplateError{Message: "failed to parse report template", Cause: err}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, NewReportData(roleTitle, report)); err != nil {
		return "", &TemplateError{Message: "failed to execute report template", Cause: err}
	}
	return buf.String(), nil
}

func loadReportTemplate(name string) (*template.Template, error) {
	content, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		return nil, &TemplateError{Message: fmt.Sprintf("template file not found: %s", name), Cause: err}
	}
	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return nil, &TemplateError{Message: "failed to parse report template", Cause: err}
	}
	return tmpl, nil
}

func writeArtifact(dir, name string, content []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &RenderError{Message: "failed to create output directory", Cause: err}
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", &RenderError{Message: fmt.Sprintf("failed to write %s", path), Cause: err}
	}
	return path, nil
}
