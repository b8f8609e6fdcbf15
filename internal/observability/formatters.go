// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/cv-analyzer/internal/types"
	"github.com/jonathan/cv-analyzer/internal/workflow"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		if r := []rune(line); len(r) > boxWidth-4 {
			line = string(r[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// writeList writes at most maxItemsToShow bullet items under heading
func writeList(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	count := min(len(items), maxItemsToShow)
	for _, item := range items[:count] {
		sb.WriteString(fmt.Sprintf("  • %s\n", item))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
	sb.WriteString("\n")
}

// PrintProfile outputs a summary of the structured CV.
func (p *Printer) PrintProfile(profile *types.StructuredProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:       %s\n", profile.DisplayName()))
	if profile.PersonalInfo.Email != "" {
		sb.WriteString(fmt.Sprintf("Email:      %s\n", profile.PersonalInfo.Email))
	}
	sb.WriteString(fmt.Sprintf("Experience: %d roles\n", len(profile.Experience)))
	sb.WriteString(fmt.Sprintf("Education:  %d entries\n", len(profile.Education)))
	sb.WriteString(fmt.Sprintf("Projects:   %d\n\n", len(profile.Projects)))
	writeList(&sb, fmt.Sprintf("Skills (%d)", len(profile.Skills)), profile.Skills)

	p.printBox("STRUCTURED CV", sb.String())
}

// PrintGapReport outputs the matching/missing partition.
func (p *Printer) PrintGapReport(report *types.SkillGapReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	if report.Summary != "" {
		sb.WriteString(report.Summary + "\n\n")
	}
	writeList(&sb, fmt.Sprintf("Matching (%d)", len(report.MatchingSkills)), report.MatchingSkills)
	writeList(&sb, fmt.Sprintf("Missing (%d)", len(report.MissingSkills)), report.MissingSkills)

	p.printBox("SKILL GAP REPORT", sb.String())
}

// PrintVerification outputs the outcome of the skill check.
func (p *Printer) PrintVerification(confirmed, deferred []string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Added to CV:     %d\n", len(confirmed)))
	sb.WriteString(fmt.Sprintf("Sent to roadmap: %d\n\n", len(deferred)))
	writeList(&sb, "Added", confirmed)
	writeList(&sb, "Roadmap", deferred)

	p.printBox("SKILL VERIFICATION", sb.String())
}

// PrintRoadmap outputs the modules of a learning roadmap.
func (p *Printer) PrintRoadmap(roadmap *types.Roadmap) {
	if roadmap == nil {
		return
	}

	var sb strings.Builder
	for _, m := range roadmap.Modules {
		sb.WriteString(fmt.Sprintf("Week %d  %s: %s\n", m.Week, m.Skill, m.Topic))
	}
	p.printBox(strings.ToUpper(roadmap.Title), sb.String())
}

// PrintArtifacts lists the files a CV run produced.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintArtifacts(state types.RunState) {
	if state.ReportPath != "" {
		fmt.Fprintf(p.out, "Skill report: %s\n", state.ReportPath)
	}
	if state.FinalCVPath != "" {
		fmt.Fprintf(p.out, "Final CV:     %s\n", state.FinalCVPath)
	}
}

// StageObserver returns a workflow observer that prints one line per stage.
func (p *Printer) StageObserver() workflow.Observer {
	return workflow.FuncObserver(func(_ context.Context, status workflow.Status, e workflow.Event) {
		switch status {
		case workflow.StatusRunning:
			fmt.Fprintf(p.out, "Step %d/%d: %s...\n", e.Index, e.Total, e.Stage)
		case workflow.StatusFailed:
			fmt.Fprintf(p.out, "Step %d/%d: %s failed: %v\n", e.Index, e.Total, e.Stage, e.Err)
		case workflow.StatusSuspended:
			fmt.Fprintf(p.out, "Step %d/%d: %s paused: %s\n", e.Index, e.Total, e.Stage, e.Reason)
		}
	})
}
