package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/cv-analyzer/internal/types"
	"github.com/jonathan/cv-analyzer/internal/workflow"
)

func TestPrintProfile(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintProfile(&types.StructuredProfile{
		PersonalInfo: types.PersonalInfo{Name: "Jane Doe", Email: "jane@example.com"},
		Skills:       []string{"Go", "Python", "SQL", "Docker", "Kafka", "Rust", "Terraform"},
		Experience:   []types.Experience{{Company: "Acme"}},
	})
	output := buf.String()

	assert.Contains(t, output, "STRUCTURED CV")
	assert.Contains(t, output, "Jane Doe")
	assert.Contains(t, output, "Experience: 1 roles")
	assert.Contains(t, output, "Skills (7)")
	assert.Contains(t, output, "• Kafka")
	assert.NotContains(t, output, "• Rust")
	assert.Contains(t, output, "... and 2 more")
}

func TestPrintProfile_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintProfile(nil)
	assert.Empty(t, buf.String())
}

func TestPrintGapReport(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintGapReport(&types.SkillGapReport{
		Summary:        "Good fit.",
		MatchingSkills: []string{"Python", "Go"},
		MissingSkills:  []string{"Kubernetes"},
	})
	output := buf.String()

	assert.Contains(t, output, "SKILL GAP REPORT")
	assert.Contains(t, output, "Good fit.")
	assert.Contains(t, output, "Matching (2)")
	assert.Contains(t, output, "Missing (1)")
	assert.Contains(t, output, "• Kubernetes")
}

func TestPrintVerification(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintVerification([]string{"Docker"}, []string{"Kafka", "Rust"})
	output := buf.String()

	assert.Contains(t, output, "Added to CV:     1")
	assert.Contains(t, output, "Sent to roadmap: 2")
	assert.Contains(t, output, "• Rust")
}

func TestPrintRoadmap(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRoadmap(&types.Roadmap{
		Title:   "Upskilling Plan",
		Modules: []types.RoadmapModule{{Skill: "Figma", Week: 1, Topic: "Components"}},
	})
	output := buf.String()

	assert.Contains(t, output, "UPSKILLING PLAN")
	assert.Contains(t, output, "Week 1  Figma: Components")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).printBox("TITLE", strings.Repeat("é", 100))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestPrintArtifacts(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintArtifacts(types.RunState{ReportPath: "Skill_Report_QA.txt"})

	assert.Contains(t, buf.String(), "Skill report: Skill_Report_QA.txt")
	assert.NotContains(t, buf.String(), "Final CV")
}

func TestStageObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewPrinter(&buf).StageObserver()
	ctx := context.Background()

	obs.StageStarted(ctx, workflow.Event{Stage: "read", Index: 1, Total: 7})
	obs.StageCompleted(ctx, workflow.Event{Stage: "read", Index: 1, Total: 7})
	obs.StageFailed(ctx, workflow.Event{Stage: "extract", Index: 2, Total: 7, Err: errors.New("boom")})
	obs.StageSuspended(ctx, workflow.Event{Stage: "verify", Index: 6, Total: 7, Reason: "awaiting answers"})

	assert.Equal(t,
		"Step 1/7: read...\n"+
			"Step 2/7: extract failed: boom\n"+
			"Step 6/7: verify paused: awaiting answers\n",
		buf.String())
}
