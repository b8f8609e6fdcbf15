package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-analyzer/internal/config"
	"github.com/jonathan/cv-analyzer/internal/gateway"
	"github.com/jonathan/cv-analyzer/internal/llm/llmtest"
	"github.com/jonathan/cv-analyzer/internal/types"
	"github.com/jonathan/cv-analyzer/internal/workflow"
)

const (
	cvText = "Senior engineer with 8 years building backend services. Skills: Python, Go, PostgreSQL, Docker. Based in Berlin."

	profileReply = `{"personal_info": {"name": "Jane Doe"}, "summary": "Backend engineer.", "skills": ["Python", "Go"]}`

	gapReply = `{"summary": "Good fit.", "matching_skills": ["Python", "Go"], "missing_skills": ["Kubernetes", "Terraform"]}`

	questionsReply = `[{"skill": "Kubernetes", "question": "Kubernetes?", "options": ["Yes", "No"]}, {"skill": "Terraform", "question": "Terraform?", "options": ["Yes", "No"]}]`

	roadmapReply = `{"roadmap_title": "Terraform Plan", "modules": [{"skill": "Terraform", "week": 1, "topic": "Basics", "recommended_action": "Take a course", "resources": []}]}`
)

func testDeps(t *testing.T, fake *llmtest.Fake, in string) (cliDeps, *bytes.Buffer) {
	t.Helper()
	gw, err := gateway.New(fake, gateway.Config{
		Models:        []string{"model-a"},
		FallbackModel: "model-a",
		BackoffFactor: 1,
		Sleep:         func(context.Context, time.Duration) error { return nil },
	})
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)

	var out bytes.Buffer
	return cliDeps{Generator: gw, Log: log, In: strings.NewReader(in), Out: &out}, &out
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cvPath := filepath.Join(dir, "cv.txt")
	require.NoError(t, os.WriteFile(cvPath, []byte(cvText), 0o644))

	cfg := config.Defaults()
	cfg.CV = cvPath
	cfg.Role = "Backend Engineer"
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.ReportDir = dir
	cfg.Roadmap.Output = filepath.Join(dir, "roadmap.json")
	return cfg
}

func fullFake() *llmtest.Fake {
	return llmtest.New().
		On("expert CV parser", profileReply).
		On("generate a detailed set of requirements", "Required Technical Skills: Go, Kubernetes, Terraform").
		On("analyze the CV against job requirements", gapReply).
		On("Technical Recruiter", questionsReply).
		On("Career Coach", roadmapReply)
}

func TestAnalyze_InteractiveWithRoadmap(t *testing.T) {
	cfg := testConfig(t)
	deps, out := testDeps(t, fullFake(), "1\n2\n")

	res, err := analyze(context.Background(), cfg, deps, true)
	require.NoError(t, err)
	require.Equal(t, workflow.StatusCompleted, res.Status)

	assert.Equal(t, []string{"Kubernetes"}, res.State.SkillsToAdd)
	assert.Equal(t, []string{"Terraform"}, res.State.SkillsForRoadmap)
	assert.Equal(t, "JaneDoe_template_1_Optimized.tex", filepath.Base(res.State.FinalCVPath))
	assert.FileExists(t, res.State.ReportPath)

	text := out.String()
	assert.Contains(t, text, "Step 1/7: read...")
	assert.Contains(t, text, "SKILL CHECK")
	assert.Contains(t, text, res.State.FinalCVPath)
	assert.Contains(t, text, cfg.Roadmap.Output)

	data, err := os.ReadFile(cfg.Roadmap.Output)
	require.NoError(t, err)
	var plan types.Roadmap
	require.NoError(t, json.Unmarshal(data, &plan))
	assert.Equal(t, "Terraform Plan", plan.Title)
}

func TestAnalyze_AllConfirmedSkipsRoadmap(t *testing.T) {
	cfg := testConfig(t)
	fake := fullFake()
	deps, _ := testDeps(t, fake, "1\n1\n")

	res, err := analyze(context.Background(), cfg, deps, true)
	require.NoError(t, err)
	assert.Empty(t, res.State.SkillsForRoadmap)
	assert.NoFileExists(t, cfg.Roadmap.Output)
	for _, c := range fake.Calls() {
		assert.NotContains(t, c.Prompt, "Career Coach")
	}
}

func TestAnalyze_ClosedInputFailsVerify(t *testing.T) {
	cfg := testConfig(t)
	deps, _ := testDeps(t, fullFake(), "1\n")

	res, err := analyze(context.Background(), cfg, deps, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis failed")
	assert.Equal(t, workflow.StatusFailed, res.Status)
	assert.Empty(t, res.State.FinalCVPath)
}

func TestAnalyze_InvalidInput(t *testing.T) {
	cfg := testConfig(t)
	cfg.Template = "template_9.tex"
	deps, _ := testDeps(t, fullFake(), "")

	_, err := analyze(context.Background(), cfg, deps, false)
	assert.Error(t, err)
}

func TestBuildRoadmap(t *testing.T) {
	cfg := testConfig(t)
	fake := llmtest.New().On("Career Coach", roadmapReply)
	deps, out := testDeps(t, fake, "")

	res, err := buildRoadmap(context.Background(), cfg, deps, []string{"Terraform"})
	require.NoError(t, err)
	assert.Equal(t, cfg.Roadmap.Output, res.State.RoadmapPath)
	assert.Len(t, res.State.SearchResults["Terraform"], 3)
	assert.Contains(t, out.String(), "TERRAFORM PLAN")
	assert.Len(t, fake.Calls(), 1)
}

func TestBuildRoadmap_NoSkills(t *testing.T) {
	cfg := testConfig(t)
	fake := llmtest.New()
	deps, _ := testDeps(t, fake, "")

	_, err := buildRoadmap(context.Background(), cfg, deps, nil)
	assert.Error(t, err)
	assert.Empty(t, fake.Calls())
}
