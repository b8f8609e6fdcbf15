package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/cv-analyzer/internal/analysis"
	"github.com/jonathan/cv-analyzer/internal/extraction"
	"github.com/jonathan/cv-analyzer/internal/ingestion"
	"github.com/jonathan/cv-analyzer/internal/llm"
	"github.com/jonathan/cv-analyzer/internal/rendering"
	"github.com/jonathan/cv-analyzer/internal/types"
	"github.com/jonathan/cv-analyzer/internal/verification"
	"github.com/jonathan/cv-analyzer/internal/workflow"
)

// Workflow names
const (
	CVWorkflow      = "cv_analysis"
	RoadmapWorkflow = "roadmap"
)

// CV analysis stages, in execution order
const (
	StageRead         = "read"
	StageExtract      = "extract"
	StageRequirements = "requirements"
	StageGap          = "gap"
	StageReport       = "report"
	StageVerify       = "verify"
	StageRender       = "render"
)

// DefaultOutputDir receives final CVs
const DefaultOutputDir = "generated_cvs"

// VerifySource selects where the verify stage reads missing skills from.
type VerifySource string

const (
	// SourceReport re-reads the rendered report and verifies at most
	// verification.ReportSkillCap skills.
	SourceReport VerifySource = "report"
	// SourceGapReport uses every missing skill of the structured report.
	SourceGapReport VerifySource = "gap_report"
)

// DocumentReader turns a document path into text
type DocumentReader interface {
	Extract(ctx context.Context, path string) (string, error)
}

// AnswerFunc collects answers for verification questions in-process.
type AnswerFunc func(ctx context.Context, questions []types.VerificationQuestion) ([]types.Answer, error)

// CVEngine runs the CV analysis workflow
type CVEngine = workflow.Engine[types.RunState, types.RunUpdate]

// CVResult is the outcome of a CV analysis run
type CVResult = workflow.Result[types.RunState]

// Deps are the collaborators of the CV workflow. Generator is required.
type Deps struct {
	Generator llm.Generator
	// Reader extracts the input CV. Defaults to an ingestion pipeline.
	Reader DocumentReader
	// ReportReader reads the rendered report back for SourceReport.
	ReportReader DocumentReader
	Reports      rendering.ReportRenderer
	CVs          rendering.CVRenderer
	// Answer, when set, answers verification questions inline. When nil
	// the verify stage suspends the run until answers are supplied.
	Answer AnswerFunc
	Log    logrus.FieldLogger
}

// Config holds CV workflow settings
type Config struct {
	ReportDir    string
	OutputDir    string
	VerifySource VerifySource
}

// DefaultConfig writes reports to the working directory and CVs to DefaultOutputDir.
func DefaultConfig() Config {
	return Config{
		ReportDir:    ".",
		OutputDir:    DefaultOutputDir,
		VerifySource: SourceReport,
	}
}

type cvStages struct {
	reader       DocumentReader
	reportReader DocumentReader
	extractor    *extraction.Extractor
	analyzer     *analysis.Analyzer
	verifier     *verification.Verifier
	reports      rendering.ReportRenderer
	cvs          rendering.CVRenderer
	answer       AnswerFunc
	cfg          Config
	log          logrus.FieldLogger
}

func newCVStages(d Deps, cfg Config) (*cvStages, error) {
	if d.Generator == nil {
		return nil, fmt.Errorf("pipeline: generator is required")
	}
	log := d.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	def := DefaultConfig()
	if cfg.ReportDir == "" {
		cfg.ReportDir = def.ReportDir
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = def.OutputDir
	}
	switch cfg.VerifySource {
	case "":
		cfg.VerifySource = def.VerifySource
	case SourceReport, SourceGapReport:
	default:
		return nil, fmt.Errorf("pipeline: unknown verify source %q", cfg.VerifySource)
	}

	s := &cvStages{
		reader:       d.Reader,
		reportReader: d.ReportReader,
		extractor:    extraction.New(d.Generator, log),
		analyzer:     analysis.New(d.Generator, log),
		verifier:     verification.New(d.Generator, log),
		reports:      d.Reports,
		cvs:          d.CVs,
		answer:       d.Answer,
		cfg:          cfg,
		log:          log,
	}
	if s.reader == nil {
		s.reader = ingestion.NewPipeline(ingestion.WithLogger(log))
	}
	if s.reportReader == nil {
		s.reportReader = ingestion.NewPipeline(ingestion.WithLogger(log), ingestion.WithMinChars(1))
	}
	if s.reports == nil {
		s.reports = rendering.TextReportRenderer{}
	}
	if s.cvs == nil {
		s.cvs = rendering.NewLaTeXRenderer()
	}
	return s, nil
}

// BuildCVGraph declares the seven CV analysis stages and their linear order.
func BuildCVGraph(d Deps, cfg Config) (*workflow.Graph[types.RunState, types.RunUpdate], error) {
	s, err := newCVStages(d, cfg)
	if err != nil {
		return nil, err
	}

	g := workflow.NewGraph[types.RunState, types.RunUpdate](CVWorkflow)
	nodes := []struct {
		name string
		fn   workflow.NodeFunc[types.RunState, types.RunUpdate]
		owns []string
	}{
		{StageRead, s.read, []string{types.FieldCVText}},
		{StageExtract, s.extract, []string{types.FieldProfile, types.FieldUserName}},
		{StageRequirements, s.requirements, []string{types.FieldJobRequirements}},
		{StageGap, s.gap, []string{types.FieldSkillReport}},
		{StageReport, s.report, []string{types.FieldReportPath}},
		{StageVerify, s.verify, []string{types.FieldQuestions, types.FieldAnswers, types.FieldSkillsToAdd, types.FieldSkillsForRoadmap}},
		{StageRender, s.render, []string{types.FieldFinalCVPath}},
	}
	for _, n := range nodes {
		if err := g.AddNode(n.name, n.fn, n.owns...); err != nil {
			return nil, err
		}
	}
	for i := 1; i < len(nodes); i++ {
		if err := g.AddEdge(nodes[i-1].name, nodes[i].name); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// NewCVEngine builds and compiles the CV analysis workflow.
func NewCVEngine(d Deps, cfg Config, opts ...workflow.Option) (*CVEngine, error) {
	g, err := BuildCVGraph(d, cfg)
	if err != nil {
		return nil, err
	}
	return g.Compile(opts...)
}

func (s *cvStages) read(ctx context.Context, st types.RunState) (types.RunUpdate, error) {
	text, err := s.reader.Extract(ctx, st.CVPath)
	if err != nil {
		return types.RunUpdate{}, err
	}
	return types.RunUpdate{CVText: &text}, nil
}

func (s *cvStages) extract(ctx context.Context, st types.RunState) (types.RunUpdate, error) {
	profile, err := s.extractor.Structure(ctx, st.CVText)
	if err != nil {
		return types.RunUpdate{}, err
	}
	return types.RunUpdate{
		Profile:  profile,
		UserName: types.Ptr(extraction.DisplayName(profile)),
	}, nil
}

func (s *cvStages) requirements(ctx context.Context, st types.RunState) (types.RunUpdate, error) {
	reqs, err := s.analyzer.Requirements(ctx, st.RoleTitle)
	if err != nil {
		return types.RunUpdate{}, err
	}
	return types.RunUpdate{JobRequirements: &reqs}, nil
}

func (s *cvStages) gap(ctx context.Context, st types.RunState) (types.RunUpdate, error) {
	report, err := s.analyzer.Compare(ctx, st.JobRequirements, st.CVText)
	if err != nil {
		return types.RunUpdate{}, err
	}
	return types.RunUpdate{SkillReport: report}, nil
}

func (s *cvStages) report(ctx context.Context, st types.RunState) (types.RunUpdate, error) {
	path, err := s.reports.RenderReport(ctx, st.RoleTitle, st.SkillReport, s.cfg.ReportDir)
	if err != nil {
		return types.RunUpdate{}, err
	}
	return types.RunUpdate{ReportPath: &path}, nil
}

// verify generates questions on first entry. Without an AnswerFunc it then
// suspends; the run is resumed with Answers set and verify partitions them.
func (s *cvStages) verify(ctx context.Context, st types.RunState) (types.RunUpdate, error) {
	var u types.RunUpdate

	questions := st.Questions
	if questions == nil {
		skills, err := s.missingSkills(ctx, st)
		if err != nil {
			return u, err
		}
		questions, err = s.verifier.Questions(ctx, skills)
		if err != nil {
			return u, err
		}
		u.Questions = questions
	}

	answers := st.Answers
	if len(questions) > 0 && answers == nil {
		if s.answer == nil {
			return u, workflow.Suspend(fmt.Sprintf("awaiting answers to %d verification question(s)", len(questions)))
		}
		var err error
		answers, err = s.answer(ctx, questions)
		if err != nil {
			return u, err
		}
		u.Answers = answers
	}

	confirmed, deferred, err := verification.Partition(questions, answers)
	if err != nil {
		return u, err
	}
	u.SkillsToAdd = confirmed
	u.SkillsForRoadmap = deferred
	return u, nil
}

func (s *cvStages) missingSkills(ctx context.Context, st types.RunState) ([]string, error) {
	if s.cfg.VerifySource == SourceGapReport {
		return verification.SkillsFromGapReport(st.SkillReport), nil
	}
	text, err := s.reportReader.Extract(ctx, st.ReportPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read skill report: %w", err)
	}
	return verification.SkillsFromReport(text), nil
}

func (s *cvStages) render(_ context.Context, st types.RunState) (types.RunUpdate, error) {
	path, err := RenderFinalCV(s.cvs, st.Profile, st.SkillsToAdd, st.TemplateSelection, st.UserName, s.cfg.OutputDir)
	if err != nil {
		return types.RunUpdate{}, err
	}
	return types.RunUpdate{FinalCVPath: &path}, nil
}

// RenderFinalCV injects skills into a copy of profile, renders it with the
// selected template and writes the result to dir.
func RenderFinalCV(r rendering.CVRenderer, profile *types.StructuredProfile, skills []string, templateName, userName, dir string) (string, error) {
	if profile == nil {
		return "", &rendering.RenderError{Message: "no profile to render"}
	}
	final := profile.Clone()
	final.Normalize()
	final.AddSkills(skills)

	if userName == "" {
		userName = final.DisplayName()
	}
	content, err := r.RenderCV(final, templateName)
	if err != nil {
		return "", err
	}
	return rendering.SaveCV(content, userName, templateName, dir)
}

// GenerateFinalCV serves the standalone final CV operation.
func GenerateFinalCV(r rendering.CVRenderer, req FinalCVRequest, dir string) (string, error) {
	if err := validate.Struct(req); err != nil {
		return "", &InputError{Message: "structured_cv_data is required", Cause: err}
	}
	template, err := rendering.ResolveTemplate(req.TemplateName)
	if err != nil {
		return "", &InputError{Message: "template_name", Cause: err}
	}
	if r == nil {
		r = rendering.NewLaTeXRenderer()
	}
	return RenderFinalCV(r, req.Profile, req.Skills, template, req.UserName, dir)
}

// Answers returns the patch that supplies answers to a suspended run.
func Answers(answers []types.Answer) func(*types.RunState) {
	return func(st *types.RunState) {
		st.Answers = append([]types.Answer{}, answers...)
	}
}
