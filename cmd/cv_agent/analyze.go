package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jonathan/cv-analyzer/internal/config"
	"github.com/jonathan/cv-analyzer/internal/db"
	"github.com/jonathan/cv-analyzer/internal/llm"
	"github.com/jonathan/cv-analyzer/internal/observability"
	"github.com/jonathan/cv-analyzer/internal/pipeline"
	"github.com/jonathan/cv-analyzer/internal/verification"
	"github.com/jonathan/cv-analyzer/internal/workflow"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a CV against a target role",
	Long: `Runs the CV workflow end-to-end: read -> extract -> requirements -> gap -> report -> verify -> render.

Missing skills are confirmed interactively. Confirmed skills are added to the rendered CV,
the rest are listed for the learning roadmap (generated with --roadmap).

Configuration can be loaded from a JSON or YAML file using --config. Command-line arguments override config file values.`,
	RunE: runAnalyzeCmd,
}

var (
	analyzeCV           string
	analyzeRole         string
	analyzeTemplate     string
	analyzeReportFormat string
	analyzeVerifySource string
	analyzeOutDir       string
	analyzeReportDir    string
	analyzeRoadmap      bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeCV, "cv", "c", "", "Path to the CV (.pdf or .txt)")
	analyzeCmd.Flags().StringVarP(&analyzeRole, "role", "r", "", "Target job title")
	analyzeCmd.Flags().StringVarP(&analyzeTemplate, "template", "t", "", "CV template: 1-3 or template_N.tex")
	analyzeCmd.Flags().StringVar(&analyzeReportFormat, "report-format", "", "Skill report format: txt or pdf")
	analyzeCmd.Flags().StringVar(&analyzeVerifySource, "verify-source", "", "Skills to verify: report (rendered report, max 4) or gap_report (all missing)")
	analyzeCmd.Flags().StringVarP(&analyzeOutDir, "out", "o", "", "Directory for the final CV")
	analyzeCmd.Flags().StringVar(&analyzeReportDir, "report-dir", "", "Directory for the skill report")
	analyzeCmd.Flags().BoolVar(&analyzeRoadmap, "roadmap", false, "Build a learning roadmap for skills you do not have yet")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyzeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd, func(c *config.Config) {
		flags := cmd.Flags()
		if flags.Changed("cv") {
			c.CV = analyzeCV
		}
		if flags.Changed("role") {
			c.Role = analyzeRole
		}
		if flags.Changed("template") {
			c.Template = analyzeTemplate
		}
		if flags.Changed("report-format") {
			c.ReportFormat = analyzeReportFormat
		}
		if flags.Changed("verify-source") {
			c.VerifySource = analyzeVerifySource
		}
		if flags.Changed("out") {
			c.OutputDir = analyzeOutDir
		}
		if flags.Changed("report-dir") {
			c.ReportDir = analyzeReportDir
		}
	})
	if err != nil {
		return err
	}
	if cfg.CV == "" {
		return fmt.Errorf("--cv must be provided (via flag or config)")
	}
	if cfg.Role == "" {
		return fmt.Errorf("--role must be provided (via flag or config)")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	log := stderrLogger(cfg)
	gw, closeGW, err := newGateway(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeGW()

	rec, closeDB, err := openRecorder(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDB()

	_, err = analyze(ctx, cfg, cliDeps{
		Generator: gw,
		Recorder:  rec,
		Log:       log,
		In:        cmd.InOrStdin(),
		Out:       cmd.OutOrStdout(),
	}, analyzeRoadmap)
	return err
}

// cliDeps are the collaborators of one CLI invocation
type cliDeps struct {
	Generator llm.Generator
	Recorder  *db.Recorder
	Log       logrus.FieldLogger
	In        io.Reader
	Out       io.Writer
}

func (d cliDeps) observers(printer *observability.Printer) []workflow.Option {
	opts := []workflow.Option{
		workflow.WithObserver(printer.StageObserver()),
		workflow.WithObserver(workflow.LogObserver{Log: d.Log}),
	}
	if d.Recorder != nil {
		opts = append(opts, workflow.WithObserver(d.Recorder))
	}
	return opts
}

// analyze runs the CV workflow with interactive verification and prints the
// outcome. With withRoadmap, deferred skills go through the roadmap workflow.
func analyze(ctx context.Context, cfg config.Config, d cliDeps, withRoadmap bool) (*pipeline.CVResult, error) {
	printer := observability.NewPrinter(d.Out)
	prompter := verification.NewPrompter(d.In, d.Out)

	engine, err := pipeline.NewCVEngine(pipeline.Deps{
		Generator: d.Generator,
		Reports:   reportRenderer(cfg),
		Answer:    prompter.Ask,
		Log:       d.Log,
	}, pipeline.Config{
		ReportDir:    cfg.ReportDir,
		OutputDir:    cfg.OutputDir,
		VerifySource: pipeline.VerifySource(cfg.VerifySource),
	}, d.observers(printer)...)
	if err != nil {
		return nil, err
	}

	st, err := pipeline.Input{CVPath: cfg.CV, RoleTitle: cfg.Role, TemplateSelection: cfg.Template}.State()
	if err != nil {
		return nil, err
	}

	res, err := engine.Run(ctx, st)
	if d.Recorder != nil {
		d.Recorder.RecordCV(ctx, res)
	}
	if err != nil {
		return res, fmt.Errorf("analysis failed: %w", err)
	}

	if cfg.Verbose {
		printer.PrintProfile(res.State.Profile)
		printer.PrintGapReport(res.State.SkillReport)
	}
	printer.PrintVerification(res.State.SkillsToAdd, res.State.SkillsForRoadmap)
	printer.PrintArtifacts(res.State)

	if withRoadmap && len(res.State.SkillsForRoadmap) > 0 {
		if _, err := buildRoadmap(ctx, cfg, d, res.State.SkillsForRoadmap); err != nil {
			return res, err
		}
	}
	return res, nil
}
