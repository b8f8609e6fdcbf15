package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-analyzer/internal/config"
	"github.com/jonathan/cv-analyzer/internal/fetch"
	"github.com/jonathan/cv-analyzer/internal/observability"
	"github.com/jonathan/cv-analyzer/internal/pipeline"
	"github.com/jonathan/cv-analyzer/internal/roadmap"
)

var roadmapCmd = &cobra.Command{
	Use:   "roadmap [skill...]",
	Short: "Build a learning roadmap for a set of skills",
	Long: `Collects course search links for each skill and asks the model for a week-by-week
learning plan. The plan is written as JSON to --out (default upskilling_roadmap.json).`,
	RunE: runRoadmapCmd,
}

var (
	roadmapSkills string
	roadmapOut    string
	roadmapLive   bool
)

func init() {
	roadmapCmd.Flags().StringVarP(&roadmapSkills, "skills", "s", "", "Comma-separated skills to learn")
	roadmapCmd.Flags().StringVarP(&roadmapOut, "out", "o", "", "Path to the roadmap JSON file")
	roadmapCmd.Flags().BoolVar(&roadmapLive, "live", false, "Fetch course search pages and include the courses found")

	rootCmd.AddCommand(roadmapCmd)
}

func runRoadmapCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd, func(c *config.Config) {
		if cmd.Flags().Changed("out") {
			c.Roadmap.Output = roadmapOut
		}
		if cmd.Flags().Changed("live") {
			c.Roadmap.Live = roadmapLive
		}
	})
	if err != nil {
		return err
	}

	skills := roadmap.CleanSkills(append(roadmap.ParseSkillList(roadmapSkills), args...))
	if len(skills) == 0 {
		return fmt.Errorf("at least one skill must be provided (as arguments or --skills)")
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

	_, err = buildRoadmap(ctx, cfg, cliDeps{
		Generator: gw,
		Recorder:  rec,
		Log:       log,
		In:        cmd.InOrStdin(),
		Out:       cmd.OutOrStdout(),
	}, skills)
	return err
}

// buildRoadmap runs the roadmap workflow and prints the plan
func buildRoadmap(ctx context.Context, cfg config.Config, d cliDeps, skills []string) (*pipeline.RoadmapResult, error) {
	printer := observability.NewPrinter(d.Out)

	searchOpts := []roadmap.SearchOption{
		roadmap.WithCoursesPerProvider(cfg.Roadmap.CoursesPerProvider),
		roadmap.WithSearchLogger(d.Log),
	}
	if cfg.Roadmap.Live {
		searchOpts = append(searchOpts, roadmap.WithLiveSearch(fetch.DefaultOptions()))
	}

	engine, err := pipeline.NewRoadmapEngine(pipeline.RoadmapDeps{
		Generator:  d.Generator,
		Searcher:   roadmap.NewSearcher(searchOpts...),
		Log:        d.Log,
		OutputPath: cfg.Roadmap.Output,
	}, d.observers(printer)...)
	if err != nil {
		return nil, err
	}

	st, err := pipeline.RoadmapInput{Skills: skills}.State()
	if err != nil {
		return nil, err
	}

	res, err := engine.Run(ctx, st)
	if d.Recorder != nil {
		d.Recorder.RecordRoadmap(ctx, res)
	}
	if err != nil {
		return res, fmt.Errorf("roadmap generation failed: %w", err)
	}

	printer.PrintRoadmap(res.State.Roadmap)
	fmt.Fprintf(d.Out, "Roadmap:      %s\n", res.State.RoadmapPath) //nolint:errcheck
	return res, nil
}
