package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jonathan/cv-analyzer/internal/config"
	"github.com/jonathan/cv-analyzer/internal/fetch"
	"github.com/jonathan/cv-analyzer/internal/gateway"
	"github.com/jonathan/cv-analyzer/internal/metrics"
	"github.com/jonathan/cv-analyzer/internal/pipeline"
	"github.com/jonathan/cv-analyzer/internal/roadmap"
	"github.com/jonathan/cv-analyzer/internal/server"
	"github.com/jonathan/cv-analyzer/internal/server/ratelimit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for CV analysis, answer submission, final CV rendering and roadmaps.`,
	RunE:  runServe,
}

var (
	servePort      int
	serveUploadDir string
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8000, "Port to listen on")
	serveCmd.Flags().StringVar(&serveUploadDir, "upload-dir", "", "Directory for uploaded CVs (defaults to the system temp dir)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd, func(c *config.Config) {
		if cmd.Flags().Changed("port") {
			c.Port = servePort
		}
		if cmd.Flags().Changed("upload-dir") {
			c.UploadDir = serveUploadDir
		}
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := stderrLogger(cfg)
	if !cfg.Verbose {
		log.SetLevel(logrus.InfoLevel)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.New(reg)

	gw, closeGW, err := newGateway(ctx, cfg, log, gateway.WithRecorder(rec))
	if err != nil {
		return err
	}
	defer closeGW()

	runs, closeDB, err := openRecorder(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDB()

	searchOpts := []roadmap.SearchOption{
		roadmap.WithCoursesPerProvider(cfg.Roadmap.CoursesPerProvider),
		roadmap.WithSearchLogger(log),
	}
	if cfg.Roadmap.Live {
		searchOpts = append(searchOpts, roadmap.WithLiveSearch(fetch.DefaultOptions()))
	}

	srv, err := server.New(server.Config{
		Port:      cfg.Port,
		UploadDir: cfg.UploadDir,
		Pipeline: pipeline.Config{
			ReportDir:    cfg.ReportDir,
			OutputDir:    cfg.OutputDir,
			VerifySource: pipeline.VerifySource(cfg.VerifySource),
		},
		RateLimit: ratelimit.LoadConfig(),
	}, server.Deps{
		Generator: gw,
		Reports:   reportRenderer(cfg),
		Searcher:  roadmap.NewSearcher(searchOpts...),
		Recorder:  runs,
		Metrics:   rec,
		Gatherer:  reg,
		Log:       log,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
