package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cv-analyzer/internal/db"
	"github.com/jonathan/cv-analyzer/internal/llm"
	"github.com/jonathan/cv-analyzer/internal/metrics"
	"github.com/jonathan/cv-analyzer/internal/pipeline"
	"github.com/jonathan/cv-analyzer/internal/rendering"
	"github.com/jonathan/cv-analyzer/internal/roadmap"
	"github.com/jonathan/cv-analyzer/internal/server/ratelimit"
	"github.com/jonathan/cv-analyzer/internal/workflow"
)

// DefaultMaxUpload bounds a multipart CV upload
const DefaultMaxUpload = 20 << 20

// Config holds server configuration
type Config struct {
	Port int
	// UploadDir receives uploaded CVs for the duration of a run. Defaults to os.TempDir().
	UploadDir       string
	MaxUploadBytes  int64
	Pipeline        pipeline.Config
	RateLimit       *ratelimit.Config
	ShutdownTimeout time.Duration
}

// Deps are the server's collaborators. Generator is required.
type Deps struct {
	Generator llm.Generator
	Reports   rendering.ReportRenderer
	Searcher  *roadmap.Searcher
	// Recorder persists runs when a database is configured
	Recorder *db.Recorder
	Metrics  *metrics.Recorder
	// Gatherer backs GET /metrics. Defaults to the Prometheus default gatherer.
	Gatherer prometheus.Gatherer
	Log      logrus.FieldLogger
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	cfg         Config
	deps        Deps
	cv          *pipeline.CVEngine
	roadmap     *pipeline.RoadmapEngine
	runs        *runRegistry
	rateLimiter *ratelimit.Limiter
	log         logrus.FieldLogger
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Generator == nil {
		return nil, fmt.Errorf("server: generator is required")
	}
	if deps.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		deps.Log = l
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = os.TempDir()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUpload
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}

	opts := []workflow.Option{workflow.WithObserver(workflow.LogObserver{Log: deps.Log})}
	if deps.Metrics != nil {
		opts = append(opts, workflow.WithObserver(deps.Metrics))
	}
	if deps.Recorder != nil {
		opts = append(opts, workflow.WithObserver(deps.Recorder))
	}

	cv, err := pipeline.NewCVEngine(pipeline.Deps{
		Generator: deps.Generator,
		Reports:   deps.Reports,
		Log:       deps.Log,
	}, cfg.Pipeline, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build cv workflow: %w", err)
	}
	rm, err := pipeline.NewRoadmapEngine(pipeline.RoadmapDeps{
		Generator: deps.Generator,
		Searcher:  deps.Searcher,
		Log:       deps.Log,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build roadmap workflow: %w", err)
	}

	s := &Server{
		cfg:         cfg,
		deps:        deps,
		cv:          cv,
		roadmap:     rm,
		runs:        newRunRegistry(),
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		log:         deps.Log,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 15 * time.Minute, // model backoff and cooldown can hold a run for minutes
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /analyze-cv", s.handleAnalyze)
	mux.HandleFunc("POST /analyze-cv/stream", s.handleAnalyzeStream)
	mux.HandleFunc("GET /runs/{id}", s.handleGetRun)
	mux.HandleFunc("POST /runs/{id}/answers", s.handleAnswers)
	mux.HandleFunc("POST /generate-final-cv", s.handleGenerateFinalCV)
	mux.HandleFunc("POST /roadmap", s.handleRoadmap)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.WithField("addr", s.httpServer.Addr).Info("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.rateLimiter.Stop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	s.log.Info("server stopped")
	return err
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients over their endpoint budget with 429
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"remote":   r.RemoteAddr,
			"duration": time.Since(start).String(),
		}).Debug("request completed")
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status": "ok",
		"runs":   s.runs.len(),
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.WithError(err).Warn("failed to encode JSON response")
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// clientID uses the IP from RemoteAddr
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":   "rate_limit_exceeded",
		"message": "Rate limit exceeded. Please try again later.",
		"limit":   info.Limit,
	}
	if info.RetryAfter > 0 {
		secs := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = secs
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}
	s.log.WithField("limit", info.Limit).Warn("rate limit exceeded")
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
