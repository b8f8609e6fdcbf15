// Package metrics provides Prometheus-based metrics for model calls and workflow stages.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jonathan/cv-analyzer/internal/workflow"
)

// Recorder records gateway and stage metrics. It satisfies gateway.Recorder
// and workflow.Observer.
type Recorder struct {
	workflow.NopObserver

	gatewayCalls  *prometheus.CounterVec
	gatewaySleep  *prometheus.HistogramVec
	stageDuration *prometheus.HistogramVec
	stagesTotal   *prometheus.CounterVec
}

// New registers the metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Recorder{
		gatewayCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cv_gateway_calls_total",
				Help: "Total number of model calls by model and outcome",
			},
			[]string{"model", "outcome"},
		),
		gatewaySleep: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cv_gateway_sleep_seconds",
				Help:    "Time spent waiting between model calls",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"reason"},
		),
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cv_stage_duration_seconds",
				Help:    "Duration of workflow stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"workflow", "stage", "status"},
		),
		stagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cv_stages_total",
				Help: "Total number of finished workflow stages by status",
			},
			[]string{"workflow", "stage", "status"},
		),
	}
}

// ObserveGatewayCall counts one model call
func (r *Recorder) ObserveGatewayCall(model, outcome string) {
	r.gatewayCalls.WithLabelValues(model, outcome).Inc()
}

// ObserveGatewaySleep records a backoff or cooldown wait
func (r *Recorder) ObserveGatewaySleep(reason string, d time.Duration) {
	r.gatewaySleep.WithLabelValues(reason).Observe(d.Seconds())
}

func (r *Recorder) observeStage(e workflow.Event, status workflow.Status) {
	r.stageDuration.WithLabelValues(e.Workflow, e.Stage, string(status)).Observe(e.Duration.Seconds())
	r.stagesTotal.WithLabelValues(e.Workflow, e.Stage, string(status)).Inc()
}

// StageCompleted implements workflow.Observer
func (r *Recorder) StageCompleted(_ context.Context, e workflow.Event) {
	r.observeStage(e, workflow.StatusCompleted)
}

// StageFailed implements workflow.Observer
func (r *Recorder) StageFailed(_ context.Context, e workflow.Event) {
	r.observeStage(e, workflow.StatusFailed)
}

// StageSuspended implements workflow.Observer
func (r *Recorder) StageSuspended(_ context.Context, e workflow.Event) {
	r.observeStage(e, workflow.StatusSuspended)
}
