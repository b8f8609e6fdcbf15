package workflow

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Event describes one stage transition
type Event struct {
	RunID    string
	Workflow string
	Stage    string
	// Index is the stage position in execution order, starting at 1
	Index int
	Total int
	// Duration is set for completed, failed and suspended events
	Duration time.Duration
	// Fields lists the state fields merged by the stage
	Fields []string
	Err    error
	Reason string
}

// Observer is notified as stages run. Calls are made synchronously on the
// run's goroutine, so implementations should return quickly.
type Observer interface {
	StageStarted(ctx context.Context, e Event)
	StageCompleted(ctx context.Context, e Event)
	StageFailed(ctx context.Context, e Event)
	StageSuspended(ctx context.Context, e Event)
}

// NopObserver implements Observer with no-ops. Embed it to observe only some events.
type NopObserver struct{}

func (NopObserver) StageStarted(context.Context, Event)   {}
func (NopObserver) StageCompleted(context.Context, Event) {}
func (NopObserver) StageFailed(context.Context, Event)    {}
func (NopObserver) StageSuspended(context.Context, Event) {}

// LogObserver writes stage transitions to a logrus logger
type LogObserver struct {
	Log logrus.FieldLogger
}

func (o LogObserver) entry(e Event) *logrus.Entry {
	return o.Log.WithFields(logrus.Fields{
		"run_id":   e.RunID,
		"workflow": e.Workflow,
		"stage":    e.Stage,
		"step":     e.Index,
		"steps":    e.Total,
	})
}

func (o LogObserver) StageStarted(_ context.Context, e Event) {
	o.entry(e).Info("stage started")
}

func (o LogObserver) StageCompleted(_ context.Context, e Event) {
	o.entry(e).WithFields(logrus.Fields{
		"duration": e.Duration.String(),
		"fields":   e.Fields,
	}).Info("stage completed")
}

func (o LogObserver) StageFailed(_ context.Context, e Event) {
	o.entry(e).WithField("duration", e.Duration.String()).WithError(e.Err).Error("stage failed")
}

func (o LogObserver) StageSuspended(_ context.Context, e Event) {
	o.entry(e).WithField("reason", e.Reason).Info("stage suspended")
}

// FuncObserver forwards every event to one function with a status label
type FuncObserver func(ctx context.Context, status Status, e Event)

func (f FuncObserver) StageStarted(ctx context.Context, e Event)   { f(ctx, StatusRunning, e) }
func (f FuncObserver) StageCompleted(ctx context.Context, e Event) { f(ctx, StatusCompleted, e) }
func (f FuncObserver) StageFailed(ctx context.Context, e Event)    { f(ctx, StatusFailed, e) }
func (f FuncObserver) StageSuspended(ctx context.Context, e Event) { f(ctx, StatusSuspended, e) }

type observers []Observer

func (os observers) started(ctx context.Context, e Event) {
	for _, o := range os {
		o.StageStarted(ctx, e)
	}
}

func (os observers) completed(ctx context.Context, e Event) {
	for _, o := range os {
		o.StageCompleted(ctx, e)
	}
}

func (os observers) failed(ctx context.Context, e Event) {
	for _, o := range os {
		o.StageFailed(ctx, e)
	}
}

func (os observers) suspended(ctx context.Context, e Event) {
	for _, o := range os {
		o.StageSuspended(ctx, e)
	}
}
