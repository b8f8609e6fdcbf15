package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status of a run or stage
type Status string

// Run and stage statuses
const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusSuspended Status = "suspended"
	StatusFailed    Status = "failed"
)

// Result is the outcome of Run or Resume
type Result[S any] struct {
	RunID    string
	Workflow string
	Status   Status
	State    S
	// Completed lists finished stages in execution order
	Completed []string
	// NextStage is the stage a suspended run re-enters on Resume
	NextStage     string
	SuspendReason string
}

type options struct {
	observers observers
	newRunID  func() string
	now       func() time.Time
}

func (o *options) defaults() {
	if o.newRunID == nil {
		o.newRunID = func() string { return uuid.NewString() }
	}
	if o.now == nil {
		o.now = time.Now
	}
}

// Option configures an Engine at compile time
type Option func(*options)

// WithObserver registers an observer for every run of the engine
func WithObserver(o Observer) Option {
	return func(opts *options) {
		if o != nil {
			opts.observers = append(opts.observers, o)
		}
	}
}

// WithClock replaces time.Now for stage durations
func WithClock(now func() time.Time) Option {
	return func(opts *options) {
		opts.now = now
	}
}

type runConfig struct {
	runID     string
	observers observers
}

// RunOption configures a single run
type RunOption func(*runConfig)

// WithRunID sets the run ID instead of generating one
func WithRunID(id string) RunOption {
	return func(c *runConfig) {
		c.runID = id
	}
}

// WithRunObserver adds an observer for this run only
func WithRunObserver(o Observer) RunOption {
	return func(c *runConfig) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// Engine executes a compiled graph. It holds no run state and is safe for
// concurrent use by independent runs.
type Engine[S any, U Update[S]] struct {
	name    string
	order   []int
	nodes   []node[S, U]
	index   map[string]int
	options options
}

// Name returns the workflow name
func (e *Engine[S, U]) Name() string {
	return e.name
}

// Stages returns the stage names in execution order
func (e *Engine[S, U]) Stages() []string {
	names := make([]string, len(e.order))
	for i, n := range e.order {
		names[i] = e.nodes[n].name
	}
	return names
}

// Run executes every stage in order starting from initial.
// A suspended run returns a nil error and a Result with StatusSuspended.
// A failed run returns the partial Result and a *StageError.
func (e *Engine[S, U]) Run(ctx context.Context, initial S, opts ...RunOption) (*Result[S], error) {
	cfg := e.runConfig(opts)
	result := &Result[S]{
		RunID:    cfg.runID,
		Workflow: e.name,
		Status:   StatusRunning,
		State:    initial,
	}
	return e.execute(ctx, result, 0, cfg)
}

// Resume continues a suspended run at the stage that suspended it. patch, if
// non-nil, edits the state first; this is how callers supply input the stage
// was waiting for.
func (e *Engine[S, U]) Resume(ctx context.Context, prev *Result[S], patch func(*S), opts ...RunOption) (*Result[S], error) {
	if prev == nil || prev.Status != StatusSuspended {
		return nil, fmt.Errorf("only suspended runs can be resumed")
	}
	start, ok := e.index[prev.NextStage]
	if !ok {
		return nil, fmt.Errorf("unknown stage %q for workflow %s", prev.NextStage, e.name)
	}

	opts = append([]RunOption{WithRunID(prev.RunID)}, opts...)
	cfg := e.runConfig(opts)

	result := &Result[S]{
		RunID:     cfg.runID,
		Workflow:  e.name,
		Status:    StatusRunning,
		State:     prev.State,
		Completed: append([]string(nil), prev.Completed...),
	}
	if patch != nil {
		patch(&result.State)
	}
	return e.execute(ctx, result, start, cfg)
}

func (e *Engine[S, U]) runConfig(opts []RunOption) runConfig {
	cfg := runConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.runID == "" {
		cfg.runID = e.options.newRunID()
	}
	cfg.observers = append(append(observers(nil), e.options.observers...), cfg.observers...)
	return cfg
}

func (e *Engine[S, U]) execute(ctx context.Context, result *Result[S], start int, cfg runConfig) (*Result[S], error) {
	total := len(e.order)
	for pos := start; pos < total; pos++ {
		n := e.nodes[e.order[pos]]
		ev := Event{
			RunID:    result.RunID,
			Workflow: e.name,
			Stage:    n.name,
			Index:    pos + 1,
			Total:    total,
		}

		if err := ctx.Err(); err != nil {
			return e.fail(ctx, result, cfg, ev, err)
		}

		cfg.observers.started(ctx, ev)
		began := e.options.now()
		update, err := n.fn(ctx, result.State)
		ev.Duration = e.options.now().Sub(began)

		if err != nil && !errors.Is(err, ErrSuspended) {
			return e.fail(ctx, result, cfg, ev, err)
		}

		fields := update.Fields()
		for _, f := range fields {
			if _, ok := n.owns[f]; !ok {
				return e.fail(ctx, result, cfg, ev, &OwnershipError{Stage: n.name, Field: f})
			}
		}
		update.Apply(&result.State)
		ev.Fields = fields

		if err != nil {
			var se *suspendError
			if errors.As(err, &se) {
				ev.Reason = se.reason
				result.SuspendReason = se.reason
			}
			result.Status = StatusSuspended
			result.NextStage = n.name
			cfg.observers.suspended(ctx, ev)
			return result, nil
		}

		result.Completed = append(result.Completed, n.name)
		cfg.observers.completed(ctx, ev)
	}

	result.Status = StatusCompleted
	result.NextStage = ""
	result.SuspendReason = ""
	return result, nil
}

func (e *Engine[S, U]) fail(ctx context.Context, result *Result[S], cfg runConfig, ev Event, cause error) (*Result[S], error) {
	ev.Err = cause
	result.Status = StatusFailed
	result.NextStage = ev.Stage
	cfg.observers.failed(ctx, ev)
	return result, &StageError{Stage: ev.Stage, Cause: cause}
}
