package db

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/cv-analyzer/internal/types"
	"github.com/jonathan/cv-analyzer/internal/workflow"
)

// Artifact steps
const (
	ArtifactState     = "state"
	ArtifactQuestions = "questions"
	ArtifactReport    = "report"
	ArtifactFinalCV   = "final_cv"
	ArtifactRoadmap   = "roadmap"
)

// Store is the subset of DB the recorder writes through
type Store interface {
	CreateRun(ctx context.Context, id uuid.UUID, workflow string) error
	SetRunStatus(ctx context.Context, id uuid.UUID, status string) error
	UpsertRunStep(ctx context.Context, runID uuid.UUID, in *RunStepInput) error
	SaveArtifact(ctx context.Context, runID uuid.UUID, step, category string, content any) error
	SaveTextArtifact(ctx context.Context, runID uuid.UUID, step, category, text string) error
}

var _ Store = (*DB)(nil)

// Recorder persists stage transitions and run artifacts. It implements
// workflow.Observer. Write failures are logged and never reach the run.
type Recorder struct {
	store Store
	log   logrus.FieldLogger
}

var _ workflow.Observer = (*Recorder)(nil)

// NewRecorder creates a recorder writing to store
func NewRecorder(store Store, log logrus.FieldLogger) *Recorder {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Recorder{store: store, log: log}
}

func (r *Recorder) runID(e workflow.Event) (uuid.UUID, bool) {
	id, err := uuid.Parse(e.RunID)
	if err != nil {
		r.log.WithField("run_id", e.RunID).Warn("run id is not a uuid, not recording")
		return uuid.Nil, false
	}
	return id, true
}

func (r *Recorder) warn(err error, runID uuid.UUID, what string) {
	if err != nil {
		r.log.WithError(err).WithField("run_id", runID.String()).Warnf("failed to record %s", what)
	}
}

func (r *Recorder) StageStarted(ctx context.Context, e workflow.Event) {
	id, ok := r.runID(e)
	if !ok {
		return
	}
	r.warn(r.store.CreateRun(ctx, id, e.Workflow), id, "run")
	r.warn(r.store.SetRunStatus(ctx, id, RunStatusRunning), id, "run status")
	r.warn(r.store.UpsertRunStep(ctx, id, &RunStepInput{Step: e.Stage, Status: RunStatusRunning}), id, "stage")
}

func (r *Recorder) StageCompleted(ctx context.Context, e workflow.Event) {
	id, ok := r.runID(e)
	if !ok {
		return
	}
	r.warn(r.store.UpsertRunStep(ctx, id, &RunStepInput{
		Step:     e.Stage,
		Status:   RunStatusCompleted,
		Duration: e.Duration,
		Fields:   e.Fields,
	}), id, "stage")
}

func (r *Recorder) StageFailed(ctx context.Context, e workflow.Event) {
	id, ok := r.runID(e)
	if !ok {
		return
	}
	r.warn(r.store.UpsertRunStep(ctx, id, &RunStepInput{
		Step:     e.Stage,
		Status:   RunStatusFailed,
		Duration: e.Duration,
		Err:      e.Err,
	}), id, "stage")
	r.warn(r.store.SetRunStatus(ctx, id, RunStatusFailed), id, "run status")
}

func (r *Recorder) StageSuspended(ctx context.Context, e workflow.Event) {
	id, ok := r.runID(e)
	if !ok {
		return
	}
	r.warn(r.store.UpsertRunStep(ctx, id, &RunStepInput{
		Step:     e.Stage,
		Status:   RunStatusSuspended,
		Duration: e.Duration,
		Fields:   e.Fields,
	}), id, "stage")
	r.warn(r.store.SetRunStatus(ctx, id, RunStatusSuspended), id, "run status")
}

// RecordCV stores the state of a CV analysis run and the text of its
// artifacts, then marks the run completed when it is.
func (r *Recorder) RecordCV(ctx context.Context, res *workflow.Result[types.RunState]) {
	id, err := uuid.Parse(res.RunID)
	if err != nil {
		return
	}
	st := res.State

	r.warn(r.store.SaveArtifact(ctx, id, ArtifactState, CategoryState, st), id, "state")
	if len(st.Questions) > 0 {
		r.warn(r.store.SaveArtifact(ctx, id, ArtifactQuestions, CategoryQuestion, st.Questions), id, "questions")
	}
	if st.ReportPath != "" && strings.EqualFold(filepath.Ext(st.ReportPath), ".txt") {
		r.saveFile(ctx, id, ArtifactReport, CategoryReport, st.ReportPath)
	}
	if st.FinalCVPath != "" {
		r.saveFile(ctx, id, ArtifactFinalCV, CategoryCV, st.FinalCVPath)
	}
	if res.Status == workflow.StatusCompleted {
		r.warn(r.store.SetRunStatus(ctx, id, RunStatusCompleted), id, "run status")
	}
}

// RecordRoadmap stores the roadmap of a completed roadmap run.
func (r *Recorder) RecordRoadmap(ctx context.Context, res *workflow.Result[types.RoadmapState]) {
	id, err := uuid.Parse(res.RunID)
	if err != nil {
		return
	}
	if res.State.Roadmap != nil {
		r.warn(r.store.SaveArtifact(ctx, id, ArtifactRoadmap, CategoryRoadmap, res.State.Roadmap), id, "roadmap")
	}
	if res.Status == workflow.StatusCompleted {
		r.warn(r.store.SetRunStatus(ctx, id, RunStatusCompleted), id, "run status")
	}
}

func (r *Recorder) saveFile(ctx context.Context, id uuid.UUID, step, category, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		r.warn(err, id, step)
		return
	}
	r.warn(r.store.SaveTextArtifact(ctx, id, step, category, string(data)), id, step)
}
