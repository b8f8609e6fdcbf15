package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-analyzer/internal/types"
	"github.com/jonathan/cv-analyzer/internal/workflow"
)

type fakeStore struct {
	mu        sync.Mutex
	runs      map[uuid.UUID]string
	statuses  []string
	steps     []RunStepInput
	artifacts map[string]any
	texts     map[string]string
	err       error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		runs:      make(map[uuid.UUID]string),
		artifacts: make(map[string]any),
		texts:     make(map[string]string),
	}
}

func (f *fakeStore) CreateRun(_ context.Context, id uuid.UUID, wf string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs[id] = wf
	return f.err
}

func (f *fakeStore) SetRunStatus(_ context.Context, _ uuid.UUID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
	return f.err
}

func (f *fakeStore) UpsertRunStep(_ context.Context, _ uuid.UUID, in *RunStepInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.steps = append(f.steps, *in)
	return f.err
}

func (f *fakeStore) SaveArtifact(_ context.Context, _ uuid.UUID, step, _ string, content any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.artifacts[step] = content
	return f.err
}

func (f *fakeStore) SaveTextArtifact(_ context.Context, _ uuid.UUID, step, _, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts[step] = text
	return f.err
}

func event(runID, stage string) workflow.Event {
	return workflow.Event{RunID: runID, Workflow: "cv_analysis", Stage: stage, Index: 1, Total: 7}
}

func TestRecorder_StageTransitions(t *testing.T) {
	store := newFakeStore()
	rec := NewRecorder(store, nil)
	ctx := context.Background()
	id := uuid.New()

	rec.StageStarted(ctx, event(id.String(), "read"))
	e := event(id.String(), "read")
	e.Duration = 250 * time.Millisecond
	e.Fields = []string{types.FieldCVText}
	rec.StageCompleted(ctx, e)

	assert.Equal(t, "cv_analysis", store.runs[id])
	require.Len(t, store.steps, 2)
	assert.Equal(t, RunStatusRunning, store.steps[0].Status)
	assert.Equal(t, RunStatusCompleted, store.steps[1].Status)
	assert.Equal(t, 250*time.Millisecond, store.steps[1].Duration)
	assert.Equal(t, []string{types.FieldCVText}, store.steps[1].Fields)
}

func TestRecorder_FailedAndSuspended(t *testing.T) {
	store := newFakeStore()
	rec := NewRecorder(store, nil)
	ctx := context.Background()
	id := uuid.New().String()

	failed := event(id, "extract")
	failed.Err = errors.New("bad json")
	rec.StageFailed(ctx, failed)

	suspended := event(id, "verify")
	suspended.Reason = "awaiting answers"
	rec.StageSuspended(ctx, suspended)

	require.Len(t, store.steps, 2)
	assert.EqualError(t, store.steps[0].Err, "bad json")
	assert.Equal(t, RunStatusSuspended, store.steps[1].Status)
	assert.Equal(t, []string{RunStatusFailed, RunStatusSuspended}, store.statuses)
}

func TestRecorder_IgnoresNonUUIDRuns(t *testing.T) {
	store := newFakeStore()
	rec := NewRecorder(store, nil)

	rec.StageStarted(context.Background(), event("run-1", "read"))

	assert.Empty(t, store.runs)
	assert.Empty(t, store.steps)
}

func TestRecorder_StoreErrorsAreNotFatal(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("connection refused")
	rec := NewRecorder(store, nil)

	assert.NotPanics(t, func() {
		rec.StageStarted(context.Background(), event(uuid.NewString(), "read"))
		rec.RecordCV(context.Background(), &workflow.Result[types.RunState]{RunID: uuid.NewString()})
	})
}

func TestRecorder_RecordCV(t *testing.T) {
	dir := t.TempDir()
	report := filepath.Join(dir, "Skill_Report_QA.txt")
	cv := filepath.Join(dir, "Jane_template_1_Optimized.tex")
	require.NoError(t, os.WriteFile(report, []byte("Missing Skills\n- Go\n"), 0o644))
	require.NoError(t, os.WriteFile(cv, []byte(`\documentclass{article}`), 0o644))

	store := newFakeStore()
	rec := NewRecorder(store, nil)

	res := &workflow.Result[types.RunState]{
		RunID:  uuid.NewString(),
		Status: workflow.StatusCompleted,
		State: types.RunState{
			RoleTitle:   "QA",
			ReportPath:  report,
			FinalCVPath: cv,
			Questions:   []types.VerificationQuestion{{Skill: "Go"}},
		},
	}
	rec.RecordCV(context.Background(), res)

	assert.Contains(t, store.artifacts, ArtifactState)
	assert.Contains(t, store.artifacts, ArtifactQuestions)
	assert.Equal(t, "Missing Skills\n- Go\n", store.texts[ArtifactReport])
	assert.Equal(t, `\documentclass{article}`, store.texts[ArtifactFinalCV])
	assert.Equal(t, []string{RunStatusCompleted}, store.statuses)
}

func TestRecorder_RecordRoadmap(t *testing.T) {
	store := newFakeStore()
	rec := NewRecorder(store, nil)

	rec.RecordRoadmap(context.Background(), &workflow.Result[types.RoadmapState]{
		RunID:  uuid.NewString(),
		Status: workflow.StatusFailed,
		State:  types.RoadmapState{Roadmap: &types.Roadmap{Title: "Plan"}},
	})

	assert.Contains(t, store.artifacts, ArtifactRoadmap)
	assert.Empty(t, store.statuses)
}
