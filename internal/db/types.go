package db

import (
	"time"

	"github.com/google/uuid"
)

// Run statuses mirror workflow statuses
const (
	RunStatusRunning   = "running"
	RunStatusSuspended = "suspended"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Artifact categories
const (
	CategoryState    = "state"
	CategoryReport   = "report"
	CategoryCV       = "cv"
	CategoryQuestion = "verification"
	CategoryRoadmap  = "roadmap"
)

// Run is one workflow execution
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Workflow    string     `json:"workflow"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RunStep is the latest record of one stage of a run
type RunStep struct {
	RunID        uuid.UUID `json:"run_id"`
	Step         string    `json:"step"`
	Status       string    `json:"status"`
	DurationMs   *int      `json:"duration_ms,omitempty"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	Fields       []string  `json:"fields,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RunStepInput represents input for recording a stage transition
type RunStepInput struct {
	Step     string
	Status   string
	Duration time.Duration
	Err      error
	Fields   []string
}
