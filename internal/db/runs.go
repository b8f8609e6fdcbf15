package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateRun inserts a run record. Recording an existing run is a no-op.
func (db *DB) CreateRun(ctx context.Context, id uuid.UUID, workflow string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO cv_runs (id, workflow, status)
		 VALUES ($1, $2, 'running')
		 ON CONFLICT (id) DO NOTHING`,
		id, workflow,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// SetRunStatus updates a run's status; terminal statuses set completed_at
func (db *DB) SetRunStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE cv_runs
		 SET status = $1,
		     completed_at = CASE WHEN $1 IN ('completed', 'failed') THEN NOW() ELSE NULL END
		 WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID, or nil when it does not exist
func (db *DB) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, workflow, status, created_at, completed_at FROM cv_runs WHERE id = $1`,
		id,
	).Scan(&run.ID, &run.Workflow, &run.Status, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// UpsertRunStep records the latest transition of a stage
func (db *DB) UpsertRunStep(ctx context.Context, runID uuid.UUID, in *RunStepInput) error {
	var durationMs *int
	if in.Duration > 0 {
		ms := int(in.Duration.Milliseconds())
		durationMs = &ms
	}
	var errorMsg *string
	if in.Err != nil {
		msg := in.Err.Error()
		errorMsg = &msg
	}
	var fieldsJSON []byte
	if in.Fields != nil {
		var err error
		fieldsJSON, err = json.Marshal(in.Fields)
		if err != nil {
			return fmt.Errorf("failed to marshal fields: %w", err)
		}
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO cv_run_steps (run_id, step, status, duration_ms, error_message, fields)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (run_id, step) DO UPDATE
		 SET status = $3, duration_ms = $4, error_message = $5, fields = $6, updated_at = NOW()`,
		runID, in.Step, in.Status, durationMs, errorMsg, fieldsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to record step %s: %w", in.Step, err)
	}
	return nil
}

// ListRunSteps retrieves all steps of a run in the order they were last updated
func (db *DB) ListRunSteps(ctx context.Context, runID uuid.UUID) ([]RunStep, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT run_id, step, status, duration_ms, error_message, fields, updated_at
		 FROM cv_run_steps
		 WHERE run_id = $1
		 ORDER BY updated_at`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list run steps: %w", err)
	}
	defer rows.Close()

	var steps []RunStep
	for rows.Next() {
		var step RunStep
		var fieldsJSON []byte
		if err := rows.Scan(&step.RunID, &step.Step, &step.Status, &step.DurationMs,
			&step.ErrorMessage, &fieldsJSON, &step.UpdatedAt); err != nil {
			return nil, err
		}
		if fieldsJSON != nil {
			_ = json.Unmarshal(fieldsJSON, &step.Fields)
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}
