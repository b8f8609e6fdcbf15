package workflow

import (
	"errors"
	"fmt"
)

// ErrSuspended is matched by the error a node returns to pause the run
var ErrSuspended = errors.New("run suspended")

// ErrCycle is returned by Compile when the edges form a cycle
var ErrCycle = errors.New("graph contains a cycle")

// StageError is the error returned by a failed run. It names the stage that
// failed; Cause is the error the stage returned.
type StageError struct {
	Stage string
	Cause error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Cause)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}

// OwnershipError is raised when a stage sets a field it does not own
type OwnershipError struct {
	Stage string
	Field string
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("stage %s set field %q it does not own", e.Stage, e.Field)
}

// GraphError describes an invalid graph definition
type GraphError struct {
	Message string
	Cause   error
}

func (e *GraphError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *GraphError) Unwrap() error {
	return e.Cause
}

// suspendError carries the reason a node paused the run
type suspendError struct {
	reason string
}

func (e *suspendError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSuspended, e.reason)
}

func (e *suspendError) Is(target error) bool {
	return target == ErrSuspended
}

// Suspend returns the error a node uses to pause the run until the caller
// resumes it. The update returned alongside it is still merged.
func Suspend(reason string) error {
	return &suspendError{reason: reason}
}
