// Package server provides the HTTP API for CV analysis and roadmap runs.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/cv-analyzer/internal/gateway"
	"github.com/jonathan/cv-analyzer/internal/ingestion"
	"github.com/jonathan/cv-analyzer/internal/pipeline"
	"github.com/jonathan/cv-analyzer/internal/rendering"
	"github.com/jonathan/cv-analyzer/internal/roadmap"
	"github.com/jonathan/cv-analyzer/internal/verification"
)

// ErrRunNotFound indicates no run is registered under the requested ID
var ErrRunNotFound = errors.New("run not found")

// ErrRunNotSuspended indicates answers were posted to a run that is not waiting for them
var ErrRunNotSuspended = errors.New("run is not awaiting answers")

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error. Input
// problems map to 422, model exhaustion to 502 and anything else to 500.
func HTTPStatus(err error) int {
	var ve *ErrValidation
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRunNotSuspended):
		return http.StatusConflict
	case errors.Is(err, pipeline.ErrInvalidInput),
		errors.Is(err, ingestion.ErrUnsupportedFormat),
		errors.Is(err, ingestion.ErrEmptyContent),
		errors.Is(err, verification.ErrUnanswered),
		errors.Is(err, rendering.ErrUnknownTemplate),
		errors.Is(err, roadmap.ErrNoSkills):
		return http.StatusUnprocessableEntity
	case errors.Is(err, gateway.ErrGatewayExhausted):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
