package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/cv-analyzer/internal/gateway"
	"github.com/jonathan/cv-analyzer/internal/ingestion"
	"github.com/jonathan/cv-analyzer/internal/pipeline"
	"github.com/jonathan/cv-analyzer/internal/verification"
	"github.com/jonathan/cv-analyzer/internal/workflow"
)

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "file", Message: "a CV file is required"}
	assert.Equal(t, "validation error: file - a CV file is required", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", ErrRunNotFound, http.StatusNotFound},
		{"not suspended", ErrRunNotSuspended, http.StatusConflict},
		{"input", &pipeline.InputError{Message: "job_title"}, http.StatusUnprocessableEntity},
		{"unsupported format", &workflow.StageError{Stage: "read", Cause: &ingestion.UnsupportedFormatError{Path: "cv.docx", Extension: ".docx"}}, http.StatusUnprocessableEntity},
		{"unanswered", &workflow.StageError{Stage: "verify", Cause: &verification.UnansweredError{Skills: []string{"Go"}}}, http.StatusUnprocessableEntity},
		{"exhausted", &workflow.StageError{Stage: "gap", Cause: &gateway.ExhaustedError{}}, http.StatusBadGateway},
		{"other", fmt.Errorf("wrapped: %w", errors.New("disk full")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
