package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/cv-analyzer/internal/pipeline"
	"github.com/jonathan/cv-analyzer/internal/types"
	"github.com/jonathan/cv-analyzer/internal/verification"
	"github.com/jonathan/cv-analyzer/internal/workflow"
)

var validate = validator.New()

// RunResponse describes a CV run
type RunResponse struct {
	RunID     string         `json:"run_id"`
	Status    string         `json:"status"`
	NextStage string         `json:"next_stage,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	Completed []string       `json:"completed_stages"`
	State     types.RunState `json:"state"`
	Error     string         `json:"error,omitempty"`
}

// AnswersRequest resumes a suspended run
type AnswersRequest struct {
	Answers []types.Answer `json:"answers" validate:"required,min=1,dive"`
}

// FinalCVResponse is returned by /generate-final-cv
type FinalCVResponse struct {
	Path  string `json:"final_cv_tex_path"`
	LaTeX string `json:"latex"`
}

// RoadmapResponse is returned by /roadmap
type RoadmapResponse struct {
	RunID         string              `json:"run_id"`
	Roadmap       *types.Roadmap      `json:"final_roadmap_json"`
	SearchResults map[string][]string `json:"raw_search_data"`
}

func newRunResponse(res *pipeline.CVResult, err error) RunResponse {
	resp := RunResponse{
		RunID:     res.RunID,
		Status:    string(res.Status),
		NextStage: res.NextStage,
		Reason:    res.SuspendReason,
		Completed: res.Completed,
		State:     res.State,
	}
	if resp.Completed == nil {
		resp.Completed = []string{}
	}
	// CV text is large and already reflected in the extracted profile
	resp.State.CVText = ""
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// saveUpload reads the multipart form of an analyze request into a
// uniquely named temp file and returns the run input. The caller removes the file.
func (s *Server) saveUpload(w http.ResponseWriter, r *http.Request) (pipeline.Input, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		return pipeline.Input{}, "", &ErrValidation{Field: "file", Message: err.Error()}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return pipeline.Input{}, "", &ErrValidation{Field: "file", Message: "a CV file is required"}
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	path := filepath.Join(s.cfg.UploadDir, uuid.NewString()+ext)
	out, err := os.Create(path)
	if err != nil {
		return pipeline.Input{}, "", fmt.Errorf("failed to store upload: %w", err)
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(path)
		return pipeline.Input{}, "", fmt.Errorf("failed to store upload: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return pipeline.Input{}, "", fmt.Errorf("failed to store upload: %w", err)
	}

	in := pipeline.Input{
		CVPath:            path,
		RoleTitle:         r.FormValue("job_title"),
		TemplateSelection: r.FormValue("template_selection"),
	}
	return in, path, nil
}

// runCV starts a CV run from an uploaded file and registers its result
func (s *Server) runCV(ctx context.Context, in pipeline.Input, opts ...workflow.RunOption) (*pipeline.CVResult, error) {
	st, err := in.State()
	if err != nil {
		return nil, err
	}
	res, err := s.cv.Run(ctx, st, opts...)
	s.finish(ctx, res)
	return res, err
}

func (s *Server) finish(ctx context.Context, res *pipeline.CVResult) {
	if res == nil {
		return
	}
	s.runs.put(res)
	if s.deps.Recorder != nil {
		s.deps.Recorder.RecordCV(ctx, res)
	}
}

// handleAnalyze runs the CV workflow until it completes, fails or suspends for answers
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	in, path, err := s.saveUpload(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	defer os.Remove(path)

	res, err := s.runCV(r.Context(), in)
	if res == nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, HTTPStatus(err), newRunResponse(res, err))
}

// handleAnalyzeStream runs the CV workflow and streams stage transitions as SSE
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	in, path, err := s.saveUpload(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	defer os.Remove(path)

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	progress := workflow.FuncObserver(func(_ context.Context, status workflow.Status, e workflow.Event) {
		ev := StageEvent{
			RunID:      e.RunID,
			Stage:      e.Stage,
			Status:     string(status),
			Step:       e.Index,
			Steps:      e.Total,
			DurationMs: e.Duration.Milliseconds(),
			Fields:     e.Fields,
			Reason:     e.Reason,
		}
		if e.Err != nil {
			ev.Error = e.Err.Error()
		}
		if err := sse.WriteEvent(EventStage, ev); err != nil {
			s.log.WithError(err).Debug("failed to write stage event")
		}
	})

	res, err := s.runCV(r.Context(), in, workflow.WithRunObserver(progress))
	if res == nil {
		sse.WriteError(HTTPStatus(err), err.Error())
		return
	}
	if err != nil {
		sse.WriteError(HTTPStatus(err), err.Error())
	}
	sse.WriteEvent(EventComplete, newRunResponse(res, err)) //nolint:errcheck
}

// handleGetRun returns the latest result of a run
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	res, err := s.runs.get(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, newRunResponse(res, nil))
}

// handleAnswers resumes a suspended run with the candidate's answers
func (s *Server) handleAnswers(w http.ResponseWriter, r *http.Request) {
	var req AnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, (&ErrValidation{Field: "answers", Message: err.Error()}).Error())
		return
	}

	id := r.PathValue("id")
	prev, err := s.runs.checkout(id)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	res, err := s.cv.Resume(r.Context(), prev, pipeline.Answers(req.Answers))
	if res == nil || errors.Is(err, verification.ErrUnanswered) {
		// the run stays suspended so the caller can submit a complete set
		s.runs.release(id)
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.finish(r.Context(), res)
	s.jsonResponse(w, HTTPStatus(err), newRunResponse(res, err))
}

// handleGenerateFinalCV renders a final CV from a supplied profile
func (s *Server) handleGenerateFinalCV(w http.ResponseWriter, r *http.Request) {
	var req pipeline.FinalCVRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	path, err := pipeline.GenerateFinalCV(nil, req, s.cfg.Pipeline.OutputDir)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	content, err := os.ReadFile(path)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, FinalCVResponse{Path: path, LaTeX: string(content)})
}

// handleRoadmap builds a learning roadmap for the posted skills
func (s *Server) handleRoadmap(w http.ResponseWriter, r *http.Request) {
	var req pipeline.RoadmapInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	st, err := req.State()
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	res, err := s.roadmap.Run(r.Context(), st)
	if res != nil && s.deps.Recorder != nil {
		s.deps.Recorder.RecordRoadmap(r.Context(), res)
	}
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, RoadmapResponse{
		RunID:         res.RunID,
		Roadmap:       res.State.Roadmap,
		SearchResults: res.State.SearchResults,
	})
}
