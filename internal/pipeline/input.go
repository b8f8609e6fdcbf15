// Package pipeline wires the CV analysis and roadmap workflows onto the workflow engine.
package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/cv-analyzer/internal/rendering"
	"github.com/jonathan/cv-analyzer/internal/types"
)

// ErrInvalidInput is matched by InputError
var ErrInvalidInput = errors.New("invalid input")

// InputError reports a run request that cannot start
type InputError struct {
	Message string
	Cause   error
}

func (e *InputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid input: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid input: %s", e.Message)
}

func (e *InputError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrInvalidInput
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

var validate = validator.New()

// Input is what a caller supplies to start a CV analysis run.
type Input struct {
	CVPath            string `json:"cv_file_path" validate:"required"`
	RoleTitle         string `json:"job_title" validate:"required,max=200"`
	TemplateSelection string `json:"template_selection"`
}

// State validates in and builds the initial run state. The template
// selection is resolved so later stages see a canonical identifier.
func (in Input) State() (types.RunState, error) {
	in.CVPath = strings.TrimSpace(in.CVPath)
	in.RoleTitle = strings.TrimSpace(in.RoleTitle)

	if err := validate.Struct(in); err != nil {
		return types.RunState{}, &InputError{Message: "missing or invalid fields", Cause: err}
	}
	template, err := rendering.ResolveTemplate(in.TemplateSelection)
	if err != nil {
		return types.RunState{}, &InputError{Message: "template selection", Cause: err}
	}

	return types.RunState{
		CVPath:            in.CVPath,
		RoleTitle:         in.RoleTitle,
		TemplateSelection: template,
	}, nil
}

// FinalCVRequest renders a final CV outside the workflow from a profile the
// caller already holds.
type FinalCVRequest struct {
	Profile      *types.StructuredProfile `json:"structured_cv_data" validate:"required"`
	Skills       []string                 `json:"new_skills_to_inject"`
	TemplateName string                   `json:"template_name"`
	UserName     string                   `json:"user_name"`
}

// RoadmapInput starts a roadmap run.
type RoadmapInput struct {
	Skills []string `json:"skills_to_learn" validate:"required,min=1,dive,required"`
}

// State validates in and builds the initial roadmap state.
func (in RoadmapInput) State() (types.RoadmapState, error) {
	skills := make([]string, 0, len(in.Skills))
	for _, s := range in.Skills {
		skills = append(skills, strings.TrimSpace(s))
	}
	in.Skills = skills
	if err := validate.Struct(in); err != nil {
		return types.RoadmapState{}, &InputError{Message: "skills_to_learn", Cause: err}
	}
	return types.RoadmapState{SkillsToLearn: skills}, nil
}
