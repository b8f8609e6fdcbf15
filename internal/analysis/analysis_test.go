package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-analyzer/internal/llm"
)

type stubGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

func TestRequirements(t *testing.T) {
	gen := &stubGenerator{reply: "\n1. Key Responsibilities\n- Build APIs\n\n"}

	text, err := New(gen, nil).Requirements(context.Background(), "  Backend Engineer ")
	require.NoError(t, err)
	assert.Equal(t, "1. Key Responsibilities\n- Build APIs", text)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], `"Backend Engineer"`)
}

func TestRequirements_EmptyRole(t *testing.T) {
	gen := &stubGenerator{}
	_, err := New(gen, nil).Requirements(context.Background(), " ")
	assert.ErrorIs(t, err, ErrEmptyRole)
	assert.Empty(t, gen.prompts)
}

func TestCompare(t *testing.T) {
	gen := &stubGenerator{reply: "```json\n" + `{
		"summary": " Good fit overall. ",
		"matching_skills": ["Python", " Go ", ""],
		"missing_skills": ["Kubernetes", "Terraform"]
	}` + "\n```"}

	report, err := New(gen, nil).Compare(context.Background(), "Need Go and Kubernetes", "I know Python and Go")
	require.NoError(t, err)

	assert.Equal(t, "Good fit overall.", report.Summary)
	assert.Equal(t, []string{"Python", "Go"}, report.MatchingSkills)
	assert.Equal(t, []string{"Kubernetes", "Terraform"}, report.MissingSkills)
	assert.Contains(t, gen.prompts[0], "Need Go and Kubernetes")
	assert.Contains(t, gen.prompts[0], "I know Python and Go")
}

func TestCompare_ParseFailure(t *testing.T) {
	raw := "The candidate is strong."
	report, err := New(&stubGenerator{reply: raw}, nil).Compare(context.Background(), "reqs", "cv")
	assert.Nil(t, report)
	require.ErrorIs(t, err, llm.ErrParse)

	var pe *llm.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, raw, pe.Raw)
}

func TestCompare_NestedSkillsRejected(t *testing.T) {
	reply := `{"summary":"x","matching_skills":[{"name":"Go"}],"missing_skills":[]}`
	_, err := New(&stubGenerator{reply: reply}, nil).Compare(context.Background(), "reqs", "cv")
	assert.ErrorIs(t, err, llm.ErrParse)
}

func TestCompare_InputValidation(t *testing.T) {
	a := New(&stubGenerator{}, nil)

	_, err := a.Compare(context.Background(), "", "cv")
	assert.ErrorIs(t, err, ErrEmptyRequirements)

	_, err = a.Compare(context.Background(), "reqs", " ")
	assert.ErrorIs(t, err, ErrEmptyCV)
}

func TestCompare_GeneratorError(t *testing.T) {
	boom := errors.New("exhausted")
	_, err := New(&stubGenerator{err: boom}, nil).Compare(context.Background(), "reqs", "cv")
	assert.ErrorIs(t, err, boom)
}
