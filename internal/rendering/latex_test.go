package rendering

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-analyzer/internal/types"
)

func sampleProfile() *types.StructuredProfile {
	p := &types.StructuredProfile{
		PersonalInfo: types.PersonalInfo{
			Name:  "Jane Doe",
			Email: "jane_doe@example.com",
			Phone: "+1 555 0100",
		},
		Summary: "Backend engineer with 8 years of experience & a focus on APIs.",
		Skills:  []string{"Python", "Go", "C#"},
		Experience: []types.Experience{{
			Company:  "Acme Corp",
			Role:     "Senior Engineer",
			Duration: "2019 - Present",
			Bullets:  []string{"Cut p99 latency by 40%", "Led migration to Go"},
		}},
		Education:  []types.Education{{Degree: "BSc Computer Science", Institution: "State University", Year: "2015"}},
		Projects:   []types.Project{{Name: "ledger", Description: "Double-entry bookkeeping in Go"}},
		Leadership: []types.Leadership{{Role: "Mentor", Description: "Coached 5 juniors"}},
	}
	p.Normalize()
	return p
}

func TestRenderCV_AllTemplates(t *testing.T) {
	r := NewLaTeXRenderer()
	for _, name := range Templates() {
		t.Run(name, func(t *testing.T) {
			out, err := r.RenderCV(sampleProfile(), name)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(out, "%%"))
			assert.Contains(t, out, `\begin{document}`)
			assert.Contains(t, out, `\end{document}`)
			assert.Contains(t, out, "Jane Doe")
			assert.Contains(t, out, `jane\_doe@example.com`)
			assert.Contains(t, out, `C\#`)
			assert.Contains(t, out, `40\%`)
			assert.Contains(t, out, "Acme Corp")
			assert.Contains(t, out, "State University")
			assert.NotContains(t, out, "[[")
		})
	}
}

func TestRenderCV_EmptyProfile(t *testing.T) {
	p := &types.StructuredProfile{}
	p.Normalize()

	out, err := NewLaTeXRenderer().RenderCV(p, "")
	require.NoError(t, err)
	assert.Contains(t, out, types.DefaultDisplayName)
	assert.NotContains(t, out, `\section*{Experience}`)
}

func TestRenderCV_InjectedSkillsAppear(t *testing.T) {
	p := sampleProfile()
	p.AddSkills([]string{"Kubernetes"})

	out, err := NewLaTeXRenderer().RenderCV(p, "2")
	require.NoError(t, err)
	assert.Contains(t, out, `Python, Go, C\#, Kubernetes`)
}

func TestRenderCV_Errors(t *testing.T) {
	r := NewLaTeXRenderer()

	_, err := r.RenderCV(sampleProfile(), "template_9.tex")
	assert.ErrorIs(t, err, ErrUnknownTemplate)

	_, err = r.RenderCV(nil, "1")
	var re *RenderError
	assert.ErrorAs(t, err, &re)
}

func TestParseTemplate_InvalidSyntax(t *testing.T) {
	_, err := parseTemplate("bad.tex", `\documentclass{article} [[.Name`)
	var te *TemplateError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, err.Error(), "failed to parse template")
}

func TestParseTemplate_BracesAreLiteral(t *testing.T) {
	tmpl, err := parseTemplate("t.tex", `\textbf{{[[.Name]]}}`)
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, tmpl.Execute(&b, map[string]string{"Name": "X"}))
	assert.Equal(t, `\textbf{{X}}`, b.String())
}

func TestSaveCV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "generated_cvs")

	path, err := SaveCV("content", "Jane Doe", "1", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "JaneDoe_template_1_Optimized.tex"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}
