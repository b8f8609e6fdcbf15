package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredProfile_NormalizeFillsLists(t *testing.T) {
	var p StructuredProfile
	require.NoError(t, json.Unmarshal([]byte(`{"personal_info":{"name":"  Ada  "},"experience":[{"company":"X"}]}`), &p))

	p.Normalize()

	assert.Equal(t, "Ada", p.PersonalInfo.Name)
	assert.NotNil(t, p.Skills)
	assert.NotNil(t, p.Education)
	assert.NotNil(t, p.Projects)
	assert.NotNil(t, p.Leadership)
	require.Len(t, p.Experience, 1)
	assert.NotNil(t, p.Experience[0].Bullets)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"skills":[]`)
	assert.Contains(t, string(out), `"leadership":[]`)
}

func TestStructuredProfile_NormalizeDedupesSkills(t *testing.T) {
	p := StructuredProfile{Skills: []string{"Go", "go", " Python ", "", "GO", "python"}}
	p.Normalize()
	assert.Equal(t, []string{"Go", "Python"}, p.Skills)
}

func TestStructuredProfile_AddSkills(t *testing.T) {
	p := StructuredProfile{Skills: []string{"Python", "Go"}}

	added := p.AddSkills([]string{"Docker", "python", "Kubernetes"})
	assert.Equal(t, []string{"Docker", "Kubernetes"}, added)
	assert.Equal(t, []string{"Python", "Go", "Docker", "Kubernetes"}, p.Skills)
}

func TestStructuredProfile_AddSkillsIdempotent(t *testing.T) {
	p := StructuredProfile{Skills: []string{"Python", "Go"}}

	p.AddSkills([]string{"GO"})
	assert.Len(t, p.Skills, 2)

	p.AddSkills([]string{"Rust"})
	p.AddSkills([]string{"rust", "RUST"})
	assert.Len(t, p.Skills, 3)
}

func TestStructuredProfile_AddSkillsNilList(t *testing.T) {
	var p StructuredProfile
	added := p.AddSkills([]string{"SQL"})
	assert.Equal(t, []string{"SQL"}, added)
	assert.Equal(t, []string{"SQL"}, p.Skills)
}

func TestStructuredProfile_DisplayName(t *testing.T) {
	var nilProfile *StructuredProfile
	assert.Equal(t, DefaultDisplayName, nilProfile.DisplayName())
	assert.Equal(t, DefaultDisplayName, (&StructuredProfile{}).DisplayName())

	p := &StructuredProfile{PersonalInfo: PersonalInfo{Name: "Jane Doe"}}
	assert.Equal(t, "Jane Doe", p.DisplayName())
}

func TestStructuredProfile_CloneIsDeep(t *testing.T) {
	p := &StructuredProfile{
		Skills:     []string{"Go"},
		Experience: []Experience{{Company: "Acme", Bullets: []string{"Shipped"}}},
	}

	c := p.Clone()
	c.AddSkills([]string{"Rust"})
	c.Experience[0].Bullets[0] = "Changed"

	assert.Equal(t, []string{"Go"}, p.Skills)
	assert.Equal(t, "Shipped", p.Experience[0].Bullets[0])
}
