// Package types defines the records shared by the CV analysis and roadmap workflows.
package types

import "strings"

// DefaultDisplayName is used for file naming when a profile carries no name.
const DefaultDisplayName = "User"

// PersonalInfo holds contact details extracted from a CV
type PersonalInfo struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
}

// Education represents a single education entry
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
	Details     string `json:"details"`
}

// Experience represents one role held at an organization
type Experience struct {
	Company  string   `json:"company"`
	Role     string   `json:"role"`
	Duration string   `json:"duration"`
	Location string   `json:"location"`
	Bullets  []string `json:"bullets"`
}

// Project represents a project entry
type Project struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Leadership represents a leadership or volunteer role
type Leadership struct {
	Role        string `json:"role"`
	Description string `json:"description"`
}

// StructuredProfile is the strictly typed form of a CV.
type StructuredProfile struct {
	PersonalInfo PersonalInfo `json:"personal_info"`
	Summary      string       `json:"summary"`
	Skills       []string     `json:"skills"`
	Education    []Education  `json:"education"`
	Experience   []Experience `json:"experience"`
	Projects     []Project    `json:"projects"`
	Leadership   []Leadership `json:"leadership"`
}

// Normalize completes the profile so every list is present (possibly empty)
// and skills are unique under case-insensitive comparison. Scalars are trimmed.
func (p *StructuredProfile) Normalize() {
	p.PersonalInfo.Name = strings.TrimSpace(p.PersonalInfo.Name)
	p.Summary = strings.TrimSpace(p.Summary)

	skills := p.Skills
	p.Skills = []string{}
	p.AddSkills(skills)

	if p.Education == nil {
		p.Education = []Education{}
	}
	if p.Experience == nil {
		p.Experience = []Experience{}
	}
	for i := range p.Experience {
		if p.Experience[i].Bullets == nil {
			p.Experience[i].Bullets = []string{}
		}
	}
	if p.Projects == nil {
		p.Projects = []Project{}
	}
	if p.Leadership == nil {
		p.Leadership = []Leadership{}
	}
}

// AddSkills appends skills that are not already present (case-insensitive)
// and returns the ones actually added. Blank entries are ignored.
func (p *StructuredProfile) AddSkills(skills []string) []string {
	if p.Skills == nil {
		p.Skills = []string{}
	}

	seen := make(map[string]struct{}, len(p.Skills)+len(skills))
	for _, s := range p.Skills {
		seen[strings.ToLower(s)] = struct{}{}
	}

	var added []string
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		p.Skills = append(p.Skills, skill)
		added = append(added, skill)
	}
	return added
}

// DisplayName returns the candidate name, or DefaultDisplayName when absent.
func (p *StructuredProfile) DisplayName() string {
	if p == nil || strings.TrimSpace(p.PersonalInfo.Name) == "" {
		return DefaultDisplayName
	}
	return strings.TrimSpace(p.PersonalInfo.Name)
}

// Clone returns a deep copy so a stage can modify the profile without
// touching the one held by the running state.
func (p *StructuredProfile) Clone() *StructuredProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.Skills = append([]string(nil), p.Skills...)
	c.Education = append([]Education(nil), p.Education...)
	c.Projects = append([]Project(nil), p.Projects...)
	c.Leadership = append([]Leadership(nil), p.Leadership...)
	c.Experience = make([]Experience, len(p.Experience))
	for i, e := range p.Experience {
		e.Bullets = append([]string(nil), e.Bullets...)
		c.Experience[i] = e
	}
	if p.Experience == nil {
		c.Experience = nil
	}
	return &c
}
