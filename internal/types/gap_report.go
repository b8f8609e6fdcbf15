package types

// SkillGapReport is the matching/missing partition produced by comparing a
// CV to generated job requirements. Lists hold plain strings so they render
// line by line.
type SkillGapReport struct {
	Summary        string   `json:"summary"`
	MatchingSkills []string `json:"matching_skills"`
	MissingSkills  []string `json:"missing_skills"`
}

// Normalize replaces nil lists with empty ones.
func (r *SkillGapReport) Normalize() {
	if r.MatchingSkills == nil {
		r.MatchingSkills = []string{}
	}
	if r.MissingSkills == nil {
		r.MissingSkills = []string{}
	}
}

// Decision options offered for every verification question
const (
	OptionYes = "Yes"
	OptionNo  = "No"
)

// VerificationQuestion asks the candidate whether they have a missing skill.
type VerificationQuestion struct {
	Skill    string   `json:"skill"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// Answer records the candidate's decision for one skill.
type Answer struct {
	Skill     string `json:"skill" validate:"required"`
	Confirmed bool   `json:"confirmed"`
}
