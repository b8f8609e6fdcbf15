package types

// Field names a RunState field. Stages declare the fields they own so the
// workflow engine can reject updates that touch anything else.
type Field = string

// RunState fields
const (
	FieldCVPath            Field = "cv_file_path"
	FieldRoleTitle         Field = "job_title"
	FieldTemplateSelection Field = "template_selection"
	FieldCVText            Field = "cv_text"
	FieldJobRequirements   Field = "job_requirements"
	FieldProfile           Field = "structured_cv_data"
	FieldUserName          Field = "user_name"
	FieldSkillReport       Field = "skill_report"
	FieldReportPath        Field = "pdf_path"
	FieldQuestions         Field = "verification_questions"
	FieldAnswers           Field = "answers"
	FieldSkillsToAdd       Field = "new_skills_to_add"
	FieldSkillsForRoadmap  Field = "skills_for_roadmap"
	FieldFinalCVPath       Field = "final_cv_tex_path"
)

// RunState is the record threaded through one CV analysis run.
// Every field except the inputs stays at its zero value until the stage that
// owns it has completed.
type RunState struct {
	// Inputs
	CVPath            string `json:"cv_file_path"`
	RoleTitle         string `json:"job_title"`
	TemplateSelection string `json:"template_selection"`

	// Raw intermediate data
	CVText          string `json:"cv_text,omitempty"`
	JobRequirements string `json:"job_requirements,omitempty"`

	// Structured intermediate data
	Profile  *StructuredProfile `json:"structured_cv_data,omitempty"`
	UserName string             `json:"user_name,omitempty"`

	// Analysis and verification
	SkillReport      *SkillGapReport        `json:"skill_report,omitempty"`
	ReportPath       string                 `json:"pdf_path,omitempty"`
	Questions        []VerificationQuestion `json:"verification_questions,omitempty"`
	Answers          []Answer               `json:"answers,omitempty"`
	SkillsToAdd      []string               `json:"new_skills_to_add,omitempty"`
	SkillsForRoadmap []string               `json:"skills_for_roadmap,omitempty"`

	// Output
	FinalCVPath string `json:"final_cv_tex_path,omitempty"`
}

// RunUpdate is the partial result of one stage. Nil fields were not computed
// by the stage and leave the running state untouched when merged.
type RunUpdate struct {
	CVText           *string
	JobRequirements  *string
	Profile          *StructuredProfile
	UserName         *string
	SkillReport      *SkillGapReport
	ReportPath       *string
	Questions        []VerificationQuestion
	Answers          []Answer
	SkillsToAdd      []string
	SkillsForRoadmap []string
	FinalCVPath      *string
}

// Fields lists the state fields this update sets.
func (u RunUpdate) Fields() []string {
	var fields []string
	if u.CVText != nil {
		fields = append(fields, FieldCVText)
	}
	if u.JobRequirements != nil {
		fields = append(fields, FieldJobRequirements)
	}
	if u.Profile != nil {
		fields = append(fields, FieldProfile)
	}
	if u.UserName != nil {
		fields = append(fields, FieldUserName)
	}
	if u.SkillReport != nil {
		fields = append(fields, FieldSkillReport)
	}
	if u.ReportPath != nil {
		fields = append(fields, FieldReportPath)
	}
	if u.Questions != nil {
		fields = append(fields, FieldQuestions)
	}
	if u.Answers != nil {
		fields = append(fields, FieldAnswers)
	}
	if u.SkillsToAdd != nil {
		fields = append(fields, FieldSkillsToAdd)
	}
	if u.SkillsForRoadmap != nil {
		fields = append(fields, FieldSkillsForRoadmap)
	}
	if u.FinalCVPath != nil {
		fields = append(fields, FieldFinalCVPath)
	}
	return fields
}

// Apply merges the update into s. Set fields replace the current value.
func (u RunUpdate) Apply(s *RunState) {
	if u.CVText != nil {
		s.CVText = *u.CVText
	}
	if u.JobRequirements != nil {
		s.JobRequirements = *u.JobRequirements
	}
	if u.Profile != nil {
		s.Profile = u.Profile
	}
	if u.UserName != nil {
		s.UserName = *u.UserName
	}
	if u.SkillReport != nil {
		s.SkillReport = u.SkillReport
	}
	if u.ReportPath != nil {
		s.ReportPath = *u.ReportPath
	}
	if u.Questions != nil {
		s.Questions = u.Questions
	}
	if u.Answers != nil {
		s.Answers = u.Answers
	}
	if u.SkillsToAdd != nil {
		s.SkillsToAdd = u.SkillsToAdd
	}
	if u.SkillsForRoadmap != nil {
		s.SkillsForRoadmap = u.SkillsForRoadmap
	}
	if u.FinalCVPath != nil {
		s.FinalCVPath = *u.FinalCVPath
	}
}

// Ptr returns a pointer to v. Stages use it to fill RunUpdate scalar fields.
func Ptr[T any](v T) *T {
	return &v
}
