package types

// RoadmapState fields
const (
	FieldSkillsToLearn Field = "skills_to_learn"
	FieldSearchResults Field = "raw_search_data"
	FieldRoadmap       Field = "final_roadmap_json"
	FieldRoadmapPath   Field = "roadmap_path"
)

// RoadmapModule is one week of a learning roadmap
type RoadmapModule struct {
	Skill             string   `json:"skill"`
	Week              int      `json:"week"`
	Topic             string   `json:"topic"`
	RecommendedAction string   `json:"recommended_action"`
	Resources         []string `json:"resources"`
}

// Roadmap is the structured learning plan for a set of skills
type Roadmap struct {
	Title   string          `json:"roadmap_title"`
	Modules []RoadmapModule `json:"modules"`
}

// RoadmapState is the record threaded through one roadmap generation run.
type RoadmapState struct {
	SkillsToLearn []string            `json:"skills_to_learn"`
	SearchResults map[string][]string `json:"raw_search_data,omitempty"`
	Roadmap       *Roadmap            `json:"final_roadmap_json,omitempty"`
	RoadmapPath   string              `json:"roadmap_path,omitempty"`
}

// RoadmapUpdate is the partial result of one roadmap stage.
type RoadmapUpdate struct {
	SearchResults map[string][]string
	Roadmap       *Roadmap
	RoadmapPath   *string
}

// Fields lists the state fields this update sets.
func (u RoadmapUpdate) Fields() []string {
	var fields []string
	if u.SearchResults != nil {
		fields = append(fields, FieldSearchResults)
	}
	if u.Roadmap != nil {
		fields = append(fields, FieldRoadmap)
	}
	if u.RoadmapPath != nil {
		fields = append(fields, FieldRoadmapPath)
	}
	return fields
}

// Apply merges the update into s.
func (u RoadmapUpdate) Apply(s *RoadmapState) {
	if u.SearchResults != nil {
		s.SearchResults = u.SearchResults
	}
	if u.Roadmap != nil {
		s.Roadmap = u.Roadmap
	}
	if u.RoadmapPath != nil {
		s.RoadmapPath = *u.RoadmapPath
	}
}
