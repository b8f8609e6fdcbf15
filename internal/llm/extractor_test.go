package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildExtractionPrompt(t *testing.T) {
	schema := ExtractionSchema{
		Description: "Parse this.",
		Fields: []SchemaField{
			{Name: "a", Type: `"string"`, Description: "first", Required: true},
			{Name: "b"},
		},
		Rules: []string{"Be brief."},
	}

	prompt := BuildExtractionPrompt(schema, "raw input")

	assert.Contains(t, prompt, "Parse this.")
	assert.Contains(t, prompt, `"a": "string" (required) // first,`)
	assert.Contains(t, prompt, `"b": "string"`)
	assert.Contains(t, prompt, "- Be brief.")
	assert.Contains(t, prompt, "\"\"\"\nraw input\n\"\"\"")
}

func TestCVProfileSchema_CoversProfileFields(t *testing.T) {
	schema := CVProfileSchema()
	prompt := BuildExtractionPrompt(schema, "Jane Doe\nGo developer")

	for _, field := range []string{"personal_info", "summary", "skills", "education", "experience", "projects", "leadership"} {
		assert.Contains(t, prompt, `"`+field+`"`)
	}
	assert.Contains(t, prompt, "Jane Doe")
}
