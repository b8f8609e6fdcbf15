// Package llm - extractor.go provides generic LLM-based structured extraction.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "CVProfile")
	Description string        // System prompt preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
	Rules       []string      // Extra instructions appended after the defaults
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint rendered verbatim into the prompt
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "\"string\""
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Extract information directly from the text, do not invent or summarize.\n")
	sb.WriteString("- If a field is missing in the text, use an empty string or an empty list.\n")
	for _, rule := range schema.Rules {
		sb.WriteString("- ")
		sb.WriteString(rule)
		sb.WriteString("\n")
	}
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// CVProfileSchema returns the extraction schema for a free-text CV.
func CVProfileSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "CVProfile",
		Description: `You are an expert CV parser. Read the raw CV text below and convert it into structured data.
Preserve the candidate's own wording for bullet points and descriptions.`,
		Fields: []SchemaField{
			{
				Name:        "personal_info",
				Type:        `{"name": "string", "location": "string", "phone": "string", "email": "string", "linkedin": "string", "github": "string"}`,
				Description: "Contact details of the candidate",
				Required:    true,
			},
			{
				Name:        "summary",
				Type:        `"string"`,
				Description: "Professional summary or objective",
			},
			{
				Name:        "skills",
				Type:        `["string"]`,
				Description: "Every technical and professional skill mentioned, one per entry",
				Required:    true,
			},
			{
				Name:        "education",
				Type:        `[{"degree": "string", "institution": "string", "year": "string", "details": "string"}]`,
				Description: "Education history, most recent first",
				Required:    true,
			},
			{
				Name:        "experience",
				Type:        `[{"company": "string", "role": "string", "duration": "string", "location": "string", "bullets": ["string"]}]`,
				Description: "Work experience, most recent first, with achievements as bullets",
				Required:    true,
			},
			{
				Name:        "projects",
				Type:        `[{"name": "string", "description": "string"}]`,
				Description: "Personal or professional projects",
			},
			{
				Name:        "leadership",
				Type:        `[{"role": "string", "description": "string"}]`,
				Description: "Leadership, volunteering or extracurricular roles",
			},
		},
		Rules: []string{
			"Do not invent information that is not present in the text.",
		},
	}
}
