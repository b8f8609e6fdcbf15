package rendering

import (
	"fmt"
	"strings"
	"unicode"
)

// Template identifiers
const (
	TemplateModern  = "template_1.tex"
	TemplateClassic = "template_2.tex"
	TemplateMinimal = "template_3.tex"

	DefaultTemplate = TemplateModern
)

// Templates lists the bundled CV templates in selection order.
func Templates() []string {
	return []string{TemplateModern, TemplateClassic, TemplateMinimal}
}

// ResolveTemplate maps a selection to a template identifier. Accepted forms
// are "" (default), "1".."3", "template_2", and "template_2.tex".
func ResolveTemplate(selection string) (string, error) {
	sel := strings.TrimSpace(selection)
	if sel == "" {
		return DefaultTemplate, nil
	}
	switch sel {
	case "1", "2", "3":
		sel = "template_" + sel + ".tex"
	}
	if !strings.HasSuffix(sel, ".tex") {
		sel += ".tex"
	}
	for _, t := range Templates() {
		if t == sel {
			return t, nil
		}
	}
	return "", &TemplateError{
		Message: fmt.Sprintf("no template for selection %q", selection),
		Cause:   ErrUnknownTemplate,
	}
}

// SafeTitle turns a role title into a file name fragment: letters, digits,
// spaces and underscores are kept and spaces become underscores.
func SafeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.ReplaceAll(strings.TrimSpace(b.String()), " ", "_")
}

// SafeName keeps only letters, digits and underscores of a display name.
func SafeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ReportFileName returns the report file name for a role title and extension.
func ReportFileName(roleTitle, ext string) string {
	return "Skill_Report_" + SafeTitle(roleTitle) + ext
}

// CVFileName returns the final CV file name for a display name and template.
func CVFileName(userName, templateName string) string {
	return fmt.Sprintf("%s_%s_Optimized.tex", SafeName(userName), strings.TrimSuffix(templateName, ".tex"))
}
