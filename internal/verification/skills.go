// Package verification turns missing skills into yes/no questions and
// partitions the candidate's answers into confirmed skills and learning gaps.
package verification

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/cv-analyzer/internal/types"
)

// ReportSkillCap bounds how many skills are verified when they are read back
// from a rendered report.
const ReportSkillCap = 4

// maxSkillChars drops report lines that are explanations rather than skill names.
const maxSkillChars = 50

// Report section headings
const (
	SectionSummary  = "Summary"
	SectionMatching = "Matching Skills"
	SectionMissing  = "Missing Skills"
)

var parenthetical = regexp.MustCompile(`\s*\(.*?\)`)

// SkillsFromReport reads the Missing Skills section of a rendered report and
// returns at most ReportSkillCap skill names. Parenthetical explanations are
// stripped and overlong entries are skipped.
func SkillsFromReport(text string) []string {
	var skills []string
	capturing := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		if !capturing {
			capturing = heading(line) == SectionMissing
			continue
		}
		if h := heading(line); h == SectionSummary || h == SectionMatching {
			break
		}
		if !strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "•") {
			continue
		}

		skill := strings.TrimSpace(strings.TrimLeft(line, "-• "))
		skill = strings.TrimSpace(parenthetical.ReplaceAllString(skill, ""))
		if skill == "" || utf8.RuneCountInString(skill) >= maxSkillChars {
			continue
		}

		skills = append(skills, skill)
		if len(skills) == ReportSkillCap {
			break
		}
	}
	return skills
}

// heading normalizes a possible section heading line ("Missing Skills:").
// Only a line that is exactly a heading starts or ends a section.
func heading(line string) string {
	return strings.TrimSpace(strings.TrimSuffix(line, ":"))
}

// SkillsFromGapReport returns every missing skill of report, uncapped.
func SkillsFromGapReport(report *types.SkillGapReport) []string {
	if report == nil {
		return nil
	}
	var skills []string
	for _, s := range report.MissingSkills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}
