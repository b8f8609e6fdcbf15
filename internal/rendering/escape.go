package rendering

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// EscapeLaTeX escapes special LaTeX characters in text
// Special characters: \ { } $ & % # ^ _ ~
func EscapeLaTeX(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) * 2)

	for _, r := range text {
		switch r {
		case '\\':
			result.WriteString(`\textbackslash{}`)
		case '{', '}', '$', '&', '%', '#', '_':
			result.WriteByte('\\')
			result.WriteRune(r)
		case '^':
			result.WriteString(`\textasciicircum{}`)
		case '~':
			result.WriteString(`\textasciitilde{}`)
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}

// EscapeAll escapes every entry of items, dropping blank ones.
func EscapeAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, EscapeLaTeX(item))
		}
	}
	return out
}

// Latin1Safe replaces every rune outside ISO-8859-1 with '?'.
func Latin1Safe(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if _, ok := charmap.ISO8859_1.EncodeRune(r); !ok {
			b.WriteByte('?')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
