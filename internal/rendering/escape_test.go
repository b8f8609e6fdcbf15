package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLaTeX(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Plain text", "Plain text"},
		{"backslash", `a\b`, `a\textbackslash{}b`},
		{"braces", "x{y}z", `x\{y\}z`},
		{"dollar and percent", "$100 at 5%", `\$100 at 5\%`},
		{"ampersand", "R&D", `R\&D`},
		{"hash", "C#", `C\#`},
		{"caret", "x^2", `x\textasciicircum{}2`},
		{"underscore", "snake_case", `snake\_case`},
		{"tilde", "~/bin", `\textasciitilde{}/bin`},
		{"unicode untouched", "Zürich • Résumé", "Zürich • Résumé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeLaTeX(tt.in))
		})
	}
}

func TestEscapeAll_DropsBlank(t *testing.T) {
	assert.Equal(t, []string{`C\#`, "Go"}, EscapeAll([]string{"C#", "  ", "Go "}))
	assert.Empty(t, EscapeAll(nil))
}

func TestLatin1Safe(t *testing.T) {
	assert.Equal(t, "café", Latin1Safe("café"))
	assert.Equal(t, "Go ? fast", Latin1Safe("Go → fast"))
	assert.Equal(t, "? ok", Latin1Safe("✅ ok"))
}
