package verification

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/cv-analyzer/internal/types"
)

// ParseDecision maps terminal input to a yes/no decision.
// Accepted: "1", "y", "yes" for yes and "2", "n", "no" for no, any case.
func ParseDecision(input string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "1", "y", "yes":
		return true, nil
	case "2", "n", "no":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidDecision, input)
	}
}

// Prompter collects answers interactively. Each question blocks until a
// valid decision is read; invalid input re-prompts the same question.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter reads decisions from in and writes prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Ask asks every question in order and returns one answer per question.
// It fails when input ends before all questions are answered.
func (p *Prompter) Ask(ctx context.Context, questions []types.VerificationQuestion) ([]types.Answer, error) {
	answers := make([]types.Answer, 0, len(questions))
	if len(questions) == 0 {
		return answers, nil
	}

	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, strings.Repeat("=", 50))
	fmt.Fprintln(p.out, "SKILL CHECK")
	fmt.Fprintln(p.out, strings.Repeat("=", 50))

	for _, q := range questions {
		fmt.Fprintf(p.out, "%s\n", q.Question)
		for {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			fmt.Fprint(p.out, "   (1) Yes / (2) No: ")
			if !p.in.Scan() {
				if err := p.in.Err(); err != nil {
					return nil, fmt.Errorf("failed to read answer: %w", err)
				}
				return nil, fmt.Errorf("input closed before %q was answered: %w", q.Skill, ErrUnanswered)
			}
			yes, err := ParseDecision(p.in.Text())
			if err != nil {
				fmt.Fprintln(p.out, "   Invalid input. Enter 1 or 2.")
				continue
			}
			if yes {
				fmt.Fprintf(p.out, "   Added '%s' to CV.\n\n", q.Skill)
			} else {
				fmt.Fprintf(p.out, "   Sent '%s' to roadmap.\n\n", q.Skill)
			}
			answers = append(answers, types.Answer{Skill: q.Skill, Confirmed: yes})
			break
		}
	}
	return answers, nil
}
