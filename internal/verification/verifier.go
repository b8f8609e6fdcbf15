package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/cv-analyzer/internal/llm"
	"github.com/jonathan/cv-analyzer/internal/prompts"
	"github.com/jonathan/cv-analyzer/internal/schemas"
	"github.com/jonathan/cv-analyzer/internal/types"
)

// QuestionFor returns the fixed question text asked for skill.
func QuestionFor(skill string) string {
	return fmt.Sprintf("Do you have experience with %s?", skill)
}

// Options returns the two choices offered for every question.
func Options() []string {
	return []string{types.OptionYes, types.OptionNo}
}

// Verifier generates verification questions through the gateway.
type Verifier struct {
	gen llm.Generator
	log logrus.FieldLogger
}

// New creates a verifier. A nil logger discards output.
func New(gen llm.Generator, log logrus.FieldLogger) *Verifier {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Verifier{gen: gen, log: log}
}

// Questions asks the model for one question per skill in a single batched call.
// The result has exactly one question per input skill, in input order, with
// the fixed yes/no options. The model's text is kept when it returned an entry
// for the skill (matched case-insensitively); skills it left out get the
// template question.
// No skills means no call and no questions.
func (v *Verifier) Questions(ctx context.Context, skills []string) ([]types.VerificationQuestion, error) {
	if len(skills) == 0 {
		return []types.VerificationQuestion{}, nil
	}

	list, err := json.Marshal(skills)
	if err != nil {
		return nil, fmt.Errorf("failed to encode skills: %w", err)
	}
	prompt, err := prompts.Render("verification.json", "verification-questions", map[string]string{
		"Skills": string(list),
	})
	if err != nil {
		return nil, err
	}

	raw, err := v.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	generated, err := llm.DecodeJSON[[]types.VerificationQuestion](raw, schemas.ValidateQuestions)
	if err != nil {
		v.log.WithError(err).Warn("question generation returned unparseable output")
		return nil, err
	}

	byskill := make(map[string]string, len(generated))
	for _, q := range generated {
		key := strings.ToLower(strings.TrimSpace(q.Skill))
		text := strings.TrimSpace(q.Question)
		if _, seen := byskill[key]; !seen && text != "" {
			byskill[key] = text
		}
	}

	questions := make([]types.VerificationQuestion, 0, len(skills))
	synthesized := 0
	for _, skill := range skills {
		text, ok := byskill[strings.ToLower(strings.TrimSpace(skill))]
		if !ok {
			text = QuestionFor(skill)
			synthesized++
		}
		questions = append(questions, types.VerificationQuestion{
			Skill:    skill,
			Question: text,
			Options:  Options(),
		})
	}
	if synthesized > 0 {
		v.log.WithFields(logrus.Fields{
			"synthesized": synthesized,
			"skills":      len(skills),
		}).Warn("model omitted questions, using template")
	}
	return questions, nil
}

// Partition splits questions by answer: confirmed skills go to the CV,
// declined ones to the roadmap. Every question needs an answer. Answers are
// matched to questions case-insensitively by skill.
func Partition(questions []types.VerificationQuestion, answers []types.Answer) (confirmed, deferred []string, err error) {
	byskill := make(map[string]bool, len(answers))
	for _, a := range answers {
		byskill[strings.ToLower(strings.TrimSpace(a.Skill))] = a.Confirmed
	}

	confirmed = []string{}
	deferred = []string{}
	var missing []string
	for _, q := range questions {
		yes, ok := byskill[strings.ToLower(strings.TrimSpace(q.Skill))]
		switch {
		case !ok:
			missing = append(missing, q.Skill)
		case yes:
			confirmed = append(confirmed, q.Skill)
		default:
			deferred = append(deferred, q.Skill)
		}
	}
	if len(missing) > 0 {
		return nil, nil, &UnansweredError{Skills: missing}
	}
	return confirmed, deferred, nil
}
