// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jonathan/cv-analyzer/internal/llm"
)

// Call records one Generate invocation
type Call struct {
	Model  string
	Prompt string
}

// Response is a scripted reply
type Response struct {
	Text string
	Err  error
}

// Rule answers prompts containing Match
type Rule struct {
	Match    string
	Response Response
}

// Fake is an llm.Client that replays scripted responses.
// Per-model scripts are consumed in order; the last entry repeats. Prompts
// for models without a script are answered by the first matching rule.
type Fake struct {
	mu      sync.Mutex
	calls   []Call
	scripts map[string][]Response
	rules   []Rule
}

var _ llm.Client = (*Fake)(nil)

// New creates an empty fake
func New() *Fake {
	return &Fake{scripts: make(map[string][]Response)}
}

// Script queues responses for a model
func (f *Fake) Script(model string, responses ...Response) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[model] = append(f.scripts[model], responses...)
	return f
}

// On answers any prompt containing match with text
func (f *Fake) On(match, text string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, Rule{Match: match, Response: Response{Text: text}})
	return f
}

// OnError answers any prompt containing match with err
func (f *Fake) OnError(match string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, Rule{Match: match, Response: Response{Err: err}})
	return f
}

// Generate implements llm.Client
func (f *Fake) Generate(ctx context.Context, model, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Model: model, Prompt: prompt})

	if script := f.scripts[model]; len(script) > 0 {
		resp := script[0]
		if len(script) > 1 {
			f.scripts[model] = script[1:]
		}
		return resp.Text, resp.Err
	}

	for _, rule := range f.rules {
		if strings.Contains(prompt, rule.Match) {
			return rule.Response.Text, rule.Response.Err
		}
	}

	return "", &llm.ServiceError{Model: model, Kind: llm.KindNotFound, Cause: fmt.Errorf("no scripted response")}
}

// Calls returns a copy of every recorded call
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Models returns the model of every recorded call, in order
func (f *Fake) Models() []string {
	calls := f.Calls()
	models := make([]string, len(calls))
	for i, c := range calls {
		models[i] = c.Model
	}
	return models
}

// Fail builds a ServiceError response of the given kind
func Fail(model string, kind llm.ErrorKind) Response {
	return Response{Err: &llm.ServiceError{Model: model, Kind: kind, Cause: fmt.Errorf("%s", kind)}}
}

// OK builds a successful response
func OK(text string) Response {
	return Response{Text: text}
}
