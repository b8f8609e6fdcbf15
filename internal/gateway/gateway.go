// Package gateway routes generation calls across a priority list of models,
// waiting on transient failures and retrying a fallback model once after a
// cooldown when the whole list has failed.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/cv-analyzer/internal/llm"
)

// Outcome label for a successful call
const OutcomeSuccess = "success"

// Recorder observes gateway activity
type Recorder interface {
	ObserveGatewayCall(model, outcome string)
	ObserveGatewaySleep(reason string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveGatewayCall(string, string)          {}
func (nopRecorder) ObserveGatewaySleep(string, time.Duration) {}

// Gateway wraps an llm.Client with failover, backoff and a cooldown retry.
// A Gateway holds no per-call state and is safe for concurrent use.
type Gateway struct {
	client   llm.Client
	config   Config
	sleep    SleepFunc
	log      logrus.FieldLogger
	recorder Recorder
}

// Option configures a Gateway
type Option func(*Gateway)

// WithLogger sets the logger
func WithLogger(log logrus.FieldLogger) Option {
	return func(g *Gateway) {
		if log != nil {
			g.log = log
		}
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(g *Gateway) {
		if r != nil {
			g.recorder = r
		}
	}
}

// New creates a gateway over client
func New(client llm.Client, config Config, opts ...Option) (*Gateway, error) {
	if client == nil {
		return nil, fmt.Errorf("gateway requires a client")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gateway config: %w", err)
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	g := &Gateway{
		client:   client,
		config:   config,
		sleep:    config.Sleep,
		log:      discard,
		recorder: nopRecorder{},
	}
	if g.sleep == nil {
		g.sleep = sleepContext
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Config returns the gateway's settings
func (g *Gateway) Config() Config {
	return g.config
}

// Generate returns the first non-empty response from the model list.
// Transient failures (quota, unavailable, empty text) wait before moving on;
// permanent ones move on at once. When every model failed the gateway sleeps
// for the cooldown and tries the fallback model exactly once.
func (g *Gateway) Generate(ctx context.Context, prompt string) (string, error) {
	var attempts []Attempt
	transient := 0

	for i, model := range g.config.Models {
		text, attempt, err := g.try(ctx, model, prompt)
		if err != nil {
			return "", err
		}
		if attempt == nil {
			return text, nil
		}
		attempts = append(attempts, *attempt)

		fields := logrus.Fields{
			"model":   model,
			"attempt": i + 1,
			"kind":    attempt.Kind,
		}
		if !attempt.Kind.Transient() {
			g.log.WithFields(fields).WithError(attempt.Err).Warn("model failed, trying next model")
			continue
		}

		transient++
		delay := g.config.Delay(transient)
		fields["delay"] = delay.String()
		g.log.WithFields(fields).WithError(attempt.Err).Warn("model unavailable, backing off")
		if err := g.wait(ctx, "transient", delay); err != nil {
			return "", err
		}
	}

	g.log.WithFields(logrus.Fields{
		"models":   len(g.config.Models),
		"cooldown": g.config.Cooldown.String(),
		"fallback": g.config.FallbackModel,
	}).Warn("all models failed, cooling down before fallback")
	if err := g.wait(ctx, "cooldown", g.config.Cooldown); err != nil {
		return "", err
	}

	text, attempt, err := g.try(ctx, g.config.FallbackModel, prompt)
	if err != nil {
		return "", err
	}
	if attempt == nil {
		return text, nil
	}
	attempts = append(attempts, *attempt)

	g.log.WithFields(logrus.Fields{
		"model": g.config.FallbackModel,
		"kind":  attempt.Kind,
	}).WithError(attempt.Err).Error("fallback model failed")
	return "", &ExhaustedError{Attempts: attempts}
}

// try makes one call. It returns a non-nil Attempt for a model failure and a
// non-nil error only when ctx is done.
func (g *Gateway) try(ctx context.Context, model, prompt string) (string, *Attempt, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	text, err := g.client.Generate(ctx, model, prompt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return "", nil, ctxErr
		}
		kind := llm.KindOf(err)
		g.recorder.ObserveGatewayCall(model, string(kind))
		return "", &Attempt{Model: model, Kind: kind, Err: err}, nil
	}

	if strings.TrimSpace(text) == "" {
		g.recorder.ObserveGatewayCall(model, string(llm.KindEmptyResponse))
		return "", &Attempt{
			Model: model,
			Kind:  llm.KindEmptyResponse,
			Err:   &llm.ServiceError{Model: model, Kind: llm.KindEmptyResponse, Cause: errors.New("empty response")},
		}, nil
	}

	g.recorder.ObserveGatewayCall(model, OutcomeSuccess)
	g.log.WithField("model", model).Debug("model call succeeded")
	return text, nil, nil
}

func (g *Gateway) wait(ctx context.Context, reason string, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	g.recorder.ObserveGatewaySleep(reason, d)
	return g.sleep(ctx, d)
}
