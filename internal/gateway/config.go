package gateway

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jonathan/cv-analyzer/internal/llm"
)

// SleepFunc blocks for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Config controls failover order and delays for one Gateway.
type Config struct {
	// Models is the priority list tried in order for every call
	Models []string
	// FallbackModel is retried once after the cooldown when every model failed
	FallbackModel string
	// TransientDelay is the wait after the first transient failure in a call
	TransientDelay time.Duration
	// BackoffFactor multiplies the delay for each further transient failure (1 = fixed)
	BackoffFactor float64
	// MaxDelay caps a single transient delay
	MaxDelay time.Duration
	// Cooldown is the long wait before the fallback retry
	Cooldown time.Duration
	// Sleep replaces the real timer in tests
	Sleep SleepFunc
}

// DefaultConfig returns the default failover settings
func DefaultConfig() Config {
	return Config{
		Models:         llm.DefaultModels(),
		FallbackModel:  llm.DefaultFallbackModel,
		TransientDelay: time.Second,
		BackoffFactor:  1,
		MaxDelay:       30 * time.Second,
		Cooldown:       60 * time.Second,
	}
}

// Validate checks the config for values the gateway cannot run with
func (c Config) Validate() error {
	if len(c.Models) == 0 {
		return fmt.Errorf("at least one model is required")
	}
	for i, m := range c.Models {
		if m == "" {
			return fmt.Errorf("model %d is empty", i)
		}
	}
	if c.FallbackModel == "" {
		return fmt.Errorf("fallback model is required")
	}
	if c.TransientDelay < 0 || c.MaxDelay < 0 || c.Cooldown < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	if c.BackoffFactor < 1 {
		return fmt.Errorf("backoff factor must be at least 1, got %v", c.BackoffFactor)
	}
	return nil
}

// Delay returns the wait after the k-th transient failure of one call (k >= 1)
func (c Config) Delay(k int) time.Duration {
	if k < 1 || c.TransientDelay <= 0 {
		return 0
	}
	factor := c.BackoffFactor
	if factor < 1 {
		factor = 1
	}
	delay := time.Duration(float64(c.TransientDelay) * math.Pow(factor, float64(k-1)))
	if c.MaxDelay > 0 && delay > c.MaxDelay {
		delay = c.MaxDelay
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
