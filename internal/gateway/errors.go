package gateway

import (
	"errors"
	"fmt"

	"github.com/jonathan/cv-analyzer/internal/llm"
)

// ErrGatewayExhausted is matched by every ExhaustedError
var ErrGatewayExhausted = errors.New("all models failed")

// Attempt records one failed model call
type Attempt struct {
	Model string
	Kind  llm.ErrorKind
	Err   error
}

// ExhaustedError is returned when every model and the fallback retry failed
type ExhaustedError struct {
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	if len(e.Attempts) == 0 {
		return ErrGatewayExhausted.Error()
	}
	last := e.Attempts[len(e.Attempts)-1]
	return fmt.Sprintf("%s after %d attempts; last %s: %v", ErrGatewayExhausted, len(e.Attempts), last.Model, last.Err)
}

// Unwrap returns the last model error
func (e *ExhaustedError) Unwrap() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1].Err
}

// Is makes every ExhaustedError match ErrGatewayExhausted
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrGatewayExhausted
}
