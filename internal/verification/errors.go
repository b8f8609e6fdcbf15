package verification

import (
	"errors"
	"fmt"
)

// ErrUnanswered is matched by UnansweredError.
var ErrUnanswered = errors.New("verification question unanswered")

// ErrInvalidDecision is returned by ParseDecision for input that is neither yes nor no.
var ErrInvalidDecision = errors.New("invalid decision")

// UnansweredError reports questions that have no matching answer.
type UnansweredError struct {
	Skills []string
}

func (e *UnansweredError) Error() string {
	return fmt.Sprintf("no answer for %d question(s): %v", len(e.Skills), e.Skills)
}

// Is reports whether target is ErrUnanswered.
func (e *UnansweredError) Is(target error) bool {
	return target == ErrUnanswered
}
