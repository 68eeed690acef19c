package compliance

import "fmt"

// InvariantError indicates a malformed context or broken engine
// precondition. It is a bug, not a user-fixable condition: the whole
// check fails loudly instead of silently skipping a rule, because a
// skipped rule is a compliance gap.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("compliance invariant violated: %s", e.Msg)
}

func invariantf(format string, args ...any) *InvariantError {
	return &InvariantError{Msg: fmt.Sprintf(format, args...)}
}
