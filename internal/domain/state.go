package domain

import "fmt"

// State is the account lifecycle flag.
type State string

const (
	StateActive  State = "ACTIVE"
	StateBlocked State = "BLOCKED"
)

func (s State) Valid() bool { return s == StateActive || s == StateBlocked }

// Transition returns the state reached by moving from s to target.
// Moving to the current state is a no-op so ban and unban stay idempotent.
func (s State) Transition(target State) (State, error) {
	if !s.Valid() || !target.Valid() {
		return s, fmt.Errorf("%w: %q -> %q", ErrInvalidTransition, s, target)
	}
	return target, nil
}
