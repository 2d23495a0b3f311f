package engine

import (
	"errors"
	"fmt"
)

// ErrShoeExhausted is returned when a draw finds the shoe empty and a forced
// reshuffle could not refill it.
var ErrShoeExhausted = errors.New("shoe exhausted")

// IllegalActionError rejects a well-formed action that is not eligible in the
// current state. The state is never modified when it is returned.
type IllegalActionError struct {
	Action ActionType
	Phase  Phase
	Reason string
}

func (e *IllegalActionError) Error() string {
	return fmt.Sprintf("illegal %s during %s: %s", e.Action, e.Phase, e.Reason)
}

func illegal(a Action, p Phase, format string, args ...any) error {
	return &IllegalActionError{Action: a.Type, Phase: p, Reason: fmt.Sprintf(format, args...)}
}

// IsIllegal reports whether err is an IllegalActionError.
func IsIllegal(err error) bool {
	var ia *IllegalActionError
	return errors.As(err, &ia)
}
