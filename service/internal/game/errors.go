// internal/game/errors.go
package game

import (
	"errors"
	"fmt"

	engine "github.com/jason-s-yu/blackjack/engine"
	"github.com/jason-s-yu/blackjack/service/internal/models"
)

var (
	// ErrNoTable is returned for actions on a room with no open table.
	ErrNoTable = errors.New("no table is open in this room")
	// ErrTableExists is returned when opening a table in a room that has one.
	ErrTableExists = errors.New("a table is already open in this room")
	// ErrUnknownTable is returned when a table name is not configured.
	ErrUnknownTable = errors.New("unknown table")
)

// AuthorizationError rejects an action the actor is not allowed to take: the
// actor is not in the room, does not own the seat, or is not the host.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return "not allowed: " + e.Reason
}

func forbidden(format string, args ...any) error {
	return &AuthorizationError{Reason: fmt.Sprintf(format, args...)}
}

// ResourceError wraps a failure of the store, scheduler or directory. The
// action it belonged to did not take effect.
type ResourceError struct {
	Op  string
	Err error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// ErrorReason returns the message sent to a client for err. Resource failures
// are not described beyond a retry hint.
func ErrorReason(err error) string {
	var (
		verr *models.ValidationError
		ierr *engine.IllegalActionError
		aerr *AuthorizationError
		rerr *ResourceError
	)
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.As(err, &ierr):
		return ierr.Error()
	case errors.As(err, &aerr):
		return aerr.Error()
	case errors.As(err, &rerr):
		return "table temporarily unavailable, try again"
	case errors.Is(err, ErrNoTable), errors.Is(err, ErrTableExists), errors.Is(err, ErrUnknownTable):
		return err.Error()
	case errors.Is(err, engine.ErrShoeExhausted):
		return "the shoe ran out of cards"
	}
	return "internal error"
}
