package core

import (
	"errors"
	"fmt"
)

var (
	ErrIdleSideAction     = errors.New("action assigned to a unit on the idle side")
	ErrUnknownUnit        = errors.New("unknown unit")
	ErrUnknownActionType  = errors.New("unknown action type")
	ErrInvalidDirection   = errors.New("invalid direction")
	ErrInvalidObservation = errors.New("invalid observation")
	ErrDuplicateUnit      = errors.New("duplicate unit id")
	ErrInvalidDimensions  = errors.New("map dimensions must be positive")
	ErrOutOfBounds        = errors.New("entity outside map bounds")
	ErrCellCollision      = errors.New("two entities share a cell")
)

// ActionError ties an error to the action that caused it
type ActionError struct {
	UnitID int
	Action Action
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("unit %d: %s: %v", e.UnitID, e.Action, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// WrapActionError wraps err with the action's context. A nil err returns nil.
func WrapActionError(action Action, err error) error {
	if err == nil {
		return nil
	}
	return &ActionError{UnitID: action.UnitID, Action: action, Err: err}
}
