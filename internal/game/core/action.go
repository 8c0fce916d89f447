package core

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// ActionType represents the type of action
type ActionType int

const (
	ActionMove ActionType = iota
	ActionAttack
)

func (t ActionType) String() string {
	switch t {
	case ActionMove:
		return "move"
	case ActionAttack:
		return "attack"
	default:
		return fmt.Sprintf("ActionType(%d)", int(t))
	}
}

// Action is a primitive order for one unit. Direction is only meaningful
// for moves and TargetID only for attacks.
type Action struct {
	Type      ActionType
	UnitID    int
	Direction Direction
	TargetID  int
}

// NewMove creates a primitive move one cell in direction
func NewMove(unitID int, direction Direction) Action {
	return Action{Type: ActionMove, UnitID: unitID, Direction: direction}
}

// NewAttack creates a primitive attack on targetID
func NewAttack(unitID, targetID int) Action {
	return Action{Type: ActionAttack, UnitID: unitID, TargetID: targetID}
}

func (a Action) String() string {
	switch a.Type {
	case ActionMove:
		return fmt.Sprintf("move %d %s", a.UnitID, a.Direction)
	case ActionAttack:
		return fmt.Sprintf("attack %d->%d", a.UnitID, a.TargetID)
	default:
		return fmt.Sprintf("%s by %d", a.Type, a.UnitID)
	}
}

// JointAction assigns at most one action to each active unit for a single ply.
// Units without an entry stay idle.
type JointAction map[int]Action

// UnitIDs returns the ids with an entry, ascending
func (ja JointAction) UnitIDs() []int {
	ids := make([]int, 0, len(ja))
	for id := range ja {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// With returns a copy of ja with action assigned to its unit
func (ja JointAction) With(action Action) JointAction {
	out := make(JointAction, len(ja)+1)
	for id, a := range ja {
		out[id] = a
	}
	out[action.UnitID] = action
	return out
}

// Clone returns an independent copy
func (ja JointAction) Clone() JointAction {
	if ja == nil {
		return nil
	}
	out := make(JointAction, len(ja))
	for id, a := range ja {
		out[id] = a
	}
	return out
}

func (ja JointAction) String() string {
	if len(ja) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(ja))
	for _, id := range ja.UnitIDs() {
		parts = append(parts, ja[id].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
