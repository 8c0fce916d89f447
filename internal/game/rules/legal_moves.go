package rules

import (
	"github.com/mitchelldurbincs/SquadMinimax/internal/game/core"
	"github.com/mitchelldurbincs/SquadMinimax/internal/game/world"
)

// LegalMoveCalculator lists the primitive actions available to units
type LegalMoveCalculator struct{}

// NewLegalMoveCalculator creates a new legal move calculator
func NewLegalMoveCalculator() *LegalMoveCalculator {
	return &LegalMoveCalculator{}
}

// UnitActions returns the candidate actions of u in s: moves in N, S, E, W
// order followed by attacks on opposing units in ascending id order.
//
// A move is offered when the destination is unoccupied. Bounds are not
// checked here; successors that leave the map are dropped by the validator.
// Attacks are offered on every opposing unit, dead or alive, within u's
// Euclidean attack range.
func (lmc *LegalMoveCalculator) UnitActions(s *world.State, u core.Unit) []core.Action {
	actions := make([]core.Action, 0, len(core.Directions)+s.UnitCount(u.Side.Opponent()))

	for _, d := range core.Directions {
		if s.IsOpen(u.Pos.Move(d)) {
			actions = append(actions, core.NewMove(u.ID, d))
		}
	}

	for _, target := range s.Units(u.Side.Opponent()) {
		if u.InAttackRangeOf(target) {
			actions = append(actions, core.NewAttack(u.ID, target.ID))
		}
	}

	return actions
}

// ActiveUnitActions returns one action list per unit of the active side, in
// ascending unit id order. Dead units are included and get the same options
// as live ones.
func (lmc *LegalMoveCalculator) ActiveUnitActions(s *world.State) [][]core.Action {
	units := s.Units(s.Active())
	perUnit := make([][]core.Action, 0, len(units))
	for _, u := range units {
		perUnit = append(perUnit, lmc.UnitActions(s, u))
	}
	return perUnit
}
