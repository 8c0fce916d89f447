package rules

import (
	"fmt"

	"github.com/mitchelldurbincs/SquadMinimax/internal/game/core"
	"github.com/mitchelldurbincs/SquadMinimax/internal/game/world"
)

// CheckState reports the first structural violation in s: an obstacle or unit
// (alive or dead) outside [0,maxX]x[0,maxY], or two entities on one cell.
func CheckState(s *world.State) error {
	occ := core.NewOccupancy(s.UnitCount(core.SidePlayer) + s.UnitCount(core.SideEnemy))

	place := func(what string, c core.Coordinate) error {
		if !s.InBounds(c) {
			return fmt.Errorf("%w: %s at %s", core.ErrOutOfBounds, what, c)
		}
		if !occ.Add(c) {
			return fmt.Errorf("%w: %s at %s", core.ErrCellCollision, what, c)
		}
		return nil
	}

	for _, c := range s.Obstacles() {
		if err := place("obstacle", c); err != nil {
			return err
		}
	}
	for _, side := range [...]core.Side{core.SidePlayer, core.SideEnemy} {
		for _, u := range s.Units(side) {
			if err := place(fmt.Sprintf("unit %d", u.ID), u.Pos); err != nil {
				return err
			}
		}
	}
	return nil
}

// IsValidState reports whether s passes CheckState
func IsValidState(s *world.State) bool {
	return CheckState(s) == nil
}
