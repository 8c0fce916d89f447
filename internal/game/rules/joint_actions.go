package rules

import (
	"github.com/mitchelldurbincs/SquadMinimax/internal/game/core"
	"github.com/mitchelldurbincs/SquadMinimax/internal/game/world"
)

// JointActions enumerates every joint action of the active side in s
func (lmc *LegalMoveCalculator) JointActions(s *world.State) []core.JointAction {
	return CartesianProduct(lmc.ActiveUnitActions(s))
}

// CartesianProduct combines one action list per unit into every joint action.
// The first list varies slowest, so the output order is fully determined by
// the input order. An empty input yields a single empty joint action; any
// empty list yields none.
func CartesianProduct(perUnit [][]core.Action) []core.JointAction {
	total := CountJointActions(perUnit)
	if total == 0 {
		return nil
	}

	out := make([]core.JointAction, 0, total)
	idx := make([]int, len(perUnit))
	for {
		ja := make(core.JointAction, len(perUnit))
		for u, i := range idx {
			a := perUnit[u][i]
			ja[a.UnitID] = a
		}
		out = append(out, ja)

		// odometer increment, last unit fastest
		u := len(idx) - 1
		for ; u >= 0; u-- {
			idx[u]++
			if idx[u] < len(perUnit[u]) {
				break
			}
			idx[u] = 0
		}
		if u < 0 {
			return out
		}
	}
}

// CountJointActions returns the product of the list lengths
func CountJointActions(perUnit [][]core.Action) int {
	total := 1
	for _, actions := range perUnit {
		total *= len(actions)
	}
	return total
}
