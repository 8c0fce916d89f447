package world

import (
	"fmt"

	"github.com/mitchelldurbincs/SquadMinimax/internal/game/core"
)

// Observation is the snapshot the runtime hands the agent at the start of its turn
type Observation struct {
	Width       int
	Height      int
	Obstacles   []core.Coordinate
	Units       []ObservedUnit
	AgentPlayer int // owner id of the agent's squad
}

// ObservedUnit carries one unit's live attributes and template stats as observed
type ObservedUnit struct {
	ID     int
	Owner  int
	X, Y   int
	Health int

	BasicAttack    int
	PiercingAttack int
	Armor          int
	Range          int
	MaxHealth      int
}

// Template copies the observed template stats
func (ou ObservedUnit) Template() *core.Template {
	return &core.Template{
		BasicAttack:    ou.BasicAttack,
		PiercingAttack: ou.PiercingAttack,
		Armor:          ou.Armor,
		Range:          ou.Range,
		MaxHealth:      ou.MaxHealth,
	}
}

// FromObservation builds the root state. Units owned by the agent form the
// player side and every other unit the enemy side. The player side moves first.
func FromObservation(obs Observation) (*State, error) {
	if obs.Width <= 0 || obs.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", core.ErrInvalidDimensions, obs.Width, obs.Height)
	}

	own := make(map[int]struct{})
	for _, ou := range obs.Units {
		if ou.Owner == obs.AgentPlayer {
			own[ou.ID] = struct{}{}
		}
	}

	units := make([]core.Unit, 0, len(obs.Units))
	for _, ou := range obs.Units {
		side := core.SideEnemy
		if _, ok := own[ou.ID]; ok {
			side = core.SidePlayer
		}
		units = append(units, core.Unit{
			ID:       ou.ID,
			Side:     side,
			Template: ou.Template(),
			Pos:      core.NewCoordinate(ou.X, ou.Y),
			Health:   ou.Health,
		})
	}

	s, err := NewRoot(obs.Width-1, obs.Height-1, obs.Obstacles, units, core.SidePlayer)
	if err != nil {
		return nil, fmt.Errorf("building root state: %w", err)
	}
	return s, nil
}
