package world

import (
	"fmt"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/mitchelldurbincs/SquadMinimax/internal/game/core"
)

// State is one node of the search tree: map bounds, obstacles, both squads,
// the side to move and the provenance link to the state it was derived from.
//
// A State is never mutated after construction. Accessors hand out copies, so
// sibling states and concurrent readers never observe each other's changes.
type State struct {
	maxX, maxY int
	obstacles  []core.Coordinate // shared read-only by every descendant of a root
	units      [2][]core.Unit    // per side, ascending by ID
	active     core.Side

	parent *State
	action core.JointAction
	depth  int

	occOnce sync.Once
	occ     *core.Occupancy
}

// NewRoot builds a root state. Units are placed on the side named by their
// Side field; maxX and maxY are the inclusive coordinate bounds.
func NewRoot(maxX, maxY int, obstacles []core.Coordinate, units []core.Unit, active core.Side) (*State, error) {
	if maxX < 0 || maxY < 0 {
		return nil, fmt.Errorf("%w: max=(%d,%d)", core.ErrInvalidDimensions, maxX, maxY)
	}
	s := &State{
		maxX:      maxX,
		maxY:      maxY,
		obstacles: slices.Clone(obstacles),
		active:    active,
	}
	seen := make(map[int]struct{}, len(units))
	for _, u := range units {
		if _, dup := seen[u.ID]; dup {
			return nil, fmt.Errorf("%w: %d", core.ErrDuplicateUnit, u.ID)
		}
		if u.Template == nil {
			return nil, fmt.Errorf("%w: unit %d has no template", core.ErrInvalidObservation, u.ID)
		}
		if u.Side != core.SidePlayer && u.Side != core.SideEnemy {
			return nil, fmt.Errorf("%w: unit %d has side %s", core.ErrInvalidObservation, u.ID, u.Side)
		}
		seen[u.ID] = struct{}{}
		s.units[u.Side] = append(s.units[u.Side], u)
	}
	sortByID(s.units[core.SidePlayer])
	sortByID(s.units[core.SideEnemy])
	return s, nil
}

// Child derives the successor produced by action. It takes ownership of the
// player and enemy slices; the caller must not retain them. The active side
// of the child is the opponent of s's active side.
func (s *State) Child(player, enemy []core.Unit, action core.JointAction) *State {
	sortByID(player)
	sortByID(enemy)
	return &State{
		maxX:      s.maxX,
		maxY:      s.maxY,
		obstacles: s.obstacles,
		units:     [2][]core.Unit{core.SidePlayer: player, core.SideEnemy: enemy},
		active:    s.active.Opponent(),
		parent:    s,
		action:    action.Clone(),
		depth:     s.depth + 1,
	}
}

func sortByID(units []core.Unit) {
	slices.SortFunc(units, func(a, b core.Unit) int { return a.ID - b.ID })
}

// MaxX returns the largest valid x coordinate
func (s *State) MaxX() int { return s.maxX }

// MaxY returns the largest valid y coordinate
func (s *State) MaxY() int { return s.maxY }

// Active returns the side to move
func (s *State) Active() core.Side { return s.active }

// Idle returns the side that waits this ply
func (s *State) Idle() core.Side { return s.active.Opponent() }

// PlayersTurn reports whether the agent's squad moves this ply
func (s *State) PlayersTurn() bool { return s.active == core.SidePlayer }

// Parent returns the state this one was derived from, nil for a root
func (s *State) Parent() *State { return s.parent }

// JointAction returns a copy of the joint action that produced this state
func (s *State) JointAction() core.JointAction { return s.action.Clone() }

// Depth returns the number of plies between this state and its root
func (s *State) Depth() int { return s.depth }

// Path returns the joint actions leading from the root to this state, oldest first
func (s *State) Path() []core.JointAction {
	path := make([]core.JointAction, s.depth)
	for n := s; n.parent != nil; n = n.parent {
		path[n.depth-1] = n.action.Clone()
	}
	return path
}

// Obstacles returns a copy of the obstacle positions
func (s *State) Obstacles() []core.Coordinate {
	return slices.Clone(s.obstacles)
}

// Units returns a copy of side's units, ascending by ID. Dead units are included.
func (s *State) Units(side core.Side) []core.Unit {
	return slices.Clone(s.units[side])
}

// UnitCount returns how many units (alive or dead) side holds
func (s *State) UnitCount(side core.Side) int {
	return len(s.units[side])
}

// Unit looks up a unit by id on either side
func (s *State) Unit(id int) (core.Unit, bool) {
	for _, side := range [...]core.Side{core.SidePlayer, core.SideEnemy} {
		if u, ok := s.UnitOn(side, id); ok {
			return u, true
		}
	}
	return core.Unit{}, false
}

// UnitOn looks up a unit by id on one side only
func (s *State) UnitOn(side core.Side, id int) (core.Unit, bool) {
	units := s.units[side]
	i, ok := slices.BinarySearchFunc(units, id, func(u core.Unit, id int) int { return u.ID - id })
	if !ok {
		return core.Unit{}, false
	}
	return units[i], true
}

// Occupancy returns the index of occupied cells. It is built once per state
// and shared; callers must treat it as read-only.
func (s *State) Occupancy() *core.Occupancy {
	s.occOnce.Do(func() {
		occ := core.NewOccupancy(len(s.obstacles) + len(s.units[0]) + len(s.units[1]))
		for _, c := range s.obstacles {
			occ.Add(c)
		}
		for _, side := range s.units {
			for _, u := range side {
				occ.Add(u.Pos)
			}
		}
		s.occ = occ
	})
	return s.occ
}

// IsOpen reports whether no unit (alive or dead) or obstacle occupies c.
// Bounds are not considered.
func (s *State) IsOpen(c core.Coordinate) bool {
	return s.Occupancy().IsOpen(c)
}

// InBounds reports whether c lies within the map
func (s *State) InBounds(c core.Coordinate) bool {
	return c.WithinInclusive(s.maxX, s.maxY)
}

func (s *State) String() string {
	return fmt.Sprintf("state depth=%d active=%s player=%d enemy=%d", s.depth, s.active, len(s.units[core.SidePlayer]), len(s.units[core.SideEnemy]))
}
