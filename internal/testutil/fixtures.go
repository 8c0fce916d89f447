package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/SquadMinimax/internal/game/core"
	"github.com/mitchelldurbincs/SquadMinimax/internal/game/world"
)

// Footman mirrors a melee unit: adjacent range, light armor
func Footman() *core.Template {
	return &core.Template{BasicAttack: 5, PiercingAttack: 0, Armor: 2, Range: 1, MaxHealth: 10}
}

// Archer mirrors a ranged unit: long range, no armor
func Archer() *core.Template {
	return &core.Template{BasicAttack: 4, PiercingAttack: 6, Armor: 0, Range: 8, MaxHealth: 50}
}

// StateBuilder assembles root states for tests
type StateBuilder struct {
	maxX, maxY int
	obstacles  []core.Coordinate
	units      []core.Unit
	active     core.Side
}

// NewStateBuilder starts a map with inclusive bounds maxX, maxY and the player to move
func NewStateBuilder(maxX, maxY int) *StateBuilder {
	return &StateBuilder{maxX: maxX, maxY: maxY, active: core.SidePlayer}
}

// Player adds an agent-controlled unit
func (b *StateBuilder) Player(id, x, y, health int, tpl *core.Template) *StateBuilder {
	return b.unit(id, core.SidePlayer, x, y, health, tpl)
}

// Enemy adds an opposing unit
func (b *StateBuilder) Enemy(id, x, y, health int, tpl *core.Template) *StateBuilder {
	return b.unit(id, core.SideEnemy, x, y, health, tpl)
}

func (b *StateBuilder) unit(id int, side core.Side, x, y, health int, tpl *core.Template) *StateBuilder {
	b.units = append(b.units, core.Unit{ID: id, Side: side, Template: tpl, Pos: core.NewCoordinate(x, y), Health: health})
	return b
}

// Obstacle adds a static obstacle
func (b *StateBuilder) Obstacle(x, y int) *StateBuilder {
	b.obstacles = append(b.obstacles, core.NewCoordinate(x, y))
	return b
}

// EnemyToMove makes the enemy the active side
func (b *StateBuilder) EnemyToMove() *StateBuilder {
	b.active = core.SideEnemy
	return b
}

// Build creates the state, failing the test on error
func (b *StateBuilder) Build(t testing.TB) *world.State {
	t.Helper()
	s, err := world.NewRoot(b.maxX, b.maxY, b.obstacles, b.units, b.active)
	require.NoError(t, err)
	return s
}
