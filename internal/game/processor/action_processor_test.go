package processor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/SquadMinimax/internal/game/core"
	"github.com/mitchelldurbincs/SquadMinimax/internal/game/world"
	"github.com/mitchelldurbincs/SquadMinimax/internal/testutil"
)

func newProcessor() *ActionProcessor {
	return NewActionProcessor(testutil.NopLogger())
}

func health(t *testing.T, s *world.State, id int) int {
	t.Helper()
	u, ok := s.Unit(id)
	require.True(t, ok, "unit %d missing", id)
	return u.Health
}

func position(t *testing.T, s *world.State, id int) core.Coordinate {
	t.Helper()
	u, ok := s.Unit(id)
	require.True(t, ok, "unit %d missing", id)
	return u.Pos
}

func duelist() *core.Template {
	return &core.Template{BasicAttack: 5, PiercingAttack: 0, Armor: 0, Range: 1, MaxHealth: 10}
}

func TestApply_AttackDamageThroughArmor(t *testing.T) {
	tests := []struct {
		name     string
		armor    int
		expected int
	}{
		{"ArmorTwo", 2, 7},
		{"ArmorAbsorbsEverything", 6, 10},
		{"ArmorEqualsDamage", 5, 10},
		{"NoArmor", 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := &core.Template{BasicAttack: 1, Armor: tt.armor, Range: 1, MaxHealth: 10}
			s := testutil.NewStateBuilder(3, 3).
				Player(1, 0, 0, 10, duelist()).
				Enemy(2, 1, 0, 10, target).
				Build(t)

			child, err := newProcessor().Apply(s, core.JointAction{1: core.NewAttack(1, 2)})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, health(t, child, 2))
			assert.Equal(t, 10, health(t, s, 2), "parent unchanged")
		})
	}
}

func TestApply_PiercingAddsToRawDamage(t *testing.T) {
	attacker := &core.Template{BasicAttack: 4, PiercingAttack: 6, Range: 8}
	s := testutil.NewStateBuilder(9, 9).
		Player(1, 0, 0, 50, attacker).
		Enemy(2, 1, 0, 30, testutil.Footman()).
		Build(t)

	child, err := newProcessor().Apply(s, core.JointAction{1: core.NewAttack(1, 2)})
	require.NoError(t, err)
	assert.Equal(t, 30-(10-2), health(t, child, 2))
}

func TestApply_RangeCheckedAgainstTargetRange(t *testing.T) {
	archer := &core.Template{BasicAttack: 4, PiercingAttack: 6, Range: 8}
	melee := &core.Template{BasicAttack: 5, Range: 1}

	s := testutil.NewStateBuilder(9, 9).
		Player(1, 0, 0, 50, archer).
		Enemy(2, 4, 0, 10, melee).
		Enemy(3, 0, 5, 10, archer).
		Build(t)

	child, err := newProcessor().Apply(s, core.JointAction{1: core.NewAttack(1, 2)})
	require.NoError(t, err)
	assert.Equal(t, 10, health(t, child, 2), "archer's attack falls outside the melee target's range")

	child, err = newProcessor().Apply(s, core.JointAction{1: core.NewAttack(1, 3)})
	require.NoError(t, err)
	assert.Equal(t, 0, health(t, child, 3))
}

func TestApply_HealthGoesNegativeAndUnitStays(t *testing.T) {
	s := testutil.NewStateBuilder(3, 3).
		Player(1, 0, 0, 10, duelist()).
		Player(3, 0, 1, 10, duelist()).
		Enemy(2, 1, 0, 3, duelist()).
		Build(t)

	child, err := newProcessor().Apply(s, core.JointAction{1: core.NewAttack(1, 2), 3: core.NewMove(3, core.South)})
	require.NoError(t, err)
	assert.Equal(t, -2, health(t, child, 2))
	assert.Equal(t, 1, child.UnitCount(core.SideEnemy), "dead units are never removed")
}

func TestApply_IdleSideActionIsFatal(t *testing.T) {
	s := testutil.NewStateBuilder(3, 3).
		Player(1, 0, 0, 10, duelist()).
		Enemy(2, 2, 2, 10, duelist()).
		Build(t)

	child, err := newProcessor().Apply(s, core.JointAction{
		1: core.NewMove(1, core.East),
		2: core.NewMove(2, core.North),
	})
	assert.Nil(t, child)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrIdleSideAction))

	var actionErr *core.ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, 2, actionErr.UnitID)
}

func TestApply_MalformedJointActions(t *testing.T) {
	s := testutil.NewStateBuilder(3, 3).
		Player(1, 0, 0, 10, duelist()).
		Enemy(2, 1, 0, 10, duelist()).
		Build(t)

	tests := []struct {
		name  string
		joint core.JointAction
		err   error
	}{
		{"UnknownActor", core.JointAction{5: core.NewMove(5, core.East)}, core.ErrUnknownUnit},
		{"MisKeyedAction", core.JointAction{1: core.NewMove(4, core.East)}, core.ErrUnknownUnit},
		{"UnknownTarget", core.JointAction{1: core.NewAttack(1, 42)}, core.ErrUnknownUnit},
		{"BadDirection", core.JointAction{1: core.NewMove(1, core.Direction(8))}, core.ErrInvalidDirection},
		{"BadType", core.JointAction{1: {Type: core.ActionType(9), UnitID: 1}}, core.ErrUnknownActionType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			child, err := newProcessor().Apply(s, tt.joint)
			assert.Nil(t, child)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestApply_FlipsActiveSideAndRecordsProvenance(t *testing.T) {
	s := testutil.NewStateBuilder(3, 3).
		Player(1, 0, 0, 10, duelist()).
		Enemy(2, 2, 2, 10, duelist()).
		Build(t)

	joint := core.JointAction{1: core.NewMove(1, core.East)}
	child, err := newProcessor().Apply(s, joint)
	require.NoError(t, err)

	assert.Equal(t, core.SideEnemy, child.Active())
	assert.Same(t, s, child.Parent())
	assert.Equal(t, joint, child.JointAction())
	assert.Equal(t, core.NewCoordinate(1, 0), position(t, child, 1))
	assert.Equal(t, core.NewCoordinate(2, 2), position(t, child, 2), "idle side carried forward")

	grandchild, err := newProcessor().Apply(child, core.JointAction{2: core.NewMove(2, core.West)})
	require.NoError(t, err)
	assert.Equal(t, core.SidePlayer, grandchild.Active())
	assert.Equal(t, core.NewCoordinate(1, 2), position(t, grandchild, 2))
}

func TestApply_EmptyJointActionPasses(t *testing.T) {
	s := testutil.NewStateBuilder(3, 3).
		Player(1, 0, 0, 10, duelist()).
		Enemy(2, 2, 2, 10, duelist()).
		Build(t)

	child, err := newProcessor().Apply(s, core.JointAction{})
	require.NoError(t, err)
	assert.Equal(t, s.Units(core.SidePlayer), child.Units(core.SidePlayer))
	assert.Equal(t, s.Units(core.SideEnemy), child.Units(core.SideEnemy))
	assert.False(t, child.PlayersTurn())
}

func TestApply_MovesCheckedAgainstParentOccupancy(t *testing.T) {
	t.Run("SimultaneousMovesCanCollide", func(t *testing.T) {
		s := testutil.NewStateBuilder(4, 4).
			Player(1, 0, 1, 10, duelist()).
			Player(2, 2, 1, 10, duelist()).
			Build(t)

		child, err := newProcessor().Apply(s, core.JointAction{
			1: core.NewMove(1, core.East),
			2: core.NewMove(2, core.West),
		})
		require.NoError(t, err)
		assert.Equal(t, position(t, child, 1), position(t, child, 2), "both committed to (1,1)")
	})

	t.Run("VacatedCellStillBlocked", func(t *testing.T) {
		s := testutil.NewStateBuilder(4, 4).
			Player(1, 0, 1, 10, duelist()).
			Player(2, 1, 1, 10, duelist()).
			Build(t)

		child, err := newProcessor().Apply(s, core.JointAction{
			1: core.NewMove(1, core.East),
			2: core.NewMove(2, core.East),
		})
		require.NoError(t, err)
		assert.Equal(t, core.NewCoordinate(0, 1), position(t, child, 1), "blocked by unit 2's old cell")
		assert.Equal(t, core.NewCoordinate(2, 1), position(t, child, 2))
	})

	t.Run("ObstacleBlocks", func(t *testing.T) {
		s := testutil.NewStateBuilder(4, 4).
			Player(1, 0, 1, 10, duelist()).
			Obstacle(0, 0).
			Build(t)

		child, err := newProcessor().Apply(s, core.JointAction{1: core.NewMove(1, core.North)})
		require.NoError(t, err)
		assert.Equal(t, core.NewCoordinate(0, 1), position(t, child, 1))
	})

	t.Run("OffMapMoveCommits", func(t *testing.T) {
		s := testutil.NewStateBuilder(4, 4).
			Player(1, 0, 0, 10, duelist()).
			Build(t)

		child, err := newProcessor().Apply(s, core.JointAction{1: core.NewMove(1, core.West)})
		require.NoError(t, err)
		assert.Equal(t, core.NewCoordinate(-1, 0), position(t, child, 1), "left for the validator")
	})
}

func TestApply_AttacksUseSettledPositions(t *testing.T) {
	// enemy to move: both enemy units hit the player unit between them
	s := testutil.NewStateBuilder(5, 5).
		Enemy(5, 1, 1, 10, duelist()).
		Enemy(6, 3, 1, 10, duelist()).
		Player(1, 2, 1, 10, duelist()).
		EnemyToMove().
		Build(t)

	child, err := newProcessor().Apply(s, core.JointAction{
		5: core.NewAttack(5, 1),
		6: core.NewAttack(6, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, health(t, child, 1), "two attacks of 5")
	assert.True(t, child.PlayersTurn())
}

func TestApply_FriendlyTargetResolvesOnActingSide(t *testing.T) {
	s := testutil.NewStateBuilder(4, 4).
		Player(1, 0, 0, 10, duelist()).
		Player(2, 1, 0, 10, duelist()).
		Enemy(9, 4, 4, 10, duelist()).
		Build(t)

	child, err := newProcessor().Apply(s, core.JointAction{1: core.NewAttack(1, 2)})
	require.NoError(t, err)
	assert.Equal(t, 5, health(t, child, 2))
}

func TestApply_SiblingsDoNotAlias(t *testing.T) {
	s := testutil.NewStateBuilder(4, 4).
		Player(1, 1, 1, 10, duelist()).
		Enemy(2, 2, 1, 10, duelist()).
		Build(t)

	ap := newProcessor()
	attacked, err := ap.Apply(s, core.JointAction{1: core.NewAttack(1, 2)})
	require.NoError(t, err)
	moved, err := ap.Apply(s, core.JointAction{1: core.NewMove(1, core.South)})
	require.NoError(t, err)

	assert.Equal(t, 5, health(t, attacked, 2))
	assert.Equal(t, 10, health(t, moved, 2))
	assert.Equal(t, core.NewCoordinate(1, 1), position(t, attacked, 1))
	assert.Equal(t, core.NewCoordinate(1, 2), position(t, moved, 1))
	assert.Equal(t, core.NewCoordinate(1, 1), position(t, s, 1))
}

func TestApply_TemplatesSharedAcrossSnapshots(t *testing.T) {
	tpl := duelist()
	s := testutil.NewStateBuilder(3, 3).
		Player(1, 0, 0, 10, tpl).
		Enemy(2, 2, 2, 10, duelist()).
		Build(t)

	child, err := newProcessor().Apply(s, core.JointAction{1: core.NewMove(1, core.South)})
	require.NoError(t, err)
	u, _ := child.Unit(1)
	assert.Same(t, tpl, u.Template)
}

func TestApply_DeadAttackerStillDealsDamage(t *testing.T) {
	s := testutil.NewStateBuilder(3, 3).
		Player(1, 0, 0, 0, duelist()).
		Enemy(2, 1, 0, 10, duelist()).
		Build(t)

	child, err := newProcessor().Apply(s, core.JointAction{1: core.NewAttack(1, 2)})
	require.NoError(t, err)
	assert.Equal(t, 5, health(t, child, 2))
}

func TestResolveAttack_UnknownAttacker(t *testing.T) {
	var next [2][]core.Unit
	next[core.SideEnemy] = []core.Unit{{ID: 2, Side: core.SideEnemy, Template: duelist(), Health: 10}}

	err := resolveAttack(&next, core.SidePlayer, core.NewAttack(1, 2))
	assert.True(t, errors.Is(err, core.ErrUnknownUnit))
	assert.Equal(t, 10, next[core.SideEnemy][0].Health)
}
