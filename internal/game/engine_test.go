package game

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/SquadMinimax/internal/game/core"
	"github.com/mitchelldurbincs/SquadMinimax/internal/game/events"
	"github.com/mitchelldurbincs/SquadMinimax/internal/game/rules"
	"github.com/mitchelldurbincs/SquadMinimax/internal/game/world"
	"github.com/mitchelldurbincs/SquadMinimax/internal/scenario"
	"github.com/mitchelldurbincs/SquadMinimax/internal/testutil"
)

func newTestEngine(t *testing.T, cfg EngineConfig) *Engine {
	t.Helper()
	cfg.Logger = testutil.NopLogger()
	e, err := NewEngine(context.Background(), cfg)
	require.NoError(t, err)
	return e
}

func TestNewEngine(t *testing.T) {
	e := newTestEngine(t, EngineConfig{})

	_, err := uuid.Parse(e.SearchID())
	assert.NoError(t, err, "a search id is generated when none is given")
	assert.NotNil(t, e.EventBus())
	assert.Equal(t, rules.Weights{}, e.Weights())
	assert.Equal(t, Stats{}, e.Stats())

	named := newTestEngine(t, EngineConfig{SearchID: "root-search"})
	assert.Equal(t, "root-search", named.SearchID())
}

func TestNewEngine_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e, err := NewEngine(ctx, EngineConfig{Logger: testutil.NopLogger()})
	assert.Nil(t, e)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSuccessors_SingleUnit(t *testing.T) {
	s := testutil.NewStateBuilder(2, 2).
		Player(1, 1, 1, 10, testutil.Footman()).
		Enemy(7, 2, 1, 10, testutil.Footman()).
		Build(t)
	e := newTestEngine(t, EngineConfig{})

	children, err := e.Successors(s)
	require.NoError(t, err)
	require.Len(t, children, 4)

	want := []core.Action{
		core.NewMove(1, core.North),
		core.NewMove(1, core.South),
		core.NewMove(1, core.West),
		core.NewAttack(1, 7),
	}
	for i, child := range children {
		assert.Equal(t, core.JointAction{1: want[i]}, child.Action)
		assert.Same(t, s, child.State.Parent())
		assert.Equal(t, 1, child.State.Depth())
		assert.Equal(t, core.SideEnemy, child.State.Active())
		assert.Equal(t, child.Action, child.State.JointAction())
	}

	moved, _ := children[0].State.Unit(1)
	assert.Equal(t, core.NewCoordinate(1, 0), moved.Pos)

	hit, _ := children[3].State.Unit(7)
	assert.Equal(t, 7, hit.Health, "5 damage through 2 armor")

	assert.Equal(t, Stats{Expansions: 1, Generated: 4}, e.Stats())
}

func TestSuccessors_InvalidCandidatesDropped(t *testing.T) {
	// P1 and P2 both moving onto (1,0) collide; N/W for P1 and N/E for P2 leave the map
	s := testutil.NewStateBuilder(2, 1).
		Player(1, 0, 0, 10, testutil.Footman()).
		Player(2, 2, 0, 10, testutil.Footman()).
		Enemy(7, 1, 1, 10, testutil.Footman()).
		Build(t)
	e := newTestEngine(t, EngineConfig{})

	children, err := e.Successors(s)
	require.NoError(t, err)

	var actions []core.JointAction
	for _, c := range children {
		actions = append(actions, c.Action)
		assert.NoError(t, rules.CheckState(c.State))
	}
	assert.Equal(t, []core.JointAction{
		{1: core.NewMove(1, core.South), 2: core.NewMove(2, core.South)},
		{1: core.NewMove(1, core.South), 2: core.NewMove(2, core.West)},
		{1: core.NewMove(1, core.East), 2: core.NewMove(2, core.South)},
	}, actions)

	stats := e.Stats()
	assert.Equal(t, int64(16), stats.Generated)
	assert.Equal(t, int64(13), stats.Rejected)
	assert.Equal(t, int64(3), stats.Accepted())
}

func TestSuccessors_DeadActiveUnitStillActs(t *testing.T) {
	s := testutil.NewStateBuilder(3, 3).
		Player(1, 1, 1, 0, testutil.Footman()).
		Enemy(7, 3, 3, 10, testutil.Footman()).
		Build(t)
	e := newTestEngine(t, EngineConfig{})

	children, err := e.Successors(s)
	require.NoError(t, err)
	require.Len(t, children, 4, "a dead unit keeps its four moves")

	for _, child := range children {
		assert.Equal(t, core.ActionMove, child.Action[1].Type)
		assert.Equal(t, core.SideEnemy, child.State.Active())
		moved, ok := child.State.Unit(1)
		require.True(t, ok)
		assert.Equal(t, 0, moved.Health)
		assert.Equal(t, s.Units(core.SideEnemy), child.State.Units(core.SideEnemy))
	}
}

func TestSuccessors_JointCountIsProductIncludingDeadUnits(t *testing.T) {
	s := testutil.NewStateBuilder(6, 6).
		Player(1, 1, 1, 0, testutil.Footman()).
		Player(2, 4, 4, 10, testutil.Footman()).
		Enemy(7, 6, 0, 10, testutil.Footman()).
		Build(t)
	e := newTestEngine(t, EngineConfig{})

	children, err := e.Successors(s)
	require.NoError(t, err)
	assert.Len(t, children, 16)
	assert.Equal(t, int64(16), e.Stats().Generated)
}

func TestSuccessors_NoActiveUnits(t *testing.T) {
	s := testutil.NewStateBuilder(3, 3).
		Enemy(7, 3, 3, 10, testutil.Footman()).
		Build(t)
	e := newTestEngine(t, EngineConfig{})

	children, err := e.Successors(s)
	require.NoError(t, err)
	require.Len(t, children, 1, "a single empty joint action passes the turn")

	child := children[0]
	assert.Empty(t, child.Action)
	assert.Equal(t, core.SideEnemy, child.State.Active())
	assert.Equal(t, s.Units(core.SideEnemy), child.State.Units(core.SideEnemy))
}

func TestSuccessors_StuckUnitZeroesProduct(t *testing.T) {
	s := testutil.NewStateBuilder(3, 3).
		Player(1, 1, 1, 10, testutil.Footman()).
		Obstacle(1, 0).Obstacle(1, 2).Obstacle(0, 1).Obstacle(2, 1).
		Player(2, 3, 0, 10, testutil.Footman()).
		Enemy(7, 3, 3, 10, testutil.Footman()).
		Build(t)
	e := newTestEngine(t, EngineConfig{})

	children, err := e.Successors(s)
	require.NoError(t, err)
	assert.Empty(t, children)
	assert.Equal(t, int64(0), e.Stats().Generated)
	assert.Equal(t, int64(1), e.Stats().Expansions)
}

func TestSuccessors_EnemyTurnDamagesPlayer(t *testing.T) {
	s := testutil.NewStateBuilder(4, 0).
		Player(1, 0, 0, 50, testutil.Archer()).
		Enemy(7, 4, 0, 50, testutil.Archer()).
		EnemyToMove().
		Build(t)
	e := newTestEngine(t, EngineConfig{})

	children, err := e.Successors(s)
	require.NoError(t, err)

	var attacked *world.State
	for _, c := range children {
		if c.Action[7].Type == core.ActionAttack {
			attacked = c.State
		}
	}
	require.NotNil(t, attacked)
	player, _ := attacked.Unit(1)
	assert.Equal(t, 40, player.Health, "10 damage against no armor")
	assert.True(t, attacked.PlayersTurn())
}

func TestSuccessors_PublishesExpansionEvent(t *testing.T) {
	bus := events.NewEventBus(testutil.NopLogger())
	var got []*events.ExpansionCompletedEvent
	bus.SubscribeFunc(events.TypeExpansionCompleted, func(ev events.Event) {
		got = append(got, ev.(*events.ExpansionCompletedEvent))
	})

	s := testutil.NewStateBuilder(2, 1).
		Player(1, 0, 0, 10, testutil.Footman()).
		Player(2, 2, 0, 10, testutil.Footman()).
		Enemy(7, 1, 1, 10, testutil.Footman()).
		Build(t)
	e := newTestEngine(t, EngineConfig{EventBus: bus, SearchID: "evt"})

	_, err := e.Successors(s)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "evt", got[0].SearchID())
	assert.Equal(t, 0, got[0].Depth)
	assert.Equal(t, "player", got[0].ActiveSide)
	assert.Equal(t, 16, got[0].Candidates)
	assert.Equal(t, 13, got[0].Rejected)
}

func TestSuccessors_Observer(t *testing.T) {
	var parents []*world.State
	var counts []int
	observer := ExpansionObserverFunc(func(parent *world.State, children []Child) {
		parents = append(parents, parent)
		counts = append(counts, len(children))
	})

	s := testutil.NewStateBuilder(2, 2).
		Player(1, 1, 1, 10, testutil.Footman()).
		Enemy(7, 2, 1, 10, testutil.Footman()).
		Build(t)
	e := newTestEngine(t, EngineConfig{Observer: observer})

	_ = e.MustSuccessors(s)

	require.Len(t, parents, 1)
	assert.Same(t, s, parents[0])
	assert.Equal(t, []int{4}, counts)
}

func TestApply_ContractViolation(t *testing.T) {
	bus := events.NewEventBus(testutil.NopLogger())
	var violations []*events.ContractViolatedEvent
	bus.SubscribeFunc(events.TypeContractViolated, func(ev events.Event) {
		violations = append(violations, ev.(*events.ContractViolatedEvent))
	})

	s := testutil.NewStateBuilder(3, 3).
		Player(1, 0, 0, 10, testutil.Footman()).
		Enemy(7, 3, 3, 10, testutil.Footman()).
		Build(t)
	e := newTestEngine(t, EngineConfig{EventBus: bus})

	next, err := e.Apply(s, core.JointAction{7: core.NewMove(7, core.North)})
	assert.Nil(t, next)
	assert.ErrorIs(t, err, core.ErrIdleSideAction)

	require.Len(t, violations, 1)
	assert.Equal(t, 7, violations[0].UnitID)
	assert.Equal(t, int64(1), e.Stats().Violations)

	testutil.AssertPanic(t, func() {
		e.MustApply(s, core.JointAction{7: core.NewMove(7, core.North)})
	}, "idle-side action must panic")
}

func TestApply_DoesNotValidate(t *testing.T) {
	s := testutil.NewStateBuilder(1, 1).
		Player(1, 0, 0, 10, testutil.Footman()).
		Enemy(7, 1, 1, 10, testutil.Footman()).
		Build(t)
	e := newTestEngine(t, EngineConfig{})

	next := e.MustApply(s, core.JointAction{1: core.NewMove(1, core.West)})
	assert.ErrorIs(t, rules.CheckState(next), core.ErrOutOfBounds)
}

func TestMustSuccessors_MatchesSuccessors(t *testing.T) {
	s, err := scenario.NewSeededGenerator(scenario.DefaultGeneratorConfig(5, 5), 3).GenerateState()
	require.NoError(t, err)
	e := newTestEngine(t, EngineConfig{})

	children, err := e.Successors(s)
	require.NoError(t, err)
	must := e.MustSuccessors(s)

	require.Len(t, must, len(children))
	for i := range children {
		assert.Equal(t, children[i].Action, must[i].Action)
	}
}

func TestUtility(t *testing.T) {
	s := testutil.NewStateBuilder(4, 4).
		Player(1, 0, 0, 10, testutil.Footman()).
		Enemy(7, 4, 4, 6, testutil.Footman()).
		Enemy(8, 2, 2, 0, testutil.Footman()).
		Build(t)
	e := newTestEngine(t, EngineConfig{Weights: rules.Weights{PlayerHitpoints: 1, EnemyHitpoints: -1}})

	assert.Equal(t, 4.0, e.Utility(s))
	assert.Equal(t, rules.Features{
		PlayerHitpoints: 10,
		EnemyHitpoints:  6,
		FriendliesAlive: 1,
		EnemiesAlive:    1,
	}, e.Features(s))

	e.SetWeights(rules.Weights{EnemiesAlive: -10})
	assert.Equal(t, -10.0, e.Utility(s))
	assert.Equal(t, rules.Weights{EnemiesAlive: -10}, e.Weights())

	zero := newTestEngine(t, EngineConfig{})
	assert.Equal(t, 0.0, zero.Utility(s), "default weights score every state zero")
}

func TestIsTerminal(t *testing.T) {
	testCases := []struct {
		name       string
		build      func(b *testutil.StateBuilder) *testutil.StateBuilder
		terminal   bool
		winner     string
		hasWinner  bool
		winnerSide core.Side
	}{
		{
			name: "both sides alive",
			build: func(b *testutil.StateBuilder) *testutil.StateBuilder {
				return b.Player(1, 0, 0, 1, testutil.Footman()).Enemy(7, 3, 3, 1, testutil.Footman())
			},
		},
		{
			name: "enemy all dead",
			build: func(b *testutil.StateBuilder) *testutil.StateBuilder {
				return b.Player(1, 0, 0, 1, testutil.Footman()).Enemy(7, 3, 3, 0, testutil.Footman())
			},
			terminal: true, winner: "player", hasWinner: true, winnerSide: core.SidePlayer,
		},
		{
			name: "no player units",
			build: func(b *testutil.StateBuilder) *testutil.StateBuilder {
				return b.Enemy(7, 3, 3, 5, testutil.Footman())
			},
			terminal: true, winner: "enemy", hasWinner: true, winnerSide: core.SideEnemy,
		},
		{
			name: "both eliminated",
			build: func(b *testutil.StateBuilder) *testutil.StateBuilder {
				return b.Player(1, 0, 0, -2, testutil.Footman()).Enemy(7, 3, 3, 0, testutil.Footman())
			},
			terminal: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bus := events.NewEventBus(testutil.NopLogger())
			var got []*events.StateTerminalEvent
			bus.SubscribeFunc(events.TypeStateTerminal, func(ev events.Event) {
				got = append(got, ev.(*events.StateTerminalEvent))
			})
			e := newTestEngine(t, EngineConfig{EventBus: bus})
			s := tc.build(testutil.NewStateBuilder(3, 3)).Build(t)

			assert.Equal(t, tc.terminal, e.IsTerminal(s))

			over, winner, hasWinner := e.Outcome(s)
			assert.Equal(t, tc.terminal, over)
			assert.Equal(t, tc.hasWinner, hasWinner)
			if tc.hasWinner {
				assert.Equal(t, tc.winnerSide, winner)
			}

			if !tc.terminal {
				assert.Empty(t, got)
				assert.Equal(t, int64(0), e.Stats().Terminals)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, tc.winner, got[0].Winner)
			assert.Equal(t, int64(1), e.Stats().Terminals)
		})
	}
}

func TestSuccessors_ConcurrentExpansionIsDeterministic(t *testing.T) {
	s, err := scenario.NewSeededGenerator(scenario.DefaultGeneratorConfig(6, 6), 9).GenerateState()
	require.NoError(t, err)
	e := newTestEngine(t, EngineConfig{})

	want, err := e.Successors(s)
	require.NoError(t, err)

	const workers = 8
	results := make([][]Child, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.MustSuccessors(s)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		require.Len(t, got, len(want))
		for j := range want {
			assert.Equal(t, want[j].Action, got[j].Action)
			assert.Equal(t, want[j].State.Units(core.SidePlayer), got[j].State.Units(core.SidePlayer))
			assert.Equal(t, want[j].State.Units(core.SideEnemy), got[j].State.Units(core.SideEnemy))
		}
	}
	assert.Equal(t, int64(workers+1), e.Stats().Expansions)
}
