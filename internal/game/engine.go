package game

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/SquadMinimax/internal/game/core"
	"github.com/mitchelldurbincs/SquadMinimax/internal/game/events"
	"github.com/mitchelldurbincs/SquadMinimax/internal/game/processor"
	"github.com/mitchelldurbincs/SquadMinimax/internal/game/rules"
	"github.com/mitchelldurbincs/SquadMinimax/internal/game/world"
)

// EngineConfig holds what a search session needs. Zero values are usable:
// a nil EventBus gets a private bus and an empty SearchID gets a fresh UUID.
type EngineConfig struct {
	Logger   zerolog.Logger
	EventBus events.Bus
	Weights  rules.Weights
	SearchID string
	Observer ExpansionObserver
}

// Child pairs a successor state with the joint action that produced it
type Child struct {
	Action core.JointAction
	State  *world.State
}

// Engine answers the three questions a minimax search asks of a state:
// what are its successors, how good is it, and is the game over.
//
// An Engine holds no per-state data and is safe for concurrent use.
type Engine struct {
	searchID string
	logger   zerolog.Logger

	legalMoves      *rules.LegalMoveCalculator
	actionProcessor *processor.ActionProcessor
	winCondition    *rules.WinConditionChecker
	evaluator       atomic.Pointer[rules.UtilityEvaluator]

	eventBus events.Bus
	observer ExpansionObserver
	stats    engineStats
}

// NewEngine creates a search engine for one session
func NewEngine(ctx context.Context, cfg EngineConfig) (*Engine, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("engine creation cancelled: %w", ctx.Err())
	default:
	}

	if cfg.SearchID == "" {
		cfg.SearchID = uuid.NewString()
	}
	if cfg.EventBus == nil {
		cfg.EventBus = events.NewEventBus(cfg.Logger)
	}
	logger := cfg.Logger.With().
		Str("component", "SearchEngine").
		Str("search_id", cfg.SearchID).
		Logger()

	e := &Engine{
		searchID:        cfg.SearchID,
		logger:          logger,
		legalMoves:      rules.NewLegalMoveCalculator(),
		actionProcessor: processor.NewActionProcessor(logger),
		winCondition:    rules.NewWinConditionChecker(logger),
		eventBus:        cfg.EventBus,
		observer:        cfg.Observer,
	}
	e.evaluator.Store(rules.NewUtilityEvaluator(cfg.Weights))

	logger.Debug().Interface("weights", cfg.Weights).Msg("Engine created")
	return e, nil
}

// SearchID identifies the session on published events
func (e *Engine) SearchID() string { return e.searchID }

// EventBus returns the bus the engine publishes on
func (e *Engine) EventBus() events.Bus { return e.eventBus }

// Successors expands s: every joint action of the side to move is applied
// and the children that fail validation are dropped. Children come back in
// enumeration order. An error means the expansion was aborted; no partial
// result is returned.
func (e *Engine) Successors(s *world.State) ([]Child, error) {
	candidates := e.legalMoves.JointActions(s)
	children := make([]Child, 0, len(candidates))
	rejected := 0

	for _, joint := range candidates {
		next, err := e.Apply(s, joint)
		if err != nil {
			return nil, fmt.Errorf("expanding state at depth %d: %w", s.Depth(), err)
		}
		if err := rules.CheckState(next); err != nil {
			rejected++
			e.logger.Debug().
				Err(err).
				Str("joint_action", joint.String()).
				Msg("Successor rejected")
			continue
		}
		children = append(children, Child{Action: joint, State: next})
	}

	e.stats.record(len(candidates), rejected)
	e.eventBus.Publish(events.NewExpansionCompletedEvent(e.searchID, s.Depth(), s.Active().String(), len(candidates), rejected))
	if e.observer != nil {
		e.observer.OnExpansion(s, children)
	}

	e.logger.Debug().
		Int("depth", s.Depth()).
		Str("active_side", s.Active().String()).
		Int("candidates", len(candidates)).
		Int("rejected", rejected).
		Msg("State expanded")
	return children, nil
}

// MustSuccessors is like Successors but panics on a caller error
func (e *Engine) MustSuccessors(s *world.State) []Child {
	children, err := e.Successors(s)
	if err != nil {
		panic(err)
	}
	return children
}

// Apply runs a single transition without validating the result. Contract
// violations are reported on the event bus before the error is returned.
func (e *Engine) Apply(s *world.State, joint core.JointAction) (*world.State, error) {
	next, err := e.actionProcessor.Apply(s, joint)
	if err != nil {
		e.reportViolation(s, err)
		return nil, err
	}
	return next, nil
}

func (e *Engine) reportViolation(s *world.State, err error) {
	unitID := -1
	var actionErr *core.ActionError
	if errors.As(err, &actionErr) {
		unitID = actionErr.UnitID
	}
	e.stats.violations.Add(1)
	e.eventBus.Publish(events.NewContractViolatedEvent(e.searchID, s.Depth(), unitID, err.Error()))
}

// Utility scores s from the agent's perspective with the current weights
func (e *Engine) Utility(s *world.State) float64 {
	return e.evaluator.Load().Utility(s)
}

// Features returns the raw utility features of s
func (e *Engine) Features(s *world.State) rules.Features {
	return rules.ExtractFeatures(s)
}

// Weights returns the weights currently used by Utility
func (e *Engine) Weights() rules.Weights {
	return e.evaluator.Load().Weights()
}

// SetWeights swaps the utility weights. Searches in flight may observe
// either set on a per-call basis.
func (e *Engine) SetWeights(w rules.Weights) {
	e.evaluator.Store(rules.NewUtilityEvaluator(w))
	e.logger.Info().Interface("weights", w).Msg("Utility weights updated")
}

// IsTerminal reports whether either side has no living units
func (e *Engine) IsTerminal(s *world.State) bool {
	over, winner, hasWinner := e.winCondition.CheckGameOver(s)
	if !over {
		return false
	}
	e.stats.terminals.Add(1)
	name := ""
	if hasWinner {
		name = winner.String()
	}
	e.eventBus.Publish(events.NewStateTerminalEvent(e.searchID, s.Depth(), name))
	return true
}

// Outcome reports whether s is terminal and which side won. hasWinner is
// false for a draw or a state still in play.
func (e *Engine) Outcome(s *world.State) (over bool, winner core.Side, hasWinner bool) {
	return e.winCondition.CheckGameOver(s)
}

// MustApply is like Apply but panics on a caller error
func (e *Engine) MustApply(s *world.State, joint core.JointAction) *world.State {
	next, err := e.Apply(s, joint)
	if err != nil {
		panic(err)
	}
	return next
}
