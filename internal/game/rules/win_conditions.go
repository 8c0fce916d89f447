package rules

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/SquadMinimax/internal/game/core"
	"github.com/mitchelldurbincs/SquadMinimax/internal/game/world"
)

// WinConditionChecker handles terminal state detection and winner determination
type WinConditionChecker struct {
	logger zerolog.Logger
}

// NewWinConditionChecker creates a new win condition checker
func NewWinConditionChecker(logger zerolog.Logger) *WinConditionChecker {
	return &WinConditionChecker{
		logger: logger.With().Str("component", "WinConditionChecker").Logger(),
	}
}

// IsTerminal reports whether either side has no units or only dead ones
func (wc *WinConditionChecker) IsTerminal(s *world.State) bool {
	return Eliminated(s, core.SidePlayer) || Eliminated(s, core.SideEnemy)
}

// CheckGameOver determines whether s is terminal and which side, if any, won.
// Returns (isGameOver, winner, hasWinner); both sides eliminated is a draw.
func (wc *WinConditionChecker) CheckGameOver(s *world.State) (bool, core.Side, bool) {
	playerOut := Eliminated(s, core.SidePlayer)
	enemyOut := Eliminated(s, core.SideEnemy)

	switch {
	case playerOut && enemyOut:
		wc.logger.Debug().Int("depth", s.Depth()).Msg("Both sides eliminated, draw")
		return true, 0, false
	case playerOut:
		wc.logger.Debug().Int("depth", s.Depth()).Str("winner", core.SideEnemy.String()).Msg("Winner determined")
		return true, core.SideEnemy, true
	case enemyOut:
		wc.logger.Debug().Int("depth", s.Depth()).Str("winner", core.SidePlayer.String()).Msg("Winner determined")
		return true, core.SidePlayer, true
	default:
		return false, 0, false
	}
}

// Eliminated reports whether side has no living unit in s
func Eliminated(s *world.State, side core.Side) bool {
	for _, u := range s.Units(side) {
		if !u.IsDead() {
			return false
		}
	}
	return true
}
