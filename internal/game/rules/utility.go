package rules

import (
	"github.com/mitchelldurbincs/SquadMinimax/internal/game/core"
	"github.com/mitchelldurbincs/SquadMinimax/internal/game/world"
)

// Weights scales each utility feature. The zero value scores every state 0.
type Weights struct {
	PlayerHitpoints float64
	EnemyHitpoints  float64
	FriendliesAlive float64
	EnemiesAlive    float64
	EnemyCornered   float64
}

// Features are the raw heuristic inputs, always from the agent's point of view
type Features struct {
	PlayerHitpoints float64
	EnemyHitpoints  float64
	FriendliesAlive float64
	EnemiesAlive    float64
	// EnemyCornered sums, over live enemy units, the square of how many of
	// their four neighbours are blocked by a unit or obstacle.
	EnemyCornered float64
}

// Score returns the weighted linear combination of f
func (w Weights) Score(f Features) float64 {
	return w.PlayerHitpoints*f.PlayerHitpoints +
		w.EnemyHitpoints*f.EnemyHitpoints +
		w.FriendliesAlive*f.FriendliesAlive +
		w.EnemiesAlive*f.EnemiesAlive +
		w.EnemyCornered*f.EnemyCornered
}

// UtilityEvaluator scores non-terminal leaves for the search driver
type UtilityEvaluator struct {
	weights Weights
}

// NewUtilityEvaluator creates an evaluator with fixed weights
func NewUtilityEvaluator(weights Weights) *UtilityEvaluator {
	return &UtilityEvaluator{weights: weights}
}

// Weights returns the evaluator's weights
func (ue *UtilityEvaluator) Weights() Weights {
	return ue.weights
}

// Utility returns the weighted score of s
func (ue *UtilityEvaluator) Utility(s *world.State) float64 {
	return ue.weights.Score(ExtractFeatures(s))
}

// ExtractFeatures computes the utility features of s. Hitpoint totals include
// dead units' (non-positive) health.
func ExtractFeatures(s *world.State) Features {
	var f Features
	for _, u := range s.Units(core.SidePlayer) {
		f.PlayerHitpoints += float64(u.Health)
		if !u.IsDead() {
			f.FriendliesAlive++
		}
	}

	occ := s.Occupancy()
	for _, u := range s.Units(core.SideEnemy) {
		f.EnemyHitpoints += float64(u.Health)
		if u.IsDead() {
			continue
		}
		f.EnemiesAlive++
		blocked := float64(occ.BlockedNeighbors(u.Pos))
		f.EnemyCornered += blocked * blocked
	}
	return f
}
