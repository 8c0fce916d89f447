package processor

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/SquadMinimax/internal/game/core"
	"github.com/mitchelldurbincs/SquadMinimax/internal/game/world"
)

// ActionProcessor applies one joint action to a world state
type ActionProcessor struct {
	logger zerolog.Logger
}

// NewActionProcessor creates a new action processor
func NewActionProcessor(logger zerolog.Logger) *ActionProcessor {
	return &ActionProcessor{
		logger: logger.With().Str("component", "ActionProcessor").Logger(),
	}
}

// Apply resolves joint for the active side of s and returns the successor.
//
// Resolution runs in two phases. First every active unit's position is
// settled: idle and attacking units stay put, moving units step into their
// destination when that cell is open in s. Moves are not checked against
// each other, so two units may land on one cell; the validator rejects such
// successors. Then attacks are resolved in ascending attacker id order
// against the settled positions.
//
// An entry for a unit on the idle side, or for a unit that does not exist,
// is a caller error and aborts the transition.
func (ap *ActionProcessor) Apply(s *world.State, joint core.JointAction) (*world.State, error) {
	active := s.Active()

	for _, id := range joint.UnitIDs() {
		action := joint[id]
		if action.UnitID != id {
			return nil, core.WrapActionError(action, fmt.Errorf("%w: keyed under unit %d", core.ErrUnknownUnit, id))
		}
		if _, ok := s.UnitOn(s.Idle(), id); ok {
			ap.logger.Error().Int("unit_id", id).Str("action", action.String()).Msg("Joint action names an idle unit")
			return nil, core.WrapActionError(action, core.ErrIdleSideAction)
		}
		if _, ok := s.UnitOn(active, id); !ok {
			return nil, core.WrapActionError(action, core.ErrUnknownUnit)
		}
		if err := checkAction(action); err != nil {
			return nil, core.WrapActionError(action, err)
		}
	}

	var next [2][]core.Unit
	next[active] = s.Units(active)
	next[active.Opponent()] = s.Units(active.Opponent())

	var attacks []core.Action
	movers := next[active]
	for i, u := range movers {
		action, ok := joint[u.ID]
		if !ok {
			continue
		}
		switch action.Type {
		case core.ActionAttack:
			attacks = append(attacks, action)
		case core.ActionMove:
			dest := u.Pos.Move(action.Direction)
			if s.IsOpen(dest) {
				movers[i] = u.MovedTo(dest)
			}
		}
	}

	for _, attack := range attacks {
		if err := resolveAttack(&next, active, attack); err != nil {
			return nil, core.WrapActionError(attack, err)
		}
	}

	child := s.Child(next[core.SidePlayer], next[core.SideEnemy], joint)
	ap.logger.Debug().
		Int("depth", child.Depth()).
		Str("acting_side", active.String()).
		Int("attacks", len(attacks)).
		Msg("Joint action applied")
	return child, nil
}

func checkAction(action core.Action) error {
	switch action.Type {
	case core.ActionMove:
		if !action.Direction.Valid() {
			return core.ErrInvalidDirection
		}
	case core.ActionAttack:
	default:
		return core.ErrUnknownActionType
	}
	return nil
}

// resolveAttack applies one attack. The range check measures the settled
// distance against the target's attack range, not the attacker's; out of
// range attacks do nothing. Targets are looked up on the idle side first and
// then on the acting side.
func resolveAttack(next *[2][]core.Unit, active core.Side, attack core.Action) error {
	ai, ok := find(next[active], attack.UnitID)
	if !ok {
		return fmt.Errorf("%w: attacker %d", core.ErrUnknownUnit, attack.UnitID)
	}
	attacker := next[active][ai]

	for _, side := range [...]core.Side{active.Opponent(), active} {
		if ti, ok := find(next[side], attack.TargetID); ok {
			target := next[side][ti]
			if attacker.Pos.EuclideanDistanceTo(target.Pos) <= float64(target.Template.Range) {
				next[side][ti] = target.TakeDamage(attacker.Template.RawDamage())
			}
			return nil
		}
	}
	return fmt.Errorf("%w: attack target %d", core.ErrUnknownUnit, attack.TargetID)
}

func find(units []core.Unit, id int) (int, bool) {
	for i, u := range units {
		if u.ID == id {
			return i, true
		}
	}
	return -1, false
}
