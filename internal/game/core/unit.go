package core

import "fmt"

// Side identifies one of the two factions
type Side int

const (
	// SidePlayer is the squad controlled by the agent
	SidePlayer Side = iota
	// SideEnemy holds every other observed unit
	SideEnemy
)

// Opponent returns the other side
func (s Side) Opponent() Side {
	if s == SidePlayer {
		return SideEnemy
	}
	return SidePlayer
}

func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "player"
	case SideEnemy:
		return "enemy"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// Template holds the immutable stats of a unit. Snapshots of the same unit
// share one *Template; nothing may write through it after construction.
type Template struct {
	BasicAttack    int
	PiercingAttack int
	Armor          int
	Range          int
	MaxHealth      int
}

// RawDamage is the magnitude a unit deals with one basic attack before armor
func (t *Template) RawDamage() int {
	return t.BasicAttack + t.PiercingAttack
}

// Unit is one snapshot of a unit inside a world state. It is a value type:
// copying a Unit never aliases position or health.
type Unit struct {
	ID       int
	Side     Side
	Template *Template
	Pos      Coordinate
	Health   int
}

// IsDead reports whether the unit's health has dropped to zero or below
func (u Unit) IsDead() bool {
	return u.Health <= 0
}

// MovedTo returns a copy of the unit at pos
func (u Unit) MovedTo(pos Coordinate) Unit {
	u.Pos = pos
	return u
}

// TakeDamage returns a copy of the unit after absorbing raw damage through armor.
// Damage below the unit's armor is fully absorbed.
func (u Unit) TakeDamage(raw int) Unit {
	u.Health -= ArmorReduce(raw, u.Template.Armor)
	return u
}

// ArmorReduce returns the health lost when raw damage hits the given armor
func ArmorReduce(raw, armor int) int {
	if raw < armor {
		return 0
	}
	return raw - armor
}

// InAttackRangeOf reports whether target is within the unit's own attack range
func (u Unit) InAttackRangeOf(target Unit) bool {
	return u.Pos.EuclideanDistanceTo(target.Pos) <= float64(u.Template.Range)
}

func (u Unit) String() string {
	return fmt.Sprintf("unit %d[%s] at %s hp=%d", u.ID, u.Side, u.Pos, u.Health)
}
