package game

import "github.com/mitchelldurbincs/SquadMinimax/internal/game/world"

// ExpansionObserver is notified after every successful expansion. It is
// called on the expanding goroutine and must be safe for concurrent use
// when the engine is shared between workers.
type ExpansionObserver interface {
	OnExpansion(parent *world.State, children []Child)
}

// ExpansionObserverFunc adapts a function to ExpansionObserver
type ExpansionObserverFunc func(parent *world.State, children []Child)

// OnExpansion calls f
func (f ExpansionObserverFunc) OnExpansion(parent *world.State, children []Child) {
	f(parent, children)
}
