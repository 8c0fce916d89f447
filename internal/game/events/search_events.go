package events

// Event type constants
const (
	TypeExpansionCompleted = "expansion.completed"
	TypeStateTerminal      = "state.terminal"
	TypeContractViolated   = "contract.violated"
)

// ExpansionCompletedEvent is published after the successors of a state are generated
type ExpansionCompletedEvent struct {
	BaseEvent
	Depth      int    `json:"depth"`
	ActiveSide string `json:"active_side"`
	Candidates int    `json:"candidates"`
	Rejected   int    `json:"rejected"`
}

// NewExpansionCompletedEvent creates a new ExpansionCompletedEvent
func NewExpansionCompletedEvent(searchID string, depth int, activeSide string, candidates, rejected int) *ExpansionCompletedEvent {
	return &ExpansionCompletedEvent{
		BaseEvent:  newBase(TypeExpansionCompleted, searchID),
		Depth:      depth,
		ActiveSide: activeSide,
		Candidates: candidates,
		Rejected:   rejected,
	}
}

// Accepted returns how many candidates survived validation
func (e *ExpansionCompletedEvent) Accepted() int {
	return e.Candidates - e.Rejected
}

// StateTerminalEvent is published when a terminal check finds a finished state
type StateTerminalEvent struct {
	BaseEvent
	Depth  int    `json:"depth"`
	Winner string `json:"winner"` // empty on a draw
}

// NewStateTerminalEvent creates a new StateTerminalEvent
func NewStateTerminalEvent(searchID string, depth int, winner string) *StateTerminalEvent {
	return &StateTerminalEvent{
		BaseEvent: newBase(TypeStateTerminal, searchID),
		Depth:     depth,
		Winner:    winner,
	}
}

// ContractViolatedEvent is published when a caller hands the engine a
// joint action it can never legally apply
type ContractViolatedEvent struct {
	BaseEvent
	Depth  int    `json:"depth"`
	UnitID int    `json:"unit_id"`
	Reason string `json:"reason"`
}

// NewContractViolatedEvent creates a new ContractViolatedEvent
func NewContractViolatedEvent(searchID string, depth, unitID int, reason string) *ContractViolatedEvent {
	return &ContractViolatedEvent{
		BaseEvent: newBase(TypeContractViolated, searchID),
		Depth:     depth,
		UnitID:    unitID,
		Reason:    reason,
	}
}
