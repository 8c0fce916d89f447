package game

import "sync/atomic"

// Stats is a snapshot of the engine's counters
type Stats struct {
	Expansions int64 // calls to Successors that completed
	Generated  int64 // joint actions applied during those expansions
	Rejected   int64 // successors dropped by validation
	Terminals  int64 // IsTerminal calls that found a finished state
	Violations int64 // transitions aborted by a caller error
}

// Accepted returns how many successors survived validation
func (s Stats) Accepted() int64 {
	return s.Generated - s.Rejected
}

type engineStats struct {
	expansions atomic.Int64
	generated  atomic.Int64
	rejected   atomic.Int64
	terminals  atomic.Int64
	violations atomic.Int64
}

func (es *engineStats) record(generated, rejected int) {
	es.expansions.Add(1)
	es.generated.Add(int64(generated))
	es.rejected.Add(int64(rejected))
}

// Stats returns the counters accumulated since the engine was created
func (e *Engine) Stats() Stats {
	return Stats{
		Expansions: e.stats.expansions.Load(),
		Generated:  e.stats.generated.Load(),
		Rejected:   e.stats.rejected.Load(),
		Terminals:  e.stats.terminals.Load(),
		Violations: e.stats.violations.Load(),
	}
}
