package monitoring

import (
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/SquadMinimax/internal/game"
)

// StatsSource is anything that reports engine counters
type StatsSource interface {
	Stats() game.Stats
}

// Metrics is one progress sample
type Metrics struct {
	Goroutines     int           `json:"goroutines"`
	PeakGoroutines int           `json:"peak_goroutines"`
	Expansions     int64         `json:"expansions"`
	Generated      int64         `json:"generated"`
	Rejected       int64         `json:"rejected"`
	ExpansionRate  float64       `json:"expansion_rate"` // expansions per second since the previous sample
	Elapsed        time.Duration `json:"elapsed"`
}

// ProgressMonitor periodically logs how fast a search is expanding states
// and how many goroutines it keeps alive
type ProgressMonitor struct {
	source   StatsSource
	interval time.Duration
	logger   zerolog.Logger

	mu       sync.Mutex
	started  time.Time
	peak     int
	last     game.Stats
	lastAt   time.Time
	stopChan chan struct{}
	done     chan struct{}
}

// NewProgressMonitor creates a monitor sampling source every interval
func NewProgressMonitor(source StatsSource, interval time.Duration) *ProgressMonitor {
	if interval <= 0 {
		interval = time.Second
	}
	now := time.Now()
	return &ProgressMonitor{
		source:   source,
		interval: interval,
		logger:   log.With().Str("component", "ProgressMonitor").Logger(),
		started:  now,
		lastAt:   now,
		peak:     runtime.NumGoroutine(),
	}
}

// Start begins sampling in the background
func (pm *ProgressMonitor) Start() {
	stop, done := make(chan struct{}), make(chan struct{})
	pm.mu.Lock()
	pm.stopChan, pm.done = stop, done
	pm.mu.Unlock()

	go pm.monitor(stop, done)
	pm.logger.Debug().Dur("interval", pm.interval).Msg("Started progress monitoring")
}

// Stop ends sampling and returns a final sample
func (pm *ProgressMonitor) Stop() Metrics {
	pm.mu.Lock()
	stop, done := pm.stopChan, pm.done
	pm.stopChan = nil
	pm.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	return pm.Sample()
}

func (pm *ProgressMonitor) monitor(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(pm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m := pm.Sample()
			pm.logger.Info().
				Int64("expansions", m.Expansions).
				Float64("expansions_per_sec", m.ExpansionRate).
				Int64("rejected", m.Rejected).
				Int("goroutines", m.Goroutines).
				Dur("elapsed", m.Elapsed).
				Msg("Search progress")
		case <-stop:
			return
		}
	}
}

// Sample reads the current counters and updates the peak goroutine count
func (pm *ProgressMonitor) Sample() Metrics {
	stats := pm.source.Stats()
	goroutines := runtime.NumGoroutine()
	now := time.Now()

	pm.mu.Lock()
	defer pm.mu.Unlock()

	if goroutines > pm.peak {
		pm.peak = goroutines
	}
	rate := 0.0
	if dt := now.Sub(pm.lastAt).Seconds(); dt > 0 {
		rate = float64(stats.Expansions-pm.last.Expansions) / dt
	}
	pm.last, pm.lastAt = stats, now

	return Metrics{
		Goroutines:     goroutines,
		PeakGoroutines: pm.peak,
		Expansions:     stats.Expansions,
		Generated:      stats.Generated,
		Rejected:       stats.Rejected,
		ExpansionRate:  rate,
		Elapsed:        now.Sub(pm.started),
	}
}
