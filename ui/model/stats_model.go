package model

import (
	"sync"
	"time"
)

// SolveStats is a point-in-time copy of the counters.
type SolveStats struct {
	Attempts    int
	Successes   int
	Failures    int
	LastLatency time.Duration
}

// StatsModel accumulates solve attempt statistics across the session. It is
// decoupled from the UI; presenters read Values() and update views. The zero
// value is ready to use.
type StatsModel struct {
	mu        sync.Mutex
	solving   bool
	started   time.Time
	attempts  int
	successes int
	failures  int
	lastTook  time.Duration
}

// NewStatsModel returns a pointer to a ready-to-use StatsModel.
func NewStatsModel() *StatsModel { return &StatsModel{} }

// OnSolveStart marks the beginning of a solve attempt.
func (m *StatsModel) OnSolveStart(now time.Time) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.solving { // already counting this attempt
		return
	}
	m.solving = true
	m.started = now
	m.attempts++
}

// OnSolveEnd records the outcome of the in-flight attempt. Calls without a
// preceding OnSolveStart are ignored.
func (m *StatsModel) OnSolveEnd(success bool, now time.Time) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.solving {
		return
	}
	m.solving = false
	m.lastTook = now.Sub(m.started)
	if success {
		m.successes++
	} else {
		m.failures++
	}
}

// Values returns the current counters.
func (m *StatsModel) Values() SolveStats {
	if m == nil {
		return SolveStats{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return SolveStats{
		Attempts:    m.attempts,
		Successes:   m.successes,
		Failures:    m.failures,
		LastLatency: m.lastTook,
	}
}
