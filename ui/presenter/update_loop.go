package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick on the sub-presenters and invokes a scheduler callback. The
// zero value is usable (methods are nil-safe).
type Loop struct {
	State    *StatePresenter
	Stats    *StatsPresenter
	Schedule func()
}

func NewLoop(state *StatePresenter, stats *StatsPresenter, schedule func()) *Loop {
	return &Loop{State: state, Stats: stats, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	// Drive the state presenter first so stats see fresh transition effects.
	if l.State != nil {
		l.State.Tick(now)
	}
	if l.Stats != nil {
		l.Stats.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
