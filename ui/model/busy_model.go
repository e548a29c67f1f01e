package model

import (
	"sync/atomic"
)

// BusyModel tracks whether a solve is outstanding. The zero value is idle and
// usable. Concurrency-safe via atomic Bool because FSM listeners and presenter
// ticks may race.
type BusyModel struct{ busy atomic.Bool }

// Busy reports whether a solve is currently in flight.
func (m *BusyModel) Busy() bool {
	if m == nil {
		return false
	}
	return m.busy.Load()
}

// SetBusy stores the busy flag.
func (m *BusyModel) SetBusy(b bool) {
	if m == nil {
		return
	}
	prev := m.busy.Load()
	if prev == b { // no change
		return
	}
	m.busy.Store(b)
}
