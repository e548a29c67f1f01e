package model

import (
	"testing"
	"time"
)

func TestStatsModel_BasicLifecycle(t *testing.T) {
	m := NewStatsModel()
	base := time.Unix(0, 0)

	// First attempt: 3s, success.
	m.OnSolveStart(base)
	m.OnSolveEnd(true, base.Add(3*time.Second))
	v := m.Values()
	if v.Attempts != 1 || v.Successes != 1 || v.Failures != 0 {
		t.Fatalf("after first attempt: %+v", v)
	}
	if v.LastLatency != 3*time.Second {
		t.Fatalf("expected 3s latency, got %v", v.LastLatency)
	}

	// Second attempt: 1s, failure.
	m.OnSolveStart(base.Add(10 * time.Second))
	m.OnSolveEnd(false, base.Add(11*time.Second))
	v = m.Values()
	if v.Attempts != 2 || v.Successes != 1 || v.Failures != 1 {
		t.Fatalf("after second attempt: %+v", v)
	}
	if v.LastLatency != time.Second {
		t.Fatalf("expected 1s latency, got %v", v.LastLatency)
	}
}

func TestStatsModel_DuplicateEventsIgnored(t *testing.T) {
	m := NewStatsModel()
	base := time.Unix(0, 0)

	m.OnSolveStart(base)
	m.OnSolveStart(base.Add(time.Second)) // duplicate start must not double count
	m.OnSolveEnd(true, base.Add(2*time.Second))
	m.OnSolveEnd(true, base.Add(3*time.Second)) // end without start is a no-op
	v := m.Values()
	if v.Attempts != 1 || v.Successes != 1 {
		t.Fatalf("duplicate events changed counters: %+v", v)
	}
	if v.LastLatency != 2*time.Second {
		t.Fatalf("latency must measure from first start: %v", v.LastLatency)
	}
}

func TestBusyModel(t *testing.T) {
	var m BusyModel
	if m.Busy() {
		t.Fatalf("zero value must be idle")
	}
	m.SetBusy(true)
	if !m.Busy() {
		t.Fatalf("expected busy")
	}
	m.SetBusy(true) // no change path
	m.SetBusy(false)
	if m.Busy() {
		t.Fatalf("expected idle after clear")
	}
}
