package presenter

import (
	"fmt"
	"time"

	"github.com/snapsolve/snapsolve-go/ui/model"
)

// StatsView displays the formatted solve statistics line.
type StatsView interface {
	SetStats(text string)
}

// StatsPresenter formats solve counters from the model to the view.
type StatsPresenter struct {
	stats *model.StatsModel
	view  StatsView
	last  string
}

// NewStatsPresenter returns a new StatsPresenter.
func NewStatsPresenter(stats *model.StatsModel, view StatsView) *StatsPresenter {
	return &StatsPresenter{stats: stats, view: view}
}

// Tick pushes the current counters to the view when they changed.
func (p *StatsPresenter) Tick(now time.Time) {
	if p == nil || p.stats == nil || p.view == nil {
		return
	}
	v := p.stats.Values()
	line := fmt.Sprintf("Solves: %d ok / %d failed of %d", v.Successes, v.Failures, v.Attempts)
	if v.LastLatency > 0 {
		line += fmt.Sprintf(" (last %s)", v.LastLatency.Round(100*time.Millisecond))
	}
	if line != p.last {
		p.last = line
		p.view.SetStats(line)
	}
}
