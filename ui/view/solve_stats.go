package view

import (
	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// SolveStatsBar displays the formatted solve counters line.
type SolveStatsBar interface {
	SetStats(text string)
}

type solveStatsBar struct {
	lbl *LabelWidget
}

// NewSolveStatsBar creates the stats label inside parent at (row, col).
func NewSolveStatsBar(parent *FrameWidget, row, col int) SolveStatsBar {
	s := &solveStatsBar{lbl: Label(Width(42), Anchor("w"))}
	if parent != nil {
		Grid(s.lbl, In(parent), Row(row), Column(col), Sticky("w"), Padx("0.2m"))
	} else {
		Grid(s.lbl, Row(row), Column(col), Sticky("w"), Padx("0.2m"))
	}
	s.lbl.Configure(Txt("Solves: 0 ok / 0 failed of 0"))
	return s
}

func (s *solveStatsBar) SetStats(text string) {
	if s == nil || s.lbl == nil {
		return
	}
	s.lbl.Configure(Txt(text))
}
