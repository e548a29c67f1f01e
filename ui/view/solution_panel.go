package view

import (
	"github.com/snapsolve/snapsolve-go/render"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// SolutionPanel displays the solver outcome: the rendered solution text on
// success, or the failure message.
type SolutionPanel interface {
	ShowSolution(markdown string)
	ShowFailure(message string)
	Reset()
}

type solutionPanel struct {
	text *TextWidget
}

// NewSolutionPanel creates the output text widget at the given row.
func NewSolutionPanel(row int) SolutionPanel {
	w := Text(Height(12), Width(80))
	Grid(w, Row(row), Column(0), Columnspan(5), Sticky("nswe"), Padx("0.4m"), Pady("0.4m"))
	w.Configure(State("disabled"))
	return &solutionPanel{text: w}
}

func (v *solutionPanel) ShowSolution(markdown string) { v.setText(render.Plain(markdown)) }

func (v *solutionPanel) ShowFailure(message string) { v.setText("Could not solve:\n" + message) }

func (v *solutionPanel) Reset() { v.setText("") }

func (v *solutionPanel) setText(s string) {
	if v == nil || v.text == nil {
		return
	}
	// The widget stays disabled outside of programmatic updates so the
	// rendered output is not editable.
	v.text.Configure(State("normal"))
	v.text.Delete("1.0", END)
	v.text.Insert("1.0", s)
	v.text.Configure(State("disabled"))
}
