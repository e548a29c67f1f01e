package view

import (
	"bytes"
	"image"
	"log/slog"
	"strings"

	"github.com/snapsolve/snapsolve-go/config"
	"github.com/snapsolve/snapsolve-go/domain/geometry"
	"github.com/snapsolve/snapsolve-go/ui/images"
	"github.com/snapsolve/snapsolve-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Callbacks are the user actions the view forwards to presenters.
type Callbacks struct {
	OpenImage    func(path string)
	SnapScreen   func()
	FrameLaidOut func(frame geometry.DisplayFrame)
	Confirm      func(rect geometry.SelectionRect)
	Cancel       func()
	SubmitText   func(problem string)
	Reset        func()
	CopySolution func(text string)
	Exit         func()
}

// RootView composes the top-level application layout and wires UI callbacks.
// It owns the subviews and implements the presenter-side view contracts.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
	cb      Callbacks

	// Subviews
	Stats    SolveStatsBar
	Problem  ProblemPanel
	Solution SolutionPanel
	tracker  SelectionTracker

	// Widgets
	StateLabel   *LabelWidget
	selLabel     *LabelWidget
	pathField    *TextWidget
	problemField *TextWidget

	busyWidgets []*ButtonWidget
	lastPlain   string
}

const selHint = "Drag over the preview to select the problem region"

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

// Build constructs the layout. Handlers are invoked on user actions.
func (rv *RootView) Build(cb Callbacks) {
	if rv == nil {
		return
	}
	rv.cb = cb

	// Row 0: state label, stats, command buttons
	pal := theme.CurrentPalette()
	rv.StateLabel = Label(Txt("State: Idle"), Background(pal.Accent), Foreground("white"), Borderwidth(1), Relief("groove"))
	Grid(rv.StateLabel, Row(0), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.3m"))
	rv.Stats = NewSolveStatsBar(nil, 0, 1)

	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(4), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	resetBtn := Button(Txt("Reset"), Command(func() { rv.call(cb.Reset) }))
	Grid(resetBtn, In(btnFrame), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	copyBtn := Button(Txt("Copy Solution"), Command(func() {
		if cb.CopySolution != nil {
			cb.CopySolution(rv.lastPlain)
		}
	}))
	Grid(copyBtn, In(btnFrame), Row(1), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	darkBtn := Button(Txt("Dark Mode"), Command(rv.toggleDark))
	Grid(darkBtn, In(btnFrame), Row(2), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	exitBtn := Button(Txt("Exit"), Command(func() { rv.call(cb.Exit) }))
	Grid(exitBtn, In(btnFrame), Row(3), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))

	// Row 1: image sources
	imgLbl := Label(Txt("Image file:"), Anchor("w"))
	Grid(imgLbl, Row(1), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
	rv.pathField = Text(Height(1), Width(48))
	Grid(rv.pathField, Row(1), Column(1), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
	openBtn := Button(Txt("Open Image"), Command(func() {
		if cb.OpenImage != nil {
			cb.OpenImage(strings.TrimSpace(rv.fieldText(rv.pathField)))
		}
	}))
	Grid(openBtn, Row(1), Column(3), Sticky("we"), Padx("0.2m"), Pady("0.15m"))
	snapBtn := Button(Txt("Snap Screen"), Command(func() { rv.call(cb.SnapScreen) }))
	Grid(snapBtn, Row(1), Column(4), Sticky("we"), Padx("0.2m"), Pady("0.15m"))

	// Row 2: typed problem
	probLbl := Label(Txt("Problem:"), Anchor("w"))
	Grid(probLbl, Row(2), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
	rv.problemField = Text(Height(2), Width(48))
	Grid(rv.problemField, Row(2), Column(1), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
	solveBtn := Button(Txt("Solve Text"), Command(func() {
		if cb.SubmitText != nil {
			cb.SubmitText(rv.fieldText(rv.problemField))
		}
	}))
	Grid(solveBtn, Row(2), Column(3), Sticky("we"), Padx("0.2m"), Pady("0.15m"))

	// Row 3: selection controls
	rv.selLabel = Label(Txt(selHint), Anchor("w"))
	Grid(rv.selLabel, Row(3), Column(0), Columnspan(3), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
	confirmBtn := Button(Txt("Confirm Selection"), Command(rv.confirmSelection))
	Grid(confirmBtn, Row(3), Column(3), Sticky("we"), Padx("0.2m"), Pady("0.15m"))
	cancelBtn := Button(Txt("Cancel"), Command(func() { rv.call(cb.Cancel) }))
	Grid(cancelBtn, Row(3), Column(4), Sticky("we"), Padx("0.2m"), Pady("0.15m"))

	// Rows 4-5: problem and solution panels
	rv.Problem = NewProblemPanel(4)
	rv.Solution = NewSolutionPanel(5)
	rv.tracker = NewSelectionTracker(rv.selectionChanged)
	rv.tracker.BindTo(rv.Problem.PreviewLabel())

	GridColumnConfigure(App, 1, Weight(1))
	GridRowConfigure(App, 5, Weight(1))

	// Submission entry points are disabled while a solve runs.
	rv.busyWidgets = []*ButtonWidget{openBtn, snapBtn, solveBtn, confirmBtn, resetBtn}
}

func (rv *RootView) call(fn func()) {
	if fn != nil {
		fn()
	}
}

func (rv *RootView) confirmSelection() {
	if rv == nil || rv.tracker == nil || rv.cb.Confirm == nil {
		return
	}
	if rect, ok := rv.tracker.Rect(); ok {
		rv.cb.Confirm(rect)
	}
}

func (rv *RootView) selectionChanged(rect geometry.SelectionRect, final bool) {
	if rv == nil || rv.selLabel == nil {
		return
	}
	rv.selLabel.Configure(Txt("Selection: " + rect.String()))
}

func (rv *RootView) toggleDark() {
	if rv == nil {
		return
	}
	dark := theme.ToggleDark()
	if rv.cfg != nil {
		rv.cfg.Dark = dark
		_ = rv.cfg.Save(rv.cfgPath)
	}
}

func (rv *RootView) fieldText(w *TextWidget) string {
	if w == nil {
		return ""
	}
	parts := w.Get("1.0", END)
	return strings.TrimRight(strings.Join(parts, ""), "\n")
}

// --- StatePresenter view contract ---

// SetStateLabel updates the state label text.
func (rv *RootView) SetStateLabel(text string) {
	if rv != nil && rv.StateLabel != nil {
		rv.StateLabel.Configure(Txt(text))
	}
}

// ShowSolution renders the solver output into the solution panel.
func (rv *RootView) ShowSolution(solutionText string) {
	if rv == nil || rv.Solution == nil {
		return
	}
	rv.lastPlain = solutionText
	rv.Solution.ShowSolution(solutionText)
}

// ShowFailure displays the failure message.
func (rv *RootView) ShowFailure(message string) {
	if rv != nil && rv.Solution != nil {
		rv.Solution.ShowFailure(message)
	}
}

// ShowSelectionError surfaces extraction failures next to the selection
// controls; an empty message restores the hint.
func (rv *RootView) ShowSelectionError(message string) {
	if rv == nil || rv.selLabel == nil {
		return
	}
	if message == "" {
		rv.selLabel.Configure(Txt(selHint))
		return
	}
	rv.selLabel.Configure(Txt("Selection failed: " + message))
}

// ShowSourcePreview decodes the source image, scales it to the preview frame
// and reports the resulting display geometry.
func (rv *RootView) ShowSourcePreview(imageBytes []byte) {
	if rv == nil || rv.Problem == nil {
		return
	}
	img, err := decodeImage(imageBytes)
	if err != nil {
		if rv.logger != nil {
			rv.logger.Error("decode source preview", "error", err)
		}
		return
	}
	b := img.Bounds()
	maxW, maxH := 760, 520
	if rv.cfg != nil {
		maxW, maxH = rv.cfg.PreviewMaxW, rv.cfg.PreviewMaxH
	}
	frame := images.FitFrame(b.Dx(), b.Dy(), maxW, maxH)
	rv.Problem.ShowSource(images.ScaleToFrame(img, frame))
	if rv.tracker != nil {
		rv.tracker.SetBounds(frame)
	}
	if rv.cb.FrameLaidOut != nil {
		rv.cb.FrameLaidOut(frame)
	}
}

// ShowRegionPreview displays the cropped region that was submitted.
func (rv *RootView) ShowRegionPreview(imageBytes []byte) {
	if rv == nil || rv.Problem == nil {
		return
	}
	img, err := decodeImage(imageBytes)
	if err != nil {
		if rv.logger != nil {
			rv.logger.Error("decode region preview", "error", err)
		}
		return
	}
	rv.Problem.ShowRegion(img)
}

// ShowProblemText displays the typed problem that was submitted.
func (rv *RootView) ShowProblemText(problem string) {
	if rv != nil && rv.Problem != nil {
		rv.Problem.ShowText(problem)
	}
}

// ResetPanels restores the idle layout.
func (rv *RootView) ResetPanels() {
	if rv == nil {
		return
	}
	rv.lastPlain = ""
	if rv.Problem != nil {
		rv.Problem.Reset()
	}
	if rv.Solution != nil {
		rv.Solution.Reset()
	}
	if rv.tracker != nil {
		rv.tracker.Clear()
	}
	if rv.selLabel != nil {
		rv.selLabel.Configure(Txt(selHint))
	}
}

// ControlsBusy disables the submission controls while a solve runs.
func (rv *RootView) ControlsBusy(busy bool) {
	if rv == nil {
		return
	}
	state := "normal"
	if busy {
		state = "disabled"
	}
	for _, w := range rv.busyWidgets {
		if w != nil {
			w.Configure(State(state))
		}
	}
}

// --- StatsPresenter view contract ---

// SetStats updates the solve counters line.
func (rv *RootView) SetStats(text string) {
	if rv != nil && rv.Stats != nil {
		rv.Stats.SetStats(text)
	}
}

func decodeImage(blob []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(blob))
	return img, err
}
