package app

import (
	"fmt"
	"log/slog"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/snapsolve/snapsolve-go/config"
	"github.com/snapsolve/snapsolve-go/ui/presenter"
	"github.com/snapsolve/snapsolve-go/ui/theme"
	"github.com/snapsolve/snapsolve-go/ui/view"
)

const tick = 100 * time.Millisecond

type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	c       *AppContainer
	afterID string
}

// NewApp wires the main window around an assembled container.
func NewApp(title string, cfg *config.Config, c *AppContainer, logger *slog.Logger) *app {
	a := &app{cfg: cfg, logger: logger, c: c}
	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	w := cfg.PreviewMaxW + 260
	h := cfg.PreviewMaxH + 380
	WmGeometry(App, fmt.Sprintf("%dx%d+80+80", w, h))
	return a
}

// Start builds the widget tree, kicks off the update loop and blocks until
// the window closes. Must run on the main goroutine.
func (a *app) Start() {
	theme.SetDark(a.cfg.Dark)

	a.c.RootView.Build(view.Callbacks{
		OpenImage:    a.c.Submit.OpenImageFile,
		SnapScreen:   a.c.Submit.SnapScreen,
		FrameLaidOut: a.c.Submit.FrameLaidOut,
		Confirm:      a.c.Submit.ConfirmSelection,
		Cancel:       a.c.Submit.CancelSelection,
		SubmitText:   a.c.Submit.SubmitText,
		Reset:        a.c.Submit.Reset,
		CopySolution: a.copySolution,
		Exit:         a.exitHandler,
	})
	a.c.Loop = presenter.NewLoop(a.c.State, a.c.StatsP, a.scheduleUpdate)

	a.scheduleUpdate()
	App.Wait()
}

func (a *app) scheduleUpdate() {
	// Schedule the next tick via TclAfter to stay on Tk's event loop thread.
	a.afterID = TclAfter(tick, func() { a.c.Loop.Tick() })
}

func (a *app) copySolution(text string) {
	if text == "" {
		return
	}
	if err := copyToClipboard(text); err != nil && a.logger != nil {
		a.logger.Warn("copy solution to clipboard", "error", err)
	}
}

func (a *app) exitHandler() {
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
		a.afterID = ""
	}
	if a.c != nil && a.c.FSM != nil {
		a.c.FSM.Close()
	}
	Destroy(App)
}
