package presenter

import (
	"sync"
	"time"

	"github.com/snapsolve/snapsolve-go/domain/handle"
	"github.com/snapsolve/snapsolve-go/domain/session"
	"github.com/snapsolve/snapsolve-go/ui/model"
)

// SessionSource provides the session FSM reads the presenter requires.
type SessionSource interface {
	Current() session.State
	Snapshot() session.Snapshot
}

// BlobSource dereferences live preview handles.
type BlobSource interface {
	Bytes(handle.Handle) ([]byte, error)
}

// ResultView is the subset of view operations the state presenter drives.
type ResultView interface {
	SetStateLabel(string)
	ShowSolution(solutionText string)
	ShowFailure(message string)
	ShowSelectionError(message string)
	ShowSourcePreview(imageBytes []byte)
	ShowRegionPreview(imageBytes []byte)
	ShowProblemText(problem string)
	ResetPanels()
	ControlsBusy(bool)
}

// StatePresenter receives session transitions and pending snapshots, and
// updates the view and the busy/stats models on each Tick.
type StatePresenter struct {
	fsm        SessionSource
	blobs      BlobSource
	busy       *model.BusyModel
	stats      *model.StatsModel
	view       ResultView
	latest     session.State
	started    bool // latest has been pushed once
	lastSel    string
	lastSource handle.Handle

	mu      sync.Mutex
	pending []transitionPair
}

type transitionPair struct{ prev, next session.State }

func NewStatePresenter(fsm SessionSource, blobs BlobSource, busy *model.BusyModel, stats *model.StatsModel, view ResultView) *StatePresenter {
	return &StatePresenter{fsm: fsm, blobs: blobs, busy: busy, stats: stats, view: view}
}

// OnState queues a transition from the FSM listener. Safe to call from the
// FSM goroutine; the queue is flushed on the Tk thread via Tick.
func (p *StatePresenter) OnState(prev, next session.State) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.pending = append(p.pending, transitionPair{prev: prev, next: next})
	p.mu.Unlock()
}

// Tick drains queued transitions, updates the busy flag and solve statistics,
// and reflects the current snapshot on the view.
func (p *StatePresenter) Tick(now time.Time) {
	if p == nil || p.fsm == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	queued := p.pending
	p.pending = nil
	p.mu.Unlock()
	changed := len(queued) > 0
	for _, tr := range queued {
		p.applyModels(tr, now)
	}

	snap := p.fsm.Snapshot()
	switch {
	case !p.started || changed || snap.State != p.latest:
		p.started = true
		p.latest = snap.State
		p.reflect(snap)
	case snap.State == session.StateSelecting && snap.SourceHandle != p.lastSource:
		// choosing a replacement image stays in Selecting, so no transition
		// fires; the new source still needs its preview pushed and the frame
		// laid out again
		p.reflect(snap)
	case snap.State == session.StateSelecting && snap.SelectionErr != p.lastSel:
		// extraction failures surface without a state transition
		p.lastSel = snap.SelectionErr
		p.view.ShowSelectionError(snap.SelectionErr)
	}
}

func (p *StatePresenter) applyModels(tr transitionPair, now time.Time) {
	if tr.next == session.StateProcessing {
		p.busy.SetBusy(true)
		p.stats.OnSolveStart(now)
	}
	if tr.prev == session.StateProcessing {
		p.busy.SetBusy(false)
		p.stats.OnSolveEnd(tr.next == session.StateSuccess, now)
	}
}

func (p *StatePresenter) reflect(snap session.Snapshot) {
	p.view.SetStateLabel("State: " + snap.State.String())
	p.view.ControlsBusy(snap.State == session.StateProcessing)
	p.lastSel = snap.SelectionErr
	p.lastSource = snap.SourceHandle

	switch snap.State {
	case session.StateIdle:
		p.view.ResetPanels()
	case session.StateSelecting:
		if blob, err := p.blobs.Bytes(snap.SourceHandle); err == nil {
			p.view.ShowSourcePreview(blob)
		}
		p.view.ShowSelectionError(snap.SelectionErr)
	case session.StateProcessing, session.StateSuccess, session.StateFailed:
		p.reflectOrigin(snap)
		if snap.State == session.StateSuccess {
			p.view.ShowSolution(snap.Solution)
		}
		if snap.State == session.StateFailed {
			p.view.ShowFailure(snap.FailMessage)
		}
	}
}

// reflectOrigin fills the left-hand problem panel from the request origin.
func (p *StatePresenter) reflectOrigin(snap session.Snapshot) {
	switch snap.Origin.Kind {
	case session.OriginImage:
		if blob, err := p.blobs.Bytes(snap.RegionHandle); err == nil {
			p.view.ShowRegionPreview(blob)
		}
	case session.OriginText:
		p.view.ShowProblemText(snap.Origin.Text)
	}
}
