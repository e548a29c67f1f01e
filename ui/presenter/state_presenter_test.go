package presenter

import (
	"errors"
	"testing"
	"time"

	"github.com/snapsolve/snapsolve-go/domain/geometry"
	"github.com/snapsolve/snapsolve-go/domain/handle"
	"github.com/snapsolve/snapsolve-go/domain/region"
	"github.com/snapsolve/snapsolve-go/domain/session"
	"github.com/snapsolve/snapsolve-go/ui/model"
)

type mockSession struct{ snap session.Snapshot }

func (m *mockSession) Current() session.State     { return m.snap.State }
func (m *mockSession) Snapshot() session.Snapshot { return m.snap }

type mockBlobs struct{ blobs map[handle.Handle][]byte }

func (m *mockBlobs) Bytes(h handle.Handle) ([]byte, error) {
	if b, ok := m.blobs[h]; ok {
		return b, nil
	}
	return nil, errors.New("unknown handle")
}

type mockResultView struct {
	stateLabel  string
	solution    string
	failure     string
	selErr      string
	source      []byte
	regionBytes []byte
	problem     string
	resets      int
	busyCalls   []bool
}

func (v *mockResultView) SetStateLabel(s string)      { v.stateLabel = s }
func (v *mockResultView) ShowSolution(s string)       { v.solution = s }
func (v *mockResultView) ShowFailure(s string)        { v.failure = s }
func (v *mockResultView) ShowSelectionError(s string) { v.selErr = s }
func (v *mockResultView) ShowSourcePreview(b []byte)  { v.source = b }
func (v *mockResultView) ShowRegionPreview(b []byte)  { v.regionBytes = b }
func (v *mockResultView) ShowProblemText(s string)    { v.problem = s }
func (v *mockResultView) ResetPanels()                { v.resets++ }
func (v *mockResultView) ControlsBusy(b bool)         { v.busyCalls = append(v.busyCalls, b) }

func newStateFixture() (*mockSession, *mockBlobs, *model.BusyModel, *model.StatsModel, *mockResultView, *StatePresenter) {
	sess := &mockSession{snap: session.Snapshot{State: session.StateIdle}}
	blobs := &mockBlobs{blobs: map[handle.Handle][]byte{}}
	busy := &model.BusyModel{}
	stats := model.NewStatsModel()
	view := &mockResultView{}
	p := NewStatePresenter(sess, blobs, busy, stats, view)
	return sess, blobs, busy, stats, view, p
}

func TestStatePresenter_ProcessingTogglesBusyAndStats(t *testing.T) {
	sess, _, busy, stats, view, p := newStateFixture()
	base := time.Unix(0, 0)

	sess.snap = session.Snapshot{State: session.StateProcessing, Origin: session.Origin{Kind: session.OriginText, Text: "1+1"}}
	p.OnState(session.StateIdle, session.StateProcessing)
	p.Tick(base)
	if !busy.Busy() {
		t.Fatalf("busy flag must be set entering Processing")
	}
	if view.stateLabel != "State: processing" {
		t.Fatalf("state label %q", view.stateLabel)
	}
	if view.problem != "1+1" {
		t.Fatalf("text origin must fill the problem panel, got %q", view.problem)
	}

	sess.snap.State = session.StateSuccess
	sess.snap.Solution = "$$2$$"
	p.OnState(session.StateProcessing, session.StateSuccess)
	p.Tick(base.Add(2 * time.Second))
	if busy.Busy() {
		t.Fatalf("busy flag must clear after Processing")
	}
	v := stats.Values()
	if v.Attempts != 1 || v.Successes != 1 || v.LastLatency != 2*time.Second {
		t.Fatalf("stats not updated: %+v", v)
	}
	if view.solution != "$$2$$" {
		t.Fatalf("solution not pushed: %q", view.solution)
	}
}

func TestStatePresenter_FailureCountsAndShowsMessage(t *testing.T) {
	sess, _, _, stats, view, p := newStateFixture()
	sess.snap = session.Snapshot{State: session.StateProcessing, Origin: session.Origin{Kind: session.OriginText, Text: "x"}}
	p.OnState(session.StateIdle, session.StateProcessing)
	p.Tick(time.Unix(0, 0))

	sess.snap.State = session.StateFailed
	sess.snap.FailMessage = "rate limited"
	p.OnState(session.StateProcessing, session.StateFailed)
	p.Tick(time.Unix(1, 0))
	if view.failure != "rate limited" {
		t.Fatalf("failure message not shown: %q", view.failure)
	}
	if v := stats.Values(); v.Failures != 1 {
		t.Fatalf("failure not counted: %+v", v)
	}
}

func TestStatePresenter_SelectingShowsPreviewAndErrors(t *testing.T) {
	sess, blobs, _, _, view, p := newStateFixture()
	h := handle.Handle("h-src")
	blobs.blobs[h] = []byte("png-bytes")
	sess.snap = session.Snapshot{
		State:        session.StateSelecting,
		SourceHandle: h,
		Frame:        geometry.DisplayFrame{DisplayW: 100, DisplayH: 100, NaturalW: 200, NaturalH: 200},
	}
	p.OnState(session.StateIdle, session.StateSelecting)
	p.Tick(time.Unix(0, 0))
	if string(view.source) != "png-bytes" {
		t.Fatalf("source preview not pushed")
	}

	// extraction failure surfaces with no state transition
	sess.snap.SelectionErr = "invalid region: empty after mapping"
	p.Tick(time.Unix(1, 0))
	if view.selErr != sess.snap.SelectionErr {
		t.Fatalf("selection error not surfaced: %q", view.selErr)
	}
}

// Choosing a replacement image keeps the session in Selecting, so no
// transition is queued; the presenter must still notice the new source handle
// and push its preview so the frame gets laid out again.
func TestStatePresenter_ReplacedSourcePushesNewPreview(t *testing.T) {
	sess, blobs, _, _, view, p := newStateFixture()
	hA := handle.Handle("h-a")
	hB := handle.Handle("h-b")
	blobs.blobs[hA] = []byte("image-a")
	blobs.blobs[hB] = []byte("image-b")
	sess.snap = session.Snapshot{State: session.StateSelecting, SourceHandle: hA}
	p.OnState(session.StateIdle, session.StateSelecting)
	p.Tick(time.Unix(0, 0))
	if string(view.source) != "image-a" {
		t.Fatalf("first preview not pushed: %q", view.source)
	}

	sess.snap.SourceHandle = hB
	p.Tick(time.Unix(1, 0))
	if string(view.source) != "image-b" {
		t.Fatalf("replacement preview not pushed, view still shows %q", view.source)
	}
}

func TestStatePresenter_ImageOriginShowsRegionPreview(t *testing.T) {
	sess, blobs, _, _, view, p := newStateFixture()
	h := handle.Handle("h-crop")
	blobs.blobs[h] = []byte("crop-bytes")
	sess.snap = session.Snapshot{
		State:        session.StateSuccess,
		Solution:     "done",
		Origin:       session.Origin{Kind: session.OriginImage, Region: &region.ExtractedRegion{MediaType: "image/png", W: 10, H: 10}},
		RegionHandle: h,
	}
	p.OnState(session.StateProcessing, session.StateSuccess)
	p.Tick(time.Unix(0, 0))
	if string(view.regionBytes) != "crop-bytes" {
		t.Fatalf("region preview not pushed")
	}
}

func TestStatePresenter_IdleResetsPanels(t *testing.T) {
	sess, _, _, _, view, p := newStateFixture()
	sess.snap = session.Snapshot{State: session.StateIdle}
	p.OnState(session.StateSuccess, session.StateIdle)
	p.Tick(time.Unix(0, 0))
	if view.resets != 1 {
		t.Fatalf("reset must clear panels, resets=%d", view.resets)
	}
}
