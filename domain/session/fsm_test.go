package session

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/snapsolve/snapsolve-go/domain/geometry"
	"github.com/snapsolve/snapsolve-go/domain/handle"
	"github.com/snapsolve/snapsolve-go/domain/region"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// mockSolver counts calls and replies with a canned result. When gate is
// non-nil the call blocks until the gate closes, keeping the FSM in
// Processing for concurrency assertions.
type mockSolver struct {
	mu         sync.Mutex
	imageCalls int
	textCalls  int
	solution   string
	err        error
	gate       chan struct{}
}

func (m *mockSolver) SolveImage(ctx context.Context, payload, mediaType string) (string, error) {
	m.mu.Lock()
	m.imageCalls++
	gate := m.gate
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return m.solution, m.err
}

func (m *mockSolver) SolveText(ctx context.Context, problem string) (string, error) {
	m.mu.Lock()
	m.textCalls++
	gate := m.gate
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return m.solution, m.err
}

func (m *mockSolver) calls() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.imageCalls, m.textCalls
}

func newTestFSM(solver Solver) (*FSM, *handle.Registry) {
	reg := handle.NewRegistry()
	f := NewFSM(discardLogger, reg, solver, ExtractOptions{Density: 1, MediaType: "image/png"})
	return f, reg
}

func testImage(t *testing.T, w, h int) *region.SourceImage {
	t.Helper()
	src, err := region.FromRaster(image.NewRGBA(image.Rect(0, 0, w, h)), "image/png")
	if err != nil {
		t.Fatalf("fixture image: %v", err)
	}
	return src
}

// waitForState waits up to timeout for the FSM to reach expected state.
func waitForState(t *testing.T, f *FSM, expected State, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if f.Current() == expected {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for state %v (got %v)", expected, f.Current())
}

// drive pushes the image through Selecting into Processing.
func confirmFullFrame(t *testing.T, f *FSM, src *region.SourceImage) {
	t.Helper()
	f.EventImageChosen(src)
	waitForState(t, f, StateSelecting, time.Second)
	f.EventFrameLaidOut(geometry.DisplayFrame{
		DisplayW: src.NaturalW / 2, DisplayH: src.NaturalH / 2,
		NaturalW: src.NaturalW, NaturalH: src.NaturalH,
	})
	f.EventConfirmSelection(geometry.SelectionRect{X: 0, Y: 0, W: src.NaturalW / 4, H: src.NaturalH / 4})
}

func TestFSM_TextSolveSuccess(t *testing.T) {
	solver := &mockSolver{solution: "## Final Answer\n$$x=5$$"}
	f, _ := newTestFSM(solver)
	defer f.Close()

	f.EventTextSubmitted("2x+5=15")
	waitForState(t, f, StateSuccess, time.Second)

	snap := f.Snapshot()
	if snap.Solution != "## Final Answer\n$$x=5$$" {
		t.Fatalf("solution not stored verbatim: %q", snap.Solution)
	}
	if snap.Origin.Kind != OriginText || snap.Origin.Text != "2x+5=15" {
		t.Fatalf("origin should be Text(2x+5=15), got %v %q", snap.Origin.Kind, snap.Origin.Text)
	}
	if _, texts := solver.calls(); texts != 1 {
		t.Fatalf("expected exactly one text solve, got %d", texts)
	}
}

func TestFSM_ImageSolveFailureMessage(t *testing.T) {
	solver := &mockSolver{err: errors.New("rate limited")}
	f, _ := newTestFSM(solver)
	defer f.Close()

	confirmFullFrame(t, f, testImage(t, 200, 100))
	waitForState(t, f, StateFailed, time.Second)

	snap := f.Snapshot()
	if snap.FailMessage != "rate limited" {
		t.Fatalf("failed state must carry the message, got %q", snap.FailMessage)
	}
	if snap.Origin.Kind != OriginImage || snap.Origin.Region == nil {
		t.Fatalf("origin should be Image with retained region, got %v", snap.Origin.Kind)
	}
	if snap.RegionHandle.Zero() {
		t.Fatalf("origin display handle must stay retained in Failed")
	}
}

func TestFSM_EmptyFailureMessageFallback(t *testing.T) {
	solver := &mockSolver{err: errors.New("  ")}
	f, _ := newTestFSM(solver)
	defer f.Close()

	f.EventTextSubmitted("1+1")
	waitForState(t, f, StateFailed, time.Second)
	if msg := f.Snapshot().FailMessage; msg != fallbackFailMessage {
		t.Fatalf("blank collaborator message must map to fallback, got %q", msg)
	}
}

func TestFSM_ZeroRectKeepsSelecting(t *testing.T) {
	solver := &mockSolver{solution: "unused"}
	f, reg := newTestFSM(solver)
	defer f.Close()

	src := testImage(t, 100, 100)
	f.EventImageChosen(src)
	waitForState(t, f, StateSelecting, time.Second)
	f.EventFrameLaidOut(geometry.DisplayFrame{DisplayW: 100, DisplayH: 100, NaturalW: 100, NaturalH: 100})
	f.EventConfirmSelection(geometry.SelectionRect{X: 10, Y: 10, W: 0, H: 40})

	// extraction fails synchronously inside the loop; give it a beat
	time.Sleep(50 * time.Millisecond)
	snap := f.Snapshot()
	if snap.State != StateSelecting {
		t.Fatalf("extraction failure must keep Selecting, got %v", snap.State)
	}
	if snap.SelectionErr == "" {
		t.Fatalf("selection-stage error must be surfaced")
	}
	if snap.SourceHandle.Zero() || reg.Live() != 1 {
		t.Fatalf("source image must survive a failed crop: handle=%q live=%d", snap.SourceHandle, reg.Live())
	}
	if imgs, _ := solver.calls(); imgs != 0 {
		t.Fatalf("no solve may be issued after failed extraction")
	}
}

func TestFSM_SecondSubmissionWhileProcessingRejected(t *testing.T) {
	gate := make(chan struct{})
	solver := &mockSolver{solution: "x=1", gate: gate}
	f, _ := newTestFSM(solver)
	defer f.Close()

	f.EventTextSubmitted("first")
	waitForState(t, f, StateProcessing, time.Second)

	// all submission paths must be no-ops while one solve is outstanding
	f.EventTextSubmitted("second")
	f.EventImageChosen(testImage(t, 50, 50))
	f.EventReset()
	time.Sleep(50 * time.Millisecond)
	if f.Current() != StateProcessing {
		t.Fatalf("state left Processing: %v", f.Current())
	}

	close(gate)
	waitForState(t, f, StateSuccess, time.Second)
	if imgs, texts := solver.calls(); imgs != 0 || texts != 1 {
		t.Fatalf("exactly one solve may be in flight: image=%d text=%d", imgs, texts)
	}
}

func TestFSM_CancelSelectionReleasesHandle(t *testing.T) {
	f, reg := newTestFSM(&mockSolver{})
	defer f.Close()

	f.EventImageChosen(testImage(t, 80, 80))
	waitForState(t, f, StateSelecting, time.Second)
	if reg.Live() != 1 {
		t.Fatalf("expected one live source handle, got %d", reg.Live())
	}
	f.EventCancelSelection()
	waitForState(t, f, StateIdle, time.Second)
	if reg.Live() != 0 {
		t.Fatalf("cancel must release the source handle, live=%d", reg.Live())
	}
}

func TestFSM_ReplacingPendingImageReleasesPrior(t *testing.T) {
	f, reg := newTestFSM(&mockSolver{})
	defer f.Close()

	f.EventImageChosen(testImage(t, 80, 80))
	waitForState(t, f, StateSelecting, time.Second)
	first := f.Snapshot().SourceHandle

	f.EventImageChosen(testImage(t, 60, 60))
	time.Sleep(50 * time.Millisecond)
	snap := f.Snapshot()
	if snap.SourceHandle == first {
		t.Fatalf("source handle must be superseded on replacement")
	}
	if reg.Live() != 1 || reg.Released() != 1 {
		t.Fatalf("prior handle must be released on replacement: live=%d released=%d", reg.Live(), reg.Released())
	}
}

// Replacing a pending image invalidates the laid-out frame; once the new
// preview reports its geometry the replacement must be confirmable end to end.
func TestFSM_ReplacedImageConfirmableAfterRelayout(t *testing.T) {
	solver := &mockSolver{solution: "ok"}
	f, reg := newTestFSM(solver)
	defer f.Close()

	f.EventImageChosen(testImage(t, 80, 80))
	waitForState(t, f, StateSelecting, time.Second)
	f.EventFrameLaidOut(geometry.DisplayFrame{DisplayW: 40, DisplayH: 40, NaturalW: 80, NaturalH: 80})

	f.EventImageChosen(testImage(t, 60, 60))
	time.Sleep(50 * time.Millisecond)

	// the first image's frame is stale and must not be used for the new one
	f.EventConfirmSelection(geometry.SelectionRect{X: 0, Y: 0, W: 10, H: 10})
	time.Sleep(50 * time.Millisecond)
	snap := f.Snapshot()
	if snap.State != StateSelecting || snap.SelectionErr == "" {
		t.Fatalf("confirm before re-layout must stay Selecting with an error, got %v %q", snap.State, snap.SelectionErr)
	}

	f.EventFrameLaidOut(geometry.DisplayFrame{DisplayW: 30, DisplayH: 30, NaturalW: 60, NaturalH: 60})
	f.EventConfirmSelection(geometry.SelectionRect{X: 0, Y: 0, W: 15, H: 15})
	waitForState(t, f, StateSuccess, time.Second)
	if imageCalls, _ := solver.calls(); imageCalls != 1 {
		t.Fatalf("image solve calls = %d, want 1", imageCalls)
	}
	if reg.Live() != 1 {
		t.Fatalf("only the crop handle should remain live after success, live=%d", reg.Live())
	}
}

// The scripted lifecycle from the resource model: two image solves end to end
// must acquire and release exactly two source handles and two region handles,
// leaving none live.
func TestFSM_HandleLifecycleScript(t *testing.T) {
	solver := &mockSolver{solution: "$$x=5$$"}
	f, reg := newTestFSM(solver)
	defer f.Close()

	// image A: select, confirm, solve, reset
	confirmFullFrame(t, f, testImage(t, 300, 200))
	waitForState(t, f, StateSuccess, time.Second)
	f.EventReset()
	waitForState(t, f, StateIdle, time.Second)

	// image B: same round trip
	confirmFullFrame(t, f, testImage(t, 120, 90))
	waitForState(t, f, StateSuccess, time.Second)
	f.EventReset()
	waitForState(t, f, StateIdle, time.Second)

	if reg.Acquired() != 4 || reg.Released() != 4 {
		t.Fatalf("expected 2 source + 2 region handles, each released once: acquired=%d released=%d",
			reg.Acquired(), reg.Released())
	}
	if reg.Live() != 0 {
		t.Fatalf("final live-handle count must be 0, got %d", reg.Live())
	}
	snap := f.Snapshot()
	if snap.Origin.Kind != OriginNone || snap.Solution != "" || snap.FailMessage != "" {
		t.Fatalf("reset must clear result state: %+v", snap)
	}
}

func TestFSM_SourceHandleSupersededByCrop(t *testing.T) {
	gate := make(chan struct{})
	solver := &mockSolver{solution: "ok", gate: gate}
	f, reg := newTestFSM(solver)
	defer f.Close()

	confirmFullFrame(t, f, testImage(t, 100, 100))
	waitForState(t, f, StateProcessing, time.Second)
	snap := f.Snapshot()
	if !snap.SourceHandle.Zero() {
		t.Fatalf("source preview handle must be released after successful extraction")
	}
	if snap.RegionHandle.Zero() || reg.Live() != 1 {
		t.Fatalf("exactly the crop handle should be live: live=%d", reg.Live())
	}
	close(gate)
	waitForState(t, f, StateSuccess, time.Second)
}

func TestFSM_ConfirmOutsideSelectingIgnored(t *testing.T) {
	f, _ := newTestFSM(&mockSolver{})
	defer f.Close()
	f.EventConfirmSelection(geometry.SelectionRect{X: 0, Y: 0, W: 10, H: 10})
	f.EventCancelSelection()
	time.Sleep(30 * time.Millisecond)
	if f.Current() != StateIdle {
		t.Fatalf("idle session must ignore selection events, got %v", f.Current())
	}
}

func TestFSM_BlankTextIgnored(t *testing.T) {
	solver := &mockSolver{}
	f, _ := newTestFSM(solver)
	defer f.Close()
	f.EventTextSubmitted("   ")
	time.Sleep(30 * time.Millisecond)
	if f.Current() != StateIdle {
		t.Fatalf("blank text must not start a solve, got %v", f.Current())
	}
	if _, texts := solver.calls(); texts != 0 {
		t.Fatalf("no solve expected for blank text")
	}
}
