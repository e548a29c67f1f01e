package session

import (
	"context"
	"encoding/base64"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/snapsolve/snapsolve-go/domain/geometry"
	"github.com/snapsolve/snapsolve-go/domain/handle"
	"github.com/snapsolve/snapsolve-go/domain/region"
)

// fallbackFailMessage replaces collaborator failures that carry no message.
const fallbackFailMessage = "the solver did not return a result"

// ExtractOptions parameterize region extraction for the session.
type ExtractOptions struct {
	Density   float64 // device pixel density multiplier, >= 1
	MediaType string  // encode target for extracted regions
}

// FSM sequences capture, selection, submission, result and reset for one
// interactive session. All transitions run on a single event loop goroutine;
// between the two suspension points (extract encode, solve call) state changes
// are atomic with respect to user input. The FSM's transition logic is the
// sole caller of registry.Release.
type FSM struct {
	logger   *slog.Logger
	registry *handle.Registry
	solver   Solver
	opts     ExtractOptions

	mu        sync.Mutex
	state     State
	src       *region.SourceImage
	frame     geometry.DisplayFrame
	srcHandle handle.Handle
	regHandle handle.Handle
	origin    Origin
	solution  string
	failMsg   string
	selErr    string

	events    chan interface{}
	listeners []Listener
	closed    bool
}

// NewFSM constructs the session state machine and starts its event loop.
func NewFSM(logger *slog.Logger, registry *handle.Registry, solver Solver, opts ExtractOptions) *FSM {
	if opts.Density < 1 {
		opts.Density = 1
	}
	if opts.MediaType == "" {
		opts.MediaType = "image/png"
	}
	f := &FSM{
		logger:   logger,
		registry: registry,
		solver:   solver,
		opts:     opts,
		state:    StateIdle,
		events:   make(chan interface{}, 64),
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				if logger != nil {
					logger.Error("session fsm panic", "error", r, "stack", stack)
				}
			}
		}()
		f.loop()
	}()
	return f
}

// events
type (
	evtImageChosen      struct{ src *region.SourceImage }
	evtFrameLaidOut     struct{ frame geometry.DisplayFrame }
	evtConfirmSelection struct{ rect geometry.SelectionRect }
	evtCancelSelection  struct{}
	evtTextSubmitted    struct{ text string }
	evtSolveDone        struct {
		solution string
		err      error
	}
	evtReset       struct{}
	evtAddListener struct{ l Listener }
)

func (f *FSM) loop() {
	for ev := range f.events {
		switch e := ev.(type) {
		case evtAddListener:
			f.listeners = append(f.listeners, e.l)
		case evtImageChosen:
			f.handleImageChosen(e.src)
		case evtFrameLaidOut:
			f.handleFrameLaidOut(e.frame)
		case evtConfirmSelection:
			f.handleConfirmSelection(e.rect)
		case evtCancelSelection:
			f.handleCancelSelection()
		case evtTextSubmitted:
			f.handleTextSubmitted(e.text)
		case evtSolveDone:
			f.handleSolveDone(e.solution, e.err)
		case evtReset:
			f.handleReset()
		}
	}
}

// handleImageChosen accepts a new problem image from Idle, or replaces the
// pending one while Selecting. In any other state the prior submission still
// owns the session and the event is dropped.
func (f *FSM) handleImageChosen(src *region.SourceImage) {
	if src == nil {
		return
	}
	if f.state != StateIdle && f.state != StateSelecting {
		f.logDropped("image chosen")
		return
	}
	h, err := f.registry.Acquire(src.Raw)
	if err != nil {
		if f.logger != nil {
			f.logger.Error("acquire source handle", "error", err)
		}
		return
	}
	f.mu.Lock()
	if !f.srcHandle.Zero() { // replacing a pending selection
		f.releaseLocked(&f.srcHandle)
	}
	f.src = src
	f.srcHandle = h
	// frame is stale until the preview lays the new image out
	f.frame = geometry.DisplayFrame{}
	f.selErr = ""
	f.mu.Unlock()
	if f.logger != nil {
		f.logger.Info("image chosen", "natural_w", src.NaturalW, "natural_h", src.NaturalH, "media_type", src.MediaType)
	}
	f.transition(StateSelecting)
}

func (f *FSM) handleFrameLaidOut(frame geometry.DisplayFrame) {
	if f.state != StateSelecting || !frame.Valid() {
		return
	}
	f.mu.Lock()
	f.frame = frame
	f.mu.Unlock()
}

// handleConfirmSelection maps the completed selection to source pixels and
// runs extraction. Extraction failure keeps the session in Selecting with the
// source image intact so the user can retry the crop.
func (f *FSM) handleConfirmSelection(rect geometry.SelectionRect) {
	if f.state != StateSelecting {
		f.logDropped("confirm selection")
		return
	}
	f.mu.Lock()
	src, frame := f.src, f.frame
	f.mu.Unlock()
	if !frame.Valid() {
		f.setSelectionErr("preview not laid out yet")
		return
	}
	extracted, err := region.Extract(src, geometry.MapSelection(frame, rect), f.opts.Density, f.opts.MediaType)
	if err != nil {
		if f.logger != nil {
			f.logger.Error("region extraction failed", "rect", rect.String(), "error", err)
		}
		f.setSelectionErr(err.Error())
		return
	}
	crop, err := base64.StdEncoding.DecodeString(extracted.Payload)
	if err != nil {
		f.setSelectionErr(err.Error())
		return
	}
	h, err := f.registry.Acquire(crop)
	if err != nil {
		f.setSelectionErr(err.Error())
		return
	}

	f.mu.Lock()
	// The cropped preview supersedes the full-image preview; release the old
	// handle only now that extraction succeeded.
	f.releaseLocked(&f.srcHandle)
	f.src = nil
	f.regHandle = h
	f.origin = Origin{Kind: OriginImage, Region: extracted}
	f.selErr = ""
	f.mu.Unlock()

	f.transition(StateProcessing)
	go f.solveImage(extracted)
}

func (f *FSM) handleCancelSelection() {
	if f.state != StateSelecting {
		return
	}
	f.mu.Lock()
	f.releaseLocked(&f.srcHandle)
	f.src = nil
	f.selErr = ""
	f.mu.Unlock()
	f.transition(StateIdle)
}

// handleTextSubmitted skips the mapper/extractor entirely and goes straight to
// Processing. Only legal from Idle: re-submission after a result is a fresh
// transition through reset.
func (f *FSM) handleTextSubmitted(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if f.state != StateIdle {
		f.logDropped("text submitted")
		return
	}
	f.mu.Lock()
	f.origin = Origin{Kind: OriginText, Text: text}
	f.mu.Unlock()
	f.transition(StateProcessing)
	go f.solveText(text)
}

func (f *FSM) handleSolveDone(solution string, err error) {
	if f.state != StateProcessing {
		return
	}
	if err != nil {
		msg := strings.TrimSpace(err.Error())
		if msg == "" {
			msg = fallbackFailMessage
		}
		f.mu.Lock()
		f.failMsg = msg
		f.mu.Unlock()
		// origin's display handle stays retained for the failure panel
		f.transition(StateFailed)
		return
	}
	f.mu.Lock()
	f.solution = solution
	f.mu.Unlock()
	f.transition(StateSuccess)
}

func (f *FSM) handleReset() {
	if f.state != StateSuccess && f.state != StateFailed {
		return
	}
	f.mu.Lock()
	f.releaseLocked(&f.regHandle)
	f.releaseLocked(&f.srcHandle)
	f.src = nil
	f.origin = Origin{}
	f.solution = ""
	f.failMsg = ""
	f.selErr = ""
	f.frame = geometry.DisplayFrame{}
	f.mu.Unlock()
	f.transition(StateIdle)
}

func (f *FSM) solveImage(extracted *region.ExtractedRegion) {
	defer recoverLog(f.logger, "solve image goroutine panic")
	solution, err := f.solver.SolveImage(context.Background(), extracted.Payload, extracted.MediaType)
	f.events <- evtSolveDone{solution: solution, err: err}
}

func (f *FSM) solveText(text string) {
	defer recoverLog(f.logger, "solve text goroutine panic")
	solution, err := f.solver.SolveText(context.Background(), text)
	f.events <- evtSolveDone{solution: solution, err: err}
}

// releaseLocked releases *h if set and zeroes it. Caller holds f.mu.
func (f *FSM) releaseLocked(h *handle.Handle) {
	if h.Zero() {
		return
	}
	if err := f.registry.Release(*h); err != nil && f.logger != nil {
		f.logger.Error("handle release", "error", err)
	}
	*h = ""
}

func (f *FSM) setSelectionErr(msg string) {
	f.mu.Lock()
	f.selErr = msg
	f.mu.Unlock()
}

func (f *FSM) logDropped(event string) {
	if f.logger != nil {
		f.logger.Debug("event dropped in current state", "event", event, "state", f.state.String())
	}
}

func (f *FSM) transition(next State) {
	prev := f.state
	if prev == next {
		return
	}
	f.mu.Lock()
	f.state = next
	f.mu.Unlock()
	if f.logger != nil {
		f.logger.Debug("session state transition", "from", prev.String(), "to", next.String())
	}
	for _, l := range f.listeners {
		l(prev, next)
	}
}

// Public API implements Contract.

func (f *FSM) AddListener(l Listener) { f.events <- evtAddListener{l: l} }

func (f *FSM) Current() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *FSM) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{
		State:        f.state,
		Origin:       f.origin,
		Solution:     f.solution,
		FailMessage:  f.failMsg,
		SelectionErr: f.selErr,
		Frame:        f.frame,
		SourceHandle: f.srcHandle,
		RegionHandle: f.regHandle,
	}
}

func (f *FSM) EventImageChosen(src *region.SourceImage) { f.events <- evtImageChosen{src: src} }
func (f *FSM) EventFrameLaidOut(frame geometry.DisplayFrame) {
	f.events <- evtFrameLaidOut{frame: frame}
}
func (f *FSM) EventConfirmSelection(rect geometry.SelectionRect) {
	f.events <- evtConfirmSelection{rect: rect}
}
func (f *FSM) EventCancelSelection()       { f.events <- evtCancelSelection{} }
func (f *FSM) EventTextSubmitted(s string) { f.events <- evtTextSubmitted{text: s} }
func (f *FSM) EventReset()                 { f.events <- evtReset{} }

func (f *FSM) Close() {
	if f.closed {
		return
	}
	f.closed = true
	close(f.events)
}

func recoverLog(logger *slog.Logger, msg string) {
	if r := recover(); r != nil {
		if logger != nil {
			logger.Error(msg, "error", r)
		}
	}
}

// Ensure contract satisfaction
var _ Contract = (*FSM)(nil)
