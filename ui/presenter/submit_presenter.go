package presenter

import (
	"log/slog"
	"os"

	"github.com/snapsolve/snapsolve-go/domain/geometry"
	"github.com/snapsolve/snapsolve-go/domain/region"
)

// SessionOps narrows the FSM input surface the submit presenter needs.
type SessionOps interface {
	EventImageChosen(src *region.SourceImage)
	EventFrameLaidOut(frame geometry.DisplayFrame)
	EventConfirmSelection(rect geometry.SelectionRect)
	EventCancelSelection()
	EventTextSubmitted(text string)
	EventReset()
}

// BusyGate reports whether a solve is outstanding. All submission entry
// points are gated on it; the FSM enforces the same rule, the gate just keeps
// the controls honest before the event reaches it.
type BusyGate interface{ Busy() bool }

// Snapper grabs the screen as a problem source.
type Snapper func() (*region.SourceImage, error)

// SubmitPresenter owns presentation logic for everything that starts or
// discards a request: open image, snap screen, selection confirm/cancel, text
// submit, reset.
type SubmitPresenter struct {
	fsm    SessionOps
	gate   BusyGate
	snap   Snapper
	logger *slog.Logger
}

func NewSubmitPresenter(fsm SessionOps, gate BusyGate, snap Snapper, logger *slog.Logger) *SubmitPresenter {
	return &SubmitPresenter{fsm: fsm, gate: gate, snap: snap, logger: logger}
}

// OpenImageFile reads and decodes a problem image chosen in the file dialog.
func (p *SubmitPresenter) OpenImageFile(path string) {
	if p == nil || p.fsm == nil || path == "" || p.blocked() {
		return
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		p.logErr("read image file", err)
		return
	}
	src, err := region.Decode(raw)
	if err != nil {
		p.logErr("decode image file", err)
		return
	}
	p.fsm.EventImageChosen(src)
}

// SnapScreen captures the screen and feeds it in as the problem image.
func (p *SubmitPresenter) SnapScreen() {
	if p == nil || p.fsm == nil || p.snap == nil || p.blocked() {
		return
	}
	src, err := p.snap()
	if err != nil {
		p.logErr("screen snap", err)
		return
	}
	p.fsm.EventImageChosen(src)
}

// FrameLaidOut forwards the preview geometry once the image is displayed.
func (p *SubmitPresenter) FrameLaidOut(frame geometry.DisplayFrame) {
	if p == nil || p.fsm == nil {
		return
	}
	p.fsm.EventFrameLaidOut(frame)
}

// ConfirmSelection submits a completed drag rectangle.
func (p *SubmitPresenter) ConfirmSelection(rect geometry.SelectionRect) {
	if p == nil || p.fsm == nil || p.blocked() {
		return
	}
	if !rect.Complete() {
		return
	}
	p.fsm.EventConfirmSelection(rect)
}

// CancelSelection discards the pending selection.
func (p *SubmitPresenter) CancelSelection() {
	if p == nil || p.fsm == nil {
		return
	}
	p.fsm.EventCancelSelection()
}

// SubmitText sends a typed problem.
func (p *SubmitPresenter) SubmitText(text string) {
	if p == nil || p.fsm == nil || p.blocked() {
		return
	}
	p.fsm.EventTextSubmitted(text)
}

// Reset clears a finished session.
func (p *SubmitPresenter) Reset() {
	if p == nil || p.fsm == nil || p.blocked() {
		return
	}
	p.fsm.EventReset()
}

func (p *SubmitPresenter) blocked() bool { return p.gate != nil && p.gate.Busy() }

func (p *SubmitPresenter) logErr(msg string, err error) {
	if p.logger != nil {
		p.logger.Error(msg, "error", err)
	}
}
