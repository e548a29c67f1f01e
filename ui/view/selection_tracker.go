package view

import (
	"github.com/snapsolve/snapsolve-go/domain/geometry"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// SelectionTracker turns mouse drags over the preview label into a selection
// rectangle in display pixels. The rectangle is clamped to the laid-out
// preview bounds; mapping to source coordinates happens elsewhere.
type SelectionTracker interface {
	BindTo(target *LabelWidget)
	SetBounds(frame geometry.DisplayFrame)
	Rect() (geometry.SelectionRect, bool)
	Clear()
}

type selectionTracker struct {
	bounds   geometry.DisplayFrame
	startX   int
	startY   int
	dragging bool
	rect     geometry.SelectionRect
	have     bool
	onChange func(rect geometry.SelectionRect, final bool)
}

// NewSelectionTracker creates a tracker. onChange receives the live rectangle
// during the drag and once more with final=true on release; it may be nil.
func NewSelectionTracker(onChange func(rect geometry.SelectionRect, final bool)) SelectionTracker {
	return &selectionTracker{onChange: onChange}
}

// BindTo attaches the drag handlers. All callbacks run on the Tk thread.
func (t *selectionTracker) BindTo(target *LabelWidget) {
	if t == nil || target == nil {
		return
	}
	Bind(target, "<ButtonPress-1>", Command(func(e *Event) { t.begin(int(e.X), int(e.Y)) }))
	Bind(target, "<B1-Motion>", Command(func(e *Event) { t.extend(int(e.X), int(e.Y), false) }))
	Bind(target, "<ButtonRelease-1>", Command(func(e *Event) { t.extend(int(e.X), int(e.Y), true) }))
}

func (t *selectionTracker) SetBounds(frame geometry.DisplayFrame) {
	if t == nil {
		return
	}
	if frame != t.bounds {
		t.bounds = frame
		t.Clear()
	}
}

// Rect returns the last completed rectangle, if any.
func (t *selectionTracker) Rect() (geometry.SelectionRect, bool) {
	if t == nil || !t.have {
		return geometry.SelectionRect{}, false
	}
	return t.rect, true
}

func (t *selectionTracker) Clear() {
	if t == nil {
		return
	}
	t.dragging = false
	t.have = false
	t.rect = geometry.SelectionRect{}
}

func (t *selectionTracker) begin(x, y int) {
	if t.bounds.DisplayW <= 0 || t.bounds.DisplayH <= 0 {
		return
	}
	t.startX, t.startY = t.clamp(x, y)
	t.dragging = true
	t.have = false
}

func (t *selectionTracker) extend(x, y int, final bool) {
	if !t.dragging {
		return
	}
	cx, cy := t.clamp(x, y)
	t.rect = normalizedRect(t.startX, t.startY, cx, cy)
	if final {
		t.dragging = false
		t.have = t.rect.Complete()
	}
	if t.onChange != nil {
		t.onChange(t.rect, final)
	}
}

func (t *selectionTracker) clamp(x, y int) (int, int) {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x > t.bounds.DisplayW {
		x = t.bounds.DisplayW
	}
	if y > t.bounds.DisplayH {
		y = t.bounds.DisplayH
	}
	return x, y
}

// normalizedRect builds a selection from two drag corners in any order.
func normalizedRect(x0, y0, x1, y1 int) geometry.SelectionRect {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	return geometry.SelectionRect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}
