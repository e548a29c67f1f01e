package geometry

import "fmt"

// DisplayFrame describes how a source image is currently presented: the size of
// the on-screen preview and the natural pixel size of the image behind it. The
// preview may be scaled independently per axis, so X and Y carry their own
// scale factors.
type DisplayFrame struct {
	DisplayW, DisplayH int
	NaturalW, NaturalH int
}

// ScaleX returns naturalWidth/displayWidth.
func (f DisplayFrame) ScaleX() float64 { return float64(f.NaturalW) / float64(f.DisplayW) }

// ScaleY returns naturalHeight/displayHeight.
func (f DisplayFrame) ScaleY() float64 { return float64(f.NaturalH) / float64(f.DisplayH) }

// Valid reports whether all four dimensions are positive.
func (f DisplayFrame) Valid() bool {
	return f.DisplayW > 0 && f.DisplayH > 0 && f.NaturalW > 0 && f.NaturalH > 0
}

// SelectionRect is a user-drawn rectangle in display-pixel units of the preview.
type SelectionRect struct {
	X, Y, W, H int
}

// Complete reports whether the rectangle has positive area.
func (r SelectionRect) Complete() bool { return r.W > 0 && r.H > 0 }

// InBounds reports whether the rectangle lies fully inside the display frame.
// Presenters use this to reject a drag that escaped the preview widget before
// the rect reaches MapSelection.
func (r SelectionRect) InBounds(f DisplayFrame) bool {
	return r.X >= 0 && r.Y >= 0 && r.X+r.W <= f.DisplayW && r.Y+r.H <= f.DisplayH
}

func (r SelectionRect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.W, r.H, r.X, r.Y)
}

// SourceRect is a rectangle in source-image pixel space.
type SourceRect struct {
	X, Y, W, H float64
}

// MapSelection converts a selection drawn over the scaled preview into source
// pixel coordinates. X and Y scale independently; the preview need not preserve
// aspect ratio. The function is pure and performs no clamping: callers must
// hand in a rect satisfying SelectionRect's bounds invariant, in which case the
// result lies within [0,NaturalW] x [0,NaturalH].
func MapSelection(frame DisplayFrame, rect SelectionRect) SourceRect {
	sx, sy := frame.ScaleX(), frame.ScaleY()
	return SourceRect{
		X: float64(rect.X) * sx,
		Y: float64(rect.Y) * sy,
		W: float64(rect.W) * sx,
		H: float64(rect.H) * sy,
	}
}
