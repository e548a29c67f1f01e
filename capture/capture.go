// Package capture grabs one-shot screen snapshots used as problem sources,
// for when the math problem is on screen rather than in a file.
package capture

import (
	"image"

	"github.com/vova616/screenshot"
)

// Snap returns a capture of the current active monitor.
func Snap() (*image.RGBA, error) {
	img, err := screenshot.CaptureScreen()
	if err != nil {
		return nil, err
	}
	return img, nil
}

// SnapRect captures the given rectangle in screen coordinates.
func SnapRect(area image.Rectangle) (*image.RGBA, error) {
	img, err := screenshot.CaptureRect(area)
	if err != nil {
		return nil, err
	}
	return img, nil
}
