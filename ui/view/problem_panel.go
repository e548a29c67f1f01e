package view

import (
	"image"

	"github.com/snapsolve/snapsolve-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ProblemPanel shows the pending problem: the scaled source image while a
// selection is in progress, then the cropped region or the typed text once a
// request has been submitted.
type ProblemPanel interface {
	ShowSource(img image.Image)
	ShowRegion(img image.Image)
	ShowText(problem string)
	Reset()
	// PreviewLabel exposes the widget drag bindings attach to.
	PreviewLabel() *LabelWidget
}

type problemPanel struct {
	previewLabel *LabelWidget
	textLabel    *LabelWidget
	prevPhoto    *Img // last Tk photo instance shown in the preview
}

// Internal state tracks the current photo so we can dispose the old image
// before replacing it, preventing accumulation of off-screen image data.

// NewProblemPanel creates the preview label and the typed-problem label,
// grids them at the given row and returns the view.
func NewProblemPanel(row int) ProblemPanel {
	placeholder := image.NewRGBA(image.Rect(0, 0, 320, 180))
	photo := NewPhoto(Data(images.EncodePNG(placeholder)))
	// The drag bindings report label-relative pointer coordinates. The label
	// must hug the image at the cell origin with no border or padding, and
	// must not stretch across the cell: a stretched label centers its image,
	// which would shift every selection by the centering margin.
	preview := Label(Image(photo), Borderwidth(0), Padx(0), Pady(0))
	Grid(preview, Row(row), Column(0), Columnspan(4), Sticky("nw"), Padx("0.4m"), Pady("0.4m"))
	text := Label(Txt(""), Anchor("nw"))
	Grid(text, Row(row), Column(4), Sticky("nwe"), Padx("0.4m"), Pady("0.4m"))
	return &problemPanel{previewLabel: preview, textLabel: text, prevPhoto: photo}
}

func (v *problemPanel) ShowSource(img image.Image) { v.setPreview(img) }

func (v *problemPanel) ShowRegion(img image.Image) { v.setPreview(img) }

func (v *problemPanel) ShowText(problem string) {
	if v == nil || v.textLabel == nil {
		return
	}
	v.textLabel.Configure(Txt(problem))
}

func (v *problemPanel) Reset() {
	if v == nil {
		return
	}
	placeholder := image.NewRGBA(image.Rect(0, 0, 320, 180))
	v.setPreview(placeholder)
	v.ShowText("")
}

func (v *problemPanel) PreviewLabel() *LabelWidget {
	if v == nil {
		return nil
	}
	return v.previewLabel
}

func (v *problemPanel) setPreview(img image.Image) {
	if v == nil || v.previewLabel == nil || img == nil {
		return
	}
	pngBytes := images.EncodePNG(img)
	// Replace the previous photo to avoid retaining obsolete pixel buffers.
	if v.prevPhoto != nil {
		v.prevPhoto.Delete()
	}
	photo := NewPhoto(Data(pngBytes))
	v.prevPhoto = photo
	v.previewLabel.Configure(Image(photo))
}
