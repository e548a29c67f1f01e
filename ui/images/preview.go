package images

import (
	"bytes"
	"image"
	"image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/snapsolve/snapsolve-go/domain/geometry"
)

// EncodePNG encodes an image to PNG bytes. Errors are ignored and may return
// an empty slice; the Tk photo constructor treats that as no image.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// FitFrame computes the preview geometry for a natural image size constrained
// to maxW x maxH, preserving aspect ratio and never upscaling. The returned
// frame carries both display and natural dimensions for selection mapping.
func FitFrame(naturalW, naturalH, maxW, maxH int) geometry.DisplayFrame {
	f := geometry.DisplayFrame{NaturalW: naturalW, NaturalH: naturalH, DisplayW: naturalW, DisplayH: naturalH}
	if naturalW < 1 || naturalH < 1 {
		return f
	}
	if maxW < 1 {
		maxW = 1
	}
	if maxH < 1 {
		maxH = 1
	}
	if naturalW <= maxW && naturalH <= maxH {
		return f
	}
	ratioW := float64(maxW) / float64(naturalW)
	ratioH := float64(maxH) / float64(naturalH)
	ratio := ratioW
	if ratioH < ratio {
		ratio = ratioH
	}
	f.DisplayW = int(float64(naturalW)*ratio + 0.5)
	f.DisplayH = int(float64(naturalH)*ratio + 0.5)
	if f.DisplayW < 1 {
		f.DisplayW = 1
	}
	if f.DisplayH < 1 {
		f.DisplayH = 1
	}
	return f
}

// ScaleToFrame resamples src to the frame's display size with a bilinear
// kernel. If the display size equals the natural size the source is returned
// as is.
func ScaleToFrame(src image.Image, frame geometry.DisplayFrame) image.Image {
	if src == nil {
		return nil
	}
	if frame.DisplayW == frame.NaturalW && frame.DisplayH == frame.NaturalH {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, frame.DisplayW, frame.DisplayH))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
