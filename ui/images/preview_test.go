package images

import (
	"image"
	"testing"
)

func TestFitFrame_NoUpscale(t *testing.T) {
	f := FitFrame(300, 200, 800, 600)
	if f.DisplayW != 300 || f.DisplayH != 200 {
		t.Fatalf("small image must keep natural size, got %dx%d", f.DisplayW, f.DisplayH)
	}
}

func TestFitFrame_DownscalePreservesAspect(t *testing.T) {
	f := FitFrame(1600, 1200, 800, 800)
	if f.DisplayW != 800 || f.DisplayH != 600 {
		t.Fatalf("expected 800x600, got %dx%d", f.DisplayW, f.DisplayH)
	}
	if f.NaturalW != 1600 || f.NaturalH != 1200 {
		t.Fatalf("natural dims must be carried: %dx%d", f.NaturalW, f.NaturalH)
	}
	if f.ScaleX() != 2 || f.ScaleY() != 2 {
		t.Fatalf("expected 2x scale factors, got %v/%v", f.ScaleX(), f.ScaleY())
	}
}

func TestFitFrame_HeightBound(t *testing.T) {
	f := FitFrame(1000, 2000, 800, 500)
	if f.DisplayH != 500 {
		t.Fatalf("height must bind, got %dx%d", f.DisplayW, f.DisplayH)
	}
	if f.DisplayW != 250 {
		t.Fatalf("width must follow aspect, got %d", f.DisplayW)
	}
}

func TestScaleToFrame(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 300))
	f := FitFrame(400, 300, 200, 200)
	out := ScaleToFrame(src, f)
	if out.Bounds().Dx() != f.DisplayW || out.Bounds().Dy() != f.DisplayH {
		t.Fatalf("scaled to %v, frame wants %dx%d", out.Bounds(), f.DisplayW, f.DisplayH)
	}
	// identity path returns the original
	idf := FitFrame(400, 300, 800, 800)
	if got := ScaleToFrame(src, idf); got != image.Image(src) {
		t.Fatalf("identity scale must return the source image")
	}
}

func TestEncodePNG(t *testing.T) {
	if EncodePNG(nil) != nil {
		t.Fatalf("nil image must encode to nil")
	}
	out := EncodePNG(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if len(out) == 0 {
		t.Fatalf("expected PNG bytes")
	}
}
