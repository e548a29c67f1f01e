package region

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/snapsolve/snapsolve-go/domain/geometry"
)

// Extraction failure modes. Both are terminal for the attempt; there is no
// retry inside the extractor.
var (
	ErrInvalidRegion        = errors.New("invalid region: empty after mapping")
	ErrRenderingUnavailable = errors.New("rendering unavailable: no drawable surface")
)

// Extract crops rect out of src and re-encodes it at device-native resolution.
// The destination raster is allocated at rect.W*density x rect.H*density so a
// high-density display gets a crop it can show without upscaling, while the
// sampled region is still exactly rect in source space. A single Catmull-Rom
// blit does the resample; the payload is then encoded to mediaType at the
// encoder's default quality and returned base64-encoded.
func Extract(src *SourceImage, rect geometry.SourceRect, density float64, mediaType string) (*ExtractedRegion, error) {
	if rect.W <= 0 || rect.H <= 0 {
		return nil, ErrInvalidRegion
	}
	if src == nil || src.Raster == nil {
		return nil, ErrRenderingUnavailable
	}
	if density < 1 {
		density = 1
	}

	dstW := int(math.Round(rect.W * density))
	dstH := int(math.Round(rect.H * density))
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	b := src.Raster.Bounds()
	srcRect := image.Rect(
		b.Min.X+int(math.Round(rect.X)),
		b.Min.Y+int(math.Round(rect.Y)),
		b.Min.X+int(math.Round(rect.X+rect.W)),
		b.Min.Y+int(math.Round(rect.Y+rect.H)),
	)
	if srcRect.Empty() {
		return nil, ErrInvalidRegion
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src.Raster, srcRect, xdraw.Src, nil)

	out, err := encode(dst, mediaType)
	if err != nil {
		return nil, err
	}
	return &ExtractedRegion{
		Payload:   base64.StdEncoding.EncodeToString(out),
		MediaType: mediaType,
		W:         dstW,
		H:         dstH,
	}, nil
}

// encode serializes img to the requested media type at default quality.
func encode(img image.Image, mediaType string) ([]byte, error) {
	var buf bytes.Buffer
	switch mediaType {
	case "image/png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRenderingUnavailable, err)
		}
	case "image/jpeg":
		if err := jpeg.Encode(&buf, img, nil); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRenderingUnavailable, err)
		}
	default:
		return nil, fmt.Errorf("%w: cannot encode %q", ErrRenderingUnavailable, mediaType)
	}
	return buf.Bytes(), nil
}
