package region

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	// register decoders for the formats a user may open
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// SourceImage is an immutable problem image supplied by the user: the decoded
// raster, the original encoded bytes and the natural pixel dimensions. Never
// mutated after construction; ownership stays with the session until it is
// superseded or discarded.
type SourceImage struct {
	Raster    image.Image
	Raw       []byte
	NaturalW  int
	NaturalH  int
	MediaType string
}

// ExtractedRegion is the cropped, re-encoded sub-image ready for submission:
// a base64 payload with an explicit media type and the raster dimensions of
// the encoded crop.
type ExtractedRegion struct {
	Payload   string // base64, no data-URL prefix
	MediaType string
	W, H      int
}

// ErrUnsupportedFormat is returned by Decode for content that is not a
// PNG/JPEG/GIF image.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Decode builds a SourceImage from encoded bytes. The format is sniffed from
// the content; the raw bytes are retained for preview handles.
func Decode(raw []byte) (*SourceImage, error) {
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	b := img.Bounds()
	return &SourceImage{
		Raster:    img,
		Raw:       raw,
		NaturalW:  b.Dx(),
		NaturalH:  b.Dy(),
		MediaType: "image/" + format,
	}, nil
}

// FromRaster wraps an already-decoded raster (for example a screen snap),
// encoding it once so Raw and the preview handle have stable bytes.
func FromRaster(img image.Image, mediaType string) (*SourceImage, error) {
	if img == nil {
		return nil, ErrRenderingUnavailable
	}
	raw, err := encode(img, mediaType)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &SourceImage{
		Raster:    img,
		Raw:       raw,
		NaturalW:  b.Dx(),
		NaturalH:  b.Dy(),
		MediaType: mediaType,
	}, nil
}
