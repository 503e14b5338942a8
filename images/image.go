// Package images - Raster definition shared by every compositing stage.
package images

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"

	"github.com/cespare/xxhash/v2"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// ErrEmptyImage is returned when an operation receives a nil or zero-area raster.
var ErrEmptyImage = errors.New("empty image")

// Orientation describes how the stored pixels must be turned to display upright.
// The values follow the EXIF orientation tag.
type Orientation int

const (
	// OrientationUp is the stored orientation.
	OrientationUp Orientation = iota + 1
	// OrientationUpMirrored is flipped horizontally.
	OrientationUpMirrored
	// OrientationDown is rotated 180 degrees.
	OrientationDown
	// OrientationDownMirrored is flipped vertically.
	OrientationDownMirrored
	// OrientationLeftMirrored is transposed.
	OrientationLeftMirrored
	// OrientationRight needs a 90 degree clockwise turn.
	OrientationRight
	// OrientationRightMirrored is transversed.
	OrientationRightMirrored
	// OrientationLeft needs a 90 degree counter-clockwise turn.
	OrientationLeft
)

// Transposed reports whether displaying the image swaps its width and height.
func (o Orientation) Transposed() bool {
	return o >= OrientationLeftMirrored && o <= OrientationLeft
}

func (o Orientation) String() string {
	switch o {
	case OrientationUp:
		return "up"
	case OrientationUpMirrored:
		return "up-mirrored"
	case OrientationDown:
		return "down"
	case OrientationDownMirrored:
		return "down-mirrored"
	case OrientationLeftMirrored:
		return "left-mirrored"
	case OrientationRight:
		return "right"
	case OrientationRightMirrored:
		return "right-mirrored"
	case OrientationLeft:
		return "left"
	default:
		return fmt.Sprintf("orientation(%d)", int(o))
	}
}

// Image is an immutable RGBA raster with straight (non-premultiplied) alpha.
//
// Pixels are stored in buffer space. Scale maps logical points to buffer pixels
// and Orientation says how the buffer is displayed, so the logical size can
// differ from the buffer size. Stages never modify an Image they receive.
type Image struct {
	// Pixels is the buffer. Its bounds always start at (0, 0).
	Pixels *image.NRGBA
	// Scale is the number of buffer pixels per logical point.
	Scale float64
	// Orientation of the buffer relative to the upright display.
	Orientation Orientation
}

// New allocates a transparent image of the given pixel size at scale 1.
func New(width, height int) *Image {
	return &Image{
		Pixels:      image.NewNRGBA(image.Rect(0, 0, max(width, 0), max(height, 0))),
		Scale:       1,
		Orientation: OrientationUp,
	}
}

// Wrap adopts an NRGBA buffer without copying it. The caller must not modify
// the buffer afterwards.
func Wrap(pix *image.NRGBA) *Image {
	if pix != nil && pix.Rect.Min != (image.Point{}) {
		pix = imaging.Clone(pix)
	}
	return &Image{Pixels: pix, Scale: 1, Orientation: OrientationUp}
}

// FromImage converts any image.Image into an upright, scale 1 raster.
//
// Arguments:
// - src: The source image. Paletted, YCbCr and premultiplied images are converted.
//
// Returns:
// - A new Image that owns a copy of the pixels.
//
// @example
// img := images.FromImage(decoded)
// fmt.Println(img.Width(), img.Height())
func FromImage(src image.Image) *Image {
	if src == nil {
		return New(0, 0)
	}
	return &Image{Pixels: imaging.Clone(src), Scale: 1, Orientation: OrientationUp}
}

// Solid returns an image of the given size filled with c.
func Solid(width, height int, c color.Color) *Image {
	return &Image{Pixels: imaging.New(width, height, c), Scale: 1, Orientation: OrientationUp}
}

// Width returns the buffer width in pixels.
func (i *Image) Width() int {
	if i == nil || i.Pixels == nil {
		return 0
	}
	return i.Pixels.Rect.Dx()
}

// Height returns the buffer height in pixels.
func (i *Image) Height() int {
	if i == nil || i.Pixels == nil {
		return 0
	}
	return i.Pixels.Rect.Dy()
}

// Bounds returns the buffer rectangle.
func (i *Image) Bounds() image.Rectangle {
	if i == nil || i.Pixels == nil {
		return image.Rectangle{}
	}
	return i.Pixels.Rect
}

// IsEmpty reports whether the image has no pixels to draw.
func (i *Image) IsEmpty() bool {
	return i.Width() < 1 || i.Height() < 1
}

// PixelScale returns Scale, treating an unset scale as 1.
func (i *Image) PixelScale() float64 {
	if i == nil || i.Scale <= 0 {
		return 1
	}
	return i.Scale
}

// LogicalSize returns the displayed size in points: the buffer size divided by
// the scale, with the axes swapped for transposed orientations.
func (i *Image) LogicalSize() (width, height float64) {
	s := i.PixelScale()
	w, h := float64(i.Width())/s, float64(i.Height())/s
	if i != nil && i.Orientation.Transposed() {
		return h, w
	}
	return w, h
}

// Derive returns a new image holding pix with the receiver's scale. The
// orientation is reset to up since derived buffers are always produced upright.
func (i *Image) Derive(pix *image.NRGBA) *Image {
	out := Wrap(pix)
	out.Scale = i.PixelScale()
	return out
}

// Clone deep-copies the image.
func (i *Image) Clone() *Image {
	if i == nil {
		return nil
	}
	out := &Image{Scale: i.Scale, Orientation: i.Orientation}
	if i.Pixels != nil {
		out.Pixels = imaging.Clone(i.Pixels)
	}
	return out
}

// NRGBAAt returns the pixel at buffer coordinates (x, y).
func (i *Image) NRGBAAt(x, y int) color.NRGBA {
	return i.Pixels.NRGBAAt(x, y)
}

// IsOpaque reports whether every pixel has full alpha.
func (i *Image) IsOpaque() bool {
	if i.IsEmpty() {
		return false
	}
	return i.Pixels.Opaque()
}

// Checksum generates a deterministic digest of the dimensions and pixels, used
// to verify that two renders are byte-identical and to key render caches.
//
// Returns:
// - A 64-bit xxhash digest; 0 for an empty image.
//
// @example
//
//	if a.Checksum() != b.Checksum() {
//	    log.Printf("renders diverged")
//	}
func (i *Image) Checksum() uint64 {
	if i.IsEmpty() {
		return 0
	}
	d := xxhash.New()
	var hdr [16]byte
	binary.LittleEndian.PutUint64(hdr[0:], uint64(i.Width()))
	binary.LittleEndian.PutUint64(hdr[8:], uint64(i.Height()))
	_, _ = d.Write(hdr[:])
	rowSize := i.Width() * 4
	for y := 0; y < i.Height(); y++ {
		off := y * i.Pixels.Stride
		_, _ = d.Write(i.Pixels.Pix[off : off+rowSize])
	}
	return d.Sum64()
}

func (i *Image) String() string {
	if i == nil {
		return "Image(nil)"
	}
	return fmt.Sprintf("Image(%dx%d @%gx %s)", i.Width(), i.Height(), i.PixelScale(), i.Orientation)
}
