package masks

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/nvr-ai/go-cutout/images"
)

// Ramp thresholds used to re-harden the smoothed outline.
const (
	rampLow  = 64
	rampHigh = 192
)

// OutlineOptions tune Outline.
type OutlineOptions struct {
	// Expand pads the canvas by the stroke width on every side so a subject
	// touching the border keeps a full stroke. The output is then larger than
	// the input.
	Expand bool
}

// Outline surrounds the visible pixels of img with a solid stroke.
//
// The stroke is the alpha mask dilated by width pixels, softened with a small
// gaussian and ramped back to a near-binary edge, then flooded with c. The
// original image is drawn over it.
//
// Arguments:
// - img: The subject.
// - width: Stroke width in pixels. Non-positive widths return img.
// - c: Stroke color.
// - opts: Canvas options.
//
// Returns:
// - A new raster; the same size as img unless opts.Expand is set.
//
// @example
// stroked := masks.Outline(subject, 12, colors.ParseHex("#FFFFFF"), masks.OutlineOptions{})
func Outline(img *images.Image, width float64, c color.NRGBA, opts OutlineOptions) *images.Image {
	r := int(math.Round(width))
	if r < 1 || img.IsEmpty() {
		return img
	}

	src := img.Pixels
	if opts.Expand {
		src = imaging.Paste(image.NewNRGBA(image.Rect(0, 0, img.Width()+2*r, img.Height()+2*r)), src, image.Pt(r, r))
	}
	base := img.Derive(src)

	mask := Dilate(AlphaMask(base), r)
	mask = Ramp(Smooth(mask, math.Max(1, width*0.08)), rampLow, rampHigh)

	stroke := Flood(mask, c)
	return base.Derive(imaging.Overlay(stroke.Pixels, src, image.Point{}, 1))
}
