// Package sticker turns a cut-out subject into a square sticker and encodes it
// under a file-size budget.
package sticker

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-cutout/images"
	"github.com/nvr-ai/go-cutout/masks"
)

// Defaults for Prepare.
const (
	DefaultSize   = 512
	DefaultMargin = 0.03
	// outlineReference is the sticker edge outline widths are authored against.
	outlineReference = 512.0
)

// Options configures Prepare.
type Options struct {
	// Size is the edge of the square canvas in pixels. Zero selects 512.
	Size int
	// Margin is the empty border on each side as a fraction of Size. Negative
	// selects 0.03.
	Margin float64
	// OutlineWidth is in design units against a 512px sticker; zero disables it.
	OutlineWidth float64
	OutlineColor color.NRGBA
}

// DefaultOptions returns a 512px sticker with a 3% margin and no outline.
func DefaultOptions() Options {
	return Options{Size: DefaultSize, Margin: DefaultMargin}
}

func (o Options) size() int {
	if o.Size <= 0 {
		return DefaultSize
	}
	return o.Size
}

func (o Options) margin() float64 {
	if o.Margin < 0 || o.Margin >= 0.5 {
		return DefaultMargin
	}
	return o.Margin
}

// Prepare trims img to its visible content, strokes it with an outline scaled
// to the sticker size and aspect-fits the result into a transparent square
// with a margin, centered.
//
// Arguments:
// - img: The subject, usually a transparent composite.
// - opts: Canvas size, margin and outline.
//
// Returns:
// - A Size x Size image.
// - masks.ErrFullyTransparent when img has no visible pixel.
//
// @example
// sq, err := sticker.Prepare(subject, sticker.Options{Size: 512, Margin: 0.03, OutlineWidth: 6, OutlineColor: white})
func Prepare(img *images.Image, opts Options) (*images.Image, error) {
	trimmed, err := masks.Trim(img)
	if err != nil {
		return nil, errors.Wrap(err, "sticker trim")
	}

	size := opts.size()
	if opts.OutlineWidth > 0 {
		width := opts.OutlineWidth * float64(size) / outlineReference
		trimmed = masks.Outline(trimmed, width, opts.OutlineColor, masks.OutlineOptions{Expand: true})
	}

	margin := opts.margin() * float64(size)
	inner := int(math.Floor(float64(size) - 2*margin))
	if inner < 1 {
		return nil, errors.Errorf("sticker size %d leaves no room inside the margin", size)
	}
	fitted := images.Fit(trimmed, inner, inner, images.LanczosFilter)

	canvas := image.NewNRGBA(image.Rect(0, 0, size, size))
	pos := image.Pt((size-fitted.Width())/2, (size-fitted.Height())/2)
	return img.Derive(imaging.Paste(canvas, fitted.Pixels, pos)), nil
}
