package compositor

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-cutout/colors"
	"github.com/nvr-ai/go-cutout/images"
	"github.com/nvr-ai/go-cutout/masks"
)

// shadowReference is the canvas extent, in pixels, shadow parameters are
// authored against.
const shadowReference = 1000.0

// Shadow describes a drop shadow in design units.
type Shadow struct {
	// Radius is the blur radius, >= 0.
	Radius float64
	// X and Y offset the shadow; positive Y moves it down.
	X, Y float64
	// Color of the shadow before Opacity is applied.
	Color color.NRGBA
	// Opacity in [0, 1].
	Opacity float64
}

// Active reports whether the shadow would draw anything.
func (s Shadow) Active() bool {
	return s.Radius > 0 || s.X != 0 || s.Y != 0
}

// ShadowGeometry is a shadow resolved to pixels for one canvas size.
type ShadowGeometry struct {
	Radius float64
	X, Y   float64
}

// ShadowScale returns max(width, height)/1000, the factor that keeps a shadow
// the same relative size at every output resolution.
func ShadowScale(width, height int) float64 {
	return float64(max(width, height)) / shadowReference
}

// ScaleShadow resolves a shadow to pixels for a width x height canvas.
//
// Arguments:
// - s: The shadow in design units.
// - width: Canvas width in pixels.
// - height: Canvas height in pixels.
//
// Returns:
// - Radius and offsets multiplied by ShadowScale(width, height).
//
// @example
// g := compositor.ScaleShadow(compositor.Shadow{Radius: 10, Y: 5}, 2000, 1500) // radius 20, y 10
func ScaleShadow(s Shadow, width, height int) ShadowGeometry {
	f := ShadowScale(width, height)
	return ShadowGeometry{Radius: s.Radius * f, X: s.X * f, Y: s.Y * f}
}

// ShadowMargins returns how far ApplyShadow grows each side of the canvas:
// radius*4 + |offset| per axis, rounded up.
func ShadowMargins(g ShadowGeometry) image.Point {
	return image.Pt(
		int(math.Ceil(g.Radius*4+math.Abs(g.X))),
		int(math.Ceil(g.Radius*4+math.Abs(g.Y))),
	)
}

// ApplyShadow adds a drop shadow to a transparent composite in a dedicated pass.
// The canvas grows by ShadowMargins on both sides of each axis so the blur is
// not clipped, and the image is re-centered in it.
//
// Arguments:
// - img: The composite, usually with a transparent background.
// - s: The shadow in design units, scaled by the size of img.
//
// Returns:
// - The expanded image with the shadow under it, or img when s is inactive.
// - ErrZeroAreaIntermediate when img is empty.
func ApplyShadow(img *images.Image, s Shadow) (*images.Image, error) {
	if img.IsEmpty() {
		return nil, errors.Wrap(ErrZeroAreaIntermediate, "shadow source")
	}
	if !s.Active() {
		return img, nil
	}

	g := ScaleShadow(s, img.Width(), img.Height())
	m := ShadowMargins(g)
	canvas := image.NewNRGBA(image.Rect(0, 0, img.Width()+2*m.X, img.Height()+2*m.Y))
	centered := img.Derive(imaging.Paste(canvas, img.Pixels, m))

	shadow := dropShadow(centered, g, s)
	return centered.Derive(imaging.Overlay(shadow.Pixels, centered.Pixels, image.Point{}, 1)), nil
}

// dropShadow renders the blurred, tinted and offset silhouette of layer on a
// transparent canvas of the same size. Shadow outside the canvas is clipped.
func dropShadow(layer *images.Image, g ShadowGeometry, s Shadow) *images.Image {
	mask := masks.AlphaMask(layer)
	if g.Radius > 0 {
		// The radius is a blur extent; the gaussian reaches it at two sigma.
		mask = masks.Smooth(mask, g.Radius/2)
	}
	tint := colors.WithOpacity(s.Color, s.Opacity)
	silhouette := masks.Flood(mask, tint)

	offset := image.Pt(int(math.Round(g.X)), int(math.Round(g.Y)))
	blank := image.NewNRGBA(layer.Bounds())
	return layer.Derive(imaging.Paste(blank, silhouette.Pixels, offset))
}
