// Package compositor flattens a background, a transformed foreground, its
// outline and its drop shadow into one raster at the output canvas size.
package compositor

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/nvr-ai/go-cutout/common"
	"github.com/nvr-ai/go-cutout/images"
	"github.com/nvr-ai/go-cutout/masks"
)

// ErrZeroAreaIntermediate is returned when an input or an intermediate raster
// has no pixels. Callers fall back to the last good raster.
var ErrZeroAreaIntermediate = errors.New("zero-area intermediate raster")

// outlineReference is the canvas width outline widths are authored against.
const outlineReference = 512.0

// Outline is a solid stroke around the foreground.
type Outline struct {
	// Width in design units against a 512px wide canvas.
	Width float64
	Color color.NRGBA
}

// Params configures one composite.
type Params struct {
	// OutputSize is the canvas size in pixels. A zero size uses the
	// foreground's size.
	OutputSize image.Point
	// UIReferenceWidth is the width, in points, of the view the transforms
	// were authored in. Zero means transforms are already in pixels.
	UIReferenceWidth float64
	// Foreground and Background are the per-layer transforms.
	Foreground common.Transform
	Background common.Transform
	Shadow     Shadow
	Outline    Outline
	// BakeShadow draws the shadow under the foreground when a background is
	// present. Without a background the shadow is left to ApplyShadow.
	BakeShadow bool
}

// PixelScale converts UI points into output pixels: outputWidth divided by the
// UI reference width, or 1 when the reference is unknown.
func PixelScale(outputWidth int, uiReferenceWidth float64) float64 {
	if uiReferenceWidth <= 0 || outputWidth <= 0 {
		return 1
	}
	return float64(outputWidth) / uiReferenceWidth
}

// OutlineWidth converts a requested outline width into pixels for a canvas of
// the given width: requested * canvasWidth/512.
func OutlineWidth(requested float64, canvasWidth int) float64 {
	return requested * float64(canvasWidth) / outlineReference
}

// Composite draws the layers onto a canvas of p.OutputSize.
//
// The background is aspect-filled and centered, then moved by its layer
// transform. The foreground is aspect-fitted and centered, then moved by its
// own transform. Layer offsets are multiplied by PixelScale and scales are
// applied around the canvas center. An outline is added around the placed
// foreground, and when a background is present and p.BakeShadow is set a drop
// shadow is drawn beneath it.
//
// Arguments:
// - fg: The subject with alpha.
// - bg: The background, or nil for a transparent canvas.
// - p: Canvas size, transforms, shadow and outline.
//
// Returns:
// - The flattened raster carrying fg's scale.
// - ErrZeroAreaIntermediate if fg or the canvas is empty.
//
// @example
// out, err := compositor.Composite(subject, compositor.Background(spec, size), compositor.Params{OutputSize: size, BakeShadow: true})
func Composite(fg, bg *images.Image, p Params) (*images.Image, error) {
	if fg.IsEmpty() {
		return nil, errors.Wrap(ErrZeroAreaIntermediate, "foreground")
	}
	size := p.OutputSize
	if size == (image.Point{}) {
		size = fg.Bounds().Size()
	}
	if size.X < 1 || size.Y < 1 {
		return nil, errors.Wrapf(ErrZeroAreaIntermediate, "canvas %dx%d", size.X, size.Y)
	}
	ps := PixelScale(size.X, p.UIReferenceWidth)
	bounds := image.Rect(0, 0, size.X, size.Y)

	var canvas *image.NRGBA
	hasBackground := !bg.IsEmpty()
	if hasBackground {
		canvas = placeLayer(bounds, bg.Pixels, coverScale(bg.Bounds().Size(), size), p.Background.Normalized(), ps)
	} else {
		canvas = image.NewNRGBA(bounds)
	}

	layer := fg.Derive(placeLayer(bounds, fg.Pixels, fitScale(fg.Bounds().Size(), size), p.Foreground.Normalized(), ps))
	if p.Outline.Width > 0 {
		layer = masks.Outline(layer, OutlineWidth(p.Outline.Width, size.X), p.Outline.Color, masks.OutlineOptions{})
	}

	if hasBackground && p.BakeShadow && p.Shadow.Active() {
		shadow := dropShadow(layer, ScaleShadow(p.Shadow, size.X, size.Y), p.Shadow)
		canvas = imaging.Overlay(canvas, shadow.Pixels, image.Point{}, 1)
	}
	canvas = imaging.Overlay(canvas, layer.Pixels, image.Point{}, 1)
	return fg.Derive(canvas), nil
}

// coverScale is the smallest scale at which src covers dst.
func coverScale(src, dst image.Point) float64 {
	return math.Max(float64(dst.X)/float64(src.X), float64(dst.Y)/float64(src.Y))
}

// fitScale is the largest scale at which src fits inside dst.
func fitScale(src, dst image.Point) float64 {
	return math.Min(float64(dst.X)/float64(src.X), float64(dst.Y)/float64(src.Y))
}

// placeLayer draws src onto a transparent canvas: scaled by base, centered, and
// then moved by t around the canvas center with its offset in UI points.
func placeLayer(bounds image.Rectangle, src *image.NRGBA, base float64, t common.Transform, pixelScale float64) *image.NRGBA {
	center := common.Point{X: float64(bounds.Dx()) / 2, Y: float64(bounds.Dy()) / 2}
	sw, sh := float64(src.Rect.Dx()), float64(src.Rect.Dy())
	k := base * t.Scale

	// Where the source origin lands once centered and transformed.
	origin := t.Apply(common.Point{X: center.X - sw*base/2, Y: center.Y - sh*base/2}, center, pixelScale)

	dst := image.NewRGBA(bounds)
	if k == 1 && origin.X == math.Trunc(origin.X) && origin.Y == math.Trunc(origin.Y) {
		pt := image.Pt(int(origin.X), int(origin.Y))
		draw.Draw(dst, src.Rect.Add(pt), src, src.Rect.Min, draw.Src)
	} else {
		s2d := f64.Aff3{
			k, 0, origin.X,
			0, k, origin.Y,
		}
		draw.BiLinear.Transform(dst, s2d, src, src.Rect, draw.Src, nil)
	}
	return imaging.Clone(dst)
}
