// Package test provides deterministic subject fixtures and end-to-end tests for
// the render pipeline.
package test

import (
	"image"
	"image/color"
	"math/rand"

	"github.com/nvr-ai/go-cutout/images"
)

// Fixture colors.
var (
	Red   = color.NRGBA{R: 255, A: 255}
	Green = color.NRGBA{G: 255, A: 255}
	Blue  = color.NRGBA{B: 255, A: 255}
	White = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// SubjectGenerator creates deterministic cut-out subjects.
//
// @example
// gen := NewSubjectGenerator(1000, 1000)
// subject := gen.Bordered(100, test.Red)
type SubjectGenerator struct {
	width  int
	height int
	seed   int64
}

// NewSubjectGenerator creates a generator for width x height subjects.
//
// Arguments:
// - width: Subject width in pixels.
// - height: Subject height in pixels.
//
// Returns:
// - A configured SubjectGenerator instance.
func NewSubjectGenerator(width, height int) *SubjectGenerator {
	return &SubjectGenerator{
		width:  width,
		height: height,
		seed:   42, // Deterministic seed for reproducibility.
	}
}

// Transparent returns a subject with no visible pixel.
func (g *SubjectGenerator) Transparent() *images.Image {
	return images.New(g.width, g.height)
}

// Opaque returns a subject filled edge to edge with c.
func (g *SubjectGenerator) Opaque(c color.NRGBA) *images.Image {
	return images.Solid(g.width, g.height, c)
}

// Rect returns a transparent subject with an opaque rectangle r of color c.
//
// @example
// subject := gen.Rect(image.Rect(50, 25, 150, 75), test.Red)
func (g *SubjectGenerator) Rect(r image.Rectangle, c color.NRGBA) *images.Image {
	img := images.New(g.width, g.height)
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Pixels.SetNRGBA(x, y, c)
		}
	}
	return img
}

// Bordered returns an opaque c square inset by a transparent border.
func (g *SubjectGenerator) Bordered(border int, c color.NRGBA) *images.Image {
	return g.Rect(image.Rect(border, border, g.width-border, g.height-border), c)
}

// Noise returns an opaque subject of seeded random colors. Noise compresses
// poorly, which makes it useful for size-budget tests.
func (g *SubjectGenerator) Noise() *images.Image {
	rng := rand.New(rand.NewSource(g.seed))
	img := images.New(g.width, g.height)
	pix := img.Pixels.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i] = uint8(rng.Intn(256))
		pix[i+1] = uint8(rng.Intn(256))
		pix[i+2] = uint8(rng.Intn(256))
		pix[i+3] = 255
	}
	return img
}

// Gradient returns an opaque subject whose red channel ramps left to right and
// green channel top to bottom.
func (g *SubjectGenerator) Gradient() *images.Image {
	img := images.New(g.width, g.height)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			img.Pixels.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(1, g.width-1)),
				G: uint8(y * 255 / max(1, g.height-1)),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}
