// Package common holds the small value types shared by every stage of the
// compositing pipeline: sizes, points, normalized rectangles and layer transforms.
package common

import (
	"fmt"
	"image"
	"math"

	"github.com/pkg/errors"
)

// ErrInvalidRect is returned when a normalized rectangle falls outside [0,1].
var ErrInvalidRect = errors.New("invalid normalized rect")

// Size is a width/height pair in either points or pixels.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Point is a 2D coordinate. Placement positions use it in normalized (0..1) space
// and layer offsets use it in UI points.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Rect is a normalized rectangle: every component is a fraction of the
// dimensions of the image it is applied to.
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// SizeOf returns the pixel size of an image.Rectangle as a Size.
func SizeOf(r image.Rectangle) Size {
	return Size{Width: float64(r.Dx()), Height: float64(r.Dy())}
}

// Empty reports whether either dimension is below one unit.
func (s Size) Empty() bool {
	return s.Width < 1 || s.Height < 1
}

// Ratio returns width/height, or 0 for a zero height.
func (s Size) Ratio() float64 {
	if s.Height == 0 {
		return 0
	}
	return s.Width / s.Height
}

// Scale returns the size multiplied elementwise by sx and sy.
func (s Size) Scale(sx, sy float64) Size {
	return Size{Width: s.Width * sx, Height: s.Height * sy}
}

// Pixels rounds the size to whole pixels.
//
// Returns:
// - An image.Point where X is the width and Y the height, each rounded half away from zero.
//
// @example
// px := Size{Width: 562.5, Height: 1000}.Pixels() // (563, 1000)
func (s Size) Pixels() image.Point {
	return image.Pt(int(math.Round(s.Width)), int(math.Round(s.Height)))
}

func (s Size) String() string {
	return fmt.Sprintf("%.2fx%.2f", s.Width, s.Height)
}

// Validate checks that the rectangle lies inside the unit square and has a
// positive area.
//
// Returns:
// - ErrInvalidRect wrapped with the failing condition, nil otherwise.
//
// @example
// err := Rect{X: 0.5, Y: 0, Width: 0.6, Height: 1}.Validate() // x+width > 1
func (r Rect) Validate() error {
	const eps = 1e-9
	switch {
	case r.X < 0 || r.Y < 0:
		return errors.Wrapf(ErrInvalidRect, "origin (%g, %g) is negative", r.X, r.Y)
	case r.Width <= 0 || r.Height <= 0:
		return errors.Wrapf(ErrInvalidRect, "size %gx%g must be positive", r.Width, r.Height)
	case r.X+r.Width > 1+eps:
		return errors.Wrapf(ErrInvalidRect, "x+width = %g exceeds 1", r.X+r.Width)
	case r.Y+r.Height > 1+eps:
		return errors.Wrapf(ErrInvalidRect, "y+height = %g exceeds 1", r.Y+r.Height)
	}
	return nil
}

// Center returns the midpoint of the rectangle in normalized space.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// ToPixels maps the normalized rectangle onto a buffer of the given size.
//
// The width and height are rounded first so every rectangle with the same
// normalized size yields the same pixel size regardless of its origin. The
// rounded origin is then shifted back inside the buffer when the rounding
// pushed the far edge past it.
//
// Arguments:
// - size: The size the rectangle is relative to, already in pixels.
//
// Returns:
// - The pixel rectangle, possibly empty.
//
// @example
// r := Rect{X: 0.25, Y: 0.25, Width: 0.5, Height: 0.5}
// px := r.ToPixels(Size{Width: 200, Height: 100}) // (50,25)-(150,75)
func (r Rect) ToPixels(size Size) image.Rectangle {
	bw, bh := int(math.Round(size.Width)), int(math.Round(size.Height))
	w := min(int(math.Round(r.Width*size.Width)), bw)
	h := min(int(math.Round(r.Height*size.Height)), bh)
	if w < 1 || h < 1 {
		return image.Rectangle{}
	}
	x := min(max(int(math.Round(r.X*size.Width)), 0), bw-w)
	y := min(max(int(math.Round(r.Y*size.Height)), 0), bh-h)
	return image.Rect(x, y, x+w, y+h)
}

func (r Rect) String() string {
	return fmt.Sprintf("[%.4f,%.4f %.4fx%.4f]", r.X, r.Y, r.Width, r.Height)
}
