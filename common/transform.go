package common

import (
	"github.com/pkg/errors"
)

// ErrInvalidTransform is returned for a transform with a non-positive scale.
var ErrInvalidTransform = errors.New("invalid layer transform")

// Transform is the per-layer (scale, offset) state the editor keeps for the
// foreground, background and whole canvas. Scale is applied around a pivot and
// the offset, expressed in UI points, is applied afterwards.
type Transform struct {
	Scale  float64 `json:"scale" yaml:"scale"`
	Offset Point   `json:"offset" yaml:"offset"`
}

// Identity returns the transform that leaves every point in place.
func Identity() Transform {
	return Transform{Scale: 1}
}

// IsIdentity reports whether the transform maps every point onto itself.
func (t Transform) IsIdentity() bool {
	return t.Scale == 1 && t.Offset.X == 0 && t.Offset.Y == 0
}

// Validate fails for a scale that is zero, negative or NaN.
func (t Transform) Validate() error {
	if !(t.Scale > 0) {
		return errors.Wrapf(ErrInvalidTransform, "scale %g must be > 0", t.Scale)
	}
	return nil
}

// Apply maps p through the transform about pivot, with the offset multiplied by
// pixelScale first.
//
// Arguments:
// - p: The point to map.
// - pivot: The center the scale is applied around (the canvas center for layers).
// - pixelScale: Factor converting UI points into output pixels.
//
// Returns:
// - The mapped point.
//
// @example
// t := Transform{Scale: 2, Offset: Point{X: 10}}
// q := t.Apply(Point{X: 60, Y: 50}, Point{X: 50, Y: 50}, 1) // (80, 50)
func (t Transform) Apply(p, pivot Point, pixelScale float64) Point {
	return Point{
		X: pivot.X + (p.X-pivot.X)*t.Scale + t.Offset.X*pixelScale,
		Y: pivot.Y + (p.Y-pivot.Y)*t.Scale + t.Offset.Y*pixelScale,
	}
}

// Invert maps a point produced by Apply back to where it came from. It is the
// exact inverse of Apply for the same pivot and pixelScale.
func (t Transform) Invert(p, pivot Point, pixelScale float64) Point {
	return Point{
		X: pivot.X + (p.X-t.Offset.X*pixelScale-pivot.X)/t.Scale,
		Y: pivot.Y + (p.Y-t.Offset.Y*pixelScale-pivot.Y)/t.Scale,
	}
}

// Then composes t followed by next around the same pivot.
func (t Transform) Then(next Transform) Transform {
	return Transform{
		Scale: t.Scale * next.Scale,
		Offset: Point{
			X: t.Offset.X*next.Scale + next.Offset.X,
			Y: t.Offset.Y*next.Scale + next.Offset.Y,
		},
	}
}

// Normalized fills in the identity scale for a zero-valued transform, which is
// what a snapshot decoded without that layer carries.
func (t Transform) Normalized() Transform {
	if t.Scale == 0 {
		t.Scale = 1
	}
	return t
}
