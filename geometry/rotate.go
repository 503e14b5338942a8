package geometry

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/nvr-ai/go-cutout/images"
)

// NormalizeDegrees maps any angle into [0, 360).
func NormalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}

// Rotate turns img clockwise by degrees.
//
// Multiples of 90 are exact quarter turns. Any other angle rotates about the
// center into a canvas sized to the bounding box of the rotated corners,
// floored to whole pixels; uncovered corners are transparent.
//
// Arguments:
// - img: The image to rotate.
// - degrees: Clockwise angle, any value.
//
// Returns:
// - The rotated image, upright, carrying the source scale. A zero turn
// returns the normalized input.
//
// @example
// turned := geometry.Rotate(img, 90)
// tilted := geometry.Rotate(img, 12.5)
func Rotate(img *images.Image, degrees float64) *images.Image {
	upright := Normalize(img)
	if upright.IsEmpty() {
		return upright
	}

	d := NormalizeDegrees(degrees)
	switch d {
	case 0:
		return upright
	case 90:
		return upright.Derive(imaging.Rotate270(upright.Pixels))
	case 180:
		return upright.Derive(imaging.Rotate180(upright.Pixels))
	case 270:
		return upright.Derive(imaging.Rotate90(upright.Pixels))
	}
	return upright.Derive(rotateAffine(upright.Pixels, d*math.Pi/180))
}

// RotatedBounds returns the floored bounding box of a w x h rectangle rotated by
// theta radians.
func RotatedBounds(w, h int, theta float64) image.Point {
	sin, cos := math.Abs(math.Sin(theta)), math.Abs(math.Cos(theta))
	fw, fh := float64(w), float64(h)
	// Absorb float noise so an exact integer is not floored to the one below.
	const eps = 1e-9
	return image.Pt(
		int(math.Floor(fw*cos+fh*sin+eps)),
		int(math.Floor(fw*sin+fh*cos+eps)),
	)
}

// rotateAffine rotates src clockwise (y axis pointing down) by theta radians
// about its center.
func rotateAffine(src *image.NRGBA, theta float64) *image.NRGBA {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	size := RotatedBounds(w, h, theta)
	dst := image.NewNRGBA(image.Rect(0, 0, max(size.X, 1), max(size.Y, 1)))

	sin, cos := math.Sin(theta), math.Cos(theta)
	cx, cy := float64(w)/2, float64(h)/2
	dx, dy := float64(dst.Rect.Dx())/2, float64(dst.Rect.Dy())/2

	// Source to destination: translate the center to the origin, rotate, then
	// move it to the center of the new canvas.
	s2d := f64.Aff3{
		cos, -sin, dx - (cos*cx - sin*cy),
		sin, cos, dy - (sin*cx + cos*cy),
	}
	draw.BiLinear.Transform(dst, s2d, src, src.Rect, draw.Src, nil)
	return dst
}

// Normalize bakes the orientation into the pixels and returns an upright image
// with the same scale. Upright input is returned as is.
func Normalize(img *images.Image) *images.Image {
	if img.IsEmpty() {
		return img
	}

	var pix *image.NRGBA
	switch img.Orientation {
	case images.OrientationUpMirrored:
		pix = imaging.FlipH(img.Pixels)
	case images.OrientationDown:
		pix = imaging.Rotate180(img.Pixels)
	case images.OrientationDownMirrored:
		pix = imaging.FlipV(img.Pixels)
	case images.OrientationLeftMirrored:
		pix = imaging.Transpose(img.Pixels)
	case images.OrientationRight:
		pix = imaging.Rotate270(img.Pixels)
	case images.OrientationRightMirrored:
		pix = imaging.Transverse(img.Pixels)
	case images.OrientationLeft:
		pix = imaging.Rotate90(img.Pixels)
	default:
		return img
	}
	return img.Derive(pix)
}
