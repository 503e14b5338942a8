package geometry

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-cutout/common"
	"github.com/nvr-ai/go-cutout/images"
)

// ApplyNormalizedCrop cuts a normalized rectangle out of img.
//
// The rectangle is resolved against the image's logical size (buffer size over
// scale, axes swapped for transposed orientations) and then multiplied back by
// the scale to address the buffer. The image is normalized to the up orientation
// first so logical and buffer axes agree.
//
// Arguments:
// - img: The image to crop.
// - rect: The normalized crop rectangle.
//
// Returns:
// - The cropped image, carrying the source scale.
// - ErrDegenerateCrop if the result is narrower or shorter than one pixel, or
// common.ErrInvalidRect if rect is outside the unit square.
//
// @example
// out, err := geometry.ApplyNormalizedCrop(img, common.Rect{X: 0.1, Y: 0.1, Width: 0.5, Height: 0.5})
func ApplyNormalizedCrop(img *images.Image, rect common.Rect) (*images.Image, error) {
	if img.IsEmpty() {
		return nil, errors.Wrap(ErrDegenerateCrop, "empty source")
	}
	if err := rect.Validate(); err != nil {
		return nil, err
	}

	upright := Normalize(img)
	s := upright.PixelScale()
	lw, lh := upright.LogicalSize()
	buffer := common.Size{Width: lw, Height: lh}.Scale(s, s)

	px := rect.ToPixels(buffer).Intersect(upright.Bounds())
	if px.Dx() < 1 || px.Dy() < 1 {
		return nil, errors.Wrapf(ErrDegenerateCrop, "%s of %s is %dx%d", rect, buffer, px.Dx(), px.Dy())
	}
	if px == upright.Bounds() {
		return upright, nil
	}
	return upright.Derive(imaging.Crop(upright.Pixels, px)), nil
}

// CropToAspect center-crops img to width/height == ratio, keeping the largest
// rectangle that fits. When the image is wider than the ratio the width is
// reduced to height*ratio, otherwise the height is reduced to width/ratio.
//
// Arguments:
// - img: The image to crop.
// - ratio: Target width/height, > 0.
//
// Returns:
// - The cropped image, or the (normalized) input when it already matches.
// - ErrDegenerateCrop for a non-positive ratio or a sub-pixel result.
func CropToAspect(img *images.Image, ratio float64) (*images.Image, error) {
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		return nil, errors.Wrapf(ErrDegenerateCrop, "ratio %g", ratio)
	}
	if img.IsEmpty() {
		return nil, errors.Wrap(ErrDegenerateCrop, "empty source")
	}

	upright := Normalize(img)
	w, h := upright.Width(), upright.Height()
	size := PixelSize(aspectFit(common.Size{Width: float64(w), Height: float64(h)}, ratio))
	if size.X < 1 || size.Y < 1 {
		return nil, errors.Wrapf(ErrDegenerateCrop, "%dx%d to ratio %g is %dx%d", w, h, ratio, size.X, size.Y)
	}
	size.X, size.Y = min(size.X, w), min(size.Y, h)
	if size.X == w && size.Y == h {
		return upright, nil
	}

	x0 := (w - size.X) / 2
	y0 := (h - size.Y) / 2
	rect := image.Rect(x0, y0, x0+size.X, y0+size.Y)
	return upright.Derive(imaging.Crop(upright.Pixels, rect)), nil
}

// CropToSize crops img to the aspect ratio of a custom width x height. The
// pixels are not resampled; the size only contributes its ratio.
func CropToSize(img *images.Image, width, height int) (*images.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrDegenerateCrop, "custom size %dx%d", width, height)
	}
	return CropToAspect(img, float64(width)/float64(height))
}

// ApplyFraming dispatches a framing: ratio and custom framings crop, free and
// original framings return the input.
func ApplyFraming(img *images.Image, f Framing) (*images.Image, error) {
	switch f.Kind {
	case FramingRatio:
		if !(f.Ratio > 0) {
			return nil, errors.Wrapf(ErrDegenerateCrop, "framing %s", f)
		}
		return CropToAspect(img, f.Ratio)
	case FramingCustom:
		return CropToSize(img, f.Width, f.Height)
	default:
		return img, nil
	}
}

// aspectFit returns the largest size with the given ratio that fits inside s.
func aspectFit(s common.Size, ratio float64) common.Size {
	if s.Ratio() > ratio {
		return common.Size{Width: s.Height * ratio, Height: s.Height}
	}
	return common.Size{Width: s.Width, Height: s.Width / ratio}
}
