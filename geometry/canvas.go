// Package geometry maps normalized editing state onto pixel buffers: output
// canvas derivation, normalized and aspect crops, rotation and orientation.
package geometry

import (
	"image"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-cutout/common"
)

// ErrDegenerateCrop is returned when a crop would leave less than one pixel in
// either dimension. Callers recover by keeping the uncropped image.
var ErrDegenerateCrop = errors.New("degenerate crop")

// DeriveOutputCanvasSize predicts the size of the rendered canvas.
//
// A crop rectangle takes precedence: the canvas is the reference size scaled by
// the crop's width and height. Otherwise a ratio or custom framing selects the
// largest sub-rectangle of the reference with that ratio, exactly as CropToAspect
// would cut it. Any other framing leaves the reference size unchanged.
//
// Arguments:
// - ref: The reference (subject) size.
// - crop: The normalized crop, or nil.
// - framing: The target framing.
//
// Returns:
// - The predicted canvas size; round it with PixelSize.
//
// @example
// size := geometry.DeriveOutputCanvasSize(common.Size{Width: 3000, Height: 2000}, nil, geometry.Ratio(1, 1))
// // size == 2000x2000
func DeriveOutputCanvasSize(ref common.Size, crop *common.Rect, framing Framing) common.Size {
	if crop != nil {
		return ref.Scale(crop.Width, crop.Height)
	}
	ratio, ok := framing.TargetRatio()
	if !ok || ref.Height <= 0 {
		return ref
	}
	return aspectFit(ref, ratio)
}

// PixelSize rounds a canvas size to whole pixels with the same rule the crop
// operations use, so predicted and produced sizes agree.
func PixelSize(s common.Size) image.Point {
	return s.Pixels()
}

// FinalCanvasSize predicts the pixel size of a final render of a subject whose
// upright buffer is ref pixels. Unlike DeriveOutputCanvasSize it follows both
// crop steps when a crop and a ratio framing are set together: the normalized
// crop first, then the framing crop of that result, each rounded with PixelSize.
//
// @example
// size := geometry.FinalCanvasSize(image.Pt(200, 100), &common.Rect{Width: 1, Height: 0.5}, geometry.Ratio(1, 1))
// // size == 50x50
func FinalCanvasSize(ref image.Point, crop *common.Rect, framing Framing) image.Point {
	size := ref
	if crop != nil {
		size = PixelSize(DeriveOutputCanvasSize(common.SizeOf(image.Rectangle{Max: size}), crop, Free()))
	}
	if _, ok := framing.TargetRatio(); ok {
		size = PixelSize(DeriveOutputCanvasSize(common.SizeOf(image.Rectangle{Max: size}), nil, framing))
	}
	return size
}
