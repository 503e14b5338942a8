package compositor

import (
	"image"
	"image/color"

	"github.com/nvr-ai/go-cutout/colors"
	"github.com/nvr-ai/go-cutout/images"
)

// BackgroundKind selects the background source.
type BackgroundKind string

// Background kinds.
const (
	BackgroundNone     BackgroundKind = "none"
	BackgroundSolid    BackgroundKind = "solid"
	BackgroundGradient BackgroundKind = "gradient"
	BackgroundRaster   BackgroundKind = "raster"
)

// BackgroundSpec is a resolved background descriptor.
type BackgroundSpec struct {
	Kind      BackgroundKind
	Color     color.NRGBA
	Gradient  []color.NRGBA
	Direction colors.Direction
	Raster    *images.Image
}

// Background synthesizes the background raster for a canvas of the given size.
// Solid and gradient backgrounds are generated at the canvas size; a raster
// background is returned as is and aspect-filled by Composite.
//
// Returns:
// - The background, or nil for none (and for a raster kind with no raster).
func Background(spec BackgroundSpec, size image.Point) *images.Image {
	switch spec.Kind {
	case BackgroundSolid:
		return colors.Solid(spec.Color, size.X, size.Y)
	case BackgroundGradient:
		return colors.LinearGradient(spec.Gradient, size.X, size.Y, spec.Direction)
	case BackgroundRaster:
		if spec.Raster.IsEmpty() {
			return nil
		}
		return spec.Raster
	default:
		return nil
	}
}
