package colors

import (
	"image/color"

	"github.com/gogpu/gg"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-cutout/images"
)

// Direction is the axis a linear gradient runs along, from the first stop to
// the last.
type Direction int

const (
	// TopToBottom is the default direction.
	TopToBottom Direction = iota
	BottomToTop
	LeftToRight
	RightToLeft
	// TopLeftToBottomRight runs along the main diagonal.
	TopLeftToBottomRight
)

var directionNames = map[Direction]string{
	TopToBottom:          "top_to_bottom",
	BottomToTop:          "bottom_to_top",
	LeftToRight:          "left_to_right",
	RightToLeft:          "right_to_left",
	TopLeftToBottomRight: "diagonal",
}

// String returns the snake_case name used in snapshot files.
func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return directionNames[TopToBottom]
}

// ParseDirection reads a direction name. The empty string is TopToBottom.
func ParseDirection(name string) (Direction, error) {
	if name == "" {
		return TopToBottom, nil
	}
	for d, n := range directionNames {
		if n == name {
			return d, nil
		}
	}
	return TopToBottom, errors.Errorf("unknown gradient direction %q", name)
}

// Solid synthesizes an opaque raster of the given pixel size. Translucent
// colors are forced opaque since backgrounds are always fully covering.
func Solid(c color.NRGBA, width, height int) *images.Image {
	c.A = 255
	return images.Solid(width, height, c)
}

// LinearGradient synthesizes an opaque gradient raster.
//
// Stops are spaced evenly from the start edge to the end edge of dir. A single
// stop produces a solid raster and no stops produce opaque black.
//
// Arguments:
// - stops: Colors from start to end.
// - width: Raster width in pixels.
// - height: Raster height in pixels.
// - dir: The gradient axis.
//
// Returns:
// - A new fully opaque raster.
//
// @example
// bg := colors.LinearGradient([]color.NRGBA{colors.ParseHex("#FF8A00"), colors.ParseHex("#E52E71")}, 1080, 1920, colors.TopToBottom)
func LinearGradient(stops []color.NRGBA, width, height int, dir Direction) *images.Image {
	switch len(stops) {
	case 0:
		return Solid(Black, width, height)
	case 1:
		return Solid(stops[0], width, height)
	}

	w, h := float64(width), float64(height)
	var brush *gg.LinearGradientBrush
	switch dir {
	case BottomToTop:
		brush = gg.NewLinearGradientBrush(0, h, 0, 0)
	case LeftToRight:
		brush = gg.NewLinearGradientBrush(0, 0, w, 0)
	case RightToLeft:
		brush = gg.NewLinearGradientBrush(w, 0, 0, 0)
	case TopLeftToBottomRight:
		brush = gg.NewLinearGradientBrush(0, 0, w, h)
	default:
		brush = gg.NewLinearGradientBrush(0, 0, 0, h)
	}
	last := float64(len(stops) - 1)
	for i, c := range stops {
		brush.AddColorStop(float64(i)/last, gg.RGBA2(
			float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, 1,
		))
	}
	// The brush sorts its stops lazily; resolve them before the parallel fill.
	brush.ColorAt(0, 0)

	out := images.New(width, height)
	pix := out.Pixels
	images.Parallel(height, func(start, end int) {
		for y := start; y < end; y++ {
			row := pix.Pix[y*pix.Stride : y*pix.Stride+width*4]
			for x := 0; x < width; x++ {
				c := brush.ColorAt(float64(x)+0.5, float64(y)+0.5)
				row[x*4+0] = images.ClampUint8(c.R * 255)
				row[x*4+1] = images.ClampUint8(c.G * 255)
				row[x*4+2] = images.ClampUint8(c.B * 255)
				row[x*4+3] = 255
			}
		}
	})
	return out
}
