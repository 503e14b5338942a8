// Package filters implements the color presets, the user adjustments and the
// one-tap effects. Every operation reads one raster and returns a new one;
// color transforms work on straight RGB and never touch alpha.
package filters

import (
	"image"

	"github.com/disintegration/gift"

	"github.com/nvr-ai/go-cutout/images"
)

// run draws img through a gift filter chain into a new raster of the same
// scale and orientation.
func run(img *images.Image, filters ...gift.Filter) *images.Image {
	if img.IsEmpty() || len(filters) == 0 {
		return img
	}
	g := gift.New(filters...)
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img.Pixels)

	out := img.Derive(dst)
	out.Orientation = img.Orientation
	return out
}

// keepAlpha copies the alpha channel of src into out, for kernels such as
// unsharp masking and sobel that also convolve alpha.
func keepAlpha(src, out *images.Image) *images.Image {
	if src.Bounds() != out.Bounds() {
		return out
	}
	sp, dp := src.Pixels, out.Pixels
	w := src.Width()
	images.Parallel(src.Height(), func(start, end int) {
		for y := start; y < end; y++ {
			s := sp.Pix[y*sp.Stride : y*sp.Stride+w*4]
			d := dp.Pix[y*dp.Stride : y*dp.Stride+w*4]
			for i := 3; i < len(s); i += 4 {
				d[i] = s[i]
			}
		}
	})
	return out
}

// premultiply and unpremultiply bracket spatial kernels so fully transparent
// pixels do not bleed their (meaningless) color into visible neighbors.
var (
	premultiply = gift.ColorFunc(func(r, g, b, a float32) (float32, float32, float32, float32) {
		return r * a, g * a, b * a, a
	})
	unpremultiply = gift.ColorFunc(func(r, g, b, a float32) (float32, float32, float32, float32) {
		if a <= 0 {
			return 0, 0, 0, 0
		}
		return min(r/a, 1), min(g/a, 1), min(b/a, 1), a
	})
)

// Blur applies a gaussian blur of the given sigma in premultiplied space.
// A non-positive sigma returns the input.
func Blur(img *images.Image, sigma float64) *images.Image {
	if sigma <= 0 {
		return img
	}
	return run(img, premultiply, gift.GaussianBlur(float32(sigma)), unpremultiply)
}
