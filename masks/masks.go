// Package masks derives and reshapes alpha masks: extraction, circular
// dilation, gaussian smoothing, contrast ramps, flood fills, outlines and
// transparency trimming.
package masks

import (
	"image"
	"image/color"
	"math"

	"github.com/nvr-ai/go-cutout/images"
	"github.com/nvr-ai/go-cutout/images/kernels"
)

// AlphaMask copies the alpha channel of img into a single-channel plane.
func AlphaMask(img *images.Image) *image.Alpha {
	w, h := img.Width(), img.Height()
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	if img.IsEmpty() {
		return mask
	}
	src := img.Pixels
	images.Parallel(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+w*4]
			out := mask.Pix[y*mask.Stride : y*mask.Stride+w]
			for x := range out {
				out[x] = row[x*4+3]
			}
		}
	})
	return mask
}

// AlphaMaskImage is AlphaMask as an RGBA raster: every pixel is white with the
// source alpha.
func AlphaMaskImage(img *images.Image) *images.Image {
	out := Flood(AlphaMask(img), color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	out.Scale = img.PixelScale()
	return out
}

// Dilate grows the mask with a circular structuring element of the given radius
// in pixels. Radius 0 returns a copy.
func Dilate(mask *image.Alpha, radius int) *image.Alpha {
	return kernels.Dilate(mask, kernels.Options{Radius: radius, Parallel: true})
}

// planes recycles the intermediate box-pass planes of Smooth. Outlines and
// shadows blur a canvas-sized mask on every render.
var planes kernels.Pool

// Smooth blurs the mask with a gaussian of standard deviation sigma, built from
// three box passes. Samples outside the plane count as transparent.
func Smooth(mask *image.Alpha, sigma float64) *image.Alpha {
	return kernels.GaussianBlur(mask, sigma, kernels.Options{Edge: kernels.EdgeZero, Pool: &planes, Parallel: true})
}

// Ramp remaps coverage linearly so values at or below low become 0 and values
// at or above high become 255, pulling a soft edge back towards a hard one.
//
// Arguments:
// - mask: The plane to remap.
// - low: Coverage mapped to fully transparent.
// - high: Coverage mapped to fully opaque; must exceed low.
//
// Returns:
// - A new plane. A degenerate range thresholds at low.
//
// @example
// hard := masks.Ramp(masks.Smooth(grown, 1.5), 64, 192)
func Ramp(mask *image.Alpha, low, high uint8) *image.Alpha {
	var lut [256]uint8
	for v := range lut {
		switch {
		case v <= int(low):
			lut[v] = 0
		case v >= int(high):
			lut[v] = 255
		default:
			lut[v] = uint8(math.Round(float64(v-int(low)) * 255 / float64(int(high)-int(low))))
		}
	}

	out := image.NewAlpha(mask.Rect)
	w := mask.Rect.Dx()
	images.Parallel(mask.Rect.Dy(), func(start, end int) {
		for y := start; y < end; y++ {
			src := mask.Pix[y*mask.Stride : y*mask.Stride+w]
			dst := out.Pix[y*out.Stride : y*out.Stride+w]
			for x, v := range src {
				dst[x] = lut[v]
			}
		}
	})
	return out
}

// Flood paints c through the mask: every pixel takes c's color with alpha
// c.A scaled by the mask coverage.
func Flood(mask *image.Alpha, c color.NRGBA) *images.Image {
	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	out := images.New(w, h)
	pix := out.Pixels
	images.Parallel(h, func(start, end int) {
		for y := start; y < end; y++ {
			src := mask.Pix[y*mask.Stride : y*mask.Stride+w]
			dst := pix.Pix[y*pix.Stride : y*pix.Stride+w*4]
			for x, v := range src {
				if v == 0 {
					continue
				}
				d := dst[x*4 : x*4+4 : x*4+4]
				d[0], d[1], d[2] = c.R, c.G, c.B
				d[3] = uint8((uint32(v)*uint32(c.A) + 127) / 255)
			}
		}
	})
	return out
}
