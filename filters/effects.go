package filters

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/disintegration/gift"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-cutout/images"
)

// Effect names a one-tap effect applied after the preset.
type Effect string

// Effects offered by the editor.
const (
	EffectNone      Effect = "original"
	EffectVignette  Effect = "vignette"
	EffectBloom     Effect = "bloom"
	EffectNoir      Effect = "noir"
	EffectCrystal   Effect = "crystal"
	EffectBlur      Effect = "blur"
	EffectEdges     Effect = "edges"
	EffectPosterize Effect = "posterize"
	EffectGrain     Effect = "grain"
)

// Effects lists every effect in display order.
func Effects() []Effect {
	return []Effect{EffectNone, EffectVignette, EffectBloom, EffectNoir, EffectCrystal, EffectBlur, EffectEdges, EffectPosterize, EffectGrain}
}

// ParseEffect validates an effect name. The empty string means EffectNone.
func ParseEffect(name string) (Effect, error) {
	if name == "" {
		return EffectNone, nil
	}
	for _, e := range Effects() {
		if string(e) == name {
			return e, nil
		}
	}
	return EffectNone, errors.Errorf("unknown effect %q", name)
}

// ApplyEffect applies a named effect. EffectNone (and any unknown name) returns
// img itself.
//
// Arguments:
// - img: The raster to treat.
// - e: The effect.
//
// Returns:
// - The treated raster with the same bounds and scale. Only the blur effect
// changes alpha.
func ApplyEffect(img *images.Image, e Effect) *images.Image {
	if img.IsEmpty() {
		return img
	}
	switch e {
	case EffectVignette:
		return vignette(img, 1, 2)
	case EffectBloom:
		return bloom(img, 0.8, 10)
	case EffectNoir:
		return run(img, Monochrome())
	case EffectCrystal:
		return gloom(img, 1, 10)
	case EffectBlur:
		return Blur(img, 10)
	case EffectEdges:
		return keepAlpha(img, run(img, gift.Sobel()))
	case EffectPosterize:
		return run(img, Posterize(6))
	case EffectGrain:
		return grain(img)
	default:
		return img
	}
}

// vignette darkens towards the corners. At radius 2 the falloff is quadratic in
// the normalized distance from the center.
func vignette(img *images.Image, intensity, radius float32) *images.Image {
	w, h := img.Width(), img.Height()
	cx, cy := float32(w)/2, float32(h)/2
	maxDist := math32.Sqrt(cx*cx + cy*cy)
	exp := 4 / radius

	return mapPixels(img, func(x, y int, px []uint8) {
		dx, dy := float32(x)+0.5-cx, float32(y)+0.5-cy
		d := math32.Sqrt(dx*dx+dy*dy) / maxDist
		shade := 1 - intensity*0.8*math32.Pow(d, exp)
		px[0] = images.ClampUint8(float64(float32(px[0]) * shade))
		px[1] = images.ClampUint8(float64(float32(px[1]) * shade))
		px[2] = images.ClampUint8(float64(float32(px[2]) * shade))
	})
}

// bloom screens a blurred copy over the image so highlights glow.
func bloom(img *images.Image, intensity, radius float32) *images.Image {
	soft := Blur(img, float64(radius/2)).Pixels
	return mapPixels(img, func(x, y int, px []uint8) {
		s := soft.Pix[soft.PixOffset(x, y):]
		for c := 0; c < 3; c++ {
			base := float32(px[c]) / 255
			glow := float32(s[c]) / 255 * intensity
			px[c] = images.ClampUint8(float64((1 - (1-base)*(1-glow)) * 255))
		}
	})
}

// gloom multiplies a blurred copy into the image, dulling the highlights.
func gloom(img *images.Image, intensity, radius float32) *images.Image {
	soft := Blur(img, float64(radius/2)).Pixels
	k := intensity * 0.5
	return mapPixels(img, func(x, y int, px []uint8) {
		s := soft.Pix[soft.PixOffset(x, y):]
		for c := 0; c < 3; c++ {
			base := float32(px[c]) / 255
			mul := base * float32(s[c]) / 255
			px[c] = images.ClampUint8(float64((base + (mul-base)*k) * 255))
		}
	})
}

// grain overlays monochrome noise. The noise is a hash of the pixel
// coordinates, so the same image always gets the same grain.
func grain(img *images.Image) *images.Image {
	return mapPixels(img, func(x, y int, px []uint8) {
		n := float32(noise(x, y)) / 255
		// Pull the noise towards mid grey so the overlay stays subtle.
		n = 0.5 + (n-0.5)*0.35
		for c := 0; c < 3; c++ {
			base := float32(px[c]) / 255
			var v float32
			if base < 0.5 {
				v = 2 * base * n
			} else {
				v = 1 - 2*(1-base)*(1-n)
			}
			px[c] = images.ClampUint8(float64(v * 255))
		}
	})
}

// noise hashes a coordinate pair into a byte.
func noise(x, y int) uint8 {
	h := uint32(x)*0x9E3779B1 ^ uint32(y)*0x85EBCA77
	h ^= h >> 15
	h *= 0x2C1B3C6D
	h ^= h >> 12
	h *= 0x297A2D39
	h ^= h >> 15
	return uint8(h)
}

// mapPixels copies img and calls fn with each pixel's four bytes, rows split
// across workers.
func mapPixels(img *images.Image, fn func(x, y int, px []uint8)) *images.Image {
	w, h := img.Width(), img.Height()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	src := img.Pixels
	images.Parallel(h, func(start, end int) {
		for y := start; y < end; y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+w*4], src.Pix[y*src.Stride:y*src.Stride+w*4])
			for x := 0; x < w; x++ {
				i := y*dst.Stride + x*4
				fn(x, y, dst.Pix[i:i+4])
			}
		}
	})
	out := img.Derive(dst)
	out.Orientation = img.Orientation
	return out
}
