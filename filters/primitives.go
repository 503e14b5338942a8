package filters

import (
	"github.com/chewxy/math32"
	"github.com/disintegration/gift"

	"github.com/nvr-ai/go-cutout/images"
)

// Rec. 709 luma weights.
const (
	lumaR float32 = 0.2126
	lumaG float32 = 0.7152
	lumaB float32 = 0.0722
)

func luma(r, g, b float32) float32 {
	return lumaR*r + lumaG*g + lumaB*b
}

func clamp01(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}

// ColorControls adjusts saturation, brightness and contrast in one pass.
//
// Arguments:
// - saturation: Multiplier around the pixel's luma; 1 keeps, 0 greys out.
// - brightness: Additive offset in [-1, 1]; 0 keeps.
// - contrast: Multiplier around mid grey; 1 keeps.
//
// Returns:
// - A gift filter; alpha passes through.
//
// @example
// out := filters.Apply(img, filters.ColorControls(1.3, 0.02, 1))
func ColorControls(saturation, brightness, contrast float64) gift.Filter {
	s, b, c := float32(saturation), float32(brightness), float32(contrast)
	return gift.ColorFunc(func(r, g, bl, a float32) (float32, float32, float32, float32) {
		y := luma(r, g, bl)
		r = y + (r-y)*s
		g = y + (g-y)*s
		bl = y + (bl-y)*s

		r = (r+b-0.5)*c + 0.5
		g = (g+b-0.5)*c + 0.5
		bl = (bl+b-0.5)*c + 0.5
		return clamp01(r), clamp01(g), clamp01(bl), a
	})
}

// Contrast scales each channel around mid grey by factor.
func Contrast(factor float64) gift.Filter {
	return ColorControls(1, 0, factor)
}

// TemperatureTint re-balances white from a neutral color temperature to a
// target one, both in Kelvin, and shifts the green/magenta axis by tint.
// Moving the target above the neutral warms the image; positive tint adds
// magenta.
func TemperatureTint(neutral, target, tint float64) gift.Filter {
	nr, ng, nb := kelvinToRGB(float32(neutral))
	tr, tg, tb := kelvinToRGB(float32(target))
	mr, mg, mb := nr/tr, ng/tg, nb/tb
	mg *= 1 - float32(tint)*0.002

	// Keep the overall luminance of white unchanged.
	norm := luma(mr, mg, mb)
	mr, mg, mb = mr/norm, mg/norm, mb/norm

	return gift.ColorFunc(func(r, g, b, a float32) (float32, float32, float32, float32) {
		return clamp01(r * mr), clamp01(g * mg), clamp01(b * mb), a
	})
}

// kelvinToRGB approximates the sRGB color of a black body at the given
// temperature, each channel in [0, 1].
func kelvinToRGB(kelvin float32) (r, g, b float32) {
	t := math32.Max(1000, math32.Min(40000, kelvin)) / 100

	if t <= 66 {
		r = 1
		g = (99.4708025861*math32.Log(t) - 161.1195681661) / 255
	} else {
		r = 329.698727446 * math32.Pow(t-60, -0.1332047592) / 255
		g = 288.1221695283 * math32.Pow(t-60, -0.0755148492) / 255
	}

	switch {
	case t >= 66:
		b = 1
	case t <= 19:
		b = 0
	default:
		b = (138.5177312231*math32.Log(t-10) - 305.0447927307) / 255
	}
	// A fully black channel would make the ratio undefined.
	return math32.Max(clamp01(r), 1e-3), math32.Max(clamp01(g), 1e-3), math32.Max(clamp01(b), 1e-3)
}

// Monochrome is the noir treatment: luma greyscale with a gentle S-curve.
func Monochrome() gift.Filter {
	return gift.ColorFunc(func(r, g, b, a float32) (float32, float32, float32, float32) {
		y := sCurve(luma(r, g, b), 0.35)
		return y, y, y, a
	})
}

// Sepia tones the image; intensity in [0, 1].
func Sepia(intensity float64) gift.Filter {
	return gift.Sepia(float32(intensity * 100))
}

// Chrome is a punchy tone curve with boosted saturation.
func Chrome() gift.Filter {
	return gift.ColorFunc(func(r, g, b, a float32) (float32, float32, float32, float32) {
		y := luma(r, g, b)
		r = sCurve(clamp01(y+(r-y)*1.25), 0.25)
		g = sCurve(clamp01(y+(g-y)*1.25), 0.25)
		b = sCurve(clamp01(y+(b-y)*1.25), 0.25)
		return r, g, b, a
	})
}

// sCurve blends x towards smoothstep(x) by amount.
func sCurve(x, amount float32) float32 {
	s := x * x * (3 - 2*x)
	return clamp01(x + (s-x)*amount)
}

// SharpenLuminance sharpens edges with an unsharp mask of the given amount.
// The alpha channel of img is kept as is.
func SharpenLuminance(img *images.Image, sharpness float64) *images.Image {
	if sharpness <= 0 {
		return img
	}
	return keepAlpha(img, run(img, gift.UnsharpMask(1.6, float32(sharpness), 0)))
}

// Posterize reduces every channel to the given number of levels.
func Posterize(levels int) gift.Filter {
	n := float32(max(levels, 2) - 1)
	return gift.ColorFunc(func(r, g, b, a float32) (float32, float32, float32, float32) {
		return math32.Round(r*n) / n, math32.Round(g*n) / n, math32.Round(b*n) / n, a
	})
}

// Apply runs a chain of color filters over img.
func Apply(img *images.Image, filters ...gift.Filter) *images.Image {
	return run(img, filters...)
}
