package filters

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-cutout/images"
)

// Adjustments are the four user sliders.
type Adjustments struct {
	// Brightness in [0, 2]; 1 is neutral.
	Brightness float64 `json:"brightness" yaml:"brightness"`
	// Contrast in [0, 2]; 1 is neutral.
	Contrast float64 `json:"contrast" yaml:"contrast"`
	// Saturation in [0, 2]; 1 is neutral.
	Saturation float64 `json:"saturation" yaml:"saturation"`
	// Blur radius in pixels, >= 0.
	Blur float64 `json:"blur" yaml:"blur"`
}

// DefaultAdjustments returns the neutral slider positions.
func DefaultAdjustments() Adjustments {
	return Adjustments{Brightness: 1, Contrast: 1, Saturation: 1}
}

// IsIdentity reports whether applying a leaves every pixel unchanged.
func (a Adjustments) IsIdentity() bool {
	return a.Brightness == 1 && a.Contrast == 1 && a.Saturation == 1 && a.Blur <= 0
}

// Validate checks every slider range.
func (a Adjustments) Validate() error {
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"brightness", a.Brightness},
		{"contrast", a.Contrast},
		{"saturation", a.Saturation},
	} {
		if !(v.value >= 0 && v.value <= 2) {
			return errors.Errorf("%s %g outside [0, 2]", v.name, v.value)
		}
	}
	if !(a.Blur >= 0) {
		return errors.Errorf("blur %g must be >= 0", a.Blur)
	}
	return nil
}

// ApplyAdjustments applies the sliders.
//
// Brightness becomes an additive offset of Brightness-1, contrast and saturation
// are multiplicative factors, and the gaussian blur only runs for a positive
// radius. Neutral sliders return img itself.
//
// Arguments:
// - img: The raster to adjust.
// - a: The slider values.
//
// Returns:
// - The adjusted raster with the input's bounds.
//
// @example
// out := filters.ApplyAdjustments(img, filters.Adjustments{Brightness: 1.1, Contrast: 1, Saturation: 0.8})
func ApplyAdjustments(img *images.Image, a Adjustments) *images.Image {
	if a.IsIdentity() {
		return img
	}
	out := img
	if a.Brightness != 1 || a.Contrast != 1 || a.Saturation != 1 {
		out = run(out, ColorControls(a.Saturation, a.Brightness-1, a.Contrast))
	}
	return Blur(out, a.Blur)
}
