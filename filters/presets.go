package filters

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-cutout/images"
)

// Preset names a fixed color treatment.
type Preset string

// Presets offered by the editor.
const (
	Original   Preset = "original"
	LosAngeles Preset = "los_angeles"
	Paris      Preset = "paris"
	Tokyo      Preset = "tokyo"
	London     Preset = "london"
	NewYork    Preset = "new_york"
	Milan      Preset = "milan"
	Antique    Preset = "antique"
	Studio     Preset = "studio"
)

// neutralKelvin is the white point every temperature shift starts from.
const neutralKelvin = 6500

// Presets lists every preset in display order.
func Presets() []Preset {
	return []Preset{Original, LosAngeles, Paris, Tokyo, London, NewYork, Milan, Antique, Studio}
}

// ParsePreset validates a preset name. The empty string means Original.
func ParsePreset(name string) (Preset, error) {
	if name == "" {
		return Original, nil
	}
	for _, p := range Presets() {
		if string(p) == name {
			return p, nil
		}
	}
	return Original, errors.Errorf("unknown preset %q", name)
}

// ApplyPreset applies a named preset.
//
// Original (and any unknown name) returns img itself, so the identity preset is
// exact down to the byte.
//
// Arguments:
// - img: The raster to treat.
// - p: The preset.
//
// Returns:
// - The treated raster with the same bounds, scale and alpha.
//
// @example
// warm := filters.ApplyPreset(img, filters.LosAngeles)
func ApplyPreset(img *images.Image, p Preset) *images.Image {
	switch p {
	case LosAngeles:
		return run(img,
			ColorControls(1.3, 0.02, 1),
			TemperatureTint(neutralKelvin, 7500, 0),
		)
	case Paris:
		return run(img,
			ColorControls(1.1, 0.05, 1),
			TemperatureTint(neutralKelvin, 5800, 10),
		)
	case Tokyo:
		return run(img,
			ColorControls(1.1, 0, 1.25),
			TemperatureTint(neutralKelvin, 4800, 0),
		)
	case London:
		return run(img,
			ColorControls(0.6, 0, 0.9),
			TemperatureTint(neutralKelvin, 5200, 0),
		)
	case NewYork:
		return run(img, Monochrome(), Contrast(1.5))
	case Milan:
		return SharpenLuminance(run(img, ColorControls(1.6, 0, 1.1)), 0.8)
	case Antique:
		return run(img, Sepia(0.8))
	case Studio:
		return run(img, Chrome(), Contrast(1.2))
	default:
		return img
	}
}
