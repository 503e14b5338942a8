package filters

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-cutout/images"
)

// swatch is a small translucent image with a range of colors.
func swatch() *images.Image {
	img := images.New(24, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 24; x++ {
			img.Pixels.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 10),
				G: uint8(y * 15),
				B: uint8(255 - x*10),
				A: uint8(40 + (x+y)*6),
			})
		}
	}
	return img
}

func alphaOf(img *images.Image) []uint8 {
	var out []uint8
	for i := 3; i < len(img.Pixels.Pix); i += 4 {
		out = append(out, img.Pixels.Pix[i])
	}
	return out
}

func TestOriginalPresetIsIdentity(t *testing.T) {
	img := swatch()
	out := ApplyPreset(img, Original)
	assert.Equal(t, img.Checksum(), out.Checksum())
	assert.Equal(t, img.Pixels.Pix, out.Pixels.Pix)
}

func TestPresetsPreserveAlphaAndBounds(t *testing.T) {
	img := swatch()
	img.Scale = 2
	for _, p := range Presets() {
		t.Run(string(p), func(t *testing.T) {
			out := ApplyPreset(img, p)
			require.Equal(t, img.Bounds(), out.Bounds())
			assert.Equal(t, 2.0, out.Scale)
			assert.Equal(t, alphaOf(img), alphaOf(out))
		})
	}
}

func TestPresetsDoNotMutateInput(t *testing.T) {
	img := swatch()
	sum := img.Checksum()
	for _, p := range Presets() {
		ApplyPreset(img, p)
	}
	for _, e := range Effects() {
		ApplyEffect(img, e)
	}
	assert.Equal(t, sum, img.Checksum())
}

func TestPresetsAreDeterministic(t *testing.T) {
	for _, p := range Presets() {
		a := ApplyPreset(swatch(), p)
		b := ApplyPreset(swatch(), p)
		assert.Equal(t, a.Checksum(), b.Checksum(), string(p))
	}
}

func TestNewYorkIsGrey(t *testing.T) {
	out := ApplyPreset(swatch(), NewYork)
	for y := 0; y < out.Height(); y++ {
		for x := 0; x < out.Width(); x++ {
			c := out.NRGBAAt(x, y)
			assert.Equal(t, c.R, c.G)
			assert.Equal(t, c.G, c.B)
		}
	}
}

func TestTemperatureDirection(t *testing.T) {
	grey := images.Solid(4, 4, color.NRGBA{R: 128, G: 128, B: 128, A: 255})

	warm := Apply(grey, TemperatureTint(6500, 7500, 0)).NRGBAAt(0, 0)
	assert.Greater(t, warm.R, warm.B, "raising the target warms")

	cool := Apply(grey, TemperatureTint(6500, 4800, 0)).NRGBAAt(0, 0)
	assert.Greater(t, cool.B, cool.R, "lowering the target cools")

	pink := Apply(grey, TemperatureTint(6500, 6500, 10)).NRGBAAt(0, 0)
	assert.Less(t, pink.G, pink.R, "positive tint adds magenta")
}

func TestAdjustments(t *testing.T) {
	img := swatch()
	assert.Same(t, img, ApplyAdjustments(img, DefaultAdjustments()))

	brighter := ApplyAdjustments(img, Adjustments{Brightness: 1.2, Contrast: 1, Saturation: 1})
	assert.Equal(t, img.Bounds(), brighter.Bounds())
	assert.Equal(t, alphaOf(img), alphaOf(brighter))
	assert.Greater(t, brighter.NRGBAAt(0, 0).G, img.NRGBAAt(0, 0).G)

	grey := ApplyAdjustments(img, Adjustments{Brightness: 1, Contrast: 1, Saturation: 0})
	c := grey.NRGBAAt(5, 5)
	assert.InDelta(t, c.R, c.B, 1)

	blurred := ApplyAdjustments(img, Adjustments{Brightness: 1, Contrast: 1, Saturation: 1, Blur: 3})
	assert.Equal(t, img.Bounds(), blurred.Bounds())
	assert.NotEqual(t, img.Checksum(), blurred.Checksum())
}

func TestAdjustmentsValidate(t *testing.T) {
	assert.NoError(t, DefaultAdjustments().Validate())
	assert.Error(t, Adjustments{Brightness: 2.1, Contrast: 1, Saturation: 1}.Validate())
	assert.Error(t, Adjustments{Brightness: 1, Contrast: -0.1, Saturation: 1}.Validate())
	assert.Error(t, Adjustments{Brightness: 1, Contrast: 1, Saturation: 1, Blur: -1}.Validate())
}

func TestEffects(t *testing.T) {
	img := swatch()
	assert.Same(t, img, ApplyEffect(img, EffectNone))

	for _, e := range Effects()[1:] {
		t.Run(string(e), func(t *testing.T) {
			out := ApplyEffect(img, e)
			require.Equal(t, img.Bounds(), out.Bounds())
			if e != EffectBlur {
				assert.Equal(t, alphaOf(img), alphaOf(out))
			}
			again := ApplyEffect(img, e)
			assert.Equal(t, out.Checksum(), again.Checksum())
		})
	}
}

func TestVignetteDarkensCorners(t *testing.T) {
	img := images.Solid(101, 101, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	out := ApplyEffect(img, EffectVignette)
	center := out.NRGBAAt(50, 50)
	corner := out.NRGBAAt(0, 0)
	assert.Greater(t, center.R, corner.R)
	assert.InDelta(t, 200, center.R, 1)
}

func TestPosterizeLevels(t *testing.T) {
	out := ApplyEffect(swatch(), EffectPosterize)
	allowed := map[uint8]bool{0: true, 51: true, 102: true, 153: true, 204: true, 255: true}
	for i, v := range out.Pixels.Pix {
		if i%4 == 3 {
			continue
		}
		assert.True(t, allowed[v], "value %d at %d", v, i)
	}
}

func TestParsePresetAndEffect(t *testing.T) {
	p, err := ParsePreset("tokyo")
	require.NoError(t, err)
	assert.Equal(t, Tokyo, p)
	p, err = ParsePreset("")
	require.NoError(t, err)
	assert.Equal(t, Original, p)
	_, err = ParsePreset("mars")
	assert.Error(t, err)

	e, err := ParseEffect("grain")
	require.NoError(t, err)
	assert.Equal(t, EffectGrain, e)
	_, err = ParseEffect("sparkle")
	assert.Error(t, err)
}
