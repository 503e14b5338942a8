package masks

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-cutout/images"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
)

// squareOn draws an opaque red rectangle r on a transparent w x h canvas.
func squareOn(w, h int, r image.Rectangle) *images.Image {
	img := images.New(w, h)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Pixels.SetNRGBA(x, y, red)
		}
	}
	return img
}

func TestTrimToContentBounds(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		rect image.Rectangle
	}{
		{name: "centered", w: 100, h: 80, rect: image.Rect(30, 20, 50, 60)},
		{name: "touches corner", w: 40, h: 40, rect: image.Rect(0, 0, 7, 3)},
		{name: "touches far corner", w: 40, h: 40, rect: image.Rect(33, 37, 40, 40)},
		{name: "single pixel", w: 9, h: 9, rect: image.Rect(4, 5, 5, 6)},
		{name: "full frame", w: 12, h: 5, rect: image.Rect(0, 0, 12, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TrimToContentBounds(squareOn(tt.w, tt.h, tt.rect))
			require.NoError(t, err)
			assert.Equal(t, tt.rect, got)
		})
	}
}

func TestTrimToContentBoundsFaintPixels(t *testing.T) {
	img := images.New(50, 50)
	img.Pixels.SetNRGBA(3, 40, color.NRGBA{A: 1})
	img.Pixels.SetNRGBA(45, 2, color.NRGBA{B: 9, A: 1})
	got, err := TrimToContentBounds(img)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(3, 2, 46, 41), got)
}

func TestTrimFullyTransparent(t *testing.T) {
	_, err := TrimToContentBounds(images.New(64, 64))
	assert.ErrorIs(t, err, ErrFullyTransparent)

	_, err = TrimToContentBounds(images.New(0, 0))
	assert.ErrorIs(t, err, ErrFullyTransparent)

	out, err := Trim(images.New(10, 10))
	assert.ErrorIs(t, err, ErrFullyTransparent)
	assert.Nil(t, out)
}

func TestTrim(t *testing.T) {
	img := squareOn(100, 80, image.Rect(30, 20, 50, 60))
	img.Scale = 2
	out, err := Trim(img)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(20, 40), out.Bounds().Size())
	assert.True(t, out.IsOpaque())
	assert.Equal(t, 2.0, out.Scale)

	full := images.Solid(5, 5, red)
	same, err := Trim(full)
	require.NoError(t, err)
	assert.Same(t, full, same)
}

func TestAlphaMask(t *testing.T) {
	img := images.New(3, 1)
	img.Pixels.SetNRGBA(0, 0, color.NRGBA{R: 9, A: 10})
	img.Pixels.SetNRGBA(2, 0, color.NRGBA{B: 1, A: 255})
	mask := AlphaMask(img)
	assert.Equal(t, []uint8{10, 0, 255}, mask.Pix)

	mi := AlphaMaskImage(img)
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 10}, mi.NRGBAAt(0, 0))
	assert.Zero(t, mi.NRGBAAt(1, 0).A)
}

func TestDilateGrowsCircularly(t *testing.T) {
	mask := image.NewAlpha(image.Rect(0, 0, 41, 41))
	mask.SetAlpha(20, 20, color.Alpha{A: 255})

	grown := Dilate(mask, 6)
	assert.Equal(t, uint8(255), grown.AlphaAt(26, 20).A)
	assert.Equal(t, uint8(255), grown.AlphaAt(20, 14).A)
	assert.Equal(t, uint8(255), grown.AlphaAt(24, 24).A, "inside the disc")
	assert.Zero(t, grown.AlphaAt(25, 25).A, "outside the disc")
	assert.Zero(t, grown.AlphaAt(27, 20).A)
	assert.Zero(t, mask.AlphaAt(26, 20).A, "input untouched")
}

func TestRamp(t *testing.T) {
	mask := image.NewAlpha(image.Rect(0, 0, 5, 1))
	copy(mask.Pix, []uint8{0, 64, 128, 192, 255})
	got := Ramp(mask, 64, 192)
	assert.Equal(t, []uint8{0, 0, 128, 255, 255}, got.Pix)

	hard := Ramp(mask, 100, 100)
	assert.Equal(t, []uint8{0, 0, 255, 255, 255}, hard.Pix)
}

func TestSmoothKeepsBounds(t *testing.T) {
	mask := image.NewAlpha(image.Rect(0, 0, 30, 20))
	mask.SetAlpha(15, 10, color.Alpha{A: 255})
	soft := Smooth(mask, 2)
	assert.Equal(t, mask.Rect, soft.Rect)
}

func TestSmoothRepeatsWithRecycledPlanes(t *testing.T) {
	a := AlphaMask(squareOn(64, 48, image.Rect(20, 10, 44, 38)))
	b := AlphaMask(squareOn(64, 48, image.Rect(0, 0, 10, 48)))

	first := Smooth(a, 3)
	for i := 0; i < 5; i++ {
		_ = Smooth(b, 3)
		again := Smooth(a, 3)
		assert.Equal(t, first.Pix, again.Pix, "pass %d", i)
	}
}

func TestFlood(t *testing.T) {
	mask := image.NewAlpha(image.Rect(0, 0, 2, 1))
	mask.Pix[0] = 255
	mask.Pix[1] = 128
	out := Flood(mask, color.NRGBA{G: 200, A: 128})
	assert.Equal(t, color.NRGBA{G: 200, A: 128}, out.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{G: 200, A: 64}, out.NRGBAAt(1, 0))
}

func TestOutline(t *testing.T) {
	img := squareOn(60, 60, image.Rect(20, 20, 40, 40))

	out := Outline(img, 5, green, OutlineOptions{})
	require.Equal(t, img.Bounds(), out.Bounds())
	assert.Equal(t, red, out.NRGBAAt(30, 30), "subject drawn over the stroke")
	assert.Equal(t, green, out.NRGBAAt(17, 30), "inside the stroke")
	assert.Equal(t, green, out.NRGBAAt(30, 42))
	assert.Zero(t, out.NRGBAAt(10, 30).A, "beyond the stroke")
	assert.Zero(t, img.NRGBAAt(17, 30).A, "input untouched")

	assert.Same(t, img, Outline(img, 0, green, OutlineOptions{}))
}

func TestOutlineExpand(t *testing.T) {
	img := images.Solid(20, 20, red)
	out := Outline(img, 5, green, OutlineOptions{Expand: true})
	require.Equal(t, image.Pt(30, 30), out.Bounds().Size())
	assert.Equal(t, red, out.NRGBAAt(15, 15))
	assert.Equal(t, green, out.NRGBAAt(2, 15))
}
