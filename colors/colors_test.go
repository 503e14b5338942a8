package colors

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{in: "#F00", want: color.NRGBA{R: 255, A: 255}},
		{in: "abc", want: color.NRGBA{R: 0xAA, G: 0xBB, B: 0xCC, A: 255}},
		{in: "#1E90FF", want: color.NRGBA{R: 0x1E, G: 0x90, B: 0xFF, A: 255}},
		{in: "#801E90FF", want: color.NRGBA{R: 0x1E, G: 0x90, B: 0xFF, A: 0x80}},
		{in: "00000000", want: color.NRGBA{}},
		{in: "", want: Black},
		{in: "#12345", want: Black},
		{in: "#GGGGGG", want: Black},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseHex(tt.in))
		})
	}
}

func TestParseHexStrict(t *testing.T) {
	_, err := ParseHexStrict("#12345")
	assert.ErrorIs(t, err, ErrColorParse)
	_, err = ParseHexStrict("zzz")
	assert.ErrorIs(t, err, ErrColorParse)

	c, err := ParseHexStrict(" #0F0 ")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, c)
}

func TestHexRoundTrip(t *testing.T) {
	for a := 0; a < 256; a += 15 {
		for v := 0; v < 256; v += 17 {
			c := color.NRGBA{R: uint8(v), G: uint8(255 - v), B: uint8(v / 2), A: uint8(a)}
			assert.Equal(t, c, ParseHex(ToHex(c)), ToHex(c))
		}
	}
	assert.Equal(t, "#FF0000", ToHex(color.NRGBA{R: 255, A: 255}))
	assert.Equal(t, "#80FF0000", ToHex(color.NRGBA{R: 255, A: 0x80}))
}

func TestWithOpacity(t *testing.T) {
	c := color.NRGBA{R: 10, A: 200}
	assert.Equal(t, uint8(0), WithOpacity(c, 0).A)
	assert.Equal(t, uint8(100), WithOpacity(c, 0.5).A)
	assert.Equal(t, uint8(200), WithOpacity(c, 1).A)
}

func TestSolidIsOpaque(t *testing.T) {
	img := Solid(color.NRGBA{B: 255, A: 10}, 8, 4)
	assert.Equal(t, 8, img.Width())
	assert.Equal(t, 4, img.Height())
	assert.True(t, img.IsOpaque())
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, img.NRGBAAt(7, 3))
}

func TestLinearGradient(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}

	img := LinearGradient([]color.NRGBA{red, blue}, 4, 200, TopToBottom)
	require.True(t, img.IsOpaque())

	top := img.NRGBAAt(0, 0)
	bottom := img.NRGBAAt(3, 199)
	assert.Greater(t, top.R, uint8(245))
	assert.Less(t, top.B, uint8(10))
	assert.Greater(t, bottom.B, uint8(245))
	assert.Less(t, bottom.R, uint8(10))

	// Rows are uniform for a vertical gradient.
	assert.Equal(t, img.NRGBAAt(0, 100), img.NRGBAAt(3, 100))

	horiz := LinearGradient([]color.NRGBA{red, blue}, 200, 4, LeftToRight)
	assert.Equal(t, horiz.NRGBAAt(50, 0), horiz.NRGBAAt(50, 3))
	assert.Greater(t, horiz.NRGBAAt(0, 0).R, horiz.NRGBAAt(199, 0).R)

	assert.Equal(t, red, LinearGradient([]color.NRGBA{red}, 2, 2, TopToBottom).NRGBAAt(1, 1))
	assert.Equal(t, Black, LinearGradient(nil, 2, 2, TopToBottom).NRGBAAt(0, 0))
}

func TestLinearGradientIsDeterministic(t *testing.T) {
	stops := []color.NRGBA{ParseHex("#FF8A00"), ParseHex("#E52E71"), ParseHex("#2E71E5")}
	a := LinearGradient(stops, 64, 300, TopLeftToBottomRight)
	b := LinearGradient(stops, 64, 300, TopLeftToBottomRight)
	assert.Equal(t, a.Checksum(), b.Checksum())
}

func TestParseDirection(t *testing.T) {
	for _, d := range []Direction{TopToBottom, BottomToTop, LeftToRight, RightToLeft, TopLeftToBottomRight} {
		got, err := ParseDirection(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}

	d, err := ParseDirection("")
	require.NoError(t, err)
	assert.Equal(t, TopToBottom, d)

	_, err = ParseDirection("sideways")
	assert.Error(t, err)
	assert.Equal(t, "top_to_bottom", Direction(99).String())
}
