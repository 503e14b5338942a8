// Package colors converts between hex strings and RGBA values and synthesizes
// the solid and gradient rasters used as composite backgrounds.
package colors

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrColorParse is returned by ParseHexStrict for malformed hex strings.
var ErrColorParse = errors.New("malformed hex color")

// Black is the fallback ParseHex returns for strings it cannot read.
var Black = color.NRGBA{A: 255}

// ParseHex converts a hex string to a straight-alpha color.
//
// Accepted forms, with or without a leading '#':
// - RGB: each nibble doubled, opaque.
// - RRGGBB: opaque.
// - AARRGGBB: alpha first.
//
// Any other input yields opaque black. Use ParseHexStrict to detect that case.
//
// Arguments:
// - s: The hex string.
//
// Returns:
// - The parsed color, or Black.
//
// @example
// c := colors.ParseHex("#80FF0000") // half-transparent red
func ParseHex(s string) color.NRGBA {
	c, err := ParseHexStrict(s)
	if err != nil {
		return Black
	}
	return c
}

// ParseHexStrict is ParseHex without the fallback: malformed input fails with
// ErrColorParse.
func ParseHexStrict(s string) (color.NRGBA, error) {
	digits := strings.TrimPrefix(strings.TrimSpace(s), "#")
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return Black, errors.Wrapf(ErrColorParse, "%q", s)
	}

	switch len(digits) {
	case 3:
		return color.NRGBA{
			R: uint8(v>>8&0xF) * 17,
			G: uint8(v>>4&0xF) * 17,
			B: uint8(v&0xF) * 17,
			A: 255,
		}, nil
	case 6:
		return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
	case 8:
		return color.NRGBA{A: uint8(v >> 24), R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
	default:
		return Black, errors.Wrapf(ErrColorParse, "%q has %d digits", s, len(digits))
	}
}

// ToHex formats c as "#RRGGBB" when it is opaque and "#AARRGGBB" otherwise, so
// ParseHex(ToHex(c)) == c for every straight-alpha color.
func ToHex(c color.NRGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.A, c.R, c.G, c.B)
}

// WithOpacity scales the alpha of c by opacity in [0, 1].
func WithOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	switch {
	case opacity <= 0:
		c.A = 0
	case opacity < 1:
		c.A = uint8(float64(c.A)*opacity + 0.5)
	}
	return c
}
