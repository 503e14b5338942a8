package overlay

import (
	"image/color"

	"github.com/nvr-ai/go-cutout/common"
)

// ContentKind discriminates what a sticker draws.
type ContentKind string

// Sticker content kinds.
const (
	// ContentGlyph renders Content as text.
	ContentGlyph ContentKind = "glyph"
	// ContentAsset draws a named image from the AssetResolver.
	ContentAsset ContentKind = "asset"
	// ContentSymbol draws a symbolic icon tinted with the sticker color.
	ContentSymbol ContentKind = "symbol"
)

// ChipStyle is the background behind a text item.
type ChipStyle string

// Chip styles.
const (
	ChipNone        ChipStyle = "none"
	ChipSolid       ChipStyle = "solid"
	ChipTranslucent ChipStyle = "translucent"
)

// Opacity returns the chip fill opacity: 1 for solid, 0.6 for translucent and
// 0 for none.
func (c ChipStyle) Opacity() float64 {
	switch c {
	case ChipSolid:
		return 1
	case ChipTranslucent:
		return 0.6
	default:
		return 0
	}
}

// Alignment of lines inside a text box.
type Alignment string

// Alignments.
const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Sticker is a resolved sticker placement.
type Sticker struct {
	Kind    ContentKind
	Content string
	// Position is the normalized center of the item.
	Position common.Point
	Scale    float64
	// Rotation in degrees, clockwise on screen.
	Rotation float64
	Color    color.NRGBA
}

// Text is a resolved text placement.
type Text struct {
	Text      string
	Font      string
	Color     color.NRGBA
	Chip      ChipStyle
	ChipColor color.NRGBA
	Alignment Alignment
	Position  common.Point
	Scale     float64
	Rotation  float64
	Bold      bool
	Italic    bool
	Underline bool
	AllCaps   bool
	// LetterSpacing and LineSpacing are extra advance and leading in units of
	// the font size.
	LetterSpacing float64
	LineSpacing   float64
}
