package snapshot

import (
	"github.com/nvr-ai/go-cutout/colors"
	"github.com/nvr-ai/go-cutout/common"
	"github.com/nvr-ai/go-cutout/compositor"
	"github.com/nvr-ai/go-cutout/images"
	"github.com/nvr-ai/go-cutout/overlay"
)

// Background describes what the subject is composited over. Kind selects the
// one active source.
type Background struct {
	Kind compositor.BackgroundKind `json:"kind" yaml:"kind"`
	// Color is a hex string for solid backgrounds.
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
	// Gradient holds two or more hex stops.
	Gradient  []string `json:"gradient,omitempty" yaml:"gradient,omitempty"`
	Direction string   `json:"direction,omitempty" yaml:"direction,omitempty"`
	// RasterRef names the attached photo for raster backgrounds.
	RasterRef string `json:"raster_ref,omitempty" yaml:"raster_ref,omitempty"`
	// Raster is the attached photo. It is never serialized.
	Raster *images.Image `json:"-" yaml:"-"`
}

// IsNone reports whether nothing will be drawn behind the subject.
func (b Background) IsNone() bool {
	switch b.Kind {
	case compositor.BackgroundSolid:
		return false
	case compositor.BackgroundGradient:
		return len(b.Gradient) == 0
	case compositor.BackgroundRaster:
		return b.Raster.IsEmpty()
	default:
		return true
	}
}

// Spec resolves hex strings and the direction name for the compositor.
func (b Background) Spec() compositor.BackgroundSpec {
	spec := compositor.BackgroundSpec{Kind: b.Kind, Raster: b.Raster}
	if b.Kind == "" {
		spec.Kind = compositor.BackgroundNone
	}
	spec.Color = colors.ParseHex(b.Color)
	for _, stop := range b.Gradient {
		spec.Gradient = append(spec.Gradient, colors.ParseHex(stop))
	}
	spec.Direction, _ = colors.ParseDirection(b.Direction)
	return spec
}

// Shadow is the drop shadow in design units against a 1000px canvas.
type Shadow struct {
	Radius  float64 `json:"radius" yaml:"radius"`
	X       float64 `json:"x" yaml:"x"`
	Y       float64 `json:"y" yaml:"y"`
	Color   string  `json:"color" yaml:"color"`
	Opacity float64 `json:"opacity" yaml:"opacity"`
}

// Resolve converts the shadow for the compositor.
func (s Shadow) Resolve() compositor.Shadow {
	return compositor.Shadow{
		Radius:  s.Radius,
		X:       s.X,
		Y:       s.Y,
		Color:   colors.ParseHex(s.Color),
		Opacity: s.Opacity,
	}
}

// Outline is the stroke around the subject; width is against a 512px canvas.
type Outline struct {
	Width float64 `json:"width" yaml:"width"`
	Color string  `json:"color" yaml:"color"`
}

// Resolve converts the outline for the compositor.
func (o Outline) Resolve() compositor.Outline {
	return compositor.Outline{Width: o.Width, Color: colors.ParseHex(o.Color)}
}

// StickerPlacement is one sticker on the canvas.
type StickerPlacement struct {
	ID      string              `json:"id" yaml:"id"`
	Kind    overlay.ContentKind `json:"kind" yaml:"kind"`
	Content string              `json:"content" yaml:"content"`
	// Position is the normalized center.
	Position common.Point `json:"position" yaml:"position"`
	Scale    float64      `json:"scale" yaml:"scale"`
	// Rotation in degrees.
	Rotation float64 `json:"rotation" yaml:"rotation"`
	// Color tints symbol stickers and colors glyphs.
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Resolve converts the placement for the overlay renderer.
func (p StickerPlacement) Resolve() overlay.Sticker {
	c := colors.Black
	if p.Color != "" {
		c = colors.ParseHex(p.Color)
	}
	return overlay.Sticker{
		Kind:     p.Kind,
		Content:  p.Content,
		Position: p.Position,
		Scale:    p.Scale,
		Rotation: p.Rotation,
		Color:    c,
	}
}

// TextPlacement is one text item on the canvas.
type TextPlacement struct {
	ID        string            `json:"id" yaml:"id"`
	Text      string            `json:"text" yaml:"text"`
	Font      string            `json:"font,omitempty" yaml:"font,omitempty"`
	Color     string            `json:"color" yaml:"color"`
	Chip      overlay.ChipStyle `json:"chip,omitempty" yaml:"chip,omitempty"`
	ChipColor string            `json:"chip_color,omitempty" yaml:"chip_color,omitempty"`
	Alignment overlay.Alignment `json:"alignment,omitempty" yaml:"alignment,omitempty"`
	Position  common.Point      `json:"position" yaml:"position"`
	Scale     float64           `json:"scale" yaml:"scale"`
	Rotation  float64           `json:"rotation" yaml:"rotation"`
	Bold      bool              `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic    bool              `json:"italic,omitempty" yaml:"italic,omitempty"`
	Underline bool              `json:"underline,omitempty" yaml:"underline,omitempty"`
	AllCaps   bool              `json:"all_caps,omitempty" yaml:"all_caps,omitempty"`
	// LetterSpacing and LineSpacing are in units of the font size.
	LetterSpacing float64 `json:"letter_spacing,omitempty" yaml:"letter_spacing,omitempty"`
	LineSpacing   float64 `json:"line_spacing,omitempty" yaml:"line_spacing,omitempty"`
}

// Resolve converts the placement for the overlay renderer.
func (p TextPlacement) Resolve() overlay.Text {
	chip := p.Chip
	if chip == "" {
		chip = overlay.ChipNone
	}
	align := p.Alignment
	if align == "" {
		align = overlay.AlignCenter
	}
	fg := colors.ParseHex("#FFFFFF")
	if p.Color != "" {
		fg = colors.ParseHex(p.Color)
	}
	return overlay.Text{
		Text:          p.Text,
		Font:          p.Font,
		Color:         fg,
		Chip:          chip,
		ChipColor:     colors.ParseHex(p.ChipColor),
		Alignment:     align,
		Position:      p.Position,
		Scale:         p.Scale,
		Rotation:      p.Rotation,
		Bold:          p.Bold,
		Italic:        p.Italic,
		Underline:     p.Underline,
		AllCaps:       p.AllCaps,
		LetterSpacing: p.LetterSpacing,
		LineSpacing:   p.LineSpacing,
	}
}
