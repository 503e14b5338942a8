// Package snapshot defines the immutable parameter set a render is computed
// from, with defaults, validation, hashing and YAML/JSON encoding.
package snapshot

import (
	"encoding/binary"
	"encoding/json"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-cutout/colors"
	"github.com/nvr-ai/go-cutout/common"
	"github.com/nvr-ai/go-cutout/compositor"
	"github.com/nvr-ai/go-cutout/filters"
	"github.com/nvr-ai/go-cutout/geometry"
	"github.com/nvr-ai/go-cutout/overlay"
	"github.com/nvr-ai/go-cutout/sticker"
)

// CurrentVersion is written into new snapshots.
const CurrentVersion = 1

// ErrInvalid is returned by Validate, wrapped with the failing field.
var ErrInvalid = errors.New("invalid snapshot")

// Snapshot is every user-editable render parameter. It is a value: edits
// produce a new Snapshot (see With) and renders never mutate one.
type Snapshot struct {
	Version     int                 `json:"version" yaml:"version"`
	Filter      filters.Preset      `json:"filter" yaml:"filter"`
	Effect      filters.Effect      `json:"effect" yaml:"effect"`
	Adjustments filters.Adjustments `json:"adjustments" yaml:"adjustments"`
	// Rotation in degrees, clockwise.
	Rotation float64          `json:"rotation" yaml:"rotation"`
	Framing  geometry.Framing `json:"framing" yaml:"framing"`
	// Crop is an optional normalized rectangle; it wins over Framing when
	// predicting the canvas size.
	Crop            *common.Rect       `json:"crop,omitempty" yaml:"crop,omitempty"`
	Background      Background         `json:"background" yaml:"background"`
	Stickers        []StickerPlacement `json:"stickers,omitempty" yaml:"stickers,omitempty"`
	Texts           []TextPlacement    `json:"texts,omitempty" yaml:"texts,omitempty"`
	Shadow          Shadow             `json:"shadow" yaml:"shadow"`
	Foreground      common.Transform   `json:"foreground_transform" yaml:"foreground_transform"`
	BackgroundLayer common.Transform   `json:"background_transform" yaml:"background_transform"`
	Canvas          common.Transform   `json:"canvas_transform" yaml:"canvas_transform"`
	Outline         Outline            `json:"outline" yaml:"outline"`
	// StickerSize is the edge of exported stickers in pixels.
	StickerSize int `json:"sticker_size" yaml:"sticker_size"`
}

// Default returns the snapshot a fresh editor session starts from.
//
// @example
// s := snapshot.Default().With(func(s *snapshot.Snapshot) { s.Filter = filters.Paris })
func Default() Snapshot {
	return Snapshot{
		Version:     CurrentVersion,
		Filter:      filters.Original,
		Effect:      filters.EffectNone,
		Adjustments: filters.DefaultAdjustments(),
		Framing:     geometry.Free(),
		Background:  Background{Kind: compositor.BackgroundNone},
		Shadow: Shadow{
			Color:   "#000000",
			Opacity: 0.3,
		},
		Foreground:      common.Identity(),
		BackgroundLayer: common.Identity(),
		Canvas:          common.Identity(),
		Outline:         Outline{Color: "#FFFFFF"},
		StickerSize:     sticker.DefaultSize,
	}
}

// With returns an edited deep copy; s itself is left untouched.
func (s Snapshot) With(edit func(*Snapshot)) Snapshot {
	out := s.Clone()
	edit(&out)
	return out
}

// Clone deep-copies every slice and pointer so the copy can be edited without
// aliasing s. The background raster is shared since rasters are immutable.
func (s Snapshot) Clone() Snapshot {
	out := s
	if s.Crop != nil {
		crop := *s.Crop
		out.Crop = &crop
	}
	if s.Background.Gradient != nil {
		out.Background.Gradient = append([]string(nil), s.Background.Gradient...)
	}
	if s.Stickers != nil {
		out.Stickers = append([]StickerPlacement(nil), s.Stickers...)
	}
	if s.Texts != nil {
		out.Texts = append([]TextPlacement(nil), s.Texts...)
	}
	return out
}

// Normalized fills zero values with their defaults and maps the rotation into
// [0, 360).
func (s Snapshot) Normalized() Snapshot {
	out := s.Clone()
	if out.Filter == "" {
		out.Filter = filters.Original
	}
	if out.Effect == "" {
		out.Effect = filters.EffectNone
	}
	if out.Framing.Kind == "" {
		out.Framing = geometry.Free()
	}
	if out.Background.Kind == "" {
		out.Background.Kind = compositor.BackgroundNone
	}
	if out.StickerSize <= 0 {
		out.StickerSize = sticker.DefaultSize
	}
	out.Rotation = geometry.NormalizeDegrees(out.Rotation)
	out.Foreground = out.Foreground.Normalized()
	out.BackgroundLayer = out.BackgroundLayer.Normalized()
	out.Canvas = out.Canvas.Normalized()
	return out
}

// HasShadow reports whether the shadow would draw anything.
func (s Snapshot) HasShadow() bool {
	return s.Shadow.Resolve().Active()
}

func invalid(field string, err error) error {
	return errors.Wrapf(ErrInvalid, "%s: %v", field, err)
}

func invalidf(field, format string, args ...any) error {
	return errors.Wrapf(ErrInvalid, "%s: "+format, append([]any{field}, args...)...)
}

// Validate checks every range and enum in the snapshot.
//
// Crop and framing may both be set; the crop is applied first and takes
// precedence for the canvas size.
//
// Returns:
// - ErrInvalid wrapped with the first failing field, nil otherwise.
func (s Snapshot) Validate() error {
	if _, err := filters.ParsePreset(string(s.Filter)); err != nil {
		return invalid("filter", err)
	}
	if _, err := filters.ParseEffect(string(s.Effect)); err != nil {
		return invalid("effect", err)
	}
	if err := s.Adjustments.Validate(); err != nil {
		return invalid("adjustments", err)
	}
	if math.IsNaN(s.Rotation) || math.IsInf(s.Rotation, 0) {
		return invalidf("rotation", "%g is not finite", s.Rotation)
	}
	if s.Framing.Kind != "" {
		if err := s.Framing.Validate(); err != nil {
			return invalid("framing", err)
		}
	}
	if s.Crop != nil {
		if err := s.Crop.Validate(); err != nil {
			return invalid("crop", err)
		}
	}
	if err := s.Background.validate(); err != nil {
		return err
	}
	for i, p := range s.Stickers {
		if err := p.validate(); err != nil {
			return errors.Wrapf(err, "sticker %d", i)
		}
	}
	for i, p := range s.Texts {
		if err := p.validate(); err != nil {
			return errors.Wrapf(err, "text %d", i)
		}
	}
	if err := s.Shadow.validate(); err != nil {
		return err
	}
	for name, t := range map[string]common.Transform{
		"foreground_transform": s.Foreground,
		"background_transform": s.BackgroundLayer,
		"canvas_transform":     s.Canvas,
	} {
		if err := t.Normalized().Validate(); err != nil {
			return invalid(name, err)
		}
	}
	if !(s.Outline.Width >= 0) {
		return invalidf("outline.width", "%g must be >= 0", s.Outline.Width)
	}
	if s.Outline.Width > 0 {
		if err := strictColor("outline.color", s.Outline.Color); err != nil {
			return err
		}
	}
	if s.StickerSize < 0 {
		return invalidf("sticker_size", "%d must be >= 0", s.StickerSize)
	}
	return nil
}

// strictColor validates a non-empty hex string.
func strictColor(field, hex string) error {
	if hex == "" {
		return nil
	}
	if _, err := colors.ParseHexStrict(hex); err != nil {
		return invalid(field, err)
	}
	return nil
}

func (b Background) validate() error {
	switch b.Kind {
	case "", compositor.BackgroundNone:
		return nil
	case compositor.BackgroundSolid:
		if b.Color == "" {
			return invalidf("background.color", "solid background needs a color")
		}
		return strictColor("background.color", b.Color)
	case compositor.BackgroundGradient:
		if len(b.Gradient) < 2 {
			return invalidf("background.gradient", "needs at least two stops, got %d", len(b.Gradient))
		}
		for _, stop := range b.Gradient {
			if err := strictColor("background.gradient", stop); err != nil {
				return err
			}
		}
		if _, err := colors.ParseDirection(b.Direction); err != nil {
			return invalid("background.direction", err)
		}
		return nil
	case compositor.BackgroundRaster:
		if b.Raster.IsEmpty() && b.RasterRef == "" {
			return invalidf("background.raster", "raster background has neither a raster nor a reference")
		}
		return nil
	default:
		return invalidf("background.kind", "unknown kind %q", b.Kind)
	}
}

func (s Shadow) validate() error {
	if !(s.Radius >= 0) {
		return invalidf("shadow.radius", "%g must be >= 0", s.Radius)
	}
	if !(s.Opacity >= 0 && s.Opacity <= 1) {
		return invalidf("shadow.opacity", "%g outside [0, 1]", s.Opacity)
	}
	return strictColor("shadow.color", s.Color)
}

func validPosition(p common.Point) bool {
	return p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1
}

func (p StickerPlacement) validate() error {
	switch p.Kind {
	case overlay.ContentGlyph, overlay.ContentAsset, overlay.ContentSymbol:
	default:
		return invalidf("kind", "unknown sticker kind %q", p.Kind)
	}
	if !validPosition(p.Position) {
		return invalidf("position", "(%g, %g) outside the unit square", p.Position.X, p.Position.Y)
	}
	if !(p.Scale > 0) {
		return invalidf("scale", "%g must be > 0", p.Scale)
	}
	return strictColor("color", p.Color)
}

func (p TextPlacement) validate() error {
	switch p.Chip {
	case "", overlay.ChipNone, overlay.ChipSolid, overlay.ChipTranslucent:
	default:
		return invalidf("chip", "unknown chip style %q", p.Chip)
	}
	switch p.Alignment {
	case "", overlay.AlignLeft, overlay.AlignCenter, overlay.AlignRight:
	default:
		return invalidf("alignment", "unknown alignment %q", p.Alignment)
	}
	if !validPosition(p.Position) {
		return invalidf("position", "(%g, %g) outside the unit square", p.Position.X, p.Position.Y)
	}
	if !(p.Scale > 0) {
		return invalidf("scale", "%g must be > 0", p.Scale)
	}
	if err := strictColor("color", p.Color); err != nil {
		return err
	}
	return strictColor("chip_color", p.ChipColor)
}

// Hash is a stable 64-bit digest of the snapshot: xxhash over its canonical
// JSON encoding and the attached background raster's checksum. Equal snapshots
// hash equally; it is the key external render caches use.
func (s Snapshot) Hash() uint64 {
	h := xxhash.New()
	data, err := json.Marshal(s)
	if err != nil {
		// NaN and Inf fields do not marshal.
		data = []byte(err.Error())
	}
	_, _ = h.Write(data)
	if !s.Background.Raster.IsEmpty() {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], s.Background.Raster.Checksum())
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}
