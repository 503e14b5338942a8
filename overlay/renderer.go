// Package overlay burns stickers and text items into a raster. Items are placed
// by normalized center position, sized relative to the canvas width and
// rotated about their center; list order is z-order.
package overlay

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/nvr-ai/go-cutout/colors"
	"github.com/nvr-ai/go-cutout/common"
	"github.com/nvr-ai/go-cutout/images"
	"github.com/nvr-ai/go-cutout/masks"
)

// Sizes relative to the canvas width.
const (
	stickerBase = 0.15
	glyphFill   = 0.8
	textBase    = 0.08
	chipPadding = 0.5
	chipCorner  = 0.8
)

// Renderer draws overlay items. Its dependencies are read-only, so one Renderer
// may serve concurrent renders.
type Renderer struct {
	Fonts  *FontBook
	Assets AssetResolver
}

// NewRenderer returns a renderer using fonts for text and glyph stickers and
// assets for asset and symbol stickers. Either may be nil, in which case the
// items that need it are skipped.
func NewRenderer(fonts *FontBook, assets AssetResolver) *Renderer {
	return &Renderer{Fonts: fonts, Assets: assets}
}

// RenderStickers draws items onto a copy of img in list order.
//
// Arguments:
// - img: The canvas.
// - items: Stickers, bottom first.
//
// Returns:
// - A new image, or img itself when there is nothing to draw.
//
// @example
// out := r.RenderStickers(img, []overlay.Sticker{{Kind: overlay.ContentGlyph, Content: "A", Position: common.Point{X: 0.5, Y: 0.5}, Scale: 1}})
func (r *Renderer) RenderStickers(img *images.Image, items []Sticker) *images.Image {
	if len(items) == 0 || img.IsEmpty() {
		return img
	}
	canvas := imaging.Clone(img.Pixels)
	for _, item := range items {
		patch := r.stickerPatch(item, img.Width())
		if patch == nil {
			continue
		}
		stamp(canvas, patch, anchor(item.Position, img.Bounds()), item.Rotation)
	}
	return img.Derive(canvas)
}

// RenderTexts draws text items onto a copy of img in list order.
func (r *Renderer) RenderTexts(img *images.Image, items []Text) *images.Image {
	if len(items) == 0 || img.IsEmpty() {
		return img
	}
	canvas := imaging.Clone(img.Pixels)
	for _, item := range items {
		patch := r.textPatch(item, img.Width())
		if patch == nil {
			continue
		}
		stamp(canvas, patch, anchor(item.Position, img.Bounds()), item.Rotation)
	}
	return img.Derive(canvas)
}

func anchor(p common.Point, bounds image.Rectangle) common.Point {
	return common.Point{X: p.X * float64(bounds.Dx()), Y: p.Y * float64(bounds.Dy())}
}

func itemScale(s float64) float64 {
	if s <= 0 {
		return 1
	}
	return s
}

// stamp draws patch onto dst with its center on at, rotated clockwise by
// degrees about that center. Unrotated patches land on whole pixels. Only the
// pixels under the patch are rewritten.
func stamp(dst *image.NRGBA, patch image.Image, at common.Point, degrees float64) {
	b := patch.Bounds()
	cx, cy := float64(b.Dx())/2, float64(b.Dy())/2

	if math.Mod(degrees, 360) == 0 {
		pt := image.Pt(int(math.Round(at.X-cx)), int(math.Round(at.Y-cy)))
		draw.Draw(dst, b.Sub(b.Min).Add(pt), patch, b.Min, draw.Over)
		return
	}

	sin, cos := math.Sincos(degrees * math.Pi / 180)
	s2d := f64.Aff3{
		cos, -sin, at.X - cos*cx + sin*cy,
		sin, cos, at.Y - sin*cx - cos*cy,
	}
	draw.BiLinear.Transform(dst, s2d, patch, b, draw.Over, nil)
}

// stickerPatch renders one sticker into a square box of 0.15 x width x scale.
func (r *Renderer) stickerPatch(s Sticker, canvasWidth int) image.Image {
	box := stickerBase * float64(canvasWidth) * itemScale(s.Scale)
	n := int(math.Ceil(box))
	if n < 1 {
		return nil
	}

	switch s.Kind {
	case ContentAsset:
		if r.Assets == nil {
			return nil
		}
		src, ok := r.Assets.Asset(s.Content)
		if !ok {
			return nil
		}
		return fitInto(src, n)
	case ContentSymbol:
		if r.Assets == nil {
			return nil
		}
		src, ok := r.Assets.Symbol(s.Content)
		if !ok {
			return nil
		}
		tinted := masks.Flood(masks.AlphaMask(images.FromImage(src)), s.Color)
		return fitInto(tinted.Pixels, n)
	default:
		return r.glyphPatch(s, box, n)
	}
}

// glyphPatch renders s.Content at 0.8 x box, centered in the box.
func (r *Renderer) glyphPatch(s Sticker, box float64, n int) image.Image {
	if r.Fonts == nil || s.Content == "" {
		return nil
	}
	face := r.Fonts.Face(FamilyGo, false, false, box*glyphFill)
	if face == nil {
		return nil
	}

	dc := gg.NewContext(n, n)
	defer dc.Close()

	m := face.Metrics()
	x := (float64(n) - face.Advance(s.Content)) / 2
	baseline := float64(n)/2 + (m.Ascent-m.Descent)/2
	dc.SetFont(face)
	setColor(dc, s.Color)
	dc.DrawString(s.Content, x, baseline)
	return dc.Image()
}

// setColor sets a straight-alpha color as the current brush.
func setColor(dc *gg.Context, c color.NRGBA) {
	dc.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, float64(c.A)/255)
}

// fitInto aspect-fits src into a transparent n x n square, centered.
func fitInto(src image.Image, n int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, n, n))
	sb := src.Bounds()
	if sb.Empty() {
		return dst
	}
	k := math.Min(float64(n)/float64(sb.Dx()), float64(n)/float64(sb.Dy()))
	w := max(1, int(math.Round(float64(sb.Dx())*k)))
	h := max(1, int(math.Round(float64(sb.Dy())*k)))
	x, y := (n-w)/2, (n-h)/2
	draw.CatmullRom.Scale(dst, image.Rect(x, y, x+w, y+h), src, sb, draw.Src, nil)
	return dst
}

// textLayout is the measured geometry of a text item, in patch pixels.
type textLayout struct {
	face     text.Face
	lines    []string
	widths   []float64
	offsets  []float64
	width    float64
	height   float64
	fontSize float64
	pad      float64
	tracking float64
	leading  float64
	metrics  text.Metrics
}

// boxSize is the chip size: the text box plus padding on every side, half as
// much vertically.
func (l textLayout) boxSize() (w, h float64) {
	return l.width + 2*l.pad, l.height + l.pad
}

// baseline returns the y of line i's baseline inside the patch.
func (l textLayout) baseline(i int) float64 {
	return l.pad/2 + float64(i)*l.leading + l.metrics.Ascent
}

func (r *Renderer) layout(t Text, canvasWidth int) (textLayout, bool) {
	s := t.Text
	if t.AllCaps {
		s = strings.ToUpper(s)
	}
	if strings.TrimSpace(s) == "" || r.Fonts == nil {
		return textLayout{}, false
	}

	size := textBase * float64(canvasWidth) * itemScale(t.Scale)
	face := r.Fonts.Face(t.Font, t.Bold, t.Italic, size)
	if face == nil || size <= 0 {
		return textLayout{}, false
	}

	l := textLayout{
		face:     face,
		lines:    strings.Split(s, "\n"),
		fontSize: size,
		pad:      chipPadding * size,
		tracking: t.LetterSpacing * size,
		metrics:  face.Metrics(),
	}
	l.leading = max(0, l.metrics.LineHeight()+t.LineSpacing*size)

	l.widths = make([]float64, len(l.lines))
	for i, line := range l.lines {
		l.widths[i] = lineWidth(face, line, l.tracking)
		l.width = max(l.width, l.widths[i])
	}
	l.height = float64(len(l.lines)-1)*l.leading + l.metrics.LineHeight()

	l.offsets = make([]float64, len(l.lines))
	for i, w := range l.widths {
		switch t.Alignment {
		case AlignLeft:
			l.offsets[i] = l.pad
		case AlignRight:
			l.offsets[i] = l.pad + l.width - w
		default:
			l.offsets[i] = l.pad + (l.width-w)/2
		}
	}
	return l, true
}

// lineWidth is the advance of line with tracking added between characters.
func lineWidth(face text.Face, line string, tracking float64) float64 {
	if tracking == 0 {
		return face.Advance(line)
	}
	n := 0
	w := 0.0
	for _, r := range line {
		w += face.Advance(string(r))
		n++
	}
	if n > 1 {
		w += tracking * float64(n-1)
	}
	return max(0, w)
}

// textPatch draws the chip, the lines and their underlines of t upright.
func (r *Renderer) textPatch(t Text, canvasWidth int) image.Image {
	l, ok := r.layout(t, canvasWidth)
	if !ok {
		return nil
	}
	bw, bh := l.boxSize()
	pw, ph := int(math.Ceil(bw)), int(math.Ceil(bh))
	if pw < 1 || ph < 1 {
		return nil
	}

	dc := gg.NewContext(pw, ph)
	defer dc.Close()

	if opacity := t.Chip.Opacity(); opacity > 0 {
		chip := t.ChipColor
		chip.A = 255
		setColor(dc, colors.WithOpacity(chip, opacity))
		dc.DrawRoundedRectangle(0, 0, bw, bh, chipCorner*l.pad)
		_ = dc.Fill()
	}

	dc.SetFont(l.face)
	setColor(dc, t.Color)
	for i, line := range l.lines {
		x, y := l.offsets[i], l.baseline(i)
		if l.tracking == 0 {
			dc.DrawString(line, x, y)
		} else {
			for _, ch := range line {
				glyph := string(ch)
				dc.DrawString(glyph, x, y)
				x += l.face.Advance(glyph) + l.tracking
			}
		}
		if t.Underline && l.widths[i] > 0 {
			thickness := max(1, l.fontSize/15)
			dc.DrawRectangle(l.offsets[i], y+l.fontSize*0.1, l.widths[i], thickness)
			_ = dc.Fill()
		}
	}
	return dc.Image()
}
