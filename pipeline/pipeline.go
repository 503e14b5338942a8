// Package pipeline sequences the geometry, filter, composite and overlay stages
// for one subject and one edit snapshot.
//
// Renders are pure functions of (subject, snapshot, UI reference width): no
// state is kept between calls, so independent renders may run concurrently. A
// failing stage never fails the render; it is logged and the raster from
// before that stage is carried forward.
package pipeline

import (
	"image"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/nvr-ai/go-cutout/compositor"
	"github.com/nvr-ai/go-cutout/filters"
	"github.com/nvr-ai/go-cutout/geometry"
	"github.com/nvr-ai/go-cutout/images"
	"github.com/nvr-ai/go-cutout/overlay"
	"github.com/nvr-ai/go-cutout/profiler"
	"github.com/nvr-ai/go-cutout/snapshot"
	"github.com/nvr-ai/go-cutout/sticker"
)

// ErrNoSubject is returned when a render is requested without a subject.
var ErrNoSubject = errors.New("no subject image")

// Renderer runs renders. Its dependencies are fixed at construction and it is
// safe for concurrent use.
type Renderer struct {
	overlay  *overlay.Renderer
	assets   overlay.AssetResolver
	profiler *profiler.Profiler
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithOverlay uses r to draw stickers and text.
func WithOverlay(r *overlay.Renderer) Option {
	return func(rd *Renderer) { rd.overlay = r }
}

// WithAssets resolves asset and symbol stickers through a. It is ignored when
// WithOverlay is also given.
func WithAssets(a overlay.AssetResolver) Option {
	return func(rd *Renderer) { rd.assets = a }
}

// WithProfiler records per-stage durations in p.
func WithProfiler(p *profiler.Profiler) Option {
	return func(rd *Renderer) { rd.profiler = p }
}

// NewRenderer creates a Renderer. Without WithOverlay it draws text with the
// built-in Go font families.
//
// @example
// r, err := pipeline.NewRenderer(pipeline.WithProfiler(profiler.New(profiler.Options{})))
// out, err := r.RenderFinal(subject, snap, 390)
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	if r.overlay == nil {
		fonts, err := overlay.NewFontBook()
		if err != nil {
			return nil, errors.Wrap(err, "font book")
		}
		r.overlay = overlay.NewRenderer(fonts, r.assets)
	}
	return r, nil
}

// Preview is the output of RenderPreview.
type Preview struct {
	// Full is the composite of the uncropped frame.
	Full *images.Image
	// Cropped is the composite after crop and framing.
	Cropped *images.Image
	// CanvasSize is the predicted size of the final render's canvas.
	CanvasSize image.Point
}

// RenderPreview renders the live editing view. Crop and framing are not applied
// to Full, only predicted into CanvasSize; Cropped applies them. The shadow is
// not baked and stickers are left to the caller's own overlay. Text is drawn.
//
// Arguments:
// - subject: The cut-out subject with alpha.
// - snap: The edit state.
// - ref: Width in points of the view the layer offsets were authored in (0 for pixels).
//
// Returns:
// - Both composites and the predicted canvas size.
// - ErrNoSubject when subject is nil or empty.
func (r *Renderer) RenderPreview(subject *images.Image, snap snapshot.Snapshot, ref float64) (Preview, error) {
	if subject.IsEmpty() {
		return Preview{}, ErrNoSubject
	}
	defer r.profiler.StartOperation("render_preview")()
	snap = snap.Normalized()

	upright := geometry.Normalize(subject)
	canvas := geometry.FinalCanvasSize(upright.Bounds().Size(), snap.Crop, snap.Framing)

	var p Preview
	p.CanvasSize = canvas

	var g errgroup.Group
	g.Go(func() error {
		img := r.develop(upright, snap)
		img, _ = r.composite(img, snap, ref, false)
		p.Full = r.texts(img, snap)
		return nil
	})
	g.Go(func() error {
		img := r.crop(upright, snap)
		img = r.develop(img, snap)
		img, _ = r.composite(img, snap, ref, false)
		p.Cropped = r.texts(img, snap)
		return nil
	})
	_ = g.Wait()

	Logger().Debug("preview rendered",
		"canvas", canvas,
		"full", p.Full.Bounds().Size(),
		"cropped", p.Cropped.Bounds().Size())
	return p, nil
}

// RenderFinal renders the export raster. The stages run in a fixed order:
// normalized crop, framing crop, preset and effect, adjustments, rotation,
// composite over the background with baked shadow and outline, stickers, text,
// and finally a post-hoc shadow pass when there is no background.
//
// Arguments:
// - subject: The cut-out subject with alpha.
// - snap: The edit state.
// - ref: Width in points of the view the layer offsets were authored in.
//
// Returns:
// - The flattened raster.
// - ErrNoSubject when subject is nil or empty.
func (r *Renderer) RenderFinal(subject *images.Image, snap snapshot.Snapshot, ref float64) (*images.Image, error) {
	if subject.IsEmpty() {
		return nil, ErrNoSubject
	}
	defer r.profiler.StartOperation("render_final")()
	snap = snap.Normalized()

	img := r.crop(geometry.Normalize(subject), snap)
	img = r.develop(img, snap)
	img, hasBackground := r.composite(img, snap, ref, true)
	img = r.stickers(img, snap)
	img = r.texts(img, snap)

	if !hasBackground && snap.HasShadow() {
		shadow := snap.Shadow.Resolve()
		img = r.stage("shadow", img, func(in *images.Image) (*images.Image, error) {
			return compositor.ApplyShadow(in, shadow)
		})
	}
	return img, nil
}

// RenderSticker renders the subject as a sticker: a final render with the free
// crop only, no framing, background or shadow, then trimmed, outlined and
// aspect-fitted into the square by sticker.Prepare. A zero opts.Size uses
// snap.StickerSize and a zero opts.OutlineWidth uses the snapshot's outline.
//
// Returns:
// - The square sticker raster.
// - ErrNoSubject, or masks.ErrFullyTransparent when nothing is visible.
func (r *Renderer) RenderSticker(subject *images.Image, snap snapshot.Snapshot, opts sticker.Options) (*images.Image, error) {
	if subject.IsEmpty() {
		return nil, ErrNoSubject
	}
	snap = snap.Normalized()
	if opts.Size <= 0 {
		opts.Size = snap.StickerSize
	}
	if opts.OutlineWidth <= 0 {
		outline := snap.Outline.Resolve()
		opts.OutlineWidth, opts.OutlineColor = outline.Width, outline.Color
	}

	flat := snap.With(func(s *snapshot.Snapshot) {
		s.Framing = geometry.Free()
		s.Background = snapshot.Background{Kind: compositor.BackgroundNone}
		s.Shadow.Radius, s.Shadow.X, s.Shadow.Y = 0, 0, 0
		s.Outline.Width = 0
	})
	img, err := r.RenderFinal(subject, flat, 0)
	if err != nil {
		return nil, err
	}

	defer r.profiler.StartOperation("sticker_prepare")()
	out, err := sticker.Prepare(img, opts)
	if err != nil {
		return nil, errors.Wrap(err, "prepare sticker")
	}
	return out, nil
}

// stage runs fn on in. On error, or when fn yields an empty raster, it logs and
// returns in unchanged.
func (r *Renderer) stage(name string, in *images.Image, fn func(*images.Image) (*images.Image, error)) *images.Image {
	start := time.Now()
	out, err := fn(in)
	elapsed := time.Since(start)
	r.profiler.RecordDuration(name, elapsed)

	if err == nil && out.IsEmpty() {
		err = errors.Wrap(compositor.ErrZeroAreaIntermediate, name)
	}
	if err != nil {
		Logger().Warn("render stage failed, keeping prior raster", "stage", name, "error", err)
		return in
	}
	Logger().Debug("render stage", "stage", name, "duration", elapsed, "size", out.Bounds().Size())
	return out
}

// crop applies the normalized crop then the framing crop.
func (r *Renderer) crop(img *images.Image, snap snapshot.Snapshot) *images.Image {
	if snap.Crop != nil {
		rect := *snap.Crop
		img = r.stage("crop", img, func(in *images.Image) (*images.Image, error) {
			return geometry.ApplyNormalizedCrop(in, rect)
		})
	}
	if _, ok := snap.Framing.TargetRatio(); ok {
		img = r.stage("framing", img, func(in *images.Image) (*images.Image, error) {
			return geometry.ApplyFraming(in, snap.Framing)
		})
	}
	return img
}

// develop applies the preset, effect, adjustments and rotation.
func (r *Renderer) develop(img *images.Image, snap snapshot.Snapshot) *images.Image {
	if snap.Filter != filters.Original {
		img = r.stage("preset", img, func(in *images.Image) (*images.Image, error) {
			return filters.ApplyPreset(in, snap.Filter), nil
		})
	}
	if snap.Effect != filters.EffectNone {
		img = r.stage("effect", img, func(in *images.Image) (*images.Image, error) {
			return filters.ApplyEffect(in, snap.Effect), nil
		})
	}
	if !snap.Adjustments.IsIdentity() {
		img = r.stage("adjustments", img, func(in *images.Image) (*images.Image, error) {
			return filters.ApplyAdjustments(in, snap.Adjustments), nil
		})
	}
	if snap.Rotation != 0 {
		img = r.stage("rotate", img, func(in *images.Image) (*images.Image, error) {
			return geometry.Rotate(in, snap.Rotation), nil
		})
	}
	return img
}

// composite places img over the snapshot's background on a canvas of img's
// size. It reports whether a background was drawn.
func (r *Renderer) composite(img *images.Image, snap snapshot.Snapshot, ref float64, bake bool) (*images.Image, bool) {
	size := img.Bounds().Size()
	bg := compositor.Background(snap.Background.Spec(), size)
	params := compositor.Params{
		OutputSize:       size,
		UIReferenceWidth: ref,
		Foreground:       snap.Foreground.Then(snap.Canvas),
		Background:       snap.BackgroundLayer.Then(snap.Canvas),
		Shadow:           snap.Shadow.Resolve(),
		Outline:          snap.Outline.Resolve(),
		BakeShadow:       bake,
	}
	out := r.stage("composite", img, func(in *images.Image) (*images.Image, error) {
		return compositor.Composite(in, bg, params)
	})
	return out, bg != nil
}

func (r *Renderer) stickers(img *images.Image, snap snapshot.Snapshot) *images.Image {
	if len(snap.Stickers) == 0 {
		return img
	}
	items := make([]overlay.Sticker, len(snap.Stickers))
	for i, p := range snap.Stickers {
		items[i] = p.Resolve()
	}
	return r.stage("stickers", img, func(in *images.Image) (*images.Image, error) {
		return r.overlay.RenderStickers(in, items), nil
	})
}

func (r *Renderer) texts(img *images.Image, snap snapshot.Snapshot) *images.Image {
	if len(snap.Texts) == 0 {
		return img
	}
	items := make([]overlay.Text, len(snap.Texts))
	for i, p := range snap.Texts {
		items[i] = p.Resolve()
	}
	return r.stage("texts", img, func(in *images.Image) (*images.Image, error) {
		return r.overlay.RenderTexts(in, items), nil
	})
}
