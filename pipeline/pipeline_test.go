package pipeline

import (
	"bytes"
	"image"
	"image/draw"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/nvr-ai/go-cutout/common"
	"github.com/nvr-ai/go-cutout/compositor"
	"github.com/nvr-ai/go-cutout/filters"
	"github.com/nvr-ai/go-cutout/geometry"
	"github.com/nvr-ai/go-cutout/images"
	"github.com/nvr-ai/go-cutout/masks"
	"github.com/nvr-ai/go-cutout/overlay"
	"github.com/nvr-ai/go-cutout/profiler"
	"github.com/nvr-ai/go-cutout/snapshot"
	"github.com/nvr-ai/go-cutout/sticker"
	"github.com/nvr-ai/go-cutout/test"
)

func newRenderer(t *testing.T, opts ...Option) *Renderer {
	t.Helper()
	r, err := NewRenderer(opts...)
	require.NoError(t, err)
	return r
}

func solidBlue(s *snapshot.Snapshot) {
	s.Background = snapshot.Background{Kind: compositor.BackgroundSolid, Color: "#0000FF"}
}

func TestNoSubject(t *testing.T) {
	r := newRenderer(t)
	snap := snapshot.Default()

	for name, subject := range map[string]*images.Image{
		"nil":   nil,
		"empty": images.New(0, 0),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := r.RenderPreview(subject, snap, 0)
			assert.ErrorIs(t, err, ErrNoSubject)
			_, err = r.RenderFinal(subject, snap, 0)
			assert.ErrorIs(t, err, ErrNoSubject)
			_, err = r.RenderSticker(subject, snap, sticker.DefaultOptions())
			assert.ErrorIs(t, err, ErrNoSubject)
		})
	}
}

func TestRenderFinalRedSquareOverBlue(t *testing.T) {
	r := newRenderer(t)
	subject := test.NewSubjectGenerator(1000, 1000).Bordered(100, test.Red)
	square, _ := geometry.FramingByName(geometry.FramingNameSquare)
	snap := snapshot.Default().With(func(s *snapshot.Snapshot) {
		s.Framing = square
		solidBlue(s)
	})

	out, err := r.RenderFinal(subject, snap, 0)
	require.NoError(t, err)
	require.Equal(t, image.Pt(1000, 1000), out.Bounds().Size())

	for _, p := range []image.Point{{50, 50}, {99, 99}, {900, 900}, {999, 0}, {500, 950}} {
		assert.Equal(t, test.Blue, out.NRGBAAt(p.X, p.Y), "at %v", p)
	}
	for _, p := range []image.Point{{100, 100}, {500, 500}, {899, 899}, {100, 899}} {
		assert.Equal(t, test.Red, out.NRGBAAt(p.X, p.Y), "at %v", p)
	}
}

func TestRenderFinalCropOrder(t *testing.T) {
	r := newRenderer(t)
	subject := test.NewSubjectGenerator(200, 100).Gradient()

	tests := []struct {
		name string
		edit func(*snapshot.Snapshot)
		want image.Point
	}{
		{"none", func(*snapshot.Snapshot) {}, image.Pt(200, 100)},
		{"crop", func(s *snapshot.Snapshot) { s.Crop = &common.Rect{Width: 0.5, Height: 0.5} }, image.Pt(100, 50)},
		{"square", func(s *snapshot.Snapshot) { s.Framing = geometry.Ratio(1, 1) }, image.Pt(100, 100)},
		{"custom", func(s *snapshot.Snapshot) { s.Framing = geometry.Custom(400, 100) }, image.Pt(200, 50)},
		{"crop then square", func(s *snapshot.Snapshot) {
			s.Crop = &common.Rect{Width: 1, Height: 0.5}
			s.Framing = geometry.Ratio(1, 1)
		}, image.Pt(50, 50)},
		{"quarter turn", func(s *snapshot.Snapshot) { s.Rotation = 90 }, image.Pt(100, 200)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.RenderFinal(subject, snapshot.Default().With(tt.edit), 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Bounds().Size())
		})
	}
}

func TestRenderFinalNormalizesOrientation(t *testing.T) {
	r := newRenderer(t)
	subject := test.NewSubjectGenerator(40, 20).Rect(image.Rect(0, 0, 10, 20), test.Red)
	subject.Orientation = images.OrientationRight
	upright := geometry.Normalize(subject)
	require.Equal(t, image.Pt(20, 40), upright.Bounds().Size())

	snap := snapshot.Default().With(func(s *snapshot.Snapshot) {
		s.Adjustments.Brightness = 1.2
	})

	out, err := r.RenderFinal(subject, snap, 0)
	require.NoError(t, err)
	want, err := r.RenderFinal(upright, snap, 0)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(20, 40), out.Bounds().Size())
	assert.Equal(t, images.OrientationUp, out.Orientation)
	assert.Equal(t, want.Checksum(), out.Checksum())

	p, err := r.RenderPreview(subject, snap, 0)
	require.NoError(t, err)
	assert.Equal(t, out.Bounds().Size(), p.Full.Bounds().Size())
	assert.Equal(t, out.Bounds().Size(), p.CanvasSize)
}

func TestRenderFinalKeepsPriorRasterOnFailedStage(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	r := newRenderer(t)
	subject := test.NewSubjectGenerator(100, 100).Opaque(test.Green)
	snap := snapshot.Default().With(func(s *snapshot.Snapshot) {
		s.Crop = &common.Rect{Width: 0.001, Height: 0.001}
	})

	out, err := r.RenderFinal(subject, snap, 0)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(100, 100), out.Bounds().Size())
	assert.Equal(t, subject.Checksum(), out.Checksum())
	assert.Contains(t, buf.String(), "stage=crop")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestRenderFinalShadowWithoutBackground(t *testing.T) {
	r := newRenderer(t)
	subject := test.NewSubjectGenerator(100, 100).Bordered(20, test.Red)
	snap := snapshot.Default().With(func(s *snapshot.Snapshot) {
		s.Shadow.Radius = 30
	})

	out, err := r.RenderFinal(subject, snap, 0)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(124, 124), out.Bounds().Size())
	assert.Equal(t, test.Red, out.NRGBAAt(62, 62))
	assert.Equal(t, uint8(0), out.NRGBAAt(0, 0).A)
	// Shadow alpha spreads past the subject's edge.
	assert.Greater(t, out.NRGBAAt(12+19, 62).A, uint8(0))

	withBackground := snap.With(solidBlue)
	out, err = r.RenderFinal(subject, withBackground, 0)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(100, 100), out.Bounds().Size())
}

func TestCanvasTransformMovesEveryLayer(t *testing.T) {
	r := newRenderer(t)
	subject := test.NewSubjectGenerator(100, 100).Opaque(test.Red)
	snap := snapshot.Default().With(func(s *snapshot.Snapshot) {
		solidBlue(s)
		s.Canvas = common.Transform{Scale: 0.5}
	})

	out, err := r.RenderFinal(subject, snap, 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), out.NRGBAAt(10, 10).A)
	assert.Equal(t, test.Red, out.NRGBAAt(50, 50))
}

func TestRenderPreview(t *testing.T) {
	r := newRenderer(t)
	subject := test.NewSubjectGenerator(200, 100).Gradient()

	t.Run("crop", func(t *testing.T) {
		snap := snapshot.Default().With(func(s *snapshot.Snapshot) {
			s.Crop = &common.Rect{X: 0.25, Width: 0.5, Height: 0.5}
		})
		p, err := r.RenderPreview(subject, snap, 0)
		require.NoError(t, err)
		assert.Equal(t, image.Pt(100, 50), p.CanvasSize)
		assert.Equal(t, image.Pt(200, 100), p.Full.Bounds().Size())
		assert.Equal(t, p.CanvasSize, p.Cropped.Bounds().Size())
	})

	t.Run("framing", func(t *testing.T) {
		snap := snapshot.Default().With(func(s *snapshot.Snapshot) { s.Framing = geometry.Ratio(1, 1) })
		p, err := r.RenderPreview(subject, snap, 0)
		require.NoError(t, err)
		assert.Equal(t, image.Pt(100, 100), p.CanvasSize)
		assert.Equal(t, image.Pt(200, 100), p.Full.Bounds().Size())
		assert.Equal(t, p.CanvasSize, p.Cropped.Bounds().Size())
	})

	t.Run("no shadow pass", func(t *testing.T) {
		snap := snapshot.Default().With(func(s *snapshot.Snapshot) { s.Shadow.Radius = 30 })
		p, err := r.RenderPreview(subject, snap, 0)
		require.NoError(t, err)
		assert.Equal(t, image.Pt(200, 100), p.Full.Bounds().Size())
	})
}

func TestPreviewDrawsTextButNotStickers(t *testing.T) {
	r := newRenderer(t)
	subject := test.NewSubjectGenerator(200, 200).Bordered(40, test.Red)
	base := snapshot.Default().With(solidBlue)
	withSticker := base.With(func(s *snapshot.Snapshot) {
		s.Stickers = []snapshot.StickerPlacement{{
			Kind: overlay.ContentGlyph, Content: "A", Position: common.Point{X: 0.5, Y: 0.5}, Scale: 2, Color: "#00FF00",
		}}
	})
	withText := base.With(func(s *snapshot.Snapshot) {
		s.Texts = []snapshot.TextPlacement{{
			Text: "Hi", Chip: overlay.ChipSolid, ChipColor: "#FFFFFF", Color: "#000000",
			Position: common.Point{X: 0.5, Y: 0.5}, Scale: 2,
		}}
	})

	plain, err := r.RenderPreview(subject, base, 0)
	require.NoError(t, err)
	stickered, err := r.RenderPreview(subject, withSticker, 0)
	require.NoError(t, err)
	texted, err := r.RenderPreview(subject, withText, 0)
	require.NoError(t, err)

	assert.Equal(t, plain.Full.Checksum(), stickered.Full.Checksum())
	assert.Equal(t, plain.Cropped.Checksum(), stickered.Cropped.Checksum())
	assert.NotEqual(t, plain.Full.Checksum(), texted.Full.Checksum())

	finalPlain, err := r.RenderFinal(subject, base, 0)
	require.NoError(t, err)
	finalStickered, err := r.RenderFinal(subject, withSticker, 0)
	require.NoError(t, err)
	assert.NotEqual(t, finalPlain.Checksum(), finalStickered.Checksum())
}

func decorated() snapshot.Snapshot {
	return snapshot.Default().With(func(s *snapshot.Snapshot) {
		s.Filter = filters.Paris
		s.Effect = filters.EffectGrain
		s.Adjustments = filters.Adjustments{Brightness: 1.1, Contrast: 0.9, Saturation: 1.2, Blur: 1}
		s.Rotation = 12
		s.Background = snapshot.Background{
			Kind:     compositor.BackgroundGradient,
			Gradient: []string{"#FF8800", "#0088FF"},
		}
		s.Shadow = snapshot.Shadow{Radius: 40, Y: 10, Color: "#000000", Opacity: 0.5}
		s.Outline = snapshot.Outline{Width: 6, Color: "#FFFFFF"}
		s.Foreground = common.Transform{Scale: 0.8, Offset: common.Point{X: 5, Y: -5}}
		s.Stickers = []snapshot.StickerPlacement{{
			Kind: overlay.ContentGlyph, Content: "B", Position: common.Point{X: 0.2, Y: 0.2}, Scale: 1, Rotation: 30,
		}}
		s.Texts = []snapshot.TextPlacement{{
			Text: "hello\nworld", Chip: overlay.ChipTranslucent, ChipColor: "#000000",
			Position: common.Point{X: 0.5, Y: 0.8}, Scale: 1, Underline: true,
		}}
	})
}

func TestRenderFinalIsDeterministic(t *testing.T) {
	r := newRenderer(t)
	subject := test.NewSubjectGenerator(160, 120).Bordered(20, test.Red)
	snap := decorated()

	want, err := r.RenderFinal(subject, snap, 320)
	require.NoError(t, err)

	sums := make([]uint64, 4)
	var g errgroup.Group
	for i := range sums {
		g.Go(func() error {
			out, err := r.RenderFinal(subject, snap, 320)
			if err != nil {
				return err
			}
			sums[i] = out.Checksum()
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for _, sum := range sums {
		assert.Equal(t, want.Checksum(), sum)
	}
}

func TestRenderDoesNotMutateInputs(t *testing.T) {
	r := newRenderer(t)
	subject := test.NewSubjectGenerator(80, 80).Bordered(10, test.Red)
	before := subject.Checksum()
	snap := decorated()
	hash := snap.Hash()

	_, err := r.RenderFinal(subject, snap, 0)
	require.NoError(t, err)
	_, err = r.RenderPreview(subject, snap, 0)
	require.NoError(t, err)

	assert.Equal(t, before, subject.Checksum())
	assert.Equal(t, hash, snap.Hash())
}

func TestRenderSticker(t *testing.T) {
	r := newRenderer(t)
	gen := test.NewSubjectGenerator(200, 200)

	t.Run("fits square", func(t *testing.T) {
		subject := gen.Rect(image.Rect(50, 75, 150, 125), test.Red)
		snap := snapshot.Default().With(solidBlue)

		out, err := r.RenderSticker(subject, snap, sticker.Options{Margin: -1})
		require.NoError(t, err)
		assert.Equal(t, image.Pt(sticker.DefaultSize, sticker.DefaultSize), out.Bounds().Size())
		assert.Equal(t, uint8(255), out.NRGBAAt(256, 256).A)
		assert.Equal(t, uint8(0), out.NRGBAAt(5, 5).A)
	})

	t.Run("snapshot size", func(t *testing.T) {
		subject := gen.Rect(image.Rect(50, 50, 150, 150), test.Red)
		snap := snapshot.Default().With(func(s *snapshot.Snapshot) { s.StickerSize = 128 })

		out, err := r.RenderSticker(subject, snap, sticker.Options{Margin: -1})
		require.NoError(t, err)
		assert.Equal(t, image.Pt(128, 128), out.Bounds().Size())
	})

	t.Run("wide subject keeps both ends", func(t *testing.T) {
		subject := test.NewSubjectGenerator(400, 100).Rect(image.Rect(0, 0, 40, 100), test.Red)
		draw.Draw(subject.Pixels, image.Rect(360, 0, 400, 100), image.NewUniform(test.Red), image.Point{}, draw.Src)
		snap := snapshot.Default().With(func(s *snapshot.Snapshot) {
			s.Framing = geometry.Ratio(1, 1)
		})

		out, err := r.RenderSticker(subject, snap, sticker.Options{Margin: -1})
		require.NoError(t, err)
		require.Equal(t, image.Pt(512, 512), out.Bounds().Size())

		// 400x100 fits the 481px inner box as 481x120 at (15, 196).
		for _, x := range []int{30, 480} {
			c := out.NRGBAAt(x, 256)
			assert.Greater(t, c.A, uint8(250), "x=%d", x)
			assert.Greater(t, c.R, uint8(250), "x=%d", x)
		}
		assert.Equal(t, uint8(0), out.NRGBAAt(256, 256).A)
		assert.Equal(t, uint8(0), out.NRGBAAt(30, 150).A)
	})

	t.Run("nothing visible", func(t *testing.T) {
		_, err := r.RenderSticker(gen.Transparent(), snapshot.Default(), sticker.DefaultOptions())
		assert.ErrorIs(t, err, masks.ErrFullyTransparent)
	})
}

func TestProfilerRecordsStages(t *testing.T) {
	p := profiler.New(profiler.Options{})
	r := newRenderer(t, WithProfiler(p))
	subject := test.NewSubjectGenerator(64, 64).Bordered(8, test.Red)

	_, err := r.RenderFinal(subject, snapshot.Default().With(func(s *snapshot.Snapshot) {
		solidBlue(s)
		s.Filter = filters.Tokyo
	}), 0)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, s := range p.Stages() {
		names[s.Name] = true
	}
	for _, want := range []string{"render_final", "preset", "composite"} {
		assert.True(t, names[want], want)
	}
}

func TestSequencer(t *testing.T) {
	var s Sequencer
	first := s.Next()
	assert.True(t, s.IsLatest(first))

	second := s.Next()
	assert.Greater(t, second, first)
	assert.False(t, s.IsLatest(first))

	applied := 0
	assert.False(t, s.Accept(first, func() { applied++ }))
	assert.True(t, s.Accept(second, func() { applied++ }))
	assert.Equal(t, 1, applied)
}
