package test

import (
	"fmt"
	"testing"

	"github.com/nvr-ai/go-cutout/common"
	"github.com/nvr-ai/go-cutout/compositor"
	"github.com/nvr-ai/go-cutout/filters"
	"github.com/nvr-ai/go-cutout/overlay"
	"github.com/nvr-ai/go-cutout/snapshot"
	"github.com/nvr-ai/go-cutout/sticker"
)

func benchSnapshot() snapshot.Snapshot {
	return snapshot.Default().With(func(s *snapshot.Snapshot) {
		s.Filter = filters.Tokyo
		s.Adjustments.Brightness = 1.1
		s.Background = snapshot.Background{Kind: compositor.BackgroundGradient, Gradient: []string{"#223344", "#AABBCC"}}
		s.Shadow = snapshot.Shadow{Radius: 20, Y: 10, Color: "#000000", Opacity: 0.4}
		s.Outline = snapshot.Outline{Width: 4, Color: "#FFFFFF"}
		s.Texts = []snapshot.TextPlacement{{
			Text: "sale", Chip: overlay.ChipSolid, ChipColor: "#FF0000",
			Position: common.Point{X: 0.5, Y: 0.85}, Scale: 1,
		}}
	})
}

func BenchmarkRenderFinal(b *testing.B) {
	for _, size := range []int{256, 1024} {
		b.Run(fmt.Sprintf("%dpx", size), func(b *testing.B) {
			r := newRenderer(b)
			subject := NewSubjectGenerator(size, size).Bordered(size/8, Red)
			snap := benchSnapshot()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := r.RenderFinal(subject, snap, 390); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkRenderPreview(b *testing.B) {
	r := newRenderer(b)
	subject := NewSubjectGenerator(512, 512).Bordered(64, Red)
	snap := benchSnapshot()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.RenderPreview(subject, snap, 390); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkStickerExport(b *testing.B) {
	r := newRenderer(b)
	subject := NewSubjectGenerator(600, 400).Bordered(50, Green)
	sq, err := r.RenderSticker(subject, snapshot.Default(), sticker.DefaultOptions())
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := sticker.Export(sq, sticker.WebPBudget()); err != nil {
			b.Fatal(err)
		}
	}
}
