package kernels

import (
	"image"
	"math/rand"
	"testing"

	"github.com/disintegration/gift"
)

func genAlpha(w, h int) *image.Alpha {
	img := image.NewAlpha(image.Rect(0, 0, w, h))
	rng := rand.New(rand.NewSource(1))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(256))
	}
	return img
}

func BenchmarkBoxBlur_1080p_r7(b *testing.B) {
	img := genAlpha(1920, 1080)
	opt := Options{Radius: 7, Edge: EdgeZero, Parallel: true}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = BoxBlur(img, opt)
	}
}

func BenchmarkGaussianBlur_1080p_s10(b *testing.B) {
	img := genAlpha(1920, 1080)
	opt := Options{Edge: EdgeZero, Parallel: true, Pool: &Pool{}}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = GaussianBlur(img, 10, opt)
	}
}

func BenchmarkDilate_1024_r16(b *testing.B) {
	img := genAlpha(1024, 1024)
	opt := Options{Radius: 16, Parallel: true}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Dilate(img, opt)
	}
}

// BenchmarkGiftMaximum_1024_r16 is the same disc dilation through gift's rank
// filter, for comparison with BenchmarkDilate_1024_r16.
func BenchmarkGiftMaximum_1024_r16(b *testing.B) {
	img := genAlpha(1024, 1024)
	g := gift.New(gift.Maximum(33, true))
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		g.Draw(dst, img)
	}
}
