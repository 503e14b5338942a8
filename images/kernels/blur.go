// Package kernels implements the single-channel (alpha plane) kernels behind
// mask smoothing, shadow silhouettes and outline dilation.
package kernels

import (
	"image"
	"math"
	"sync"
)

// EdgeMode defines how sampling behaves outside the image bounds.
// - Zero: treats outside samples as fully transparent (silhouettes fade out at the border).
// - Clamp: repeats edge pixels.
// - Mirror: reflects coordinates.
// - Wrap: tiles the image.
type EdgeMode int

const (
	EdgeZero EdgeMode = iota
	EdgeClamp
	EdgeMirror
	EdgeWrap
)

// Options configures a kernel call.
type Options struct {
	Radius   int      // Window radius (window size = 2*Radius + 1). Must be >= 0.
	Edge     EdgeMode // Edge sampling mode.
	Pool     *Pool    // Optional buffer pool for intermediate/dst reuse.
	Parallel bool     // Enable row/column parallelism (good for 1080p+).
}

// Pool lets callers reuse plane buffers across repeated blurs of the same size.
type Pool struct {
	alpha sync.Pool // *image.Alpha
}

func (p *Pool) GetAlpha(bounds image.Rectangle) *image.Alpha {
	if p == nil {
		return image.NewAlpha(bounds)
	}
	if v := p.alpha.Get(); v != nil {
		img := v.(*image.Alpha)
		if img.Rect == bounds {
			return img
		}
	}
	return image.NewAlpha(bounds)
}

func (p *Pool) PutAlpha(img *image.Alpha) {
	if p == nil || img == nil {
		return
	}
	// The next writer fully overwrites, so the buffer is not cleared.
	p.alpha.Put(img)
}

// BoxBlur applies a separable box blur to an alpha plane.
// - Operates on raw bytes with a sliding window per row/col, O(1) per pixel.
// - Avoids float math and per-sample function calls in hot loops.
// - Correctly accounts for non-zero image bounds.
//
// Performance: O(W*H) per pass, independent of Radius.
//
// Returns a new *image.Alpha. If Options.Pool is provided, buffers may be reused.
func BoxBlur(src *image.Alpha, opt Options) *image.Alpha {
	b := src.Rect
	if opt.Radius <= 0 {
		dst := image.NewAlpha(b)
		copyPlane(dst, src)
		return dst
	}

	tmp := opt.Pool.GetAlpha(b)
	dst := image.NewAlpha(b)

	boxBlurHoriz(src, tmp, opt.Radius, opt.Edge, opt.Parallel)
	boxBlurVert(tmp, dst, opt.Radius, opt.Edge, opt.Parallel)

	opt.Pool.PutAlpha(tmp)
	return dst
}

// GaussianBlur approximates a gaussian of the given sigma with three successive
// box blurs whose widths are chosen so the combined variance matches sigma².
//
// Arguments:
// - src: The plane to blur.
// - sigma: Standard deviation in pixels. Values below 0.5 return a copy.
// - opt: Edge, Pool and Parallel are honored; Radius is ignored.
//
// Returns:
// - A new blurred plane with the same bounds.
//
// @example
// soft := kernels.GaussianBlur(mask, 6, kernels.Options{Parallel: true})
func GaussianBlur(src *image.Alpha, sigma float64, opt Options) *image.Alpha {
	if sigma < 0.5 {
		opt.Radius = 0
		return BoxBlur(src, opt)
	}
	out := src
	for _, r := range BoxRadiiForGauss(sigma, 3) {
		opt.Radius = r
		next := BoxBlur(out, opt)
		if out != src {
			opt.Pool.PutAlpha(out)
		}
		out = next
	}
	return out
}

// BoxRadiiForGauss returns n box radii whose successive application
// approximates a gaussian with standard deviation sigma.
func BoxRadiiForGauss(sigma float64, n int) []int {
	wIdeal := math.Sqrt(12*sigma*sigma/float64(n) + 1)
	wl := int(math.Floor(wIdeal))
	if wl%2 == 0 {
		wl--
	}
	wu := wl + 2

	mIdeal := (12*sigma*sigma - float64(n*wl*wl) - float64(4*n*wl) - float64(3*n)) / float64(-4*wl-4)
	m := int(math.Round(mIdeal))

	radii := make([]int, n)
	for i := range radii {
		if i < m {
			radii[i] = (wl - 1) / 2
		} else {
			radii[i] = (wu - 1) / 2
		}
	}
	return radii
}

// boxBlurHoriz applies horizontal blur into dst using a sliding window.
// For each step to the right, we subtract the sample leaving on the left and
// add the sample entering on the right.
func boxBlurHoriz(src, dst *image.Alpha, r int, edge EdgeMode, parallel bool) {
	w := src.Rect.Dx()
	h := src.Rect.Dy()
	if w == 0 || h == 0 {
		return
	}

	window := uint32(2*r + 1)
	rowTask := func(y int) {
		srcRow := src.Pix[y*src.Stride : y*src.Stride+w]
		dstRow := dst.Pix[y*dst.Stride : y*dst.Stride+w]

		load := func(xRel int) uint32 {
			xMap := mapCoord(xRel, w, edge)
			if xMap < 0 {
				return 0
			}
			return uint32(srcRow[xMap])
		}

		var sum uint32
		for dx := -r; dx <= r; dx++ {
			sum += load(dx)
		}

		for x := 0; x < w; x++ {
			dstRow[x] = uint8((sum + window/2) / window)
			sum += load(x+r+1) - load(x-r)
		}
	}

	runChunks(h, parallel, rowTask)
}

// boxBlurVert mirrors the horizontal pass but along columns.
func boxBlurVert(src, dst *image.Alpha, r int, edge EdgeMode, parallel bool) {
	w := src.Rect.Dx()
	h := src.Rect.Dy()
	if w == 0 || h == 0 {
		return
	}

	window := uint32(2*r + 1)
	colTask := func(x int) {
		load := func(yRel int) uint32 {
			yMap := mapCoord(yRel, h, edge)
			if yMap < 0 {
				return 0
			}
			return uint32(src.Pix[yMap*src.Stride+x])
		}

		var sum uint32
		for dy := -r; dy <= r; dy++ {
			sum += load(dy)
		}

		for y := 0; y < h; y++ {
			dst.Pix[y*dst.Stride+x] = uint8((sum + window/2) / window)
			sum += load(y+r+1) - load(y-r)
		}
	}

	runChunks(w, parallel, colTask)
}

// runChunks calls task for every index in [0, n), splitting the range into
// chunks processed by separate goroutines when parallel is set.
func runChunks(n int, parallel bool, task func(i int)) {
	if !parallel || n < 4 {
		for i := 0; i < n; i++ {
			task(i)
		}
		return
	}

	chunk := chooseChunk(n)
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				task(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// copyPlane copies row by row so sub-image strides are honored.
func copyPlane(dst, src *image.Alpha) {
	w := src.Rect.Dx()
	for y := 0; y < src.Rect.Dy(); y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+w], src.Pix[y*src.Stride:y*src.Stride+w])
	}
}

// mapCoord maps an index i to [0, n) according to edge mode.
// For Zero: returns -1 outside the range.
// For Clamp: clamp to [0, n-1].
// For Mirror: reflect indices ... -2,-1,0,1,2, ... -> 1,0,0,1,2, ... (no duplication at edges).
// For Wrap: modulo wrap to [0, n).
func mapCoord(i, n int, mode EdgeMode) int {
	switch mode {
	case EdgeZero:
		if i < 0 || i >= n {
			return -1
		}
		return i
	case EdgeMirror:
		if n == 1 {
			return 0
		}
		for i < 0 || i >= n {
			if i < 0 {
				i = -i - 1
			} else {
				i = 2*n - i - 1
			}
		}
		return i
	case EdgeWrap:
		if n == 0 {
			return 0
		}
		i %= n
		if i < 0 {
			i += n
		}
		return i
	default:
		if i < 0 {
			return 0
		}
		if i >= n {
			return n - 1
		}
		return i
	}
}

// chooseChunk picks a work chunk size that balances overhead and cache locality.
func chooseChunk(n int) int {
	switch {
	case n >= 2048:
		return 128
	case n >= 512:
		return 64
	default:
		return 32
	}
}
