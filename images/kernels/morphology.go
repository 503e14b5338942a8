package kernels

import (
	"image"
	"math"
)

// Dilate applies a morphological max filter with a circular structuring
// element of the given radius. Samples outside the plane count as zero, so the
// plane never grows past its bounds.
//
// The disc is decomposed into one horizontal run per row offset dy with half
// width floor(sqrt(r² - dy²)). Each run is a 1D running max computed with a
// monotonic queue, giving O((2r+1) * W * H) work overall.
//
// Arguments:
// - src: The plane to dilate.
// - opt: Radius in pixels and the Parallel flag; Edge is always zero.
//
// Returns:
// - A new plane with the same bounds. Radius 0 returns a copy.
//
// @example
// grown := kernels.Dilate(mask, kernels.Options{Radius: 8, Parallel: true})
func Dilate(src *image.Alpha, opt Options) *image.Alpha {
	b := src.Rect
	dst := image.NewAlpha(b)
	r := opt.Radius
	if r <= 0 {
		copyPlane(dst, src)
		return dst
	}

	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return dst
	}

	spans := DiscSpans(r)

	// Rows with no coverage contribute nothing, which skips most of the work
	// for a compact subject on a large canvas.
	occupied := make([]bool, h)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w]
		for _, v := range row {
			if v != 0 {
				occupied[y] = true
				break
			}
		}
	}

	runBands(h, opt.Parallel, func(start, end int) {
		tmp := make([]uint8, w)
		queue := make([]int, 0, w)
		for y := start; y < end; y++ {
			out := dst.Pix[y*dst.Stride : y*dst.Stride+w]
			for dy := -r; dy <= r; dy++ {
				sy := y + dy
				if sy < 0 || sy >= h || !occupied[sy] {
					continue
				}
				row := src.Pix[sy*src.Stride : sy*src.Stride+w]
				queue = runningMax(row, spans[dy+r], tmp, queue)
				for x, v := range tmp {
					if v > out[x] {
						out[x] = v
					}
				}
			}
		}
	})
	return dst
}

// DiscSpans returns, for every row offset dy in [-r, r], the half width of a
// disc of radius r at that offset. Index dy+r holds the value for dy.
func DiscSpans(r int) []int {
	spans := make([]int, 2*r+1)
	for dy := -r; dy <= r; dy++ {
		spans[dy+r] = int(math.Floor(math.Sqrt(float64(r*r - dy*dy))))
	}
	return spans
}

// runningMax writes max(row[x-hw .. x+hw]) into out[x], ignoring indices
// outside the row. queue is scratch space and is returned for reuse.
func runningMax(row []uint8, hw int, out []uint8, queue []int) []int {
	if hw == 0 {
		copy(out, row)
		return queue
	}

	n := len(row)
	queue = queue[:0]
	head := 0
	next := 0
	for x := 0; x < n; x++ {
		hi := min(x+hw, n-1)
		for ; next <= hi; next++ {
			v := row[next]
			for len(queue) > head && row[queue[len(queue)-1]] <= v {
				queue = queue[:len(queue)-1]
			}
			queue = append(queue, next)
		}
		for queue[head] < x-hw {
			head++
		}
		out[x] = row[queue[head]]
	}
	return queue
}

// runBands splits [0, n) into contiguous bands, one goroutine each when
// parallel is set, so each worker can keep its own scratch buffers.
func runBands(n int, parallel bool, task func(start, end int)) {
	if !parallel || n < 4 {
		task(0, n)
		return
	}
	chunk := chooseChunk(n)
	done := make(chan struct{})
	count := 0
	for start := 0; start < n; start += chunk {
		count++
		go func(s, e int) {
			task(s, e)
			done <- struct{}{}
		}(start, min(start+chunk, n))
	}
	for i := 0; i < count; i++ {
		<-done
	}
}
