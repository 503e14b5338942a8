// Package images - provides deterministic raster helpers shared by the
// compositing pipeline: row partitioning, byte clamping and resampling.
package images

import (
	"math"
	"runtime"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// ResampleFilter defines the resampling algorithm used for image scaling.
type ResampleFilter int

const (
	// NearestNeighborFilter uses nearest-neighbor interpolation (fastest, lowest quality).
	NearestNeighborFilter ResampleFilter = iota
	// BilinearFilter uses bilinear interpolation (fast, good quality).
	BilinearFilter
	// BicubicFilter uses bicubic interpolation (slower, better quality).
	BicubicFilter
	// LanczosFilter uses Lanczos resampling with a=3 (slowest, best quality).
	LanczosFilter
	// MitchellNetravaliFilter uses Mitchell-Netravali cubic filter (balanced).
	MitchellNetravaliFilter
)

// interpolation maps each filter onto the resize package's kernels.
var interpolation = map[ResampleFilter]resize.InterpolationFunction{
	NearestNeighborFilter:   resize.NearestNeighbor,
	BilinearFilter:          resize.Bilinear,
	BicubicFilter:           resize.Bicubic,
	LanczosFilter:           resize.Lanczos3,
	MitchellNetravaliFilter: resize.MitchellNetravali,
}

// Resize scales an image to exactly width x height.
//
// Arguments:
// - img: The source raster.
// - width: Target width in pixels, at least 1.
// - height: Target height in pixels, at least 1.
// - filter: The resampling kernel.
//
// Returns:
// - A new image of the requested size carrying the source scale, or the
// source itself when the size already matches.
//
// @example
// thumb := images.Resize(img, 256, 256, images.LanczosFilter)
func Resize(img *Image, width, height int, filter ResampleFilter) *Image {
	if img.IsEmpty() || width < 1 || height < 1 {
		return New(max(width, 0), max(height, 0))
	}
	if img.Width() == width && img.Height() == height {
		return img
	}
	fn, ok := interpolation[filter]
	if !ok {
		fn = resize.Lanczos3
	}
	scaled := resize.Resize(uint(width), uint(height), img.Pixels, fn)
	return img.Derive(imaging.Clone(scaled))
}

// Fit scales an image to fit inside width x height, preserving aspect ratio.
//
// Returns:
// - The scaled image; neither side exceeds the box and at least one side matches it.
func Fit(img *Image, width, height int, filter ResampleFilter) *Image {
	if img.IsEmpty() || width < 1 || height < 1 {
		return New(0, 0)
	}
	s := math.Min(float64(width)/float64(img.Width()), float64(height)/float64(img.Height()))
	w := max(1, int(math.Round(float64(img.Width())*s)))
	h := max(1, int(math.Round(float64(img.Height())*s)))
	return Resize(img, min(w, width), min(h, height), filter)
}

// ClampUint8 rounds a 0..255 float to the nearest byte, saturating at the ends.
func ClampUint8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// Parallel executes a function in Parallel across multiple goroutines.
// Each partition receives a disjoint [start, end) range, so workers writing
// distinct rows of the same buffer need no further synchronization.
//
// Arguments:
// - dataSize: The size of the data to process.
// - fn: Function to execute for each partition (receives start and end indices).
//
// @example
//
//	Parallel(height, func(start, end int) {
//	    for y := start; y < end; y++ {
//	        // Process row y
//	    }
//	})
func Parallel(dataSize int, fn func(partStart, partEnd int)) {
	if dataSize <= 0 {
		return
	}
	numGoroutines := runtime.NumCPU()

	// For small data sizes, parallel processing overhead isn't worth it.
	if dataSize < numGoroutines*2 {
		fn(0, dataSize)
		return
	}

	partSize := dataSize / numGoroutines

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		partStart := i * partSize
		partEnd := partStart + partSize

		// Last partition gets any remaining data.
		if i == numGoroutines-1 {
			partEnd = dataSize
		}

		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(partStart, partEnd)
	}

	wg.Wait()
}
