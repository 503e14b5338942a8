package sticker

import (
	"math"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-cutout/images"
)

// Budget bounds an export.
type Budget struct {
	Format images.ImageFormat
	// MaxBytes is the largest acceptable encoding.
	MaxBytes int
	// Size is the starting edge in pixels.
	Size int
	// Shrink multiplies the edge after every failed attempt.
	Shrink float64
	// Floor is the smallest edge tried.
	Floor int
	// Quality is the first lossy quality tried at each size, stepping down by
	// QualityStep to MinQuality. Ignored for lossless formats.
	Quality     float64
	QualityStep float64
	MinQuality  float64
}

// PNGBudget is the lossless sticker budget: 400KB, starting at 512px.
func PNGBudget() Budget {
	return Budget{
		Format:   images.FormatPNG,
		MaxBytes: 400 * 1024,
		Size:     DefaultSize,
		Shrink:   0.85,
		Floor:    64,
	}
}

// WebPBudget is the lossy, alpha-capable budget: 100KB with a quality ladder
// from 0.8 down to 0.1 at each size.
func WebPBudget() Budget {
	return Budget{
		Format:      images.FormatWebP,
		MaxBytes:    100 * 1024,
		Size:        DefaultSize,
		Shrink:      0.85,
		Floor:       64,
		Quality:     0.8,
		QualityStep: 0.1,
		MinQuality:  0.1,
	}
}

// Result is the outcome of Export.
type Result struct {
	Data    []byte
	Size    int
	Format  images.ImageFormat
	Quality float64
	// WithinBudget is false when even the floor size at the lowest quality
	// exceeded MaxBytes; Data then holds that last attempt.
	WithinBudget bool
	Attempts     int
}

// qualities returns the ladder tried at each size.
func (b Budget) qualities() []float64 {
	if b.Format.Lossless() || b.Quality <= 0 {
		return []float64{0}
	}
	step := b.QualityStep
	if step <= 0 {
		return []float64{b.Quality}
	}
	var out []float64
	// Rounded so 0.8-7*0.1 lands on 0.1 rather than just under it.
	for i := 0; ; i++ {
		q := math.Round((b.Quality-float64(i)*step)*1000) / 1000
		if q < b.MinQuality || q <= 0 {
			break
		}
		out = append(out, q)
	}
	if len(out) == 0 {
		out = append(out, b.Quality)
	}
	return out
}

// Export encodes img at the budget's size and, while the result is too large,
// walks the quality ladder and then shrinks the square by Shrink until it fits
// or the floor size has been tried. It always terminates.
//
// Arguments:
// - img: The prepared sticker.
// - b: Format, byte limit and size schedule.
//
// Returns:
// - The encoding that fit, or the smallest attempt when none did.
// - An error if encoding fails.
//
// @example
// res, err := sticker.Export(sq, sticker.WebPBudget())
// if !res.WithinBudget { log.Printf("sticker is %d bytes", len(res.Data)) }
func Export(img *images.Image, b Budget) (Result, error) {
	if img.IsEmpty() {
		return Result{}, errors.Wrap(images.ErrEmptyImage, "sticker export")
	}
	if b.MaxBytes <= 0 {
		return Result{}, errors.Errorf("sticker budget of %d bytes", b.MaxBytes)
	}
	size := b.Size
	if size <= 0 {
		size = max(img.Width(), img.Height())
	}
	floor := max(1, min(b.Floor, size))
	shrink := b.Shrink
	if shrink <= 0 || shrink >= 1 {
		shrink = 0.85
	}

	var last Result
	edge := float64(size)
	for {
		px := max(floor, int(math.Round(edge)))
		scaled := images.Fit(img, px, px, images.LanczosFilter)
		for _, q := range b.qualities() {
			data, err := images.EncodeBytes(scaled, b.Format, images.EncodeOptions{Quality: q, Lossless: b.Format.Lossless()})
			if err != nil {
				return Result{}, errors.Wrapf(err, "sticker export at %dpx", px)
			}
			last = Result{Data: data, Size: px, Format: b.Format, Quality: q, Attempts: last.Attempts + 1}
			if len(data) <= b.MaxBytes {
				last.WithinBudget = true
				return last, nil
			}
		}
		if px <= floor {
			return last, nil
		}
		edge *= shrink
	}
}
