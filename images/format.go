package images

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
)

// ErrEncoding is returned when a raster cannot be serialized.
var ErrEncoding = errors.New("encoding failed")

// ImageFormat represents supported image formats
type ImageFormat string

// ImageFormat constants
const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatWebP is the WebP image format.
	FormatWebP ImageFormat = "webp"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
)

// Lossless reports whether the format keeps every pixel and the alpha channel.
func (f ImageFormat) Lossless() bool {
	return f == FormatPNG
}

// Extension returns the conventional file extension, including the dot.
func (f ImageFormat) Extension() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// FormatFromFilename infers the format from a file extension.
func FormatFromFilename(name string) (ImageFormat, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return FormatPNG, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".webp":
		return FormatWebP, nil
	default:
		return "", errors.Errorf("unsupported image extension %q", filepath.Ext(name))
	}
}

// EncodeOptions tune the encoders.
type EncodeOptions struct {
	// Quality in (0, 1] for lossy formats. Zero selects 0.9.
	Quality float64
	// Lossless selects lossless WebP.
	Lossless bool
	// Matte is composited under translucent pixels for formats without alpha.
	// Nil means white.
	Matte color.Color
}

func (o EncodeOptions) quality() float64 {
	if o.Quality <= 0 || o.Quality > 1 {
		return 0.9
	}
	return o.Quality
}

// Decode reads a PNG, JPEG or WebP stream into an upright raster.
//
// Arguments:
// - r: The encoded stream.
//
// Returns:
// - The decoded image and its format.
// - An error if the stream is not a supported image.
func Decode(r io.Reader) (*Image, ImageFormat, error) {
	src, name, err := image.Decode(r)
	if err != nil {
		return nil, "", errors.Wrap(err, "decode image")
	}
	img := FromImage(src)
	if img.IsEmpty() {
		return nil, "", errors.Wrap(ErrEmptyImage, "decode image")
	}
	return img, ImageFormat(name), nil
}

// DecodeBytes is Decode over an in-memory buffer.
func DecodeBytes(data []byte) (*Image, ImageFormat, error) {
	if len(data) == 0 {
		return nil, "", errors.Wrap(ErrEmptyImage, "decode image")
	}
	return Decode(bytes.NewReader(data))
}

// Encode serializes img in the given format.
//
// JPEG has no alpha channel, so translucent pixels are flattened over the matte
// color first. An empty image is never handed to an encoder.
//
// Arguments:
// - w: The destination writer.
// - img: The raster to encode.
// - format: The container format.
// - opts: Encoder options.
//
// Returns:
// - ErrEncoding wrapped with the cause on failure.
//
// @example
// var buf bytes.Buffer
// err := images.Encode(&buf, img, images.FormatPNG, images.EncodeOptions{})
func Encode(w io.Writer, img *Image, format ImageFormat, opts EncodeOptions) error {
	if img.IsEmpty() {
		return errors.Wrap(ErrEncoding, "refusing to encode an empty image")
	}

	var err error
	switch format {
	case FormatPNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(w, img.Pixels)
	case FormatJPEG:
		err = jpeg.Encode(w, flatten(img.Pixels, opts.Matte), &jpeg.Options{Quality: int(opts.quality()*100 + 0.5)})
	case FormatWebP:
		err = webp.Encode(w, img.Pixels, &webp.Options{
			Lossless: opts.Lossless,
			Quality:  float32(opts.quality() * 100),
			Exact:    true,
		})
	default:
		return errors.Wrapf(ErrEncoding, "unsupported format %q", format)
	}
	if err != nil {
		return errors.Wrapf(ErrEncoding, "%s: %v", format, err)
	}
	return nil
}

// EncodeBytes is Encode into a fresh buffer. It guarantees a non-empty result
// whenever the error is nil.
func EncodeBytes(img *Image, format ImageFormat, opts EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, format, opts); err != nil {
		return nil, err
	}
	if buf.Len() == 0 {
		return nil, errors.Wrapf(ErrEncoding, "%s encoder produced no bytes", format)
	}
	return buf.Bytes(), nil
}

// flatten composites src over an opaque matte.
func flatten(src *image.NRGBA, matte color.Color) *image.RGBA {
	if matte == nil {
		matte = color.White
	}
	dst := image.NewRGBA(src.Rect)
	draw.Draw(dst, dst.Rect, image.NewUniform(matte), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Rect, src, src.Rect.Min, draw.Over)
	return dst
}
