package masks

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-cutout/images"
)

// ErrFullyTransparent is returned when an image has no pixel with alpha > 0.
var ErrFullyTransparent = errors.New("image is fully transparent")

// TrimToContentBounds finds the tightest rectangle holding every pixel with
// alpha > 0.
//
// Each edge is found independently: the top edge scans rows top to bottom and
// each row left to right, the bottom edge scans rows bottom to top, the left
// edge scans columns left to right and each column top to bottom, and the right
// edge scans columns right to left.
//
// Arguments:
// - img: The image to scan.
//
// Returns:
// - The bounds as a Go rectangle: Min is the first opaque column/row and Max is
// one past the last, so the opaque pixels on every edge are included.
// - ErrFullyTransparent when there is nothing to keep.
//
// @example
// r, err := masks.TrimToContentBounds(subject)
// if errors.Is(err, masks.ErrFullyTransparent) { /* nothing to export */ }
func TrimToContentBounds(img *images.Image) (image.Rectangle, error) {
	if img.IsEmpty() {
		return image.Rectangle{}, ErrFullyTransparent
	}
	pix := img.Pixels
	w, h := img.Width(), img.Height()
	alpha := func(x, y int) uint8 { return pix.Pix[y*pix.Stride+x*4+3] }

	top := -1
	for y := 0; y < h && top < 0; y++ {
		for x := 0; x < w; x++ {
			if alpha(x, y) > 0 {
				top = y
				break
			}
		}
	}
	if top < 0 {
		return image.Rectangle{}, ErrFullyTransparent
	}

	bottom := top
	for y := h - 1; y > top; y-- {
		if rowHasContent(pix, y, w) {
			bottom = y
			break
		}
	}

	left := 0
	for x := 0; x < w; x++ {
		if colHasContent(alpha, x, top, bottom) {
			left = x
			break
		}
	}

	right := left
	for x := w - 1; x > left; x-- {
		if colHasContent(alpha, x, top, bottom) {
			right = x
			break
		}
	}

	return image.Rect(left, top, right+1, bottom+1), nil
}

func rowHasContent(pix *image.NRGBA, y, w int) bool {
	row := pix.Pix[y*pix.Stride : y*pix.Stride+w*4]
	for i := 3; i < len(row); i += 4 {
		if row[i] > 0 {
			return true
		}
	}
	return false
}

// colHasContent scans a column top to bottom; rows outside [top, bottom] are
// already known to be empty.
func colHasContent(alpha func(x, y int) uint8, x, top, bottom int) bool {
	for y := top; y <= bottom; y++ {
		if alpha(x, y) > 0 {
			return true
		}
	}
	return false
}

// Trim slices img to its content bounds.
func Trim(img *images.Image) (*images.Image, error) {
	r, err := TrimToContentBounds(img)
	if err != nil {
		return nil, err
	}
	if r == img.Bounds() {
		return img, nil
	}
	return img.Derive(imaging.Crop(img.Pixels, r)), nil
}
