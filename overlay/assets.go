package overlay

import "image"

// AssetResolver looks up the rasters behind asset and symbol stickers.
type AssetResolver interface {
	// Asset returns a named full-color image.
	Asset(name string) (image.Image, bool)
	// Symbol returns an icon whose alpha is used as a mask and tinted with the
	// sticker color.
	Symbol(id string) (image.Image, bool)
}

// MapAssets is an AssetResolver backed by two maps. A nil MapAssets resolves
// nothing.
type MapAssets struct {
	Assets  map[string]image.Image
	Symbols map[string]image.Image
}

// Asset implements AssetResolver.
func (m *MapAssets) Asset(name string) (image.Image, bool) {
	if m == nil {
		return nil, false
	}
	img, ok := m.Assets[name]
	return img, ok
}

// Symbol implements AssetResolver.
func (m *MapAssets) Symbol(id string) (image.Image, bool) {
	if m == nil {
		return nil, false
	}
	img, ok := m.Symbols[id]
	return img, ok
}
