package overlay

import (
	"strings"
	"sync"

	"github.com/gogpu/gg/text"
	"github.com/pkg/errors"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Built-in font families.
const (
	FamilyGo     = "go"
	FamilyGoMono = "go-mono"
)

// ErrFont is returned when font data cannot be parsed.
var ErrFont = errors.New("font")

// Style selects one face of a family.
type Style int

// Styles, combinable as StyleBold|StyleItalic.
const (
	StyleRegular Style = 0
	StyleBold    Style = 1
	StyleItalic  Style = 2
)

// StyleOf composes a Style from symbolic traits.
func StyleOf(bold, italic bool) Style {
	s := StyleRegular
	if bold {
		s |= StyleBold
	}
	if italic {
		s |= StyleItalic
	}
	return s
}

// FontBook maps family names to parsed font sources. It is safe for concurrent
// use; lookups take a read lock.
type FontBook struct {
	mu       sync.RWMutex
	families map[string]map[Style]*text.FontSource
	fallback string
}

// NewFontBook returns a book holding the Go font families, with FamilyGo as the
// fallback for unknown names.
//
// Returns:
// - The font book.
// - ErrFont if a bundled font fails to parse.
//
// @example
// book, err := overlay.NewFontBook()
// face := book.Face("go", true, false, 32)
func NewFontBook() (*FontBook, error) {
	b := &FontBook{families: map[string]map[Style]*text.FontSource{}, fallback: FamilyGo}
	builtin := []struct {
		family string
		style  Style
		data   []byte
	}{
		{FamilyGo, StyleRegular, goregular.TTF},
		{FamilyGo, StyleBold, gobold.TTF},
		{FamilyGo, StyleItalic, goitalic.TTF},
		{FamilyGo, StyleBold | StyleItalic, gobolditalic.TTF},
		{FamilyGoMono, StyleRegular, gomono.TTF},
		{FamilyGoMono, StyleBold, gomonobold.TTF},
		{FamilyGoMono, StyleItalic, gomonoitalic.TTF},
		{FamilyGoMono, StyleBold | StyleItalic, gomonobolditalic.TTF},
	}
	for _, f := range builtin {
		if err := b.Register(f.family, f.style, f.data); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Register adds a TTF/OTF face under family and style, replacing any face
// already registered there. Family names are case-insensitive.
func (b *FontBook) Register(family string, style Style, data []byte) error {
	src, err := text.NewFontSource(data)
	if err != nil {
		return errors.Wrapf(ErrFont, "%s (style %d): %v", family, style, err)
	}

	key := strings.ToLower(strings.TrimSpace(family))
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.families[key] == nil {
		b.families[key] = map[Style]*text.FontSource{}
	}
	b.families[key][style] = src
	return nil
}

// Families lists the registered family names.
func (b *FontBook) Families() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.families))
	for name := range b.families {
		out = append(out, name)
	}
	return out
}

// Face resolves family plus traits to a face of the given size in pixels.
// An unknown family falls back to the book's default family, and a missing
// style degrades to bold, then regular.
func (b *FontBook) Face(family string, bold, italic bool, size float64) text.Face {
	b.mu.RLock()
	defer b.mu.RUnlock()

	faces, ok := b.families[strings.ToLower(strings.TrimSpace(family))]
	if !ok {
		faces = b.families[b.fallback]
	}
	want := StyleOf(bold, italic)
	for _, s := range []Style{want, want &^ StyleItalic, StyleRegular} {
		if src, ok := faces[s]; ok {
			return src.Face(size)
		}
	}
	return nil
}
