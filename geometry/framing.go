package geometry

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// FramingKind selects how the output canvas is shaped.
type FramingKind string

const (
	// FramingFree keeps whatever the crop rectangle (if any) produces.
	FramingFree FramingKind = "free"
	// FramingOriginal keeps the subject's own aspect ratio.
	FramingOriginal FramingKind = "original"
	// FramingRatio crops to a fixed width:height ratio.
	FramingRatio FramingKind = "ratio"
	// FramingCustom crops to the ratio of a custom pixel size.
	FramingCustom FramingKind = "custom"
)

// FramingName identifies one of the named framings offered by the editor.
type FramingName string

// Named framings.
const (
	FramingNameFree     FramingName = "free"
	FramingNameOriginal FramingName = "original"
	FramingNameSquare   FramingName = "square"
	FramingName45       FramingName = "4:5"
	FramingName43       FramingName = "4:3"
	FramingName34       FramingName = "3:4"
	FramingName32       FramingName = "3:2"
	FramingName23       FramingName = "2:3"
	FramingName169      FramingName = "16:9"
	FramingName916      FramingName = "9:16"
	FramingNameApple55  FramingName = "apple55" // 5.5" phone screenshots
	FramingNameApple58  FramingName = "apple58" // 5.8" phone screenshots
)

// Framing is the target shape of the output canvas.
type Framing struct {
	Kind FramingKind `json:"kind" yaml:"kind"`
	// Name is informational for ratio framings picked from the table.
	Name FramingName `json:"name,omitempty" yaml:"name,omitempty"`
	// Ratio is width/height for FramingRatio.
	Ratio float64 `json:"ratio,omitempty" yaml:"ratio,omitempty"`
	// Width and Height are the pixel size for FramingCustom.
	Width  int `json:"width,omitempty" yaml:"width,omitempty"`
	Height int `json:"height,omitempty" yaml:"height,omitempty"`
}

// Free returns the framing that applies no aspect constraint.
func Free() Framing {
	return Framing{Kind: FramingFree}
}

// Ratio returns a fixed-ratio framing of w:h.
func Ratio(w, h float64) Framing {
	return Framing{Kind: FramingRatio, Ratio: w / h}
}

// Custom returns a custom-pixel-size framing.
func Custom(width, height int) Framing {
	return Framing{Kind: FramingCustom, Width: width, Height: height}
}

// TargetRatio returns the width/height ratio the framing crops to and whether
// it constrains the canvas at all. Free and original framings do not.
func (f Framing) TargetRatio() (float64, bool) {
	switch f.Kind {
	case FramingRatio:
		return f.Ratio, f.Ratio > 0
	case FramingCustom:
		if f.Width > 0 && f.Height > 0 {
			return float64(f.Width) / float64(f.Height), true
		}
	}
	return 0, false
}

// Validate checks the fields of the selected kind. The zero Framing is valid and
// means free.
func (f Framing) Validate() error {
	switch f.Kind {
	case "", FramingFree, FramingOriginal:
		return nil
	case FramingRatio:
		if !(f.Ratio > 0) {
			return errors.Errorf("framing ratio %g must be > 0", f.Ratio)
		}
	case FramingCustom:
		if f.Width <= 0 || f.Height <= 0 {
			return errors.Errorf("custom framing %dx%d must be positive", f.Width, f.Height)
		}
	default:
		return errors.Errorf("unknown framing kind %q", f.Kind)
	}
	return nil
}

func (f Framing) String() string {
	switch f.Kind {
	case FramingRatio:
		if f.Name != "" {
			return string(f.Name)
		}
		return fmt.Sprintf("ratio(%.4f)", f.Ratio)
	case FramingCustom:
		return fmt.Sprintf("custom(%dx%d)", f.Width, f.Height)
	case "":
		return string(FramingFree)
	default:
		return string(f.Kind)
	}
}

// framings stores the named framings, keyed by name for lookups.
var framings = map[FramingName]Framing{
	FramingNameFree:     {Kind: FramingFree, Name: FramingNameFree},
	FramingNameOriginal: {Kind: FramingOriginal, Name: FramingNameOriginal},
	FramingNameSquare:   {Kind: FramingRatio, Name: FramingNameSquare, Ratio: 1},
	FramingName45:       {Kind: FramingRatio, Name: FramingName45, Ratio: 4.0 / 5.0},
	FramingName43:       {Kind: FramingRatio, Name: FramingName43, Ratio: 4.0 / 3.0},
	FramingName34:       {Kind: FramingRatio, Name: FramingName34, Ratio: 3.0 / 4.0},
	FramingName32:       {Kind: FramingRatio, Name: FramingName32, Ratio: 3.0 / 2.0},
	FramingName23:       {Kind: FramingRatio, Name: FramingName23, Ratio: 2.0 / 3.0},
	FramingName169:      {Kind: FramingRatio, Name: FramingName169, Ratio: 16.0 / 9.0},
	FramingName916:      {Kind: FramingRatio, Name: FramingName916, Ratio: 9.0 / 16.0},
	FramingNameApple55:  {Kind: FramingRatio, Name: FramingNameApple55, Ratio: 9.0 / 16.0},
	FramingNameApple58:  {Kind: FramingRatio, Name: FramingNameApple58, Ratio: 1125.0 / 2436.0},
}

// Framings returns every named framing, sorted by name.
func Framings() []Framing {
	all := make([]Framing, 0, len(framings))
	for _, f := range framings {
		all = append(all, f)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

// FramingByName retrieves a named framing.
// It returns the Framing and true if found, otherwise a free Framing and false.
func FramingByName(name FramingName) (Framing, bool) {
	f, ok := framings[name]
	if !ok {
		return Free(), false
	}
	return f, true
}
