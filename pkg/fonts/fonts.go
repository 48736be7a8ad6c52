// Package fonts provides the embedded fonts used by text cells.
//
// The Go font family ships inside golang.org/x/image, so text cells render
// identically on every machine without system font lookups. Fonts are parsed
// once on first use; faces are cheap to create per render.
package fonts

import (
	"fmt"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Family names accepted by [Face].
const (
	FamilySans = "sans"
	FamilyMono = "mono"
)

// Style names accepted by [Face].
const (
	StyleNormal     = "normal"
	StyleBold       = "bold"
	StyleItalic     = "italic"
	StyleBoldItalic = "bold-italic"
)

// DefaultSize is the point size used when a text style leaves it unset.
const DefaultSize = 24.0

type variant struct{ family, style string }

var sources = map[variant][]byte{
	{FamilySans, StyleNormal}:     goregular.TTF,
	{FamilySans, StyleBold}:       gobold.TTF,
	{FamilySans, StyleItalic}:     goitalic.TTF,
	{FamilySans, StyleBoldItalic}: gobolditalic.TTF,
	{FamilyMono, StyleNormal}:     gomono.TTF,
	{FamilyMono, StyleBold}:       gomonobold.TTF,
}

// Parsed fonts (computed once per variant on first access).
var (
	parsedMu sync.Mutex
	parsed   = map[variant]*truetype.Font{}
)

// Validate reports whether family/style name an embedded font.
// Empty values select the defaults.
func Validate(family, style string) error {
	if _, ok := sources[normalize(family, style)]; !ok {
		return fmt.Errorf("unknown font %q style %q", family, style)
	}
	return nil
}

// Face returns a face for the given family, style and point size at 72 DPI,
// so one point equals one pixel.
func Face(family, style string, size float64) (font.Face, error) {
	f, err := load(normalize(family, style))
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = DefaultSize
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

func normalize(family, style string) variant {
	v := variant{strings.ToLower(family), strings.ToLower(style)}
	if v.family == "" {
		v.family = FamilySans
	}
	if v.style == "" {
		v.style = StyleNormal
	}
	return v
}

func load(v variant) (*truetype.Font, error) {
	parsedMu.Lock()
	defer parsedMu.Unlock()
	if f, ok := parsed[v]; ok {
		return f, nil
	}
	src, ok := sources[v]
	if !ok {
		return nil, fmt.Errorf("unknown font %q style %q", v.family, v.style)
	}
	f, err := truetype.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse font %s/%s: %w", v.family, v.style, err)
	}
	parsed[v] = f
	return f, nil
}
