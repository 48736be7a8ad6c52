package cell

import (
	"context"
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/matzehuels/boardtex/pkg/codec"
	"github.com/matzehuels/boardtex/pkg/errors"
	"github.com/matzehuels/boardtex/pkg/fonts"
)

// TextStyle configures a Text cell. Zero values select the defaults.
type TextStyle struct {
	Family      string  // fonts.FamilySans (default) or fonts.FamilyMono
	Style       string  // fonts.StyleNormal (default), StyleBold, ...
	Size        float64 // points at 72 DPI; default fonts.DefaultSize
	Color       string  // "#RRGGBB"; default black
	LineSpacing float64 // multiple of the line height; default 1
}

func (s TextStyle) withDefaults() TextStyle {
	if s.Size <= 0 {
		s.Size = fonts.DefaultSize
	}
	if s.Color == "" {
		s.Color = "#000000"
	}
	if s.LineSpacing <= 0 {
		s.LineSpacing = 1
	}
	return s
}

// Text renders a string centred in a fixed box. Lines wrap at the box
// width; anything that still does not fit is clipped.
type Text struct {
	*node
	text  string
	style TextStyle
	color color.NRGBA
}

// NewText creates a w×h text cell.
func NewText(w, h int, text string, style TextStyle) (*Text, error) {
	n, err := newNode("text", w, h)
	if err != nil {
		return nil, err
	}
	style = style.withDefaults()
	c, ok := codec.ParseHexColor(style.Color)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidColor, "text: color must be #RRGGBB, got %q", style.Color)
	}
	if err := fonts.Validate(style.Family, style.Style); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "text")
	}
	t := &Text{node: n, text: text, style: style, color: c}
	n.self = t
	return t, nil
}

// Text returns the rendered string.
func (t *Text) Text() string { return t.text }

// Describe implements Describer.
func (t *Text) Describe() string {
	if r := []rune(t.text); len(r) > 24 {
		return string(r[:21]) + "..."
	}
	return t.text
}

// Render implements Cell.
func (t *Text) Render(context.Context) (*image.NRGBA, error) {
	face, err := fonts.Face(t.style.Family, t.style.Style, t.style.Size)
	if err != nil {
		return nil, err
	}
	w, h := float64(t.size.W), float64(t.size.H)
	dc := gg.NewContext(t.size.W, t.size.H)
	dc.SetFontFace(face)
	dc.SetColor(t.color)
	dc.DrawStringWrapped(t.text, w/2, h/2, 0.5, 0.5, w, t.style.LineSpacing, gg.AlignCenter)
	return codec.Clone(dc.Image()), nil
}
