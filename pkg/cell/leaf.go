package cell

import (
	"context"
	"image"
	"image/color"

	"github.com/matzehuels/boardtex/pkg/codec"
	"github.com/matzehuels/boardtex/pkg/errors"
)

// Solid is an opaque single-colour leaf.
type Solid struct {
	*node
	hex   string
	color color.NRGBA
}

// NewSolid creates a w×h cell filled with hex, which must be "#RRGGBB".
func NewSolid(w, h int, hex string) (*Solid, error) {
	c, ok := codec.ParseHexColor(hex)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidColor, "solid: color must be #RRGGBB, got %q", hex)
	}
	n, err := newNode("solid", w, h)
	if err != nil {
		return nil, err
	}
	s := &Solid{node: n, hex: hex, color: c}
	n.self = s
	return s, nil
}

// Color returns the fill colour.
func (s *Solid) Color() color.NRGBA { return s.color }

// Describe implements Describer.
func (s *Solid) Describe() string { return s.hex }

// Render implements Cell.
func (s *Solid) Render(context.Context) (*image.NRGBA, error) {
	return codec.Fill(s.size.W, s.size.H, s.color), nil
}

// Buffer renders a pre-rendered image verbatim.
type Buffer struct {
	*node
	img *image.NRGBA
}

// NewBuffer wraps img as a w×h leaf. The image is copied, so later changes
// to img do not affect the cell.
func NewBuffer(w, h int, img image.Image) (*Buffer, error) {
	n, err := newNode("buffer", w, h)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "buffer: image is nil")
	}
	if got := codec.Size(img); got != n.size {
		return nil, errors.New(errors.ErrCodeSizeMismatch, "buffer: image is %s, declared %s", got, n.size)
	}
	b := &Buffer{node: n, img: codec.Clone(img)}
	n.self = b
	return b, nil
}

// Render implements Cell.
func (b *Buffer) Render(context.Context) (*image.NRGBA, error) {
	return codec.Clone(b.img), nil
}

// RenderFunc produces the pixels of a custom leaf.
type RenderFunc func(ctx context.Context, w, h int) (*image.NRGBA, error)

// Func is a leaf whose pixels come from a caller-supplied function.
// The returned buffer is checked against the declared size by the parent.
type Func struct {
	*node
	fn RenderFunc
}

// NewFunc creates a custom leaf of the given kind.
func NewFunc(kind string, w, h int, fn RenderFunc) (*Func, error) {
	if kind == "" {
		kind = "func"
	}
	n, err := newNode(kind, w, h)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s: render function is nil", kind)
	}
	f := &Func{node: n, fn: fn}
	n.self = f
	return f, nil
}

// Render implements Cell.
func (f *Func) Render(ctx context.Context) (*image.NRGBA, error) {
	return f.fn(ctx, f.size.W, f.size.H)
}
