package cell

import (
	"context"
	"image"
	"image/color"

	"github.com/matzehuels/boardtex/pkg/codec"
	"github.com/matzehuels/boardtex/pkg/errors"
)

// DefaultBackground is the frame colour of a Padded cell.
const DefaultBackground = "#ffffff"

// PaddedOptions configures a Padded cell.
type PaddedOptions struct {
	Background string // "#RRGGBB", default white
}

// Padded frames a single child with a solid background.
type Padded struct {
	*node
	padding    int
	background color.NRGBA
}

// NewPadded creates a cell of size (w+2p)×(h+2p) with child centred.
func NewPadded(child Cell, padding int, opts PaddedOptions) (*Padded, error) {
	if child == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "padded: child is nil")
	}
	if padding < 0 {
		return nil, errors.New(errors.ErrCodeInvalidDimension, "padded: padding must not be negative, got %d", padding)
	}
	if opts.Background == "" {
		opts.Background = DefaultBackground
	}
	bg, ok := codec.ParseHexColor(opts.Background)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidColor, "padded: background must be #RRGGBB, got %q", opts.Background)
	}

	cs := child.Size()
	n, err := newNode("padded", cs.W+2*padding, cs.H+2*padding)
	if err != nil {
		return nil, err
	}
	if err := n.adopt([]Child{{Cell: child, Left: padding, Top: padding}}); err != nil {
		return nil, err
	}
	p := &Padded{node: n, padding: padding, background: bg}
	n.self = p
	return p, nil
}

// Padding returns the frame width.
func (p *Padded) Padding() int { return p.padding }

// Render implements Cell.
func (p *Padded) Render(ctx context.Context) (*image.NRGBA, error) {
	img, err := renderChecked(ctx, p.children[0].Cell)
	if err != nil {
		return nil, err
	}
	return codec.Composite(p.size.W, p.size.H, []codec.Layer{
		{Image: codec.Fill(p.size.W, p.size.H, p.background)},
		{Image: img, At: p.children[0].Position()},
	}), nil
}
