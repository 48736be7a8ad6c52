package cell

import (
	"context"
	"image"

	"github.com/matzehuels/boardtex/pkg/codec"
	"github.com/matzehuels/boardtex/pkg/errors"
	"github.com/matzehuels/boardtex/pkg/geom"
)

// BleedOptions configures a Bleed cell.
type BleedOptions struct {
	// FillCorners paints each corner square with the nearest inner corner
	// pixel. Without it the corners stay transparent.
	FillCorners bool
}

// Bleed frames a cell with a border built by stretching the cell's own
// outermost row or column across each side, so filtered sampling near the
// edge never picks up foreign texels.
type Bleed struct {
	*node
	bleed int
	opts  BleedOptions
}

// NewBleed creates a cell of size (w+2b)×(h+2b) with inner at (b,b).
func NewBleed(inner Cell, bleed int, opts BleedOptions) (*Bleed, error) {
	if inner == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "bleed: inner cell is nil")
	}
	if bleed <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidDimension, "bleed: size must be positive, got %d", bleed)
	}
	is := inner.Size()
	n, err := newNode("bleed", is.W+2*bleed, is.H+2*bleed)
	if err != nil {
		return nil, err
	}
	if err := n.adopt([]Child{{Cell: inner, Left: bleed, Top: bleed}}); err != nil {
		return nil, err
	}
	b := &Bleed{node: n, bleed: bleed, opts: opts}
	n.self = b
	return b, nil
}

// NewBleedForUVs bleeds inner by [geom.GutterFor] its size, the same
// gutter the tiler derives for a chunk of that size.
func NewBleedForUVs(inner Cell, opts BleedOptions) (*Bleed, error) {
	if inner == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "bleed: inner cell is nil")
	}
	s := inner.Size()
	return NewBleed(inner, geom.GutterFor(s.W, s.H), opts)
}

// BleedSize returns the frame width.
func (b *Bleed) BleedSize() int { return b.bleed }

// Render implements Cell.
func (b *Bleed) Render(ctx context.Context) (*image.NRGBA, error) {
	img, err := renderChecked(ctx, b.children[0].Cell)
	if err != nil {
		return nil, err
	}
	return codec.ExtendEdges(img, b.bleed, b.opts.FillCorners), nil
}
