package cell

import (
	"context"
	"image"

	"github.com/matzehuels/boardtex/pkg/errors"
)

// Linear packs children along one axis with uniform spacing between
// consecutive children. Row and Col are both Linear cells.
type Linear struct {
	*node
	spacing int
}

// NewRow packs cells left to right, aligned to the top. The width is the
// sum of the widths plus spacing·(n−1); the height is the tallest child.
func NewRow(spacing int, cells ...Cell) (*Linear, error) {
	return newLinear("row", true, spacing, cells)
}

// NewCol packs cells top to bottom, aligned to the left. It is the
// transpose of [NewRow].
func NewCol(spacing int, cells ...Cell) (*Linear, error) {
	return newLinear("col", false, spacing, cells)
}

func newLinear(kind string, horizontal bool, spacing int, cells []Cell) (*Linear, error) {
	if spacing < 0 {
		return nil, errors.New(errors.ErrCodeInvalidDimension, "%s: spacing must not be negative, got %d", kind, spacing)
	}
	sizes, err := childSizes(kind, cells)
	if err != nil {
		return nil, err
	}

	children := make([]Child, len(cells))
	offset, cross := 0, 0
	for i, c := range cells {
		if i > 0 {
			offset += spacing
		}
		if horizontal {
			children[i] = Child{Cell: c, Left: offset}
			offset += sizes[i].W
			cross = max(cross, sizes[i].H)
		} else {
			children[i] = Child{Cell: c, Top: offset}
			offset += sizes[i].H
			cross = max(cross, sizes[i].W)
		}
	}

	w, h := offset, cross
	if !horizontal {
		w, h = cross, offset
	}
	n, err := newNode(kind, w, h)
	if err != nil {
		return nil, err
	}
	if err := n.adopt(children); err != nil {
		return nil, err
	}
	l := &Linear{node: n, spacing: spacing}
	n.self = l
	return l, nil
}

// Spacing returns the gap between consecutive children.
func (l *Linear) Spacing() int { return l.spacing }

// Render implements Cell.
func (l *Linear) Render(ctx context.Context) (*image.NRGBA, error) {
	return renderChildren(ctx, l.node)
}
