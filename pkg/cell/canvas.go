package cell

import (
	"context"
	"image"

	"github.com/matzehuels/boardtex/pkg/errors"
	"github.com/matzehuels/boardtex/pkg/geom"
)

// Canvas places children at explicit offsets inside a fixed box.
// Children may overlap or extend past the edges; overflow is clipped.
type Canvas struct {
	*node
}

// NewCanvas creates a w×h canvas. At least one child is required.
func NewCanvas(w, h int, children ...Child) (*Canvas, error) {
	n, err := newNode("canvas", w, h)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyChildren, "canvas: at least one child is required")
	}
	if err := n.adopt(children); err != nil {
		return nil, err
	}
	c := &Canvas{node: n}
	n.self = c
	return c, nil
}

// Render implements Cell.
func (c *Canvas) Render(ctx context.Context) (*image.NRGBA, error) {
	return renderChildren(ctx, c.node)
}

// childSizes validates a composite's child list and returns the sizes.
func childSizes(kind string, cells []Cell) ([]geom.Size, error) {
	if len(cells) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyChildren, "%s: at least one child is required", kind)
	}
	sizes := make([]geom.Size, len(cells))
	for i, c := range cells {
		if c == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%s: child %d is nil", kind, i)
		}
		sizes[i] = c.Size()
	}
	return sizes, nil
}

func maxSize(sizes []geom.Size) geom.Size {
	var m geom.Size
	for _, s := range sizes {
		m.W = max(m.W, s.W)
		m.H = max(m.H, s.H)
	}
	return m
}
