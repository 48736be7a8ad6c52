package cell

import (
	"context"
	"image"

	"github.com/matzehuels/boardtex/pkg/errors"
	"github.com/matzehuels/boardtex/pkg/geom"
)

// MaxAtlasDimension bounds both sides of a grid atlas.
const MaxAtlasDimension = 4096

// Layout is a grid shape.
type Layout struct {
	Cols int `json:"cols"`
	Rows int `json:"rows"`
}

// Size returns the pixel size of the layout for cells of size cell.
func (l Layout) Size(cell geom.Size) geom.Size {
	return geom.Size{W: l.Cols * cell.W, H: l.Rows * cell.H}
}

// MaxCellCount returns how many cells of the given size fit in one atlas
// bounded by MaxAtlasDimension on each side.
func MaxCellCount(cell geom.Size) (int, error) {
	if !cell.Positive() {
		return 0, errors.New(errors.ErrCodeInvalidDimension, "cell size must be positive, got %s", cell)
	}
	return (MaxAtlasDimension / cell.W) * (MaxAtlasDimension / cell.H), nil
}

// OptimalLayout chooses the grid shape for count cells of the given size.
//
// Every column count that keeps both sides within MaxAtlasDimension is
// tried; the winner wastes the least area of the power-of-two texture that
// would hold the grid. On ties the layout with fewer columns wins.
func OptimalLayout(count int, cell geom.Size) (Layout, error) {
	if count <= 0 {
		return Layout{}, errors.New(errors.ErrCodeInvalidInput, "cell count must be positive, got %d", count)
	}
	limit, err := MaxCellCount(cell)
	if err != nil {
		return Layout{}, err
	}
	if count > limit {
		return Layout{}, errors.New(errors.ErrCodeTooManyCells,
			"%d cells of %s exceed the %d that fit in %dx%d", count, cell, limit, MaxAtlasDimension, MaxAtlasDimension)
	}

	maxCols := MaxAtlasDimension / cell.W
	maxRows := MaxAtlasDimension / cell.H
	best := Layout{}
	bestWaste := -1
	for cols := 1; cols <= maxCols; cols++ {
		rows := geom.CeilDiv(count, cols)
		if rows > maxRows {
			continue
		}
		used := cols * rows * cell.W * cell.H
		waste := geom.NextPow2(cols*cell.W)*geom.NextPow2(rows*cell.H) - used
		if bestWaste < 0 || waste < bestWaste {
			best, bestWaste = Layout{Cols: cols, Rows: rows}, waste
		}
	}
	return best, nil
}

// Grid wraps children row-major into rows of a fixed column count. Every
// slot has the size of the largest child; children sit at their slot's
// top-left corner.
type Grid struct {
	*node
	layout  Layout
	slot    geom.Size
	spacing int
}

// NewGrid creates a grid with cols columns. When there are fewer cells than
// columns the grid narrows to the cell count.
func NewGrid(cols, spacing int, cells ...Cell) (*Grid, error) {
	if cols <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "grid: column count must be positive, got %d", cols)
	}
	if spacing < 0 {
		return nil, errors.New(errors.ErrCodeInvalidDimension, "grid: spacing must not be negative, got %d", spacing)
	}
	sizes, err := childSizes("grid", cells)
	if err != nil {
		return nil, err
	}

	cols = min(cols, len(cells))
	layout := Layout{Cols: cols, Rows: geom.CeilDiv(len(cells), cols)}
	slot := maxSize(sizes)

	children := make([]Child, len(cells))
	for i, c := range cells {
		col, row := i%cols, i/cols
		children[i] = Child{
			Cell: c,
			Left: col * (slot.W + spacing),
			Top:  row * (slot.H + spacing),
		}
	}

	w := layout.Cols*slot.W + (layout.Cols-1)*spacing
	h := layout.Rows*slot.H + (layout.Rows-1)*spacing
	n, err := newNode("grid", w, h)
	if err != nil {
		return nil, err
	}
	if err := n.adopt(children); err != nil {
		return nil, err
	}
	g := &Grid{node: n, layout: layout, slot: slot, spacing: spacing}
	n.self = g
	return g, nil
}

// NewGridAuto creates a grid whose column count is chosen by
// [OptimalLayout] for the largest child size.
func NewGridAuto(spacing int, cells ...Cell) (*Grid, error) {
	sizes, err := childSizes("grid", cells)
	if err != nil {
		return nil, err
	}
	layout, err := OptimalLayout(len(cells), maxSize(sizes))
	if err != nil {
		return nil, err
	}
	return NewGrid(layout.Cols, spacing, cells...)
}

// Layout returns the grid's column and row count.
func (g *Grid) Layout() Layout { return g.layout }

// Slot returns the size reserved for each child.
func (g *Grid) Slot() geom.Size { return g.slot }

// Render implements Cell.
func (g *Grid) Render(ctx context.Context) (*image.NRGBA, error) {
	return renderChildren(ctx, g.node)
}
